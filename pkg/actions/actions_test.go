package actions

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/pkg/core"
)

func repoInfo(aclCap core.ACLCapability) *core.RepositoryInfo {
	return &core.RepositoryInfo{
		ID:              "test",
		RootFolderID:    "root",
		ACLCapability:   aclCap,
		PrincipalAnyone: "cmis:anyone",
		Capabilities:    core.Capabilities{Renditions: true, Multifiling: true},
	}
}

func docType() *core.TypeDefinition {
	return &core.TypeDefinition{
		ID:              "custom:doc",
		Base:            core.BaseDocument,
		Versionable:     true,
		Fileable:        true,
		ControllableACL: true,
		ContentStream:   core.ContentAllowed,
	}
}

func TestCalculateGrantsAllWithoutEnforcement(t *testing.T) {
	doc := &core.Document{Entry: core.Entry{ID: "d1", TypeID: "custom:doc"}, HasContent: true}
	set := Calculate(doc, docType(), "alice", repoInfo(core.ACLNone))

	require.True(t, set[GetProperties])
	require.True(t, set[CheckOut])
	require.True(t, set[GetContentStream])
	// Structural preconditions still apply even without enforcement.
	require.False(t, set[GetChildren])
	require.False(t, set[CheckIn])
}

func TestCalculateStructuralPreconditions(t *testing.T) {
	info := repoInfo(core.ACLNone)

	root := &core.Folder{Entry: core.Entry{ID: "root", TypeID: "cmis:folder"}}
	ft := &core.TypeDefinition{ID: "cmis:folder", Base: core.BaseFolder, Fileable: true}
	set := Calculate(root, ft, "alice", info)
	require.True(t, set[GetChildren])
	require.True(t, set[CreateDocument])
	require.False(t, set[DeleteObject], "root folder is never deletable")
	require.False(t, set[GetFolderParent])

	pwc := &core.Document{Entry: core.Entry{ID: "pwc1", TypeID: "custom:doc"}, PWC: true}
	set = Calculate(pwc, docType(), "alice", info)
	require.True(t, set[CheckIn])
	require.True(t, set[CancelCheckOut])
	require.False(t, set[CheckOut])
}

func TestCalculateChecksSingleMatchingEntry(t *testing.T) {
	info := repoInfo(core.ACLManage)
	typ := docType()

	doc := &core.Document{Entry: core.Entry{
		ID:     "d1",
		TypeID: typ.ID,
		ACL: core.ACL{
			{Principal: "alice", Permissions: []string{core.PermissionRead}},
		},
	}}

	set := Calculate(doc, typ, "alice", info)
	require.True(t, set[GetProperties])
	require.False(t, set[UpdateProperties], "read grant does not cover writes")

	set = Calculate(doc, typ, "bob", info)
	require.False(t, set[GetProperties], "no entry for bob, no open default once an ACL exists")
}

func TestCalculateAnyoneEntryWinsOverCaller(t *testing.T) {
	info := repoInfo(core.ACLManage)
	typ := docType()

	doc := &core.Document{Entry: core.Entry{
		ID:     "d1",
		TypeID: typ.ID,
		ACL: core.ACL{
			{Principal: "cmis:anyone", Permissions: []string{core.PermissionRead}},
			{Principal: "alice", Permissions: []string{core.PermissionAll}},
		},
	}}

	// The anyone entry is consulted first and is not unioned with alice's.
	set := Calculate(doc, typ, "alice", info)
	require.True(t, set[GetProperties])
	require.False(t, set[UpdateProperties])
}

func TestCalculateAllPermissionIsCatchAll(t *testing.T) {
	info := repoInfo(core.ACLManage)
	typ := docType()

	doc := &core.Document{Entry: core.Entry{
		ID:     "d1",
		TypeID: typ.ID,
		ACL:    core.ACL{{Principal: "alice", Permissions: []string{core.PermissionAll}}},
	}}

	set := Calculate(doc, typ, "alice", info)
	require.True(t, set[UpdateProperties])
	require.True(t, set[DeleteObject])
	require.True(t, set[ApplyACL])
}

func TestCalculateOpenByDefaultWithoutACL(t *testing.T) {
	info := repoInfo(core.ACLManage)
	typ := docType()

	doc := &core.Document{Entry: core.Entry{ID: "d1", TypeID: typ.ID}}
	set := Calculate(doc, typ, "anybody", info)
	require.True(t, set[GetProperties])
	require.True(t, set[UpdateProperties])
}
