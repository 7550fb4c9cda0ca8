package conn_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/conn"
	"github.com/aretw0/strata/pkg/core"
)

func newConn(t *testing.T) (*conn.Connection, *memory.Store) {
	t.Helper()
	s := memory.New(memory.Config{RepositoryID: "test-repo"})
	return conn.New(s), s
}

// registerNoteType adds a versionable, ACL- and policy-controllable
// document subtype most tests create instances of.
func registerNoteType(t *testing.T, c *conn.Connection) {
	t.Helper()
	_, err := c.CreateType(context.Background(), "admin", &core.TypeDefinition{
		ID:                 "note",
		Base:               core.BaseDocument,
		Versionable:        true,
		Fileable:           true,
		Queryable:          true,
		ControllableACL:    true,
		ControllablePolicy: true,
		ContentStream:      core.ContentAllowed,
		Properties: map[string]core.PropertyDefinition{
			"note:subject": {
				ID:           "note:subject",
				Type:         core.PropertyString,
				Cardinality:  core.Single,
				Updatability: core.ReadWrite,
			},
		},
	})
	require.NoError(t, err)
}

func docProps(typeID, name string) core.Properties {
	props := make(core.Properties)
	props.SetID(core.PropObjectTypeID, typeID)
	props.SetString(core.PropName, name)
	return props
}

func text(s string) *core.ContentStream {
	return &core.ContentStream{
		FileName: "body.txt",
		MimeType: "text/plain",
		Length:   int64(len(s)),
		Reader:   strings.NewReader(s),
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	t.Run("missing type property", func(t *testing.T) {
		props := make(core.Properties)
		props.SetString(core.PropName, "a")
		_, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID: s.RootID(), Properties: props,
		})
		require.ErrorIs(t, err, core.ErrInvalidArgument)
	})

	t.Run("non-document type", func(t *testing.T) {
		_, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID:   s.RootID(),
			Properties: docProps("cmis:folder", "a"),
		})
		require.ErrorIs(t, err, core.ErrConstraint)
	})

	t.Run("undefined property", func(t *testing.T) {
		props := docProps("note", "a")
		props.SetString("note:bogus", "x")
		_, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID: s.RootID(), Properties: props,
		})
		require.ErrorIs(t, err, core.ErrConstraint)
	})

	t.Run("missing required name", func(t *testing.T) {
		props := make(core.Properties)
		props.SetID(core.PropObjectTypeID, "note")
		_, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID: s.RootID(), Properties: props,
		})
		require.ErrorIs(t, err, core.ErrConstraint)
	})

	t.Run("versionable type rejects state none", func(t *testing.T) {
		_, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID:        s.RootID(),
			Properties:      docProps("note", "a"),
			VersioningState: core.VersioningNone,
		})
		require.ErrorIs(t, err, core.ErrConstraint)
	})

	t.Run("non-versionable type tolerates a versioning state", func(t *testing.T) {
		id, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID:        s.RootID(),
			Properties:      docProps("cmis:document", "plain"),
			VersioningState: core.VersioningMajor,
		})
		require.NoError(t, err)
		require.NotEmpty(t, id)
	})
}

func TestContentStreamPolicy(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()

	_, err := c.CreateType(ctx, "admin", &core.TypeDefinition{
		ID:            "scan",
		Base:          core.BaseDocument,
		Fileable:      true,
		ContentStream: core.ContentRequired,
	})
	require.NoError(t, err)
	_, err = c.CreateType(ctx, "admin", &core.TypeDefinition{
		ID:            "stub",
		Base:          core.BaseDocument,
		Fileable:      true,
		ContentStream: core.ContentNotAllowed,
	})
	require.NoError(t, err)

	t.Run("required content missing", func(t *testing.T) {
		_, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID: s.RootID(), Properties: docProps("scan", "s"),
		})
		require.ErrorIs(t, err, core.ErrConstraint)
	})

	t.Run("content where not allowed", func(t *testing.T) {
		_, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID: s.RootID(), Properties: docProps("stub", "s"), Content: text("x"),
		})
		require.ErrorIs(t, err, core.ErrStreamNotSupported)
	})

	t.Run("required content present", func(t *testing.T) {
		id, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID: s.RootID(), Properties: docProps("scan", "ok"), Content: text("x"),
		})
		require.NoError(t, err)

		err = c.DeleteContentStream(ctx, "alice", id, "")
		require.ErrorIs(t, err, core.ErrConstraint, "required content must not be removable")
	})
}

func TestVersioningLifecycle(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	id, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
		FolderID:   s.RootID(),
		Properties: docProps("note", "memo"),
		Content:    text("v1"),
	})
	require.NoError(t, err)

	pwc, err := c.Checkout(ctx, "alice", id)
	require.NoError(t, err)
	require.True(t, pwc.PWC)
	require.Equal(t, "alice", pwc.CheckedOutBy)

	// One private working copy per series.
	_, err = c.Checkout(ctx, "bob", id)
	require.ErrorIs(t, err, core.ErrVersioning)

	// Only the PWC may be checked in.
	_, err = c.Checkin(ctx, "alice", conn.CheckinRequest{ObjectID: id, Major: true})
	require.ErrorIs(t, err, core.ErrVersioning)

	props := make(core.Properties)
	props.SetString("note:subject", "updated")
	version, err := c.Checkin(ctx, "alice", conn.CheckinRequest{
		ObjectID:   pwc.ID,
		Major:      true,
		Comment:    "second",
		Properties: props,
		Content:    text("v2"),
	})
	require.NoError(t, err)
	require.Equal(t, "2.0", version.VersionLabel)
	require.True(t, version.IsLatestVersion)
	require.Equal(t, "second", version.CheckinComment)
	require.Equal(t, "updated", version.Properties.StringValue("note:subject"))

	versions, err := c.GetAllVersions(ctx, "alice", version.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)

	stream, err := c.GetContentStream(ctx, "alice", version.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(stream.Reader)
	require.NoError(t, err)
	require.Equal(t, "v2", string(body))

	t.Run("cancel from any series member", func(t *testing.T) {
		pwc, err := c.Checkout(ctx, "alice", version.ID)
		require.NoError(t, err)
		require.NotEqual(t, version.ID, pwc.ID)

		// Named by the latest version, not the PWC itself.
		require.NoError(t, c.CancelCheckout(ctx, "alice", version.ID))

		_, err = c.Backend().GetObject(ctx, pwc.ID)
		require.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("checkout needs a versionable type", func(t *testing.T) {
		id, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID: s.RootID(), Properties: docProps("cmis:document", "flat"),
		})
		require.NoError(t, err)
		_, err = c.Checkout(ctx, "alice", id)
		require.ErrorIs(t, err, core.ErrConstraint)
	})

	t.Run("labels advance one step per checkin", func(t *testing.T) {
		pwc, err := c.Checkout(ctx, "alice", version.ID)
		require.NoError(t, err)
		minor, err := c.Checkin(ctx, "alice", conn.CheckinRequest{ObjectID: pwc.ID})
		require.NoError(t, err)
		require.Equal(t, "2.1", minor.VersionLabel)

		pwc, err = c.Checkout(ctx, "alice", minor.ID)
		require.NoError(t, err)
		next, err := c.Checkin(ctx, "alice", conn.CheckinRequest{ObjectID: pwc.ID, Major: true})
		require.NoError(t, err)
		require.Equal(t, "3.0", next.VersionLabel)
	})

	t.Run("cancel without a working copy", func(t *testing.T) {
		latest, err := c.GetObjectOfLatestVersion(ctx, "alice", id, false)
		require.NoError(t, err)
		err = c.CancelCheckout(ctx, "alice", latest.ID)
		require.ErrorIs(t, err, core.ErrInvalidArgument)
	})

	t.Run("cancel needs a versionable type", func(t *testing.T) {
		id, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID: s.RootID(), Properties: docProps("cmis:document", "rigid"),
		})
		require.NoError(t, err)
		err = c.CancelCheckout(ctx, "alice", id)
		require.ErrorIs(t, err, core.ErrConstraint)
	})
}

func TestGetCheckedOutDocsByFolder(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	folderID, err := c.CreateFolder(ctx, "alice", conn.CreateFolderRequest{
		ParentID: s.RootID(), Properties: docProps("cmis:folder", "drafts"),
	})
	require.NoError(t, err)
	docID, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
		FolderID: folderID, Properties: docProps("note", "memo"),
	})
	require.NoError(t, err)
	pwc, err := c.Checkout(ctx, "alice", docID)
	require.NoError(t, err)

	// The PWC itself is unfiled; folder scoping resolves through the
	// series' filing.
	list, err := c.GetCheckedOutDocs(ctx, "alice", folderID, conn.ProjectionOptions{}, conn.Unbounded)
	require.NoError(t, err)
	require.Len(t, list.Objects, 1)
	require.Equal(t, pwc.ID, list.Objects[0].Object.Core().ID)

	all, err := c.GetCheckedOutDocs(ctx, "alice", "", conn.ProjectionOptions{}, conn.Unbounded)
	require.NoError(t, err)
	require.Len(t, all.Objects, 1)

	empty, err := c.GetCheckedOutDocs(ctx, "alice", s.RootID(), conn.ProjectionOptions{}, conn.Unbounded)
	require.NoError(t, err)
	require.Empty(t, empty.Objects)
}

func TestUpdatePropertiesChangeToken(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	id, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
		FolderID: s.RootID(), Properties: docProps("note", "memo"),
	})
	require.NoError(t, err)

	data, err := c.GetObject(ctx, "alice", id, conn.ProjectionOptions{})
	require.NoError(t, err)
	token := data.Object.Core().ChangeToken

	props := make(core.Properties)
	props.SetString("note:subject", "first")
	_, err = c.UpdateProperties(ctx, "alice", id, token, props)
	require.NoError(t, err)

	// The observed token is now stale.
	props.SetString("note:subject", "second")
	_, err = c.UpdateProperties(ctx, "bob", id, token, props)
	require.ErrorIs(t, err, core.ErrConflict)

	// An omitted token skips the check.
	_, err = c.UpdateProperties(ctx, "bob", id, "", props)
	require.NoError(t, err)

	t.Run("read-only property rejected", func(t *testing.T) {
		props := make(core.Properties)
		props.SetID(core.PropObjectTypeID, "cmis:document")
		_, err := c.UpdateProperties(ctx, "alice", id, "", props)
		require.ErrorIs(t, err, core.ErrConstraint)
	})
}

func TestSetContentStreamOverwrite(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	id, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
		FolderID: s.RootID(), Properties: docProps("note", "memo"), Content: text("v1"),
	})
	require.NoError(t, err)

	no := false
	err = c.SetContentStream(ctx, "alice", id, "", text("v2"), &no)
	require.ErrorIs(t, err, core.ErrContentAlreadyExists)

	// Overwrite defaults to true.
	require.NoError(t, c.SetContentStream(ctx, "alice", id, "", text("v2"), nil))

	stream, err := c.GetContentStream(ctx, "alice", id)
	require.NoError(t, err)
	body, err := io.ReadAll(stream.Reader)
	require.NoError(t, err)
	require.Equal(t, "v2", string(body))
}

func TestApplyACL(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	id, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
		FolderID:   s.RootID(),
		Properties: docProps("note", "memo"),
		AddACL: core.ACL{
			{Principal: "alice", Permissions: []string{core.PermissionAll}},
			{Principal: "bob", Permissions: []string{core.PermissionRead, core.PermissionWrite}},
		},
	})
	require.NoError(t, err)

	merged, err := c.ApplyACL(ctx, "alice", id,
		core.ACL{{Principal: "carol", Permissions: []string{core.PermissionRead}}},
		core.ACL{{Principal: "bob", Permissions: []string{core.PermissionWrite}}},
		"")
	require.NoError(t, err)

	bob, ok := merged.Entry("bob")
	require.True(t, ok)
	require.Equal(t, []string{core.PermissionRead}, bob.Permissions)
	_, ok = merged.Entry("carol")
	require.True(t, ok)

	t.Run("unsupported permission name", func(t *testing.T) {
		_, err := c.ApplyACL(ctx, "alice", id,
			core.ACL{{Principal: "dave", Permissions: []string{"custom:publish"}}}, nil, "")
		require.ErrorIs(t, err, core.ErrConstraint)
	})

	t.Run("uncontrollable type", func(t *testing.T) {
		plain, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID: s.RootID(), Properties: docProps("cmis:document", "plain"),
		})
		require.NoError(t, err)
		_, err = c.ApplyACL(ctx, "alice", plain,
			core.ACL{{Principal: "bob", Permissions: []string{core.PermissionRead}}}, nil, "")
		require.ErrorIs(t, err, core.ErrConstraint)
	})
}

func TestPolicies(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	policyID, err := c.CreatePolicy(ctx, "admin", conn.CreatePolicyRequest{
		Properties: docProps("cmis:policy", "retention"),
		PolicyText: "keep 7 years",
	})
	require.NoError(t, err)

	docID, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
		FolderID: s.RootID(), Properties: docProps("note", "memo"),
	})
	require.NoError(t, err)

	require.NoError(t, c.ApplyPolicy(ctx, "alice", policyID, docID))

	applied, err := c.GetAppliedPolicies(ctx, "alice", docID)
	require.NoError(t, err)
	require.Equal(t, []string{policyID}, applied)

	t.Run("non-policy id rejected", func(t *testing.T) {
		err := c.ApplyPolicy(ctx, "alice", docID, docID)
		require.ErrorIs(t, err, core.ErrInvalidArgument)
	})

	require.NoError(t, c.RemovePolicy(ctx, "alice", policyID, docID))
	err = c.RemovePolicy(ctx, "alice", policyID, docID)
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestGetChildrenPagination(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	names := []string{"a", "b", "c", "d", "e"}
	for _, name := range names {
		_, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID: s.RootID(), Properties: docProps("note", name),
		})
		require.NoError(t, err)
	}

	var got []string
	skip := 0
	for {
		list, err := c.GetChildren(ctx, "alice", s.RootID(), conn.ProjectionOptions{}, conn.Page{MaxItems: 2, SkipCount: skip})
		require.NoError(t, err)
		require.Equal(t, len(names), list.NumItems)
		for _, data := range list.Objects {
			got = append(got, data.Object.Core().Name)
		}
		if !list.HasMoreItems {
			break
		}
		skip += 2
	}
	require.Equal(t, names, got, "pages must tile the listing exactly once")

	t.Run("skip past end", func(t *testing.T) {
		_, err := c.GetChildren(ctx, "alice", s.RootID(), conn.ProjectionOptions{}, conn.Page{MaxItems: -1, SkipCount: 99})
		require.ErrorIs(t, err, core.ErrInvalidArgument)
	})

	t.Run("negative max items returns everything", func(t *testing.T) {
		list, err := c.GetChildren(ctx, "alice", s.RootID(), conn.ProjectionOptions{}, conn.Unbounded)
		require.NoError(t, err)
		require.Len(t, list.Objects, len(names))
		require.False(t, list.HasMoreItems)
	})
}

func TestProjectionFilters(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	props := docProps("note", "memo")
	props.SetString("note:subject", "hello")
	id, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
		FolderID: s.RootID(), Properties: props,
	})
	require.NoError(t, err)

	t.Run("narrowing keeps identity properties", func(t *testing.T) {
		data, err := c.GetObject(ctx, "alice", id, conn.ProjectionOptions{PropertyFilter: "note:subject"})
		require.NoError(t, err)
		require.Contains(t, data.Properties, "note:subject")
		require.Contains(t, data.Properties, core.PropObjectID)
		require.Contains(t, data.Properties, core.PropObjectTypeID)
		require.Contains(t, data.Properties, core.PropName)
		require.NotContains(t, data.Properties, core.PropCreatedBy)
	})

	t.Run("wildcard materializes system properties", func(t *testing.T) {
		data, err := c.GetObject(ctx, "alice", id, conn.ProjectionOptions{})
		require.NoError(t, err)
		require.Equal(t, id, data.Properties.StringValue(core.PropObjectID))
		require.Equal(t, "alice", data.Properties.StringValue(core.PropCreatedBy))
		require.NotEmpty(t, data.Properties.StringValue(core.PropChangeToken))
	})

	t.Run("invalid filter string", func(t *testing.T) {
		_, err := c.GetObject(ctx, "alice", id, conn.ProjectionOptions{PropertyFilter: "a b,c"})
		require.ErrorIs(t, err, core.ErrFilterInvalid)
	})

	t.Run("allowable actions", func(t *testing.T) {
		data, err := c.GetObject(ctx, "alice", id, conn.ProjectionOptions{IncludeAllowableActions: true})
		require.NoError(t, err)
		require.True(t, data.AllowableActions["canCheckOut"])
		require.True(t, data.AllowableActions["canDeleteObject"])
	})
}

func TestFolderOperations(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	mkFolder := func(parent, name string) string {
		t.Helper()
		id, err := c.CreateFolder(ctx, "alice", conn.CreateFolderRequest{
			ParentID: parent, Properties: docProps("cmis:folder", name),
		})
		require.NoError(t, err)
		return id
	}

	a := mkFolder(s.RootID(), "a")
	b := mkFolder(s.RootID(), "b")
	sub := mkFolder(a, "sub")
	docID, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
		FolderID: sub, Properties: docProps("note", "deep"),
	})
	require.NoError(t, err)

	t.Run("folder with children is not deletable", func(t *testing.T) {
		err := c.DeleteObject(ctx, "alice", a, nil)
		require.ErrorIs(t, err, core.ErrConstraint)
	})

	t.Run("root folder is not deletable", func(t *testing.T) {
		err := c.DeleteObject(ctx, "alice", s.RootID(), nil)
		require.ErrorIs(t, err, core.ErrConstraint)
	})

	t.Run("move requires the actual source folder", func(t *testing.T) {
		err := c.MoveObject(ctx, "alice", docID, b, a)
		require.ErrorIs(t, err, core.ErrInvalidArgument)

		err = c.MoveObject(ctx, "alice", docID, b, "")
		require.ErrorIs(t, err, core.ErrInvalidArgument)

		require.NoError(t, c.MoveObject(ctx, "alice", docID, b, sub))
	})

	t.Run("folder tree", func(t *testing.T) {
		nodes, err := c.GetFolderTree(ctx, "alice", s.RootID(), -1, conn.ProjectionOptions{})
		require.NoError(t, err)
		require.Len(t, nodes, 2)

		_, err = c.GetFolderTree(ctx, "alice", s.RootID(), 0, conn.ProjectionOptions{})
		require.ErrorIs(t, err, core.ErrInvalidArgument)

		flat, err := c.GetDescendants(ctx, "alice", s.RootID(), -1, conn.ProjectionOptions{})
		require.NoError(t, err)
		require.Len(t, flat, 4)
	})

	t.Run("parents", func(t *testing.T) {
		parents, err := c.GetObjectParents(ctx, "alice", docID, conn.ProjectionOptions{})
		require.NoError(t, err)
		require.Len(t, parents, 1)
		require.Equal(t, b, parents[0].Object.Core().ID)

		_, err = c.GetObjectParents(ctx, "alice", s.RootID(), conn.ProjectionOptions{})
		require.ErrorIs(t, err, core.ErrInvalidArgument)

		parent, err := c.GetFolderParent(ctx, "alice", sub, conn.ProjectionOptions{})
		require.NoError(t, err)
		require.Equal(t, a, parent.Object.Core().ID)
	})

	t.Run("delete tree rejects the root folder", func(t *testing.T) {
		_, err := c.DeleteTree(ctx, "alice", conn.DeleteTreeRequest{FolderID: s.RootID()})
		require.ErrorIs(t, err, core.ErrConstraint)

		// Nothing under the root was touched.
		_, err = c.Backend().GetObject(ctx, docID)
		require.NoError(t, err)
		_, err = c.Backend().GetObject(ctx, sub)
		require.NoError(t, err)
	})

	t.Run("delete tree", func(t *testing.T) {
		failed, err := c.DeleteTree(ctx, "alice", conn.DeleteTreeRequest{FolderID: a})
		require.NoError(t, err)
		require.Empty(t, failed)
		_, err = c.Backend().GetObject(ctx, sub)
		require.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestMultifiling(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	folderID, err := c.CreateFolder(ctx, "alice", conn.CreateFolderRequest{
		ParentID: s.RootID(), Properties: docProps("cmis:folder", "extra"),
	})
	require.NoError(t, err)

	docID, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
		FolderID: s.RootID(), Properties: docProps("note", "memo"),
	})
	require.NoError(t, err)

	require.NoError(t, c.AddObjectToFolder(ctx, "alice", docID, folderID))

	parents, err := c.GetObjectParents(ctx, "alice", docID, conn.ProjectionOptions{})
	require.NoError(t, err)
	require.Len(t, parents, 2)

	require.NoError(t, c.RemoveObjectFromFolder(ctx, "alice", docID, s.RootID()))

	parents, err = c.GetObjectParents(ctx, "alice", docID, conn.ProjectionOptions{})
	require.NoError(t, err)
	require.Len(t, parents, 1)
	require.Equal(t, folderID, parents[0].Object.Core().ID)
}

func TestContentChanges(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	id, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
		FolderID: s.RootID(), Properties: docProps("note", "memo"),
	})
	require.NoError(t, err)

	first, err := c.GetContentChanges(ctx, "alice", "", -1)
	require.NoError(t, err)
	require.NotEmpty(t, first.Events)
	require.False(t, first.HasMore)

	props := make(core.Properties)
	props.SetString("note:subject", "x")
	_, err = c.UpdateProperties(ctx, "alice", id, "", props)
	require.NoError(t, err)

	// Resuming from the cursor yields only what happened since.
	rest, err := c.GetContentChanges(ctx, "alice", first.NextToken, -1)
	require.NoError(t, err)
	require.Len(t, rest.Events, 1)
	require.Equal(t, core.ChangeUpdated, rest.Events[0].Kind)
	require.Equal(t, id, rest.Events[0].ObjectID)

	_, err = c.GetContentChanges(ctx, "alice", "no-such-token", -1)
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestQueryThroughConnection(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	for _, name := range []string{"alpha", "beta"} {
		props := docProps("note", name)
		props.SetString("note:subject", name)
		_, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID: s.RootID(), Properties: props,
		})
		require.NoError(t, err)
	}

	list, err := c.Query(ctx, "alice", &core.Query{
		TypeID:          "note",
		IncludeSubtypes: true,
		Where: []core.Condition{
			{PropertyID: "note:subject", Op: core.OpLike, Value: "al%"},
		},
	}, conn.ProjectionOptions{}, conn.Unbounded)
	require.NoError(t, err)
	require.Len(t, list.Objects, 1)
	require.Equal(t, "alpha", list.Objects[0].Object.Core().Name)
}

func TestRelationshipsAndProjection(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	src, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
		FolderID: s.RootID(), Properties: docProps("note", "src"),
	})
	require.NoError(t, err)
	dst, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
		FolderID: s.RootID(), Properties: docProps("note", "dst"),
	})
	require.NoError(t, err)

	relID, err := c.CreateRelationship(ctx, "alice", conn.CreateRelationshipRequest{
		Properties: docProps("cmis:relationship", "refers"),
		SourceID:   src,
		TargetID:   dst,
	})
	require.NoError(t, err)

	list, err := c.GetObjectRelationships(ctx, "alice", src, core.RelationshipSource, "", conn.Unbounded)
	require.NoError(t, err)
	require.Len(t, list.Objects, 1)
	require.Equal(t, relID, list.Objects[0].Object.Core().ID)
	require.Equal(t, dst, list.Objects[0].Properties.StringValue(core.PropTargetID))

	data, err := c.GetObject(ctx, "alice", src, conn.ProjectionOptions{IncludeRelationships: core.RelationshipBoth})
	require.NoError(t, err)
	require.Len(t, data.Relationships, 1)
}

func TestTypeManagement(t *testing.T) {
	c, _ := newConn(t)
	ctx := context.Background()

	bases, _, err := c.GetTypeChildren(ctx, "alice", "", conn.Unbounded)
	require.NoError(t, err)
	require.Len(t, bases, 4)

	registerNoteType(t, c)

	def, err := c.GetTypeDefinition(ctx, "alice", "note")
	require.NoError(t, err)
	require.Equal(t, "cmis:document", def.ParentID)

	t.Run("type with instances is pinned", func(t *testing.T) {
		root, err := c.RepositoryInfo(ctx, "alice")
		require.NoError(t, err)
		_, err = c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
			FolderID: root.RootFolderID, Properties: docProps("note", "pin"),
		})
		require.NoError(t, err)

		err = c.DeleteType(ctx, "alice", "note")
		require.ErrorIs(t, err, core.ErrConstraint)
	})

	t.Run("base types are fixed", func(t *testing.T) {
		err := c.DeleteType(ctx, "alice", "cmis:document")
		require.ErrorIs(t, err, core.ErrConstraint)
	})
}

func TestGetObjectByPath(t *testing.T) {
	c, s := newConn(t)
	ctx := context.Background()
	registerNoteType(t, c)

	folderID, err := c.CreateFolder(ctx, "alice", conn.CreateFolderRequest{
		ParentID: s.RootID(), Properties: docProps("cmis:folder", "docs"),
	})
	require.NoError(t, err)
	docID, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
		FolderID: folderID, Properties: docProps("note", "memo"),
	})
	require.NoError(t, err)

	data, err := c.GetObjectByPath(ctx, "alice", "/docs/memo", conn.ProjectionOptions{})
	require.NoError(t, err)
	require.Equal(t, docID, data.Object.Core().ID)

	_, err = c.GetObjectByPath(ctx, "alice", "docs/memo", conn.ProjectionOptions{})
	require.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = c.GetObjectByPath(ctx, "alice", "/docs/gone", conn.ProjectionOptions{})
	require.ErrorIs(t, err, core.ErrNotFound)
}
