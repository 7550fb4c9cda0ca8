package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/pkg/core"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s := New(Config{RepositoryID: "test-repo", Name: "test"})
	require.NoError(t, s.AddType(context.Background(), &core.TypeDefinition{
		ID:          "custom:doc",
		Base:        core.BaseDocument,
		Versionable: true,
		Fileable:    true,
		ContentStream: core.ContentAllowed,
	}))
	return s
}

func makeDoc(name string) *core.Document {
	return &core.Document{Entry: core.Entry{
		TypeID:     "custom:doc",
		Name:       name,
		Properties: core.Properties{},
	}, IsMajorVersion: true}
}

func text(s string) *core.ContentStream {
	return &core.ContentStream{FileName: s, MimeType: "text/plain", Length: int64(len(s)), Reader: strings.NewReader(s)}
}

func TestStoreCreateAndGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.CreateDocument(ctx, makeDoc("a"), s.RootID(), text("hello"))
	require.NoError(t, err)

	obj, err := s.GetObject(ctx, id)
	require.NoError(t, err)
	doc, ok := obj.(*core.Document)
	require.True(t, ok)
	require.Equal(t, "a", doc.Name)
	require.True(t, doc.IsLatestVersion)
	require.Equal(t, "1.0", doc.VersionLabel)
	require.True(t, doc.HasContent)
	require.NotEmpty(t, doc.ChangeToken)
	require.Equal(t, []string{s.RootID()}, doc.Parents)

	cs, err := s.GetContentStream(ctx, id)
	require.NoError(t, err)
	data, err := io.ReadAll(cs.Reader)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	_, err = s.GetObject(ctx, "nope")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestStoreNameUniquenessPerFolder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.CreateDocument(ctx, makeDoc("a"), s.RootID(), nil)
	require.NoError(t, err)
	_, err = s.CreateDocument(ctx, makeDoc("a"), s.RootID(), nil)
	require.ErrorIs(t, err, core.ErrNameConstraint)
}

func TestStorePathResolution(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	f1, err := s.CreateFolder(ctx, &core.Folder{Entry: core.Entry{TypeID: "cmis:folder", Name: "projects"}}, s.RootID())
	require.NoError(t, err)
	f2, err := s.CreateFolder(ctx, &core.Folder{Entry: core.Entry{TypeID: "cmis:folder", Name: "alpha"}}, f1)
	require.NoError(t, err)
	docID, err := s.CreateDocument(ctx, makeDoc("readme"), f2, nil)
	require.NoError(t, err)

	obj, err := s.GetObjectByPath(ctx, "/projects/alpha")
	require.NoError(t, err)
	require.Equal(t, f2, obj.Core().ID)
	require.Equal(t, "/projects/alpha", obj.(*core.Folder).Path)

	obj, err = s.GetObjectByPath(ctx, "/projects/alpha/readme")
	require.NoError(t, err)
	require.Equal(t, docID, obj.Core().ID)

	root, err := s.GetObjectByPath(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, s.RootID(), root.Core().ID)

	_, err = s.GetObjectByPath(ctx, "/projects/beta")
	require.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.GetObjectByPath(ctx, "projects")
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestStoreMoveRewritesFolderPaths(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a, err := s.CreateFolder(ctx, &core.Folder{Entry: core.Entry{TypeID: "cmis:folder", Name: "a"}}, s.RootID())
	require.NoError(t, err)
	b, err := s.CreateFolder(ctx, &core.Folder{Entry: core.Entry{TypeID: "cmis:folder", Name: "b"}}, s.RootID())
	require.NoError(t, err)
	sub, err := s.CreateFolder(ctx, &core.Folder{Entry: core.Entry{TypeID: "cmis:folder", Name: "sub"}}, a)
	require.NoError(t, err)

	require.NoError(t, s.MoveObject(ctx, a, b, s.RootID()))

	obj, err := s.GetObject(ctx, sub)
	require.NoError(t, err)
	require.Equal(t, "/b/a/sub", obj.(*core.Folder).Path)

	err = s.MoveObject(ctx, sub, b, s.RootID())
	require.ErrorIs(t, err, core.ErrInvalidArgument, "source folder must be the actual parent")
}

func TestStoreCheckoutCheckinLifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.CreateDocument(ctx, makeDoc("doc"), s.RootID(), text("v1"))
	require.NoError(t, err)

	pwc, err := s.Checkout(ctx, id, "alice")
	require.NoError(t, err)
	require.True(t, pwc.PWC)
	require.Equal(t, "alice", pwc.CheckedOutBy)

	// One PWC per series.
	_, err = s.Checkout(ctx, id, "bob")
	require.ErrorIs(t, err, core.ErrVersioning)

	pwc.Properties.SetString("cmis:name", "doc")
	newVersion, err := s.Checkin(ctx, pwc, text("v2"), true, "second")
	require.NoError(t, err)
	require.False(t, newVersion.PWC)
	require.True(t, newVersion.IsLatestVersion)
	require.Equal(t, "2.0", newVersion.VersionLabel)
	require.Equal(t, "second", newVersion.CheckinComment)

	versions, err := s.AllVersions(ctx, newVersion.VersionSeriesID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	require.False(t, versions[0].IsLatestVersion)

	// The old version may no longer be checked out.
	_, err = s.Checkout(ctx, versions[0].ID, "alice")
	require.ErrorIs(t, err, core.ErrVersioning)

	// The new version inherits the filing of the series.
	parents, err := s.Parents(ctx, newVersion.ID)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	require.Equal(t, s.RootID(), parents[0].ID)

	// Another round: the label keeps advancing one step.
	pwc, err = s.Checkout(ctx, newVersion.ID, "alice")
	require.NoError(t, err)
	minor, err := s.Checkin(ctx, pwc, nil, false, "")
	require.NoError(t, err)
	require.Equal(t, "2.1", minor.VersionLabel)
}

func TestStoreCheckedOutByFolder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	f, err := s.CreateFolder(ctx, &core.Folder{Entry: core.Entry{TypeID: "cmis:folder", Name: "drafts"}}, s.RootID())
	require.NoError(t, err)
	id, err := s.CreateDocument(ctx, makeDoc("doc"), f, nil)
	require.NoError(t, err)
	pwc, err := s.Checkout(ctx, id, "alice")
	require.NoError(t, err)

	// The PWC is unfiled; the folder scope follows the series' filing.
	scoped, err := s.CheckedOut(ctx, f)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, pwc.ID, scoped[0].ID)

	elsewhere, err := s.CheckedOut(ctx, s.RootID())
	require.NoError(t, err)
	require.Empty(t, elsewhere)
}

func TestStoreCancelCheckout(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.CreateDocument(ctx, makeDoc("doc"), s.RootID(), nil)
	require.NoError(t, err)
	pwc, err := s.Checkout(ctx, id, "alice")
	require.NoError(t, err)

	require.NoError(t, s.CancelCheckout(ctx, pwc.ID))
	_, err = s.GetObject(ctx, pwc.ID)
	require.ErrorIs(t, err, core.ErrNotFound)

	pwcs, err := s.CheckedOut(ctx, "")
	require.NoError(t, err)
	require.Empty(t, pwcs)

	err = s.CancelCheckout(ctx, id)
	require.ErrorIs(t, err, core.ErrVersioning, "cancel on a non-PWC")
}

func TestStoreDeleteGuards(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	f, err := s.CreateFolder(ctx, &core.Folder{Entry: core.Entry{TypeID: "cmis:folder", Name: "f"}}, s.RootID())
	require.NoError(t, err)
	_, err = s.CreateDocument(ctx, makeDoc("d"), f, nil)
	require.NoError(t, err)

	err = s.DeleteObject(ctx, f, true)
	require.ErrorIs(t, err, core.ErrConstraint, "non-empty folder")

	err = s.DeleteObject(ctx, s.RootID(), true)
	require.ErrorIs(t, err, core.ErrConstraint, "root folder")
}

func TestStoreDeleteTree(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	f, err := s.CreateFolder(ctx, &core.Folder{Entry: core.Entry{TypeID: "cmis:folder", Name: "f"}}, s.RootID())
	require.NoError(t, err)
	sub, err := s.CreateFolder(ctx, &core.Folder{Entry: core.Entry{TypeID: "cmis:folder", Name: "sub"}}, f)
	require.NoError(t, err)
	d, err := s.CreateDocument(ctx, makeDoc("d"), sub, nil)
	require.NoError(t, err)

	// The root is rejected before the walk starts; the subtree survives.
	_, err = s.DeleteTree(ctx, s.RootID(), true, core.UnfileDelete, false)
	require.ErrorIs(t, err, core.ErrConstraint)
	_, err = s.GetObject(ctx, d)
	require.NoError(t, err)

	failed, err := s.DeleteTree(ctx, f, true, core.UnfileDelete, false)
	require.NoError(t, err)
	require.Empty(t, failed)

	for _, id := range []string{f, sub, d} {
		_, err := s.GetObject(ctx, id)
		require.ErrorIs(t, err, core.ErrNotFound)
	}
}

func TestStoreRelationshipCascade(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a, err := s.CreateDocument(ctx, makeDoc("a"), s.RootID(), nil)
	require.NoError(t, err)
	b, err := s.CreateDocument(ctx, makeDoc("b"), s.RootID(), nil)
	require.NoError(t, err)

	relID, err := s.CreateRelationship(ctx, &core.Relationship{
		Entry:    core.Entry{TypeID: "cmis:relationship", Name: "r"},
		SourceID: a,
		TargetID: b,
	})
	require.NoError(t, err)

	rels, err := s.Relationships(ctx, a, core.RelationshipSource)
	require.NoError(t, err)
	require.Len(t, rels, 1)

	rels, err = s.Relationships(ctx, a, core.RelationshipTarget)
	require.NoError(t, err)
	require.Empty(t, rels)

	require.NoError(t, s.DeleteObject(ctx, b, true))
	_, err = s.GetObject(ctx, relID)
	require.ErrorIs(t, err, core.ErrNotFound, "relationship dies with its endpoint")
}

func TestStoreChangeLogCursor(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		id, err := s.CreateDocument(ctx, makeDoc(name), s.RootID(), nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	page, err := s.ChangeLog(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, page.Events, 2)
	require.True(t, page.HasMore)
	require.Equal(t, ids[0], page.Events[0].ObjectID)
	require.Equal(t, core.ChangeCreated, page.Events[0].Kind)

	rest, err := s.ChangeLog(ctx, page.NextToken, -1)
	require.NoError(t, err)
	require.Len(t, rest.Events, 1)
	require.False(t, rest.HasMore)
	require.Equal(t, ids[2], rest.Events[0].ObjectID)

	_, err = s.ChangeLog(ctx, "bogus-token", -1)
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestStoreQuery(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	f, err := s.CreateFolder(ctx, &core.Folder{Entry: core.Entry{TypeID: "cmis:folder", Name: "inbox"}}, s.RootID())
	require.NoError(t, err)
	a, err := s.CreateDocument(ctx, makeDoc("a"), f, nil)
	require.NoError(t, err)
	_, err = s.CreateDocument(ctx, makeDoc("b"), s.RootID(), nil)
	require.NoError(t, err)

	res, err := s.Query(ctx, &core.Query{TypeID: "custom:doc", PathGlob: "inbox/**"})
	require.NoError(t, err)
	require.Equal(t, []string{a}, res.IDs)
	require.Equal(t, 1, res.NumItems)

	res, err = s.Query(ctx, &core.Query{TypeID: "cmis:document", IncludeSubtypes: true})
	require.NoError(t, err)
	require.Len(t, res.IDs, 2)

	res, err = s.Query(ctx, &core.Query{Where: []core.Condition{{PropertyID: core.PropName, Op: core.OpLike, Value: "a%"}}})
	require.NoError(t, err)
	require.Equal(t, []string{a}, res.IDs)
}

func TestStoreSnapshotRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	f, err := s.CreateFolder(ctx, &core.Folder{Entry: core.Entry{TypeID: "cmis:folder", Name: "docs"}}, s.RootID())
	require.NoError(t, err)
	id, err := s.CreateDocument(ctx, makeDoc("a"), f, text("hello"))
	require.NoError(t, err)

	path := t.TempDir() + "/repo.yaml"
	require.NoError(t, s.SaveSnapshot(path))

	loaded, err := LoadSnapshot(path, Config{})
	require.NoError(t, err)

	obj, err := loaded.GetObject(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "a", obj.Core().Name)

	cs, err := loaded.GetContentStream(ctx, id)
	require.NoError(t, err)
	data, err := io.ReadAll(cs.Reader)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	def, err := loaded.GetTypeDefinition(ctx, "custom:doc")
	require.NoError(t, err)
	require.True(t, def.Versionable)

	byPath, err := loaded.GetObjectByPath(ctx, "/docs/a")
	require.NoError(t, err)
	require.Equal(t, id, byPath.Core().ID)
}

func TestStoreWatch(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	require.NoError(t, err)

	id, err := s.CreateDocument(context.Background(), makeDoc("a"), s.RootID(), nil)
	require.NoError(t, err)

	ev := <-ch
	require.Equal(t, core.ChangeCreated, ev.Kind)
	require.Equal(t, id, ev.ObjectID)
}
