package memory

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/aretw0/strata/pkg/core"
)

// GetObject implements core.Backend.
func (s *Store) GetObject(ctx context.Context, id string) (core.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return cloneObject(obj), nil
}

// GetObjectByPath implements core.Backend. Paths are slash-separated and
// rooted; "/" resolves to the root folder.
func (s *Store) GetObjectByPath(ctx context.Context, path string) (core.Object, error) {
	if path == "" || path[0] != '/' {
		return nil, core.Errorf(core.ErrInvalidArgument, "path %q is not rooted", path)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current, _ := s.get(s.rootID)
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment == "" {
			continue
		}
		folder, ok := current.(*core.Folder)
		if !ok {
			return nil, core.Errorf(core.ErrNotFound, "path %q does not resolve", path)
		}
		var next core.Object
		for _, childID := range s.children[folder.ID] {
			child, err := s.get(childID)
			if err != nil {
				continue
			}
			if child.Core().Name == segment {
				next = child
				break
			}
		}
		if next == nil {
			return nil, core.Errorf(core.ErrNotFound, "path %q does not resolve", path)
		}
		current = next
	}
	return cloneObject(current), nil
}

// CreateDocument implements core.Backend. The connection has already
// validated type constraints; the store enforces name uniqueness and owns
// id, token and series assignment.
func (s *Store) CreateDocument(ctx context.Context, doc *core.Document, folderID string, content *core.ContentStream) (string, error) {
	data, err := readContent(content)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if folderID != "" {
		if _, err := s.folder(folderID); err != nil {
			return "", err
		}
		if s.nameTaken(folderID, doc.Name, "") {
			return "", core.Errorf(core.ErrNameConstraint, "name %q already exists in folder %q", doc.Name, folderID)
		}
	}

	stored := cloneDocument(doc)
	stored.ID = uuid.NewString()
	if stored.VersionSeriesID == "" {
		stored.VersionSeriesID = uuid.NewString()
	}
	if stored.VersionLabel == "" {
		if stored.IsMajorVersion {
			stored.VersionLabel = "1.0"
		} else {
			stored.VersionLabel = "0.1"
		}
	}
	stored.IsLatestVersion = true
	now := s.clock()
	stored.CreatedAt, stored.ModifiedAt = now, now
	stored.ChangeToken = s.newToken()
	stored.Parents = nil
	if stored.Properties == nil {
		stored.Properties = core.Properties{}
	}

	if content != nil {
		stored.HasContent = true
		stored.ContentMimeType = content.MimeType
		stored.ContentFileName = content.FileName
		stored.ContentLength = int64(len(data))
		s.content[stored.ID] = data
	}

	s.objects[stored.ID] = stored
	s.series[stored.VersionSeriesID] = append(s.series[stored.VersionSeriesID], stored.ID)
	if folderID != "" {
		s.file(folderID, stored.ID)
	}
	s.bumpTypeCount(stored.TypeID, 1)
	s.record(core.ChangeCreated, stored.ID, nil)
	return stored.ID, nil
}

// CopyDocument implements core.Backend: a new document in a new version
// series, with doc's state layered over the source's content.
func (s *Store) CopyDocument(ctx context.Context, sourceID string, doc *core.Document, folderID string) (string, error) {
	s.mu.RLock()
	src, err := s.get(sourceID)
	if err != nil {
		s.mu.RUnlock()
		return "", err
	}
	srcDoc, ok := src.(*core.Document)
	if !ok {
		s.mu.RUnlock()
		return "", core.Errorf(core.ErrInvalidArgument, "source %q is not a document", sourceID)
	}
	copied := cloneDocument(srcDoc)
	data, hasData := s.content[sourceID]
	data = append([]byte(nil), data...)
	s.mu.RUnlock()

	copied.VersionSeriesID = ""
	copied.PWC = false
	copied.CheckedOutBy = ""
	copied.TypeID = doc.TypeID
	if doc.Name != "" {
		copied.Name = doc.Name
	}
	for id, p := range doc.Properties {
		copied.Properties[id] = p
	}
	copied.ACL = doc.ACL
	copied.Policies = doc.Policies
	copied.IsMajorVersion = doc.IsMajorVersion
	copied.VersionLabel = ""

	var stream *core.ContentStream
	if hasData {
		stream = &core.ContentStream{
			FileName: copied.ContentFileName,
			MimeType: copied.ContentMimeType,
			Length:   int64(len(data)),
			Reader:   bytes.NewReader(data),
		}
	}
	return s.CreateDocument(ctx, copied, folderID, stream)
}

// CreateFolder implements core.Backend.
func (s *Store) CreateFolder(ctx context.Context, f *core.Folder, parentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := s.folder(parentID)
	if err != nil {
		return "", err
	}
	if s.nameTaken(parentID, f.Name, "") {
		return "", core.Errorf(core.ErrNameConstraint, "name %q already exists in folder %q", f.Name, parentID)
	}

	stored := cloneFolder(f)
	stored.ID = uuid.NewString()
	stored.ParentID = parentID
	stored.Path = joinPath(parent.Path, stored.Name)
	now := s.clock()
	stored.CreatedAt, stored.ModifiedAt = now, now
	stored.ChangeToken = s.newToken()
	stored.Parents = nil
	if stored.Properties == nil {
		stored.Properties = core.Properties{}
	}

	s.objects[stored.ID] = stored
	s.file(parentID, stored.ID)
	s.bumpTypeCount(stored.TypeID, 1)
	s.record(core.ChangeCreated, stored.ID, nil)
	return stored.ID, nil
}

// CreatePolicy implements core.Backend.
func (s *Store) CreatePolicy(ctx context.Context, p *core.Policy, folderID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if folderID != "" {
		if _, err := s.folder(folderID); err != nil {
			return "", err
		}
		if s.nameTaken(folderID, p.Name, "") {
			return "", core.Errorf(core.ErrNameConstraint, "name %q already exists in folder %q", p.Name, folderID)
		}
	}

	stored := cloneObject(p).(*core.Policy)
	stored.ID = uuid.NewString()
	now := s.clock()
	stored.CreatedAt, stored.ModifiedAt = now, now
	stored.ChangeToken = s.newToken()
	stored.Parents = nil
	if stored.Properties == nil {
		stored.Properties = core.Properties{}
	}

	s.objects[stored.ID] = stored
	if folderID != "" {
		s.file(folderID, stored.ID)
	}
	s.bumpTypeCount(stored.TypeID, 1)
	s.record(core.ChangeCreated, stored.ID, nil)
	return stored.ID, nil
}

// CreateRelationship implements core.Backend. Endpoint existence is checked
// here as well as in the connection, since a relationship with dangling ends
// corrupts every later traversal.
func (s *Store) CreateRelationship(ctx context.Context, r *core.Relationship) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(r.SourceID); err != nil {
		return "", err
	}
	if _, err := s.get(r.TargetID); err != nil {
		return "", err
	}

	stored := cloneObject(r).(*core.Relationship)
	stored.ID = uuid.NewString()
	now := s.clock()
	stored.CreatedAt, stored.ModifiedAt = now, now
	stored.ChangeToken = s.newToken()
	if stored.Properties == nil {
		stored.Properties = core.Properties{}
	}

	s.objects[stored.ID] = stored
	s.bumpTypeCount(stored.TypeID, 1)
	s.record(core.ChangeCreated, stored.ID, nil)
	return stored.ID, nil
}

// UpdateObject implements core.Backend: replaces stored state and bumps the
// change token. An ACL change is logged as a security event.
func (s *Store) UpdateObject(ctx context.Context, obj core.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.get(obj.Core().ID)
	if err != nil {
		return err
	}
	if prev.BaseType() != obj.BaseType() {
		return core.Errorf(core.ErrInvalidArgument, "object %q cannot change base type", obj.Core().ID)
	}

	stored := cloneObject(obj)
	entry := stored.Core()
	entry.ModifiedAt = s.clock()
	entry.ChangeToken = s.newToken()

	kind := core.ChangeUpdated
	if !sameACL(prev.Core().ACL, entry.ACL) {
		kind = core.ChangeSecurity
	}

	s.objects[entry.ID] = stored
	s.record(kind, entry.ID, nil)
	return nil
}

// DeleteObject implements core.Backend. Deleting a document with
// allVersions removes its whole series; deleting the latest version promotes
// the previous one. Relationships referencing a deleted object are removed
// with it.
func (s *Store) DeleteObject(ctx context.Context, id string, allVersions bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id, allVersions)
}

func (s *Store) deleteLocked(id string, allVersions bool) error {
	obj, err := s.get(id)
	if err != nil {
		return err
	}

	switch v := obj.(type) {
	case *core.Folder:
		if v.IsRoot() {
			return core.Errorf(core.ErrConstraint, "the root folder cannot be deleted")
		}
		if len(s.children[v.ID]) > 0 {
			return core.Errorf(core.ErrConstraint, "folder %q is not empty", v.ID)
		}
		s.drop(v.ID)
	case *core.Document:
		if allVersions {
			members := append([]string(nil), s.series[v.VersionSeriesID]...)
			for _, memberID := range members {
				s.drop(memberID)
			}
			delete(s.series, v.VersionSeriesID)
		} else {
			s.drop(v.ID)
			remaining := s.series[v.VersionSeriesID]
			if len(remaining) == 0 {
				delete(s.series, v.VersionSeriesID)
			} else if v.IsLatestVersion {
				if last, err := s.get(remaining[len(remaining)-1]); err == nil {
					if d, ok := last.(*core.Document); ok {
						d.IsLatestVersion = true
					}
				}
			}
		}
	default:
		s.drop(id)
	}
	return nil
}

// drop removes one object and everything hanging off it. Callers hold s.mu.
func (s *Store) drop(id string) {
	obj, ok := s.objects[id]
	if !ok {
		return
	}
	entry := obj.Core()

	for _, parentID := range entry.Parents {
		s.unfileLocked(parentID, id)
	}
	if f, ok := obj.(*core.Folder); ok && f.ParentID != "" {
		s.unfileLocked(f.ParentID, id)
	}
	if d, ok := obj.(*core.Document); ok {
		s.series[d.VersionSeriesID] = remove(s.series[d.VersionSeriesID], id)
	}
	delete(s.children, id)
	delete(s.content, id)
	delete(s.renditions, id)
	delete(s.objects, id)
	s.bumpTypeCount(entry.TypeID, -1)

	// Cascade: relationships with a dangling endpoint go too.
	for _, rel := range s.relationshipsLocked() {
		if rel.SourceID == id || rel.TargetID == id {
			delete(s.objects, rel.ID)
			s.bumpTypeCount(rel.TypeID, -1)
			s.record(core.ChangeDeleted, rel.ID, nil)
		}
	}
	s.record(core.ChangeDeleted, id, nil)
}

// DeleteTree implements core.Backend: depth-first subtree removal honoring
// the unfile mode. Returns the ids that could not be deleted.
func (s *Store) DeleteTree(ctx context.Context, folderID string, allVersions bool, unfile core.UnfileMode, continueOnFailure bool) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, err := s.folder(folderID)
	if err != nil {
		return nil, err
	}
	// Reject up front: the walk deletes children before it would reach the
	// undeletable root.
	if folder.IsRoot() {
		return nil, core.Errorf(core.ErrConstraint, "the root folder cannot be deleted")
	}

	var failed []string
	var walk func(id string) bool
	walk = func(id string) bool {
		obj, err := s.get(id)
		if err != nil {
			return true
		}
		switch v := obj.(type) {
		case *core.Folder:
			for _, childID := range append([]string(nil), s.children[v.ID]...) {
				if !walk(childID) && !continueOnFailure {
					return false
				}
			}
			if err := s.deleteLocked(v.ID, allVersions); err != nil {
				failed = append(failed, v.ID)
				return false
			}
			return true
		default:
			entry := obj.Core()
			switch unfile {
			case core.UnfileKeep:
				s.unfileLocked(folderOf(entry, folderID), id)
				return true
			case core.UnfileDeleteSingleFiled:
				if len(entry.Parents) > 1 {
					s.unfileLocked(folderOf(entry, folderID), id)
					return true
				}
			}
			if err := s.deleteLocked(id, allVersions); err != nil {
				failed = append(failed, id)
				return false
			}
			return true
		}
	}

	walk(folderID)
	return failed, nil
}

// MoveObject implements core.Backend.
func (s *Store) MoveObject(ctx context.Context, id, targetFolderID, sourceFolderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, err := s.get(id)
	if err != nil {
		return err
	}
	target, err := s.folder(targetFolderID)
	if err != nil {
		return err
	}
	if s.nameTaken(targetFolderID, obj.Core().Name, id) {
		return core.Errorf(core.ErrNameConstraint, "name %q already exists in folder %q", obj.Core().Name, targetFolderID)
	}

	if f, ok := obj.(*core.Folder); ok {
		if f.ParentID != sourceFolderID {
			return core.Errorf(core.ErrInvalidArgument, "folder %q is not filed in %q", id, sourceFolderID)
		}
		s.unfileLocked(sourceFolderID, id)
		f.ParentID = targetFolderID
		s.file(targetFolderID, id)
		s.rewritePaths(f, target.Path)
	} else {
		entry := obj.Core()
		if !contains(entry.Parents, sourceFolderID) {
			return core.Errorf(core.ErrInvalidArgument, "object %q is not filed in %q", id, sourceFolderID)
		}
		s.unfileLocked(sourceFolderID, id)
		s.file(targetFolderID, id)
	}

	obj.Core().ModifiedAt = s.clock()
	obj.Core().ChangeToken = s.newToken()
	s.record(core.ChangeUpdated, id, nil)
	return nil
}

// FileObject implements core.Backend, adding a filing without touching
// existing ones.
func (s *Store) FileObject(ctx context.Context, id, folderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, err := s.get(id)
	if err != nil {
		return err
	}
	if _, isFolder := obj.(*core.Folder); isFolder {
		return core.Errorf(core.ErrInvalidArgument, "folders cannot be multifiled")
	}
	if _, err := s.folder(folderID); err != nil {
		return err
	}
	if contains(obj.Core().Parents, folderID) {
		return nil
	}
	if s.nameTaken(folderID, obj.Core().Name, id) {
		return core.Errorf(core.ErrNameConstraint, "name %q already exists in folder %q", obj.Core().Name, folderID)
	}
	s.file(folderID, id)
	s.record(core.ChangeUpdated, id, nil)
	return nil
}

// UnfileObject implements core.Backend. An empty folderID unfiles the
// object from every folder.
func (s *Store) UnfileObject(ctx context.Context, id, folderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, err := s.get(id)
	if err != nil {
		return err
	}
	if _, isFolder := obj.(*core.Folder); isFolder {
		return core.Errorf(core.ErrInvalidArgument, "folders cannot be unfiled")
	}

	entry := obj.Core()
	if folderID == "" {
		for _, parentID := range append([]string(nil), entry.Parents...) {
			s.unfileLocked(parentID, id)
		}
	} else {
		if !contains(entry.Parents, folderID) {
			return core.Errorf(core.ErrInvalidArgument, "object %q is not filed in %q", id, folderID)
		}
		s.unfileLocked(folderID, id)
	}
	s.record(core.ChangeUpdated, id, nil)
	return nil
}

// Children implements core.Backend, in filing order.
func (s *Store) Children(ctx context.Context, folderID string) ([]core.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.folder(folderID); err != nil {
		return nil, err
	}
	out := make([]core.Object, 0, len(s.children[folderID]))
	for _, childID := range s.children[folderID] {
		if child, err := s.get(childID); err == nil {
			out = append(out, cloneObject(child))
		}
	}
	return out, nil
}

// Parents implements core.Backend.
func (s *Store) Parents(ctx context.Context, id string) ([]*core.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.get(id)
	if err != nil {
		return nil, err
	}

	var parentIDs []string
	if f, ok := obj.(*core.Folder); ok {
		if f.ParentID != "" {
			parentIDs = []string{f.ParentID}
		}
	} else {
		parentIDs = obj.Core().Parents
	}

	out := make([]*core.Folder, 0, len(parentIDs))
	for _, pid := range parentIDs {
		parent, err := s.folder(pid)
		if err != nil {
			return nil, core.Wrap(core.ErrStorage, err, "parent index for %q is inconsistent", id)
		}
		out = append(out, cloneFolder(parent))
	}
	return out, nil
}

// Relationships implements core.Backend.
func (s *Store) Relationships(ctx context.Context, id string, direction core.RelationshipDirection) ([]*core.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.get(id); err != nil {
		return nil, err
	}

	var out []*core.Relationship
	for _, rel := range s.relationshipsLocked() {
		match := false
		switch direction {
		case core.RelationshipSource:
			match = rel.SourceID == id
		case core.RelationshipTarget:
			match = rel.TargetID == id
		case core.RelationshipBoth:
			match = rel.SourceID == id || rel.TargetID == id
		}
		if match {
			out = append(out, cloneObject(rel).(*core.Relationship))
		}
	}
	return out, nil
}

// --- helpers ---

func (s *Store) folder(id string) (*core.Folder, error) {
	obj, err := s.get(id)
	if err != nil {
		return nil, err
	}
	f, ok := obj.(*core.Folder)
	if !ok {
		return nil, core.Errorf(core.ErrInvalidArgument, "object %q is not a folder", id)
	}
	return f, nil
}

func (s *Store) nameTaken(folderID, name, excludeID string) bool {
	if name == "" {
		return false
	}
	for _, childID := range s.children[folderID] {
		if childID == excludeID {
			continue
		}
		if child, err := s.get(childID); err == nil && child.Core().Name == name {
			return true
		}
	}
	return false
}

// file adds an object to a folder's child list and parent set. Callers hold
// s.mu.
func (s *Store) file(folderID, id string) {
	s.children[folderID] = append(s.children[folderID], id)
	obj, err := s.get(id)
	if err != nil {
		return
	}
	if _, isFolder := obj.(*core.Folder); isFolder {
		return
	}
	entry := obj.Core()
	if !contains(entry.Parents, folderID) {
		entry.Parents = append(entry.Parents, folderID)
	}
}

func (s *Store) unfileLocked(folderID, id string) {
	s.children[folderID] = remove(s.children[folderID], id)
	if obj, err := s.get(id); err == nil {
		entry := obj.Core()
		entry.Parents = remove(entry.Parents, folderID)
	}
}

// rewritePaths recomputes the path of a moved folder and its subtree.
// Callers hold s.mu.
func (s *Store) rewritePaths(f *core.Folder, parentPath string) {
	f.Path = joinPath(parentPath, f.Name)
	for _, childID := range s.children[f.ID] {
		if child, err := s.get(childID); err == nil {
			if sub, ok := child.(*core.Folder); ok {
				s.rewritePaths(sub, f.Path)
			}
		}
	}
}

func (s *Store) relationshipsLocked() map[string]*core.Relationship {
	out := make(map[string]*core.Relationship)
	for id, obj := range s.objects {
		if rel, ok := obj.(*core.Relationship); ok {
			out[id] = rel
		}
	}
	return out
}

func folderOf(entry *core.Entry, fallback string) string {
	if contains(entry.Parents, fallback) {
		return fallback
	}
	if len(entry.Parents) > 0 {
		return entry.Parents[0]
	}
	return fallback
}

func joinPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func remove(xs []string, x string) []string {
	out := xs[:0]
	for _, v := range xs {
		if v != x {
			out = append(out, v)
		}
	}
	return out
}

func sameACL(a, b core.ACL) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Principal != b[i].Principal || len(a[i].Permissions) != len(b[i].Permissions) {
			return false
		}
		for j := range a[i].Permissions {
			if a[i].Permissions[j] != b[i].Permissions[j] {
				return false
			}
		}
	}
	return true
}

func readContent(content *core.ContentStream) ([]byte, error) {
	if content == nil || content.Reader == nil {
		return nil, nil
	}
	data, err := io.ReadAll(content.Reader)
	if err != nil {
		return nil, core.Wrap(core.ErrStorage, err, "reading content stream")
	}
	return data, nil
}
