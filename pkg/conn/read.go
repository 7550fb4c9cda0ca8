package conn

import (
	"context"

	"github.com/aretw0/strata/pkg/actions"
	"github.com/aretw0/strata/pkg/core"
)

// GetObject resolves an object by id and projects it.
func (c *Connection) GetObject(ctx context.Context, caller string, objectID string, opts ProjectionOptions) (*ObjectData, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}
	proj, err := c.newProjection(info, opts)
	if err != nil {
		return nil, err
	}
	obj, err := c.backend.GetObject(ctx, objectID)
	if err != nil {
		return nil, err
	}
	return c.project(ctx, caller, obj, proj)
}

// GetObjectByPath resolves an object by its rooted folder path.
func (c *Connection) GetObjectByPath(ctx context.Context, caller string, path string, opts ProjectionOptions) (*ObjectData, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}
	proj, err := c.newProjection(info, opts)
	if err != nil {
		return nil, err
	}
	obj, err := c.backend.GetObjectByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	return c.project(ctx, caller, obj, proj)
}

// GetAllowableActions computes the action set for one object and caller.
func (c *Connection) GetAllowableActions(ctx context.Context, caller string, objectID string) (actions.Set, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}
	obj, err := c.backend.GetObject(ctx, objectID)
	if err != nil {
		return nil, err
	}
	typ, err := c.backend.GetTypeDefinition(ctx, obj.Core().TypeID)
	if err != nil {
		return nil, err
	}
	return actions.Calculate(obj, typ, caller, info), nil
}

// GetChildren lists a folder's direct children, paginated in filing order.
func (c *Connection) GetChildren(ctx context.Context, caller string, folderID string, opts ProjectionOptions, page Page) (*ObjectList, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}
	proj, err := c.newProjection(info, opts)
	if err != nil {
		return nil, err
	}
	children, err := c.backend.Children(ctx, folderID)
	if err != nil {
		return nil, err
	}
	window, hasMore, numItems, err := paginate(children, page)
	if err != nil {
		return nil, err
	}
	return c.projectList(ctx, caller, window, proj, hasMore, numItems)
}

// GetDescendants lists everything under a folder to the given depth
// (-1 for unlimited) as a flat list, depth-first.
func (c *Connection) GetDescendants(ctx context.Context, caller string, folderID string, depth int, opts ProjectionOptions) ([]*ObjectData, error) {
	nodes, err := c.GetFolderTree(ctx, caller, folderID, depth, opts)
	if err != nil {
		return nil, err
	}
	var out []*ObjectData
	var walk func(ns []*ObjectTreeNode)
	walk = func(ns []*ObjectTreeNode) {
		for _, n := range ns {
			out = append(out, n.Data)
			walk(n.Children)
		}
	}
	walk(nodes)
	return out, nil
}

// GetFolderTree returns the subtree under a folder as nested nodes. Depth 0
// is invalid, -1 means unlimited.
func (c *Connection) GetFolderTree(ctx context.Context, caller string, folderID string, depth int, opts ProjectionOptions) ([]*ObjectTreeNode, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}
	if depth == 0 || depth < -1 {
		return nil, core.Errorf(core.ErrInvalidArgument, "depth must be -1 or positive, got %d", depth)
	}
	proj, err := c.newProjection(info, opts)
	if err != nil {
		return nil, err
	}
	if _, err := c.resolveFolder(ctx, folderID); err != nil {
		return nil, err
	}
	return c.tree(ctx, caller, folderID, depth, proj)
}

func (c *Connection) tree(ctx context.Context, caller string, folderID string, depth int, proj *projection) ([]*ObjectTreeNode, error) {
	children, err := c.backend.Children(ctx, folderID)
	if err != nil {
		return nil, err
	}
	var nodes []*ObjectTreeNode
	for _, child := range children {
		data, err := c.project(ctx, caller, child, proj)
		if err != nil {
			return nil, err
		}
		node := &ObjectTreeNode{Data: data}
		if f, ok := child.(*core.Folder); ok && depth != 1 {
			next := depth
			if next > 0 {
				next--
			}
			node.Children, err = c.tree(ctx, caller, f.ID, next, proj)
			if err != nil {
				return nil, err
			}
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// GetObjectParents lists the folders an object is filed in.
func (c *Connection) GetObjectParents(ctx context.Context, caller string, objectID string, opts ProjectionOptions) ([]*ObjectData, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}
	proj, err := c.newProjection(info, opts)
	if err != nil {
		return nil, err
	}
	obj, err := c.backend.GetObject(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if f, ok := obj.(*core.Folder); ok && f.IsRoot() {
		return nil, core.Errorf(core.ErrInvalidArgument, "the root folder has no parent")
	}
	parents, err := c.backend.Parents(ctx, objectID)
	if err != nil {
		return nil, err
	}
	out := make([]*ObjectData, 0, len(parents))
	for _, parent := range parents {
		data, err := c.project(ctx, caller, parent, proj)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

// GetFolderParent returns a folder's single parent. The root folder has
// none.
func (c *Connection) GetFolderParent(ctx context.Context, caller string, folderID string, opts ProjectionOptions) (*ObjectData, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}
	proj, err := c.newProjection(info, opts)
	if err != nil {
		return nil, err
	}
	f, err := c.resolveFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if f.IsRoot() {
		return nil, core.Errorf(core.ErrInvalidArgument, "the root folder has no parent")
	}
	parent, err := c.backend.GetObject(ctx, f.ParentID)
	if err != nil {
		return nil, err
	}
	return c.project(ctx, caller, parent, proj)
}

// GetCheckedOutDocs lists private working copies, repository-wide or
// under one folder.
func (c *Connection) GetCheckedOutDocs(ctx context.Context, caller string, folderID string, opts ProjectionOptions, page Page) (*ObjectList, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}
	proj, err := c.newProjection(info, opts)
	if err != nil {
		return nil, err
	}
	pwcs, err := c.backend.CheckedOut(ctx, folderID)
	if err != nil {
		return nil, err
	}
	window, hasMore, numItems, err := paginate(pwcs, page)
	if err != nil {
		return nil, err
	}
	objs := make([]core.Object, len(window))
	for i, d := range window {
		objs[i] = d
	}
	return c.projectList(ctx, caller, objs, proj, hasMore, numItems)
}

// GetObjectRelationships lists the relationships an object participates
// in, filtered by direction and optionally by relationship type.
func (c *Connection) GetObjectRelationships(ctx context.Context, caller string, objectID string, direction core.RelationshipDirection, typeID string, page Page) (*ObjectList, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}
	if direction == "" {
		direction = core.RelationshipSource
	}
	if _, err := c.backend.GetObject(ctx, objectID); err != nil {
		return nil, err
	}
	rels, err := c.backend.Relationships(ctx, objectID, direction)
	if err != nil {
		return nil, err
	}
	if typeID != "" {
		kept := rels[:0]
		for _, r := range rels {
			if r.TypeID == typeID {
				kept = append(kept, r)
			}
		}
		rels = kept
	}
	window, hasMore, numItems, err := paginate(rels, page)
	if err != nil {
		return nil, err
	}
	proj, err := c.newProjection(info, ProjectionOptions{})
	if err != nil {
		return nil, err
	}
	objs := make([]core.Object, len(window))
	for i, r := range window {
		objs[i] = r
	}
	return c.projectList(ctx, caller, objs, proj, hasMore, numItems)
}

// GetContentChanges reads the change log from a token cursor. The returned
// next token resumes where this call stopped.
func (c *Connection) GetContentChanges(ctx context.Context, caller string, changeToken string, maxItems int) (*core.ChangeList, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !info.Capabilities.ChangeLog {
		return nil, core.Errorf(core.ErrNotSupported, "repository does not keep a change log")
	}
	return c.backend.ChangeLog(ctx, changeToken, maxItems)
}

// Query runs a structured query and projects the hits. Objects deleted
// between matching and assembly are skipped, not errors.
func (c *Connection) Query(ctx context.Context, caller string, q *core.Query, opts ProjectionOptions, page Page) (*ObjectList, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !info.Capabilities.Query {
		return nil, core.Errorf(core.ErrNotSupported, "repository does not support query")
	}
	if q == nil {
		return nil, core.Errorf(core.ErrInvalidArgument, "query must be provided")
	}
	proj, err := c.newProjection(info, opts)
	if err != nil {
		return nil, err
	}
	result, err := c.backend.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	window, hasMore, numItems, err := paginate(result.IDs, page)
	if err != nil {
		return nil, err
	}
	list := &ObjectList{HasMoreItems: hasMore, NumItems: numItems}
	for _, id := range window {
		obj, err := c.backend.GetObject(ctx, id)
		if err != nil {
			if core.HasKind(err, core.ErrNotFound) {
				c.debug("query hit vanished before assembly", "id", id)
				continue
			}
			return nil, err
		}
		data, err := c.project(ctx, caller, obj, proj)
		if err != nil {
			return nil, err
		}
		list.Objects = append(list.Objects, data)
	}
	return list, nil
}

func (c *Connection) projectList(ctx context.Context, caller string, objs []core.Object, proj *projection, hasMore bool, numItems int) (*ObjectList, error) {
	list := &ObjectList{HasMoreItems: hasMore, NumItems: numItems}
	for _, obj := range objs {
		data, err := c.project(ctx, caller, obj, proj)
		if err != nil {
			return nil, err
		}
		list.Objects = append(list.Objects, data)
	}
	return list, nil
}

// GetTypeDefinition resolves one type definition.
func (c *Connection) GetTypeDefinition(ctx context.Context, caller string, typeID string) (*core.TypeDefinition, error) {
	if _, err := c.begin(ctx, caller); err != nil {
		return nil, err
	}
	return c.backend.GetTypeDefinition(ctx, typeID)
}

// GetTypeChildren lists the direct subtypes of a type (base types for an
// empty id), paginated.
func (c *Connection) GetTypeChildren(ctx context.Context, caller string, typeID string, page Page) ([]*core.TypeDefinition, bool, error) {
	if _, err := c.begin(ctx, caller); err != nil {
		return nil, false, err
	}
	types, err := c.backend.GetTypeChildren(ctx, typeID)
	if err != nil {
		return nil, false, err
	}
	window, hasMore, _, err := paginate(types, page)
	return window, hasMore, err
}

// GetTypeDescendants returns the subtype tree under a type to the given
// depth (-1 unlimited).
func (c *Connection) GetTypeDescendants(ctx context.Context, caller string, typeID string, depth int) ([]*core.TypeDefinition, error) {
	if _, err := c.begin(ctx, caller); err != nil {
		return nil, err
	}
	return c.backend.GetTypeDescendants(ctx, typeID, depth)
}

// CreateType registers a new subtype.
func (c *Connection) CreateType(ctx context.Context, caller string, def *core.TypeDefinition) (*core.TypeDefinition, error) {
	if _, err := c.begin(ctx, caller); err != nil {
		return nil, err
	}
	if err := c.backend.AddType(ctx, def); err != nil {
		return nil, err
	}
	c.debug("type created", "id", def.ID, "caller", caller)
	return c.backend.GetTypeDefinition(ctx, def.ID)
}

// DeleteType removes a subtype with no subtypes and no live instances.
func (c *Connection) DeleteType(ctx context.Context, caller string, typeID string) error {
	if _, err := c.begin(ctx, caller); err != nil {
		return err
	}
	return c.backend.RemoveType(ctx, typeID)
}
