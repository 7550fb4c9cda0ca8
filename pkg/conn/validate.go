package conn

import (
	"context"

	"github.com/aretw0/strata/pkg/core"
)

// resolveType pulls the target type out of the distinguished objectTypeId
// property. Its absence is a caller error, not a constraint.
func (c *Connection) resolveType(ctx context.Context, props core.Properties) (*core.TypeDefinition, error) {
	if props == nil {
		return nil, core.Errorf(core.ErrInvalidArgument, "properties must be provided")
	}
	typeID := props.StringValue(core.PropObjectTypeID)
	if typeID == "" {
		return nil, core.Errorf(core.ErrInvalidArgument, "property %s is missing", core.PropObjectTypeID)
	}
	return c.backend.GetTypeDefinition(ctx, typeID)
}

// resolveFolder resolves an id that must name a folder.
func (c *Connection) resolveFolder(ctx context.Context, folderID string) (*core.Folder, error) {
	obj, err := c.backend.GetObject(ctx, folderID)
	if err != nil {
		return nil, err
	}
	folder, ok := obj.(*core.Folder)
	if !ok {
		return nil, core.Errorf(core.ErrInvalidArgument, "object %q is not a folder", folderID)
	}
	return folder, nil
}

// checkParent verifies a creation target: the parent must exist, be a
// folder, and allow the child's type; the type must be fileable at all. A
// missing parent id instead requires the unfiling capability.
func (c *Connection) checkParent(ctx context.Context, info *core.RepositoryInfo, typ *core.TypeDefinition, folderID string) (*core.Folder, error) {
	if folderID == "" {
		if !info.Capabilities.Unfiling {
			return nil, core.Errorf(core.ErrConstraint, "repository does not support unfiled objects")
		}
		return nil, nil
	}
	folder, err := c.resolveFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if !typ.Fileable {
		return nil, core.Errorf(core.ErrConstraint, "type %q is not fileable", typ.ID)
	}
	if !folder.AllowsChildType(typ.ID) {
		return nil, core.Errorf(core.ErrConstraint, "type %q is not allowed in folder %q", typ.ID, folderID)
	}
	return folder, nil
}

// checkACLDeltas validates add/remove ACLs against the repository's ACL
// capability, the type's controllability and the declared permission names.
func (c *Connection) checkACLDeltas(info *core.RepositoryInfo, typ *core.TypeDefinition, add, remove core.ACL) error {
	if len(add) == 0 && len(remove) == 0 {
		return nil
	}
	if info.ACLCapability != core.ACLManage {
		return core.Errorf(core.ErrNotSupported, "repository does not support ACL management")
	}
	if !typ.ControllableACL {
		return core.Errorf(core.ErrConstraint, "type %q is not ACL-controllable", typ.ID)
	}
	for _, acl := range []core.ACL{add, remove} {
		for _, ace := range acl {
			if ace.Principal == "" {
				return core.Errorf(core.ErrConstraint, "ACL entry without principal")
			}
			for _, perm := range ace.Permissions {
				if !info.SupportsPermission(perm) {
					return core.Errorf(core.ErrConstraint, "permission %q is not supported by this repository", perm)
				}
			}
		}
	}
	return nil
}

// checkPolicies validates a policy id list: the type must be
// policy-controllable and every id must resolve to a Policy object.
func (c *Connection) checkPolicies(ctx context.Context, typ *core.TypeDefinition, policyIDs []string) error {
	if len(policyIDs) == 0 {
		return nil
	}
	if !typ.ControllablePolicy {
		return core.Errorf(core.ErrConstraint, "type %q is not policy-controllable", typ.ID)
	}
	for _, id := range policyIDs {
		if id == "" {
			return core.Errorf(core.ErrInvalidArgument, "empty policy id")
		}
		obj, err := c.backend.GetObject(ctx, id)
		if err != nil {
			return err
		}
		if _, ok := obj.(*core.Policy); !ok {
			return core.Errorf(core.ErrInvalidArgument, "object %q is not a policy", id)
		}
	}
	return nil
}

// checkContent validates a content stream against the type's content
// policy.
func checkContent(typ *core.TypeDefinition, content *core.ContentStream) error {
	switch typ.ContentStream {
	case core.ContentRequired:
		if content == nil {
			return core.Errorf(core.ErrConstraint, "type %q requires a content stream", typ.ID)
		}
	case core.ContentNotAllowed, "":
		if content != nil {
			return core.Errorf(core.ErrStreamNotSupported, "type %q does not allow a content stream", typ.ID)
		}
	}
	return nil
}

// normalizeVersioningState applies the defaulting and leniency rules: an
// omitted state means major; a versionable type rejects "none"; a
// non-versionable type tolerates any state and is stored unversioned. The
// asymmetry is deliberate, to not block naive callers.
func normalizeVersioningState(typ *core.TypeDefinition, state core.VersioningState) (core.VersioningState, error) {
	if state == "" {
		state = core.VersioningMajor
	}
	if !state.Valid() {
		return "", core.Errorf(core.ErrInvalidArgument, "unknown versioning state %q", state)
	}
	if typ.Versionable {
		if state == core.VersioningNone {
			return "", core.Errorf(core.ErrConstraint, "type %q is versionable, versioning state none is not allowed", typ.ID)
		}
		return state, nil
	}
	return core.VersioningNone, nil
}
