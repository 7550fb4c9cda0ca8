package conn

import (
	"context"

	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/typesys"
)

// CreateDocumentRequest carries everything a document creation may specify.
// Zero values follow the contract's defaults: versioning state major, no
// policies, no ACL deltas.
type CreateDocumentRequest struct {
	FolderID        string
	Properties      core.Properties
	Content         *core.ContentStream
	VersioningState core.VersioningState
	Policies        []string
	AddACL          core.ACL
	RemoveACL       core.ACL
}

// CreateDocument validates and creates a document, returning the new object
// id. Validation order: type resolution, base type, parent constraints,
// versioning state, content policy, ACL and policy applicability, then
// property conformance. Nothing reaches storage before all of it passes.
func (c *Connection) CreateDocument(ctx context.Context, caller string, req CreateDocumentRequest) (string, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return "", err
	}

	typ, err := c.resolveType(ctx, req.Properties)
	if err != nil {
		return "", err
	}
	if typ.Base != core.BaseDocument {
		return "", core.Errorf(core.ErrConstraint, "type %q is not a document type", typ.ID)
	}

	parent, err := c.checkParent(ctx, info, typ, req.FolderID)
	if err != nil {
		return "", err
	}

	state, err := normalizeVersioningState(typ, req.VersioningState)
	if err != nil {
		return "", err
	}
	if err := checkContent(typ, req.Content); err != nil {
		return "", err
	}
	if err := c.checkACLDeltas(info, typ, req.AddACL, req.RemoveACL); err != nil {
		return "", err
	}
	if err := c.checkPolicies(ctx, typ, req.Policies); err != nil {
		return "", err
	}
	if err := typesys.ValidateProperties(ctx, c.backend, typ.ID, req.Properties, typesys.PhaseCreate); err != nil {
		return "", err
	}

	doc := &core.Document{
		Entry: core.Entry{
			TypeID:     typ.ID,
			Name:       req.Properties.StringValue(core.PropName),
			Properties: customProperties(req.Properties),
			ACL:        inheritACL(parent, req.AddACL, req.RemoveACL),
			Policies:   req.Policies,
			CreatedBy:  caller,
			ModifiedBy: caller,
		},
		IsMajorVersion: state == core.VersioningMajor,
		PWC:            state == core.VersioningCheckedOut,
	}
	if doc.PWC {
		doc.CheckedOutBy = caller
	}

	id, err := c.backend.CreateDocument(ctx, doc, req.FolderID, req.Content)
	if err != nil {
		return "", err
	}
	c.debug("document created", "id", id, "type", typ.ID, "folder", req.FolderID, "caller", caller)
	return id, nil
}

// CreateDocumentFromSource copies an existing document into a folder,
// layering the supplied properties over the source's. Required properties
// are not re-enforced; the source supplies them.
func (c *Connection) CreateDocumentFromSource(ctx context.Context, caller string, sourceID string, req CreateDocumentRequest) (string, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return "", err
	}

	src, err := c.backend.GetObject(ctx, sourceID)
	if err != nil {
		return "", err
	}
	srcDoc, ok := src.(*core.Document)
	if !ok {
		return "", core.Errorf(core.ErrInvalidArgument, "source %q is not a document", sourceID)
	}

	typeID := srcDoc.TypeID
	if req.Properties != nil {
		if override := req.Properties.StringValue(core.PropObjectTypeID); override != "" {
			typeID = override
		}
	}
	typ, err := c.backend.GetTypeDefinition(ctx, typeID)
	if err != nil {
		return "", err
	}
	if typ.Base != core.BaseDocument {
		return "", core.Errorf(core.ErrConstraint, "type %q is not a document type", typ.ID)
	}

	parent, err := c.checkParent(ctx, info, typ, req.FolderID)
	if err != nil {
		return "", err
	}
	state, err := normalizeVersioningState(typ, req.VersioningState)
	if err != nil {
		return "", err
	}
	if err := c.checkACLDeltas(info, typ, req.AddACL, req.RemoveACL); err != nil {
		return "", err
	}
	if err := c.checkPolicies(ctx, typ, req.Policies); err != nil {
		return "", err
	}
	if req.Properties != nil {
		if err := typesys.ValidateProperties(ctx, c.backend, typ.ID, req.Properties, typesys.PhaseVersion); err != nil {
			return "", err
		}
	}

	doc := &core.Document{
		Entry: core.Entry{
			TypeID:     typ.ID,
			Name:       req.Properties.StringValue(core.PropName),
			Properties: customProperties(req.Properties),
			ACL:        inheritACL(parent, req.AddACL, req.RemoveACL),
			Policies:   req.Policies,
			CreatedBy:  caller,
			ModifiedBy: caller,
		},
		IsMajorVersion: state == core.VersioningMajor,
	}

	id, err := c.backend.CopyDocument(ctx, sourceID, doc, req.FolderID)
	if err != nil {
		return "", err
	}
	c.debug("document copied", "id", id, "source", sourceID, "caller", caller)
	return id, nil
}

// CreateFolderRequest carries a folder creation. The parent is mandatory;
// folders are never unfiled.
type CreateFolderRequest struct {
	ParentID   string
	Properties core.Properties
	Policies   []string
	AddACL     core.ACL
	RemoveACL  core.ACL
}

// CreateFolder validates and creates a folder under an existing parent.
func (c *Connection) CreateFolder(ctx context.Context, caller string, req CreateFolderRequest) (string, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return "", err
	}

	typ, err := c.resolveType(ctx, req.Properties)
	if err != nil {
		return "", err
	}
	if typ.Base != core.BaseFolder {
		return "", core.Errorf(core.ErrConstraint, "type %q is not a folder type", typ.ID)
	}
	if req.ParentID == "" {
		return "", core.Errorf(core.ErrInvalidArgument, "folders require a parent folder")
	}
	parent, err := c.checkParent(ctx, info, typ, req.ParentID)
	if err != nil {
		return "", err
	}
	if err := c.checkACLDeltas(info, typ, req.AddACL, req.RemoveACL); err != nil {
		return "", err
	}
	if err := c.checkPolicies(ctx, typ, req.Policies); err != nil {
		return "", err
	}
	if err := typesys.ValidateProperties(ctx, c.backend, typ.ID, req.Properties, typesys.PhaseCreate); err != nil {
		return "", err
	}

	folder := &core.Folder{
		Entry: core.Entry{
			TypeID:     typ.ID,
			Name:       req.Properties.StringValue(core.PropName),
			Properties: customProperties(req.Properties),
			ACL:        inheritACL(parent, req.AddACL, req.RemoveACL),
			Policies:   req.Policies,
			CreatedBy:  caller,
			ModifiedBy: caller,
		},
	}

	id, err := c.backend.CreateFolder(ctx, folder, req.ParentID)
	if err != nil {
		return "", err
	}
	c.debug("folder created", "id", id, "parent", req.ParentID, "caller", caller)
	return id, nil
}

// CreatePolicyRequest carries a policy creation. Filing is optional.
type CreatePolicyRequest struct {
	FolderID   string
	Properties core.Properties
	PolicyText string
	AddACL     core.ACL
	RemoveACL  core.ACL
}

// CreatePolicy validates and creates a policy object.
func (c *Connection) CreatePolicy(ctx context.Context, caller string, req CreatePolicyRequest) (string, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return "", err
	}

	typ, err := c.resolveType(ctx, req.Properties)
	if err != nil {
		return "", err
	}
	if typ.Base != core.BasePolicy {
		return "", core.Errorf(core.ErrConstraint, "type %q is not a policy type", typ.ID)
	}

	var parent *core.Folder
	if req.FolderID != "" {
		parent, err = c.checkParent(ctx, info, typ, req.FolderID)
		if err != nil {
			return "", err
		}
	}
	if err := c.checkACLDeltas(info, typ, req.AddACL, req.RemoveACL); err != nil {
		return "", err
	}
	if err := typesys.ValidateProperties(ctx, c.backend, typ.ID, req.Properties, typesys.PhaseCreate); err != nil {
		return "", err
	}

	policy := &core.Policy{
		Entry: core.Entry{
			TypeID:     typ.ID,
			Name:       req.Properties.StringValue(core.PropName),
			Properties: customProperties(req.Properties),
			ACL:        inheritACL(parent, req.AddACL, req.RemoveACL),
			CreatedBy:  caller,
			ModifiedBy: caller,
		},
		PolicyText: req.PolicyText,
	}

	id, err := c.backend.CreatePolicy(ctx, policy, req.FolderID)
	if err != nil {
		return "", err
	}
	c.debug("policy created", "id", id, "caller", caller)
	return id, nil
}

// CreateRelationshipRequest ties a source object to a target object.
type CreateRelationshipRequest struct {
	SourceID   string
	TargetID   string
	Properties core.Properties
	AddACL     core.ACL
	RemoveACL  core.ACL
}

// CreateRelationship validates both endpoints and the relationship type's
// endpoint constraints, then creates the relationship.
func (c *Connection) CreateRelationship(ctx context.Context, caller string, req CreateRelationshipRequest) (string, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return "", err
	}

	typ, err := c.resolveType(ctx, req.Properties)
	if err != nil {
		return "", err
	}
	if typ.Base != core.BaseRelationship {
		return "", core.Errorf(core.ErrConstraint, "type %q is not a relationship type", typ.ID)
	}
	if req.SourceID == "" || req.TargetID == "" {
		return "", core.Errorf(core.ErrInvalidArgument, "relationships require both a source and a target id")
	}

	source, err := c.backend.GetObject(ctx, req.SourceID)
	if err != nil {
		return "", err
	}
	target, err := c.backend.GetObject(ctx, req.TargetID)
	if err != nil {
		return "", err
	}
	if err := checkEndpointType(typ.AllowedSourceTypes, source, "source"); err != nil {
		return "", err
	}
	if err := checkEndpointType(typ.AllowedTargetTypes, target, "target"); err != nil {
		return "", err
	}
	if err := c.checkACLDeltas(info, typ, req.AddACL, req.RemoveACL); err != nil {
		return "", err
	}
	if err := typesys.ValidateProperties(ctx, c.backend, typ.ID, req.Properties, typesys.PhaseCreate); err != nil {
		return "", err
	}

	rel := &core.Relationship{
		Entry: core.Entry{
			TypeID:     typ.ID,
			Name:       req.Properties.StringValue(core.PropName),
			Properties: customProperties(req.Properties),
			ACL:        core.MergeACL(nil, req.AddACL, req.RemoveACL),
			CreatedBy:  caller,
			ModifiedBy: caller,
		},
		SourceID: req.SourceID,
		TargetID: req.TargetID,
	}

	id, err := c.backend.CreateRelationship(ctx, rel)
	if err != nil {
		return "", err
	}
	c.debug("relationship created", "id", id, "source", req.SourceID, "target", req.TargetID)
	return id, nil
}

func checkEndpointType(allowed []string, obj core.Object, role string) error {
	if len(allowed) == 0 {
		return nil
	}
	typeID := obj.Core().TypeID
	for _, t := range allowed {
		if t == typeID {
			return nil
		}
	}
	return core.Errorf(core.ErrConstraint, "type %q is not an allowed %s type for this relationship", typeID, role)
}

// customProperties strips the system-maintained ids out of a caller's
// property set before it becomes object state.
func customProperties(props core.Properties) core.Properties {
	out := core.Properties{}
	for id, p := range props {
		switch id {
		case core.PropObjectTypeID, core.PropName, core.PropObjectID,
			core.PropChangeToken, core.PropCreatedBy, core.PropCreationDate,
			core.PropModifiedBy, core.PropModificationDate,
			core.PropVersionSeriesID, core.PropVersionLabel,
			core.PropIsLatestVersion, core.PropCheckinComment:
			continue
		}
		out[id] = p
	}
	return out
}

// inheritACL merges the parent folder's ACL, if any, with the creation's
// add/remove deltas.
func inheritACL(parent *core.Folder, add, remove core.ACL) core.ACL {
	var base core.ACL
	if parent != nil {
		base = parent.ACL
	}
	return core.MergeACL(base, add, remove)
}
