package conn

import (
	"context"

	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/typesys"
)

// UpdateProperties applies a property delta to an existing object. The
// change token, when supplied, must match the object's current one.
// Returns the object's id (unchanged; backends here never re-identify on
// update).
func (c *Connection) UpdateProperties(ctx context.Context, caller string, objectID, changeToken string, props core.Properties) (string, error) {
	if _, err := c.begin(ctx, caller); err != nil {
		return "", err
	}
	if len(props) == 0 {
		return "", core.Errorf(core.ErrInvalidArgument, "properties must be provided")
	}

	obj, err := c.backend.GetObject(ctx, objectID)
	if err != nil {
		return "", err
	}
	if err := c.life.ValidateChangeToken(ctx, obj, changeToken); err != nil {
		return "", err
	}

	entry := obj.Core()
	phase := typesys.PhaseUpdate
	if doc, ok := obj.(*core.Document); ok && doc.PWC {
		phase = typesys.PhaseVersion
	}
	if err := typesys.ValidateProperties(ctx, c.backend, entry.TypeID, props, phase); err != nil {
		return "", err
	}

	for id, p := range props {
		switch id {
		case core.PropName:
			if name := p.FirstString(); name != "" {
				entry.Name = name
			}
		case core.PropObjectTypeID, core.PropObjectID:
			return "", core.Errorf(core.ErrConstraint, "property %q is read-only", id)
		case core.PropChangeToken:
			// The backend owns the token; a supplied value is ignored.
		default:
			if p.IsEmpty() {
				delete(entry.Properties, id)
			} else {
				entry.Properties[id] = p
			}
		}
	}
	entry.ModifiedBy = caller

	if err := c.backend.UpdateObject(ctx, obj); err != nil {
		return "", err
	}
	c.debug("properties updated", "id", objectID, "caller", caller)
	return objectID, nil
}

// SetContentStream replaces or attaches a document's content stream.
// overwrite defaults to true; with overwrite false an existing stream is a
// ContentAlreadyExists failure.
func (c *Connection) SetContentStream(ctx context.Context, caller string, objectID, changeToken string, content *core.ContentStream, overwrite *bool) error {
	if _, err := c.begin(ctx, caller); err != nil {
		return err
	}
	if content == nil {
		return core.Errorf(core.ErrInvalidArgument, "content stream must be provided")
	}

	obj, err := c.backend.GetObject(ctx, objectID)
	if err != nil {
		return err
	}
	doc, ok := obj.(*core.Document)
	if !ok {
		return core.Errorf(core.ErrInvalidArgument, "object %q is not a document", objectID)
	}
	typ, err := c.backend.GetTypeDefinition(ctx, doc.TypeID)
	if err != nil {
		return err
	}
	if typ.ContentStream == core.ContentNotAllowed {
		return core.Errorf(core.ErrStreamNotSupported, "type %q does not allow a content stream", typ.ID)
	}
	if doc.HasContent && overwrite != nil && !*overwrite {
		return core.Errorf(core.ErrContentAlreadyExists, "document %q already has a content stream", objectID)
	}
	if err := c.life.ValidateChangeToken(ctx, obj, changeToken); err != nil {
		return err
	}

	if err := c.backend.SetContentStream(ctx, objectID, content); err != nil {
		return err
	}
	c.debug("content stream set", "id", objectID, "caller", caller)
	return nil
}

// DeleteContentStream removes a document's content stream. A type that
// requires content rejects the removal.
func (c *Connection) DeleteContentStream(ctx context.Context, caller string, objectID, changeToken string) error {
	if _, err := c.begin(ctx, caller); err != nil {
		return err
	}

	obj, err := c.backend.GetObject(ctx, objectID)
	if err != nil {
		return err
	}
	doc, ok := obj.(*core.Document)
	if !ok {
		return core.Errorf(core.ErrInvalidArgument, "object %q is not a document", objectID)
	}
	typ, err := c.backend.GetTypeDefinition(ctx, doc.TypeID)
	if err != nil {
		return err
	}
	if typ.ContentStream == core.ContentRequired {
		return core.Errorf(core.ErrConstraint, "type %q requires a content stream", typ.ID)
	}
	if err := c.life.ValidateChangeToken(ctx, obj, changeToken); err != nil {
		return err
	}
	return c.backend.DeleteContentStream(ctx, objectID)
}

// GetContentStream returns a document's content.
func (c *Connection) GetContentStream(ctx context.Context, caller string, objectID string) (*core.ContentStream, error) {
	if _, err := c.begin(ctx, caller); err != nil {
		return nil, err
	}
	return c.backend.GetContentStream(ctx, objectID)
}

// ApplyACL merges add/remove ACL deltas into an object's ACL and returns
// the merged result. Propagation other than object-only is left to the
// repository ("repository-determined" is the default and the only mode the
// reference backend implements).
func (c *Connection) ApplyACL(ctx context.Context, caller string, objectID string, add, remove core.ACL, propagation core.ACLPropagation) (core.ACL, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}
	if propagation == "" {
		propagation = core.PropagationRepository
	}
	if propagation == core.PropagationPropagate {
		return nil, core.Errorf(core.ErrNotSupported, "acl propagation %q is not supported", propagation)
	}

	obj, err := c.backend.GetObject(ctx, objectID)
	if err != nil {
		return nil, err
	}
	typ, err := c.backend.GetTypeDefinition(ctx, obj.Core().TypeID)
	if err != nil {
		return nil, err
	}
	if err := c.checkACLDeltas(info, typ, add, remove); err != nil {
		return nil, err
	}

	entry := obj.Core()
	entry.ACL = core.MergeACL(entry.ACL, add, remove)
	entry.ModifiedBy = caller
	if err := c.backend.UpdateObject(ctx, obj); err != nil {
		return nil, err
	}
	c.debug("acl applied", "id", objectID, "caller", caller, "propagation", propagation)
	return entry.ACL, nil
}

// GetACL returns an object's ACL. Requires at least the discover ACL
// capability.
func (c *Connection) GetACL(ctx context.Context, caller string, objectID string) (core.ACL, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}
	if info.ACLCapability == core.ACLNone {
		return nil, core.Errorf(core.ErrNotSupported, "repository does not expose ACLs")
	}
	obj, err := c.backend.GetObject(ctx, objectID)
	if err != nil {
		return nil, err
	}
	return obj.Core().ACL.Clone(), nil
}

// ApplyPolicy attaches a policy to a policy-controllable object.
func (c *Connection) ApplyPolicy(ctx context.Context, caller string, policyID, objectID string) error {
	if _, err := c.begin(ctx, caller); err != nil {
		return err
	}

	obj, err := c.backend.GetObject(ctx, objectID)
	if err != nil {
		return err
	}
	typ, err := c.backend.GetTypeDefinition(ctx, obj.Core().TypeID)
	if err != nil {
		return err
	}
	if err := c.checkPolicies(ctx, typ, []string{policyID}); err != nil {
		return err
	}

	entry := obj.Core()
	for _, id := range entry.Policies {
		if id == policyID {
			return nil // already applied
		}
	}
	entry.Policies = append(entry.Policies, policyID)
	entry.ModifiedBy = caller
	return c.backend.UpdateObject(ctx, obj)
}

// RemovePolicy detaches a policy from an object.
func (c *Connection) RemovePolicy(ctx context.Context, caller string, policyID, objectID string) error {
	if _, err := c.begin(ctx, caller); err != nil {
		return err
	}

	obj, err := c.backend.GetObject(ctx, objectID)
	if err != nil {
		return err
	}
	entry := obj.Core()
	kept := entry.Policies[:0]
	found := false
	for _, id := range entry.Policies {
		if id == policyID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	if !found {
		return core.Errorf(core.ErrInvalidArgument, "policy %q is not applied to object %q", policyID, objectID)
	}
	entry.Policies = kept
	entry.ModifiedBy = caller
	return c.backend.UpdateObject(ctx, obj)
}

// GetAppliedPolicies lists the policy ids applied to an object.
func (c *Connection) GetAppliedPolicies(ctx context.Context, caller string, objectID string) ([]string, error) {
	if _, err := c.begin(ctx, caller); err != nil {
		return nil, err
	}
	obj, err := c.backend.GetObject(ctx, objectID)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), obj.Core().Policies...), nil
}
