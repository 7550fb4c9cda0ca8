package conn

import (
	"context"

	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/typesys"
)

// Checkout creates a private working copy for a document's version series
// and returns it. The type must be versionable; a series with a live PWC
// cannot be checked out again.
func (c *Connection) Checkout(ctx context.Context, caller string, objectID string) (*core.Document, error) {
	if _, err := c.begin(ctx, caller); err != nil {
		return nil, err
	}

	obj, err := c.backend.GetObject(ctx, objectID)
	if err != nil {
		return nil, err
	}
	doc, ok := obj.(*core.Document)
	if !ok {
		return nil, core.Errorf(core.ErrInvalidArgument, "object %q is not a document", objectID)
	}
	typ, err := c.backend.GetTypeDefinition(ctx, doc.TypeID)
	if err != nil {
		return nil, err
	}
	if !typ.Versionable {
		return nil, core.Errorf(core.ErrConstraint, "type %q is not versionable", typ.ID)
	}

	pwc, err := c.backend.Checkout(ctx, objectID, caller)
	if err != nil {
		return nil, err
	}
	c.debug("checked out", "series", pwc.VersionSeriesID, "pwc", pwc.ID, "caller", caller)
	return pwc, nil
}

// CheckinRequest carries the optional pieces of a checkin: a property
// delta, replacement content, ACL deltas and policies to layer onto the new
// version.
type CheckinRequest struct {
	ObjectID   string
	Major      bool
	Comment    string
	Properties core.Properties
	Content    *core.ContentStream
	Policies   []string
	AddACL     core.ACL
	RemoveACL  core.ACL
}

// Checkin turns a private working copy into the new latest version of its
// series. Only the PWC itself can be checked in.
func (c *Connection) Checkin(ctx context.Context, caller string, req CheckinRequest) (*core.Document, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}

	obj, err := c.backend.GetObject(ctx, req.ObjectID)
	if err != nil {
		return nil, err
	}
	pwc, ok := obj.(*core.Document)
	if !ok {
		return nil, core.Errorf(core.ErrInvalidArgument, "object %q is not a document", req.ObjectID)
	}
	if !pwc.PWC {
		return nil, core.Errorf(core.ErrVersioning, "object %q is not a private working copy", req.ObjectID)
	}

	typ, err := c.backend.GetTypeDefinition(ctx, pwc.TypeID)
	if err != nil {
		return nil, err
	}
	if len(req.Properties) > 0 {
		if err := typesys.ValidateProperties(ctx, c.backend, pwc.TypeID, req.Properties, typesys.PhaseVersion); err != nil {
			return nil, err
		}
	}
	if req.Content != nil {
		if err := checkContent(typ, req.Content); err != nil {
			return nil, err
		}
	}
	if err := c.checkACLDeltas(info, typ, req.AddACL, req.RemoveACL); err != nil {
		return nil, err
	}
	if err := c.checkPolicies(ctx, typ, req.Policies); err != nil {
		return nil, err
	}

	if len(req.Properties) > 0 {
		for id, p := range req.Properties {
			if id == core.PropName {
				if name := p.FirstString(); name != "" {
					pwc.Name = name
				}
				continue
			}
			pwc.Properties[id] = p
		}
	}
	if len(req.AddACL) > 0 || len(req.RemoveACL) > 0 {
		pwc.ACL = core.MergeACL(pwc.ACL, req.AddACL, req.RemoveACL)
	}
	if len(req.Policies) > 0 {
		pwc.Policies = append(pwc.Policies, req.Policies...)
	}
	pwc.ModifiedBy = caller

	version, err := c.backend.Checkin(ctx, pwc, req.Content, req.Major, req.Comment)
	if err != nil {
		return nil, err
	}
	c.debug("checked in", "series", version.VersionSeriesID, "version", version.VersionLabel, "caller", caller)
	return version, nil
}

// CancelCheckout discards a series' private working copy. Any document of
// the series may be named; the PWC is resolved through the series.
func (c *Connection) CancelCheckout(ctx context.Context, caller string, objectID string) error {
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
	if !typ.Versionable {
		return core.Errorf(core.ErrConstraint, "type %q is not versionable", typ.ID)
	}
	if doc.PWC {
		return c.backend.CancelCheckout(ctx, doc.ID)
	}

	versions, err := c.backend.AllVersions(ctx, doc.VersionSeriesID)
	if err != nil {
		return err
	}
	for _, v := range versions {
		if v.PWC {
			return c.backend.CancelCheckout(ctx, v.ID)
		}
	}
	return core.Errorf(core.ErrInvalidArgument, "version series %q has no private working copy", doc.VersionSeriesID)
}

// GetAllVersions lists a series' versions, oldest first, including a live
// PWC. The series may be named by any of its documents' ids or by the
// series id itself.
func (c *Connection) GetAllVersions(ctx context.Context, caller string, objectID string) ([]*core.Document, error) {
	if _, err := c.begin(ctx, caller); err != nil {
		return nil, err
	}
	seriesID := objectID
	if obj, err := c.backend.GetObject(ctx, objectID); err == nil {
		if doc, ok := obj.(*core.Document); ok {
			seriesID = doc.VersionSeriesID
		}
	}
	return c.backend.AllVersions(ctx, seriesID)
}

// GetObjectOfLatestVersion resolves the latest (optionally latest major)
// version of the series a document belongs to.
func (c *Connection) GetObjectOfLatestVersion(ctx context.Context, caller string, objectID string, major bool) (*core.Document, error) {
	versions, err := c.GetAllVersions(ctx, caller, objectID)
	if err != nil {
		return nil, err
	}
	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		if v.PWC {
			continue
		}
		if major && !v.IsMajorVersion {
			continue
		}
		return v, nil
	}
	return nil, core.Errorf(core.ErrNotFound, "version series of %q has no matching version", objectID)
}
