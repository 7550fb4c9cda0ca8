package conn

import (
	"context"

	"github.com/aretw0/strata/pkg/actions"
	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/filter"
)

// ProjectionOptions selects what a read operation materializes per object.
// The zero value projects every property and nothing else.
type ProjectionOptions struct {
	// PropertyFilter is the property filter string ("*" or a
	// comma-separated id list; empty means all).
	PropertyFilter string

	// RenditionFilter is the rendition filter string (empty or
	// "cmis:none" means no renditions).
	RenditionFilter string

	IncludeAllowableActions bool
	IncludeRelationships    core.RelationshipDirection
	IncludeACL              bool
	IncludePolicyIDs        bool
	IncludePathSegment      bool
}

// ObjectData is one projected object: the object itself plus whatever the
// options asked for. Properties always carries the identity triple even
// under a narrowing filter.
type ObjectData struct {
	Object     core.Object
	Properties core.Properties

	AllowableActions actions.Set
	Relationships    []*core.Relationship
	Renditions       []core.Rendition
	ACL              core.ACL
	PolicyIDs        []string

	// PathSegment is the object's name within the folder a listing was
	// taken from, when requested.
	PathSegment string
}

// ObjectList is a paginated list of projections.
type ObjectList struct {
	Objects      []*ObjectData
	HasMoreItems bool

	// NumItems is the total before paging, or -1 when unknown.
	NumItems int
}

// ObjectTreeNode is one node of a folder tree projection.
type ObjectTreeNode struct {
	Data     *ObjectData
	Children []*ObjectTreeNode
}

// projection holds per-call parsed filters so list operations parse once.
type projection struct {
	opts  ProjectionOptions
	props *filter.PropertyFilter
	rends *filter.RenditionFilter
	info  *core.RepositoryInfo
}

func (c *Connection) newProjection(info *core.RepositoryInfo, opts ProjectionOptions) (*projection, error) {
	pf, err := filter.ParsePropertyFilter(opts.PropertyFilter)
	if err != nil {
		return nil, err
	}
	rf, err := filter.ParseRenditionFilter(opts.RenditionFilter)
	if err != nil {
		return nil, err
	}
	return &projection{opts: opts, props: pf, rends: rf, info: info}, nil
}

// project materializes one object through the projection.
func (c *Connection) project(ctx context.Context, caller string, obj core.Object, p *projection) (*ObjectData, error) {
	data := &ObjectData{
		Object:     obj,
		Properties: p.props.Apply(materialize(obj)),
	}

	if p.opts.IncludeAllowableActions {
		typ, err := c.backend.GetTypeDefinition(ctx, obj.Core().TypeID)
		if err != nil {
			return nil, err
		}
		data.AllowableActions = actions.Calculate(obj, typ, caller, p.info)
	}
	if dir := p.opts.IncludeRelationships; dir != "" && dir != core.RelationshipNone {
		rels, err := c.backend.Relationships(ctx, obj.Core().ID, dir)
		if err != nil {
			return nil, err
		}
		data.Relationships = rels
	}
	if !p.rends.IsNone() && p.info.Capabilities.Renditions {
		rends, err := c.backend.Renditions(ctx, obj.Core().ID)
		if err != nil {
			return nil, err
		}
		data.Renditions = p.rends.Apply(rends)
	}
	if p.opts.IncludeACL {
		data.ACL = obj.Core().ACL.Clone()
	}
	if p.opts.IncludePolicyIDs {
		data.PolicyIDs = append([]string(nil), obj.Core().Policies...)
	}
	if p.opts.IncludePathSegment {
		data.PathSegment = obj.Core().Name
	}
	return data, nil
}

// materialize flattens an object into a full property map: the custom
// properties plus the system properties derived from typed fields.
func materialize(obj core.Object) core.Properties {
	entry := obj.Core()
	props := entry.Properties.Clone()
	if props == nil {
		props = make(core.Properties)
	}

	props[core.PropObjectID] = core.Property{ID: core.PropObjectID, Type: core.PropertyID, Values: []any{entry.ID}}
	props[core.PropObjectTypeID] = core.Property{ID: core.PropObjectTypeID, Type: core.PropertyID, Values: []any{entry.TypeID}}
	props[core.PropName] = core.Property{ID: core.PropName, Type: core.PropertyString, Values: []any{entry.Name}}
	props[core.PropCreatedBy] = core.Property{ID: core.PropCreatedBy, Type: core.PropertyString, Values: []any{entry.CreatedBy}}
	props[core.PropCreationDate] = core.Property{ID: core.PropCreationDate, Type: core.PropertyDateTime, Values: []any{entry.CreatedAt}}
	props[core.PropModifiedBy] = core.Property{ID: core.PropModifiedBy, Type: core.PropertyString, Values: []any{entry.ModifiedBy}}
	props[core.PropModificationDate] = core.Property{ID: core.PropModificationDate, Type: core.PropertyDateTime, Values: []any{entry.ModifiedAt}}
	props[core.PropChangeToken] = core.Property{ID: core.PropChangeToken, Type: core.PropertyString, Values: []any{entry.ChangeToken}}

	switch o := obj.(type) {
	case *core.Document:
		props[core.PropVersionSeriesID] = core.Property{ID: core.PropVersionSeriesID, Type: core.PropertyID, Values: []any{o.VersionSeriesID}}
		props[core.PropVersionLabel] = core.Property{ID: core.PropVersionLabel, Type: core.PropertyString, Values: []any{o.VersionLabel}}
		props[core.PropIsLatestVersion] = core.Property{ID: core.PropIsLatestVersion, Type: core.PropertyBoolean, Values: []any{o.IsLatestVersion}}
		if o.CheckinComment != "" {
			props[core.PropCheckinComment] = core.Property{ID: core.PropCheckinComment, Type: core.PropertyString, Values: []any{o.CheckinComment}}
		}
	case *core.Relationship:
		props[core.PropSourceID] = core.Property{ID: core.PropSourceID, Type: core.PropertyID, Values: []any{o.SourceID}}
		props[core.PropTargetID] = core.Property{ID: core.PropTargetID, Type: core.PropertyID, Values: []any{o.TargetID}}
	}
	return props
}
