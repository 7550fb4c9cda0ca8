package typesys

import (
	"context"

	"github.com/aretw0/strata/pkg/core"
)

// Phase says which mutation a property set is validated for. Required-ness
// is only enforced when creating; a checkin may be partial.
type Phase int

const (
	PhaseCreate Phase = iota
	PhaseUpdate
	PhaseVersion
)

// EffectiveProperties resolves the full property definition set of a type,
// including definitions inherited from its ancestors. A subtype's own
// definition shadows an inherited one with the same id.
func EffectiveProperties(ctx context.Context, ta core.TypeAccessor, typeID string) (map[string]core.PropertyDefinition, error) {
	out := make(map[string]core.PropertyDefinition)
	for id := typeID; id != ""; {
		def, err := ta.GetTypeDefinition(ctx, id)
		if err != nil {
			return nil, err
		}
		for pid, pd := range def.Properties {
			if _, shadowed := out[pid]; !shadowed {
				out[pid] = pd
			}
		}
		id = def.ParentID
	}
	return out, nil
}

// ValidateProperties checks a supplied property set against a type's
// effective definitions for the given phase: every property must be defined,
// match the declared type and cardinality, and be writable in this phase.
// In PhaseCreate every required definition must also carry a non-empty
// value.
func ValidateProperties(ctx context.Context, ta core.TypeAccessor, typeID string, props core.Properties, phase Phase) error {
	defs, err := EffectiveProperties(ctx, ta, typeID)
	if err != nil {
		return err
	}

	for id, p := range props {
		if isSystemProperty(id) {
			continue
		}
		def, ok := defs[id]
		if !ok {
			return core.Errorf(core.ErrConstraint, "property %q is not defined on type %q", id, typeID)
		}
		if def.Cardinality == core.Single && len(p.Values) > 1 {
			return core.Errorf(core.ErrConstraint, "property %q is single-valued but %d values were supplied", id, len(p.Values))
		}
		for _, v := range p.Values {
			if !def.Type.Matches(v) {
				return core.Errorf(core.ErrConstraint, "property %q value %v does not match declared type %s", id, v, def.Type)
			}
		}
		if err := checkUpdatability(def, phase, p); err != nil {
			return err
		}
	}

	if phase == PhaseCreate {
		for id, def := range defs {
			if !def.Required {
				continue
			}
			if p, ok := props[id]; !ok || p.IsEmpty() {
				return core.Errorf(core.ErrConstraint, "required property %q has no value", id)
			}
		}
	}
	return nil
}

func checkUpdatability(def core.PropertyDefinition, phase Phase, p core.Property) error {
	switch def.Updatability {
	case core.ReadOnly:
		return core.Errorf(core.ErrConstraint, "property %q is read-only", def.ID)
	case core.OnCreate:
		if phase != PhaseCreate {
			return core.Errorf(core.ErrConstraint, "property %q may only be set at creation", def.ID)
		}
	case core.WhenCheckedOut:
		if phase == PhaseUpdate {
			return core.Errorf(core.ErrConstraint, "property %q is only writable while checked out", def.ID)
		}
	}
	return nil
}

// isSystemProperty filters the ids the repository itself maintains; callers
// may echo them back without tripping validation.
func isSystemProperty(id string) bool {
	switch id {
	case core.PropObjectTypeID, core.PropObjectID, core.PropCreatedBy,
		core.PropCreationDate, core.PropModifiedBy, core.PropModificationDate,
		core.PropChangeToken, core.PropVersionSeriesID, core.PropVersionLabel,
		core.PropIsLatestVersion, core.PropCheckinComment:
		return true
	}
	return false
}
