// Package typesys holds the type system: a registry of type definitions with
// hierarchy walks, and the property validation shared by every mutating
// operation.
package typesys

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/strata/pkg/core"
)

// InUseFunc reports whether instances of a type exist. Wired in by whatever
// owns the objects; removal of an in-use type is rejected.
type InUseFunc func(typeID string) bool

// Registry is the standard in-memory core.TypeStore. Safe for concurrent
// use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*core.TypeDefinition
	inUse InUseFunc
}

// NewRegistry builds a registry pre-seeded with the four base types.
func NewRegistry(inUse InUseFunc) *Registry {
	r := &Registry{
		types: make(map[string]*core.TypeDefinition),
		inUse: inUse,
	}
	for _, def := range baseTypes() {
		r.types[def.ID] = def
	}
	return r
}

func baseTypes() []*core.TypeDefinition {
	name := func(required bool) map[string]core.PropertyDefinition {
		return map[string]core.PropertyDefinition{
			core.PropName: {
				ID:           core.PropName,
				Type:         core.PropertyString,
				Cardinality:  core.Single,
				Required:     required,
				Updatability: core.ReadWrite,
			},
		}
	}
	return []*core.TypeDefinition{
		{
			ID:            string(core.BaseDocument),
			Base:          core.BaseDocument,
			DisplayName:   "Document",
			Fileable:      true,
			Queryable:     true,
			ContentStream: core.ContentAllowed,
			Properties:    name(true),
		},
		{
			ID:          string(core.BaseFolder),
			Base:        core.BaseFolder,
			DisplayName: "Folder",
			Fileable:    true,
			Queryable:   true,
			Properties:  name(true),
		},
		{
			ID:          string(core.BasePolicy),
			Base:        core.BasePolicy,
			DisplayName: "Policy",
			Properties:  name(false),
		},
		{
			ID:          string(core.BaseRelationship),
			Base:        core.BaseRelationship,
			DisplayName: "Relationship",
			Properties:  name(false),
		},
	}
}

// GetTypeDefinition implements core.TypeAccessor.
func (r *Registry) GetTypeDefinition(ctx context.Context, typeID string) (*core.TypeDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.types[typeID]
	if !ok {
		return nil, core.Errorf(core.ErrNotFound, "type %q is not registered", typeID)
	}
	return def, nil
}

// GetTypeChildren implements core.TypeAccessor. An empty typeID lists the
// base types.
func (r *Registry) GetTypeChildren(ctx context.Context, typeID string) ([]*core.TypeDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if typeID != "" {
		if _, ok := r.types[typeID]; !ok {
			return nil, core.Errorf(core.ErrNotFound, "type %q is not registered", typeID)
		}
	}

	var out []*core.TypeDefinition
	for _, def := range r.types {
		if def.ParentID == typeID && (typeID != "" || def.ID == string(def.Base)) {
			out = append(out, def)
		}
	}
	sortTypes(out)
	return out, nil
}

// GetTypeDescendants implements core.TypeAccessor. depth -1 walks the whole
// subtree.
func (r *Registry) GetTypeDescendants(ctx context.Context, typeID string, depth int) ([]*core.TypeDefinition, error) {
	if depth == 0 {
		return nil, core.Errorf(core.ErrInvalidArgument, "depth must be -1 or positive")
	}

	var out []*core.TypeDefinition
	var walk func(parent string, remaining int) error
	walk = func(parent string, remaining int) error {
		if remaining == 0 {
			return nil
		}
		children, err := r.GetTypeChildren(ctx, parent)
		if err != nil {
			return err
		}
		for _, c := range children {
			out = append(out, c)
			next := remaining
			if next > 0 {
				next--
			}
			if err := walk(c.ID, next); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(typeID, depth); err != nil {
		return nil, err
	}
	return out, nil
}

// AddType implements core.TypeStore. The definition's base must be valid and
// its parent, if any, already registered with the same base.
func (r *Registry) AddType(ctx context.Context, def *core.TypeDefinition) error {
	if def == nil || def.ID == "" {
		return core.Errorf(core.ErrInvalidArgument, "type definition has no id")
	}
	if !def.Base.Valid() {
		return core.Errorf(core.ErrInvalidArgument, "type %q has unknown base %q", def.ID, def.Base)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[def.ID]; exists {
		return core.Errorf(core.ErrConstraint, "type %q is already registered", def.ID)
	}
	if def.ParentID == "" {
		// Orphan types hang directly off their base.
		def.ParentID = string(def.Base)
	}
	if def.Base == core.BaseDocument && def.ContentStream == "" {
		def.ContentStream = core.ContentAllowed
	}
	if def.ParentID != "" {
		parent, ok := r.types[def.ParentID]
		if !ok {
			return core.Errorf(core.ErrNotFound, "parent type %q is not registered", def.ParentID)
		}
		if parent.Base != def.Base {
			return core.Errorf(core.ErrConstraint, "type %q base %q differs from parent base %q", def.ID, def.Base, parent.Base)
		}
	}
	r.types[def.ID] = def
	return nil
}

// RemoveType implements core.TypeStore. Base types are fixed; a type with
// live instances or subtypes is immutable.
func (r *Registry) RemoveType(ctx context.Context, typeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok := r.types[typeID]
	if !ok {
		return core.Errorf(core.ErrNotFound, "type %q is not registered", typeID)
	}
	if def.ID == string(def.Base) {
		return core.Errorf(core.ErrConstraint, "base type %q cannot be removed", typeID)
	}
	for _, other := range r.types {
		if other.ParentID == typeID {
			return core.Errorf(core.ErrConstraint, "type %q still has subtype %q", typeID, other.ID)
		}
	}
	if r.inUse != nil && r.inUse(typeID) {
		return core.Errorf(core.ErrConstraint, "type %q still has instances", typeID)
	}
	delete(r.types, typeID)
	return nil
}

// IsSubtypeOf reports whether typeID equals ancestorID or descends from it.
func (r *Registry) IsSubtypeOf(ctx context.Context, typeID, ancestorID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id := typeID; id != ""; {
		if id == ancestorID {
			return true, nil
		}
		def, ok := r.types[id]
		if !ok {
			return false, core.Errorf(core.ErrNotFound, "type %q is not registered", id)
		}
		id = def.ParentID
	}
	return false, nil
}

func sortTypes(defs []*core.TypeDefinition) {
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
}

var _ core.TypeStore = (*Registry)(nil)
