package core

import "context"

// BaseType tags one of the four object families. Fixed per type definition
// and per object at creation.
type BaseType string

const (
	BaseDocument     BaseType = "cmis:document"
	BaseFolder       BaseType = "cmis:folder"
	BasePolicy       BaseType = "cmis:policy"
	BaseRelationship BaseType = "cmis:relationship"
)

// Valid reports whether b is one of the four base types.
func (b BaseType) Valid() bool {
	switch b {
	case BaseDocument, BaseFolder, BasePolicy, BaseRelationship:
		return true
	}
	return false
}

// Updatability says in which phase a property may be written.
type Updatability string

const (
	OnCreate       Updatability = "oncreate"
	ReadWrite      Updatability = "readwrite"
	WhenCheckedOut Updatability = "whencheckedout"
	ReadOnly       Updatability = "readonly"
)

// ContentStreamAllowed is the content policy of a document type.
type ContentStreamAllowed string

const (
	ContentNotAllowed ContentStreamAllowed = "notallowed"
	ContentAllowed    ContentStreamAllowed = "allowed"
	ContentRequired   ContentStreamAllowed = "required"
)

// PropertyDefinition describes one property of a type.
type PropertyDefinition struct {
	ID           string       `yaml:"id"`
	DisplayName  string       `yaml:"displayName,omitempty"`
	Type         PropertyType `yaml:"type"`
	Cardinality  Cardinality  `yaml:"cardinality"`
	Required     bool         `yaml:"required"`
	Updatability Updatability `yaml:"updatability"`
}

// TypeDefinition describes an object type: its base family, flags and
// property definitions. Immutable once instances exist.
type TypeDefinition struct {
	ID          string   `yaml:"id"`
	ParentID    string   `yaml:"parentId,omitempty"`
	Base        BaseType `yaml:"base"`
	DisplayName string   `yaml:"displayName,omitempty"`
	Description string   `yaml:"description,omitempty"`

	Versionable        bool                 `yaml:"versionable"`
	Fileable           bool                 `yaml:"fileable"`
	Queryable          bool                 `yaml:"queryable"`
	ControllableACL    bool                 `yaml:"controllableACL"`
	ControllablePolicy bool                 `yaml:"controllablePolicy"`
	ContentStream      ContentStreamAllowed `yaml:"contentStream,omitempty"`

	// Relationship endpoint constraints. Empty means any type.
	AllowedSourceTypes []string `yaml:"allowedSourceTypes,omitempty"`
	AllowedTargetTypes []string `yaml:"allowedTargetTypes,omitempty"`

	Properties map[string]PropertyDefinition `yaml:"properties,omitempty"`
}

// PropertyDef returns the definition for a property id, or false.
func (t *TypeDefinition) PropertyDef(id string) (PropertyDefinition, bool) {
	d, ok := t.Properties[id]
	return d, ok
}

// TypeAccessor is the read-only view of the type system.
type TypeAccessor interface {
	// GetTypeDefinition resolves a type id.
	GetTypeDefinition(ctx context.Context, typeID string) (*TypeDefinition, error)

	// GetTypeChildren lists the direct subtypes of a type. An empty typeID
	// lists the base types.
	GetTypeChildren(ctx context.Context, typeID string) ([]*TypeDefinition, error)

	// GetTypeDescendants lists subtypes recursively down to depth levels.
	// depth -1 means unlimited.
	GetTypeDescendants(ctx context.Context, typeID string, depth int) ([]*TypeDefinition, error)
}

// TypeStore extends TypeAccessor with registration. Removal is rejected
// while instances of the type exist.
type TypeStore interface {
	TypeAccessor

	AddType(ctx context.Context, def *TypeDefinition) error
	RemoveType(ctx context.Context, typeID string) error
}
