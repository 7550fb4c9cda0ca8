package core

import "time"

// PropertyType enumerates the scalar types a property value may hold.
type PropertyType string

const (
	PropertyString   PropertyType = "string"
	PropertyID       PropertyType = "id"
	PropertyInteger  PropertyType = "integer"
	PropertyDecimal  PropertyType = "decimal"
	PropertyBoolean  PropertyType = "boolean"
	PropertyDateTime PropertyType = "datetime"
	PropertyURI      PropertyType = "uri"
	PropertyHTML     PropertyType = "html"
)

// Cardinality says whether a property holds a single value or a list.
type Cardinality string

const (
	Single Cardinality = "single"
	Multi  Cardinality = "multi"
)

// Well-known property ids fixed by the protocol.
const (
	PropObjectTypeID    = "cmis:objectTypeId"
	PropName            = "cmis:name"
	PropObjectID        = "cmis:objectId"
	PropCreatedBy       = "cmis:createdBy"
	PropCreationDate    = "cmis:creationDate"
	PropModifiedBy      = "cmis:lastModifiedBy"
	PropModificationDate = "cmis:lastModificationDate"
	PropChangeToken     = "cmis:changeToken"
	PropVersionSeriesID = "cmis:versionSeriesId"
	PropVersionLabel    = "cmis:versionLabel"
	PropIsLatestVersion = "cmis:isLatestVersion"
	PropCheckinComment  = "cmis:checkinComment"
	PropSourceID        = "cmis:sourceId"
	PropTargetID        = "cmis:targetId"
)

// Property holds zero, one or many typed scalar values keyed by a property id.
type Property struct {
	ID     string
	Type   PropertyType
	Values []any
}

// IsEmpty reports whether the property carries no value at all, or only a
// single nil placeholder.
func (p Property) IsEmpty() bool {
	if len(p.Values) == 0 {
		return true
	}
	return len(p.Values) == 1 && p.Values[0] == nil
}

// First returns the first value, or nil when empty.
func (p Property) First() any {
	if len(p.Values) == 0 {
		return nil
	}
	return p.Values[0]
}

// FirstString returns the first value as a string, or "".
func (p Property) FirstString() string {
	s, _ := p.First().(string)
	return s
}

// Properties is the typed property set of an object, keyed by property id.
type Properties map[string]Property

// StringValue returns the first string value for id, or "".
func (ps Properties) StringValue(id string) string {
	return ps[id].FirstString()
}

// BoolValue returns the first boolean value for id, or false.
func (ps Properties) BoolValue(id string) bool {
	b, _ := ps[id].First().(bool)
	return b
}

// TimeValue returns the first time value for id, or the zero time.
func (ps Properties) TimeValue(id string) time.Time {
	t, _ := ps[id].First().(time.Time)
	return t
}

// SetString stores a single-valued string property.
func (ps Properties) SetString(id, value string) {
	ps[id] = Property{ID: id, Type: PropertyString, Values: []any{value}}
}

// SetID stores a single-valued id property.
func (ps Properties) SetID(id, value string) {
	ps[id] = Property{ID: id, Type: PropertyID, Values: []any{value}}
}

// Clone returns a shallow-value copy of the property set.
func (ps Properties) Clone() Properties {
	out := make(Properties, len(ps))
	for k, v := range ps {
		vals := make([]any, len(v.Values))
		copy(vals, v.Values)
		v.Values = vals
		out[k] = v
	}
	return out
}

// Matches reports whether a raw value conforms to the given property type.
// Integers tolerate int and int64, decimals float64.
func (t PropertyType) Matches(v any) bool {
	if v == nil {
		return true
	}
	switch t {
	case PropertyString, PropertyID, PropertyURI, PropertyHTML:
		_, ok := v.(string)
		return ok
	case PropertyInteger:
		switch v.(type) {
		case int, int32, int64:
			return true
		}
		return false
	case PropertyDecimal:
		switch v.(type) {
		case float32, float64:
			return true
		}
		return false
	case PropertyBoolean:
		_, ok := v.(bool)
		return ok
	case PropertyDateTime:
		_, ok := v.(time.Time)
		return ok
	}
	return false
}
