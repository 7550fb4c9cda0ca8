// Package filter implements the wire-visible property and rendition filter
// grammars. Filters are parsed once per call and reused as predicates.
package filter

import (
	"strings"

	"github.com/aretw0/strata/pkg/core"
)

// All is the wildcard filter token.
const All = "*"

// PropertyFilter is the parsed form of a property filter string: either the
// wildcard or an explicit set of property ids.
type PropertyFilter struct {
	all bool
	ids map[string]struct{}
}

// illegalPropertyChars rejects a whole filter string when found inside a
// token.
const illegalPropertyChars = ",\"'.()"

// ParsePropertyFilter parses a property filter string. The grammar is "*" or
// a comma-separated list of property ids; surrounding whitespace per token is
// tolerated, whitespace or punctuation inside a token is not. An empty or
// blank string is treated as the wildcard, so naive callers see every
// property.
func ParsePropertyFilter(s string) (*PropertyFilter, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == All {
		return &PropertyFilter{all: true}, nil
	}

	ids := make(map[string]struct{})
	for _, raw := range strings.Split(trimmed, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			return nil, core.Errorf(core.ErrFilterInvalid, "empty token in property filter %q", s)
		}
		if token == All {
			return nil, core.Errorf(core.ErrFilterInvalid, "wildcard mixed with tokens in property filter %q", s)
		}
		if strings.ContainsAny(token, illegalPropertyChars) || strings.IndexFunc(token, isSpace) >= 0 {
			return nil, core.Errorf(core.ErrFilterInvalid, "illegal character in property filter token %q", token)
		}
		ids[token] = struct{}{}
	}
	return &PropertyFilter{ids: ids}, nil
}

// Accept reports whether the property id passes the filter.
func (f *PropertyFilter) Accept(propertyID string) bool {
	if f.all {
		return true
	}
	_, ok := f.ids[propertyID]
	return ok
}

// IsAll reports whether the filter is the wildcard.
func (f *PropertyFilter) IsAll() bool { return f.all }

// Apply projects a property set through the filter. Well-known identity
// properties required by every projection stay regardless of the filter.
func (f *PropertyFilter) Apply(props core.Properties) core.Properties {
	if f.all {
		return props
	}
	out := make(core.Properties)
	for id, p := range props {
		if f.Accept(id) || alwaysProjected(id) {
			out[id] = p
		}
	}
	return out
}

// alwaysProjected lists the properties a result row is unusable without.
func alwaysProjected(id string) bool {
	switch id {
	case core.PropObjectID, core.PropObjectTypeID, core.PropName:
		return true
	}
	return false
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
