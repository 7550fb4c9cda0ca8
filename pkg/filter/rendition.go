package filter

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/aretw0/strata/pkg/core"
)

// None is the rendition filter token that excludes all renditions. The
// default when the filter string is omitted.
const None = "cmis:none"

// RenditionFilter is the parsed form of a rendition filter string. A term is
// either a bare rendition kind or a type/subtype mime pattern; the subtype
// may be a wildcard.
type RenditionFilter struct {
	all   bool
	none  bool
	kinds map[string]struct{}
	mimes []glob.Glob
}

// ParseRenditionFilter parses a rendition filter string. An empty or blank
// string means no renditions.
func ParseRenditionFilter(s string) (*RenditionFilter, error) {
	trimmed := strings.TrimSpace(s)
	switch trimmed {
	case "", None:
		return &RenditionFilter{none: true}, nil
	case All:
		return &RenditionFilter{all: true}, nil
	}

	f := &RenditionFilter{kinds: make(map[string]struct{})}
	for _, raw := range strings.Split(trimmed, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			return nil, core.Errorf(core.ErrFilterInvalid, "empty token in rendition filter %q", s)
		}
		if strings.IndexFunc(token, isSpace) >= 0 {
			return nil, core.Errorf(core.ErrFilterInvalid, "whitespace inside rendition filter token %q", token)
		}
		if strings.Contains(token, "/") {
			parts := strings.Split(token, "/")
			if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
				return nil, core.Errorf(core.ErrFilterInvalid, "malformed mime pattern %q", token)
			}
			g, err := glob.Compile(token, '/')
			if err != nil {
				return nil, core.Wrap(core.ErrFilterInvalid, err, "malformed mime pattern %q", token)
			}
			f.mimes = append(f.mimes, g)
			continue
		}
		f.kinds[token] = struct{}{}
	}
	return f, nil
}

// Accept reports whether a rendition passes the filter, by kind or by mime
// type.
func (f *RenditionFilter) Accept(r core.Rendition) bool {
	if f.all {
		return true
	}
	if f.none {
		return false
	}
	if _, ok := f.kinds[r.Kind]; ok {
		return true
	}
	for _, g := range f.mimes {
		if g.Match(r.MimeType) {
			return true
		}
	}
	return false
}

// IsNone reports whether the filter excludes everything, letting callers
// skip the rendition lookup entirely.
func (f *RenditionFilter) IsNone() bool { return f.none }

// Apply projects a rendition list through the filter.
func (f *RenditionFilter) Apply(rs []core.Rendition) []core.Rendition {
	if f.all {
		return rs
	}
	if f.none {
		return nil
	}
	var out []core.Rendition
	for _, r := range rs {
		if f.Accept(r) {
			out = append(out, r)
		}
	}
	return out
}
