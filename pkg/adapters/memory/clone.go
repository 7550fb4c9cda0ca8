package memory

import "github.com/aretw0/strata/pkg/core"

// The store hands out copies so callers can stage edits and race detection
// stays meaningful: a stale copy carries a stale change token.

func cloneEntry(e *core.Entry) core.Entry {
	out := *e
	out.Properties = e.Properties.Clone()
	out.ACL = e.ACL.Clone()
	out.Policies = append([]string(nil), e.Policies...)
	out.Parents = append([]string(nil), e.Parents...)
	return out
}

func cloneObject(obj core.Object) core.Object {
	switch v := obj.(type) {
	case *core.Document:
		out := *v
		out.Entry = cloneEntry(&v.Entry)
		return &out
	case *core.Folder:
		out := *v
		out.Entry = cloneEntry(&v.Entry)
		out.AllowedChildTypes = append([]string(nil), v.AllowedChildTypes...)
		return &out
	case *core.Policy:
		out := *v
		out.Entry = cloneEntry(&v.Entry)
		return &out
	case *core.Relationship:
		out := *v
		out.Entry = cloneEntry(&v.Entry)
		return &out
	}
	// The union is closed; a fifth variant is a programming error.
	panic("memory: unknown object variant")
}

func cloneDocument(d *core.Document) *core.Document {
	return cloneObject(d).(*core.Document)
}

func cloneFolder(f *core.Folder) *core.Folder {
	return cloneObject(f).(*core.Folder)
}
