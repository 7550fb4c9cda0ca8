package core

// QueryOp is a predicate operator on a property value.
type QueryOp string

const (
	OpEquals   QueryOp = "eq"
	OpNotEqual QueryOp = "ne"
	OpLike     QueryOp = "like"
	OpIn       QueryOp = "in"
)

// Condition is one property predicate of a query.
type Condition struct {
	PropertyID string
	Op         QueryOp
	Value      any
}

// Query is the structured query handed to the backend's search engine. The
// connection treats it as opaque; the backend decides which parts it can
// honor.
type Query struct {
	// TypeID restricts hits to one type; IncludeSubtypes widens the match
	// to its descendants.
	TypeID          string
	IncludeSubtypes bool

	// PathGlob restricts hits to objects whose path matches a glob pattern
	// (doublestar syntax). Empty means no path restriction.
	PathGlob string

	Where   []Condition
	OrderBy string
}

// QueryResult carries hit ids, not objects. The search index may lag
// storage, so hits are re-resolved (and stale ones skipped) during result
// assembly.
type QueryResult struct {
	IDs []string

	// NumItems is the total hit count, or -1 when unknown.
	NumItems int
}
