package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/strata/pkg/core"
)

// Query implements core.Backend: a full scan honoring type, path-glob and
// property predicates. Hits come back as ids ordered by OrderBy (creation
// time when unset).
func (s *Store) Query(ctx context.Context, q *core.Query) (*core.QueryResult, error) {
	if q == nil {
		return nil, core.Errorf(core.ErrInvalidArgument, "query is nil")
	}
	if q.PathGlob != "" {
		if !doublestar.ValidatePattern(q.PathGlob) {
			return nil, core.Errorf(core.ErrInvalidArgument, "path glob %q is malformed", q.PathGlob)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		id      string
		orderBy string
	}
	var hits []hit

	for id, obj := range s.objects {
		if id == s.rootID {
			continue
		}
		ok, err := s.matches(ctx, obj, q)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		hits = append(hits, hit{id: id, orderBy: s.orderKey(obj, q.OrderBy)})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].orderBy != hits[j].orderBy {
			return hits[i].orderBy < hits[j].orderBy
		}
		return hits[i].id < hits[j].id
	})

	out := &core.QueryResult{NumItems: len(hits)}
	for _, h := range hits {
		out.IDs = append(out.IDs, h.id)
	}
	return out, nil
}

func (s *Store) matches(ctx context.Context, obj core.Object, q *core.Query) (bool, error) {
	entry := obj.Core()

	if q.TypeID != "" {
		if q.IncludeSubtypes {
			ok, err := s.Registry.IsSubtypeOf(ctx, entry.TypeID, q.TypeID)
			if err != nil || !ok {
				return false, err
			}
		} else if entry.TypeID != q.TypeID {
			return false, nil
		}
	}

	if q.PathGlob != "" {
		path := s.objectPath(obj)
		if path == "" {
			return false, nil
		}
		ok, err := doublestar.Match(q.PathGlob, strings.TrimPrefix(path, "/"))
		if err != nil || !ok {
			return false, nil
		}
	}

	for _, cond := range q.Where {
		if !matchCondition(entry, cond) {
			return false, nil
		}
	}
	return true, nil
}

// objectPath resolves the primary path of an object, or "" when unfiled.
// Callers hold s.mu.
func (s *Store) objectPath(obj core.Object) string {
	if f, ok := obj.(*core.Folder); ok {
		return f.Path
	}
	entry := obj.Core()
	if len(entry.Parents) == 0 {
		return ""
	}
	parent, err := s.folder(entry.Parents[0])
	if err != nil {
		return ""
	}
	return joinPath(parent.Path, entry.Name)
}

func matchCondition(entry *core.Entry, cond core.Condition) bool {
	var values []any
	switch cond.PropertyID {
	case core.PropName:
		values = []any{entry.Name}
	case core.PropObjectID:
		values = []any{entry.ID}
	case core.PropObjectTypeID:
		values = []any{entry.TypeID}
	default:
		values = entry.Properties[cond.PropertyID].Values
	}

	switch cond.Op {
	case core.OpEquals:
		for _, v := range values {
			if v == cond.Value {
				return true
			}
		}
		return false
	case core.OpNotEqual:
		for _, v := range values {
			if v == cond.Value {
				return false
			}
		}
		return true
	case core.OpLike:
		pattern, _ := cond.Value.(string)
		for _, v := range values {
			if s, ok := v.(string); ok {
				if ok, err := doublestar.Match(likeToGlob(pattern), s); err == nil && ok {
					return true
				}
			}
		}
		return false
	case core.OpIn:
		set, _ := cond.Value.([]any)
		for _, v := range values {
			for _, candidate := range set {
				if v == candidate {
					return true
				}
			}
		}
		return false
	}
	return false
}

// likeToGlob maps SQL-ish LIKE wildcards to glob syntax.
func likeToGlob(pattern string) string {
	return strings.ReplaceAll(strings.ReplaceAll(pattern, "%", "*"), "_", "?")
}

func (s *Store) orderKey(obj core.Object, orderBy string) string {
	entry := obj.Core()
	switch orderBy {
	case "", core.PropCreationDate:
		return fmt.Sprintf("%020d", entry.CreatedAt.UnixNano())
	case core.PropModificationDate:
		return fmt.Sprintf("%020d", entry.ModifiedAt.UnixNano())
	case core.PropName:
		return entry.Name
	default:
		return entry.Properties.StringValue(orderBy)
	}
}
