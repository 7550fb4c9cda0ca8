package conn

import "github.com/aretw0/strata/pkg/core"

// Page is the standard result window: a negative MaxItems means no bound,
// SkipCount is the number of leading items to drop.
type Page struct {
	MaxItems  int
	SkipCount int
}

// Unbounded asks for everything.
var Unbounded = Page{MaxItems: -1}

// paginate cuts one window out of items. Skipping past the end is an
// invalid argument; numItems always reports the pre-window total.
func paginate[T any](items []T, p Page) (window []T, hasMore bool, numItems int, err error) {
	if p.SkipCount < 0 {
		return nil, false, 0, core.Errorf(core.ErrInvalidArgument, "skip count must not be negative")
	}
	numItems = len(items)
	if p.SkipCount > numItems {
		return nil, false, 0, core.Errorf(core.ErrInvalidArgument, "skip count %d exceeds %d items", p.SkipCount, numItems)
	}
	rest := items[p.SkipCount:]
	if p.MaxItems < 0 || p.MaxItems >= len(rest) {
		return rest, false, numItems, nil
	}
	return rest[:p.MaxItems], true, numItems, nil
}
