package memory

import (
	"context"

	"github.com/aretw0/strata/pkg/core"
)

// ChangeLog implements core.Backend: the entries strictly after token.
// Tokens are ULIDs, so ordering is plain string comparison.
func (s *Store) ChangeLog(ctx context.Context, token string, maxItems int) (*core.ChangeList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if token != "" {
		found := false
		for i, ev := range s.changes {
			if ev.Token == token {
				start = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil, core.Errorf(core.ErrInvalidArgument, "change-log token %q is unknown", token)
		}
	}

	end := len(s.changes)
	if maxItems >= 0 && start+maxItems < end {
		end = start + maxItems
	}

	out := &core.ChangeList{
		Events:  append([]core.ChangeEvent(nil), s.changes[start:end]...),
		HasMore: end < len(s.changes),
	}
	if len(out.Events) > 0 {
		out.NextToken = out.Events[len(out.Events)-1].Token
	} else {
		out.NextToken = token
	}
	return out, nil
}

// Watch implements core.Watchable: a live feed of change events. The
// channel closes when ctx is done. Events emitted while a watcher lags are
// dropped, not queued without bound.
func (s *Store) Watch(ctx context.Context) (<-chan core.ChangeEvent, error) {
	ch := make(chan core.ChangeEvent, 64)

	s.watchMu.Lock()
	s.watchers = append(s.watchers, ch)
	s.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		s.watchMu.Lock()
		for i, w := range s.watchers {
			if w == ch {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				break
			}
		}
		s.watchMu.Unlock()
		close(ch)
	}()

	return ch, nil
}
