// Package lifecycle bridges a watchable backend's change feed into the
// generic lifecycle.Source contract, so a composing process can supervise
// the feed alongside its other long-running components.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/strata/pkg/core"
)

type changeSource struct {
	backend core.Watchable
	out     chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits repository change events.
// The watch channel is opened on Start, not construction, so the source can
// participate in ordered startup.
func NewSource(backend core.Watchable) lifecycle.Source {
	return &changeSource{
		backend: backend,
		out:     make(chan lifecycle.Event),
	}
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *changeSource) Start(ctx context.Context) error {
	events, err := s.backend.Watch(ctx)
	if err != nil {
		return err
	}
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				// core.ChangeEvent implements lifecycle.Event (has String())
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
