// Package lifecycle exposes collection changes as a lifecycle.Source, so a
// notebook can feed the same event loops as the rest of a lifecycle-managed
// program.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notebook/pkg/core"
)

// changeSource subscribes to a Watchable when started. Until then Events
// returns a channel that never delivers.
type changeSource struct {
	watched core.Watchable
	pattern string
	out     chan lifecycle.Event
}

// NewSource returns a Source of the changes to keys matching pattern. An
// empty pattern selects every collection. A *core.Hub is the usual argument:
// it reports record-level creates and deletes as well as edits made by other
// processes once started.
func NewSource(w core.Watchable, pattern string) lifecycle.Source {
	return &changeSource{
		watched: w,
		pattern: pattern,
		out:     make(chan lifecycle.Event),
	}
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start subscribes and returns once the subscription is in place. Events is
// closed when ctx is done or the subscription ends.
func (s *changeSource) Start(ctx context.Context) error {
	changes, err := s.watched.Watch(ctx, s.pattern)
	if err != nil {
		return fmt.Errorf("failed to watch %q: %w", s.pattern, err)
	}
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		return forward(ctx, changes, s.out)
	})
	return nil
}

// forward relays changes until either side is done. core.Event satisfies
// lifecycle.Event through its String method.
func forward(ctx context.Context, changes <-chan core.Event, out chan<- lifecycle.Event) error {
	for {
		var (
			change core.Event
			ok     bool
		)
		select {
		case <-ctx.Done():
			return nil
		case change, ok = <-changes:
		}
		if !ok {
			return nil
		}
		select {
		case out <- change:
		case <-ctx.Done():
			return nil
		}
	}
}
