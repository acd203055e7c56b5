package view

import (
	"context"
	"sync"
)

// Loader holds the projection a screen displays and refreshes it. Each
// refresh takes a generation number; a result is applied only if no newer
// refresh started meanwhile, so a slow load never overwrites a fresher one.
type Loader[T any] struct {
	load func(context.Context) T

	mu      sync.Mutex
	gen     uint64
	applied uint64
	current T
}

// NewLoader creates a Loader around load.
func NewLoader[T any](load func(context.Context) T) *Loader[T] {
	return &Loader[T]{load: load}
}

// Refresh runs the load and reports whether its result was applied.
func (l *Loader[T]) Refresh(ctx context.Context) (T, bool) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	v := l.load(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return l.current, false
	}
	l.current, l.applied = v, gen
	return v, true
}

// Current returns the projection last applied.
func (l *Loader[T]) Current() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Apply changes the held projection in place, e.g. after a delete. Loads
// started before the change can no longer overwrite it.
func (l *Loader[T]) Apply(fn func(T) T) T {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.current, l.applied = fn(l.current), l.gen
	return l.current
}
