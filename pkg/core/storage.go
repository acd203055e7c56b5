package core

import (
	"context"
	"fmt"
)

// Storage is the key-value primitive the collections live in.
// Both operations are fallible and nothing is transactional across keys.
type Storage interface {
	// Get returns the value stored under key. ok is false when the key was never written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
}

// Swapper is implemented by storages that can write conditionally.
type Swapper interface {
	// Swap stores value under key only if the stored value still equals old, or
	// if the key is still absent when existed is false. It reports whether the
	// value was written.
	Swap(ctx context.Context, key, old string, existed bool, value string) (bool, error)
}

// FreshReader is implemented by storages that keep a copy of their values.
// GetFresh reads the backing medium and refreshes that copy.
type FreshReader interface {
	GetFresh(ctx context.Context, key string) (value string, ok bool, err error)
}

// Watchable is implemented by storages that report changes to their keys.
type Watchable interface {
	// Watch streams events for keys matching pattern (doublestar syntax)
	// until ctx is cancelled.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// EventType represents the kind of change.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event reports a change to a collection. ID is set for record-level events
// and empty when the whole collection was replaced.
type Event struct {
	Type      EventType
	Key       string
	ID        ID
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s", e.Type, e.Key)
	}
	return fmt.Sprintf("%s %s/%s", e.Type, e.Key, e.ID)
}

type contextKey string

// recordEventKey carries the record-level event a write is about to cause, so
// that a Hub can publish it instead of a bare MODIFY.
const recordEventKey contextKey = "record_event"

func withRecordEvent(ctx context.Context, e Event) context.Context {
	return context.WithValue(ctx, recordEventKey, e)
}

func recordEventFrom(ctx context.Context) (Event, bool) {
	e, ok := ctx.Value(recordEventKey).(Event)
	return e, ok
}
