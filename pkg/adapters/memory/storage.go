// Package memory provides an in-process storage backend.
//
// It holds every key in a map and supports fault injection, which makes it the
// backend of choice for tests and for throwaway sessions.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/notebook/pkg/core"
)

// Storage is a map-backed core.Storage.
type Storage struct {
	mu     sync.Mutex
	values map[string]string
	subs   []chan core.Event

	// GetErr, when set, is returned by every Get.
	GetErr error
	// SetErr, when set, is returned by every Set and Swap and nothing is written.
	SetErr error
	// BeforeSet, when set, runs right before a value is written, outside the
	// lock. Tests use it to interleave another writer.
	BeforeSet func(key string)

	gets, sets int
}

// New creates an empty Storage. seed values are copied in.
func New(seed map[string]string) *Storage {
	s := &Storage{values: make(map[string]string, len(seed))}
	for k, v := range seed {
		s.values[k] = v
	}
	return s
}

// Get implements core.Storage.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.GetErr != nil {
		return "", false, s.GetErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements core.Storage.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.hook(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.write(key, value)
	return nil
}

// Swap implements core.Swapper.
func (s *Storage) Swap(ctx context.Context, key, old string, existed bool, value string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.hook(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return false, s.SetErr
	}
	current, ok := s.values[key]
	if ok != existed || (ok && current != old) {
		return false, nil
	}
	s.write(key, value)
	return true, nil
}

func (s *Storage) hook(key string) {
	s.mu.Lock()
	before := s.BeforeSet
	s.mu.Unlock()
	if before != nil {
		before(key)
	}
}

// write stores value and notifies watchers. Caller holds s.mu.
func (s *Storage) write(key, value string) {
	_, existed := s.values[key]
	s.values[key] = value
	s.sets++

	typ := core.EventModify
	if !existed {
		typ = core.EventCreate
	}
	e := core.Event{Type: typ, Key: key, Timestamp: time.Now().Unix()}
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Watch implements core.Watchable.
func (s *Storage) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "**"
	}
	raw := make(chan core.Event, core.DefaultEventBuffer)
	out := make(chan core.Event, core.DefaultEventBuffer)

	s.mu.Lock()
	s.subs = append(s.subs, raw)
	s.mu.Unlock()

	go func() {
		defer close(out)
		defer s.unsubscribe(raw)
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-raw:
				if match, _ := doublestar.Match(pattern, e.Key); !match {
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *Storage) unsubscribe(ch chan core.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.subs {
		if c == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Put writes value directly, bypassing hooks and injected errors.
func (s *Storage) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(key, value)
}

// Value returns the stored value for key without counting a read.
func (s *Storage) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Writes reports how many values were written so far.
func (s *Storage) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

// State exposes internal state for observability.
type State struct {
	Keys   []string `json:"keys"`
	Reads  int      `json:"reads"`
	Writes int      `json:"writes"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return State{Keys: keys, Reads: s.gets, Writes: s.sets}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "memory"
}

var (
	_ core.Storage                 = (*Storage)(nil)
	_ core.Swapper                 = (*Storage)(nil)
	_ core.Watchable               = (*Storage)(nil)
	_ introspection.Introspectable = (*Storage)(nil)
	_ introspection.Component      = (*Storage)(nil)
)
