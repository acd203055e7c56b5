package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
)

// DefaultEventBuffer is the per-subscriber buffer used when none is configured.
const DefaultEventBuffer = 100

// Hub owns one in-process copy of every collection value and fans change
// events out to subscribers. It wraps another Storage and is itself a Storage,
// so every read and write in the process goes through one authoritative path.
//
// Writes made through the Hub are published immediately. Changes made behind
// its back are picked up when the wrapped storage is Watchable and Start was
// called.
type Hub struct {
	inner  Storage
	logger *slog.Logger
	buffer int

	mu      sync.RWMutex
	cache   map[string]cachedValue
	subs    map[uint64]*subscriber
	nextSub uint64
	bridged bool
	dropped atomic.Uint64

	// swapMu serializes conditional writes when the wrapped storage cannot.
	swapMu sync.Mutex
}

type cachedValue struct {
	value string
	ok    bool
}

type subscriber struct {
	pattern string
	ch      chan Event
}

// NewHub wraps inner. buffer <= 0 selects DefaultEventBuffer.
func NewHub(inner Storage, buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		inner:  inner,
		logger: logger,
		buffer: buffer,
		cache:  make(map[string]cachedValue),
		subs:   make(map[uint64]*subscriber),
	}
}

// Inner returns the wrapped storage.
func (h *Hub) Inner() Storage { return h.inner }

// Get serves key from the in-process copy, reading through on a miss.
func (h *Hub) Get(ctx context.Context, key string) (string, bool, error) {
	h.mu.RLock()
	c, hit := h.cache[key]
	h.mu.RUnlock()
	if hit {
		return c.value, c.ok, nil
	}

	value, ok, err := h.inner.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	h.remember(key, value, ok)
	return value, ok, nil
}

// GetFresh reads key from the wrapped storage and replaces the in-process
// copy. Mutations read through it so that a cached value never hides writes
// made by another process or another Hub over the same storage.
func (h *Hub) GetFresh(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := h.readInner(ctx, key)
	if err != nil {
		h.forget(key)
		return "", false, err
	}
	h.remember(key, value, ok)
	return value, ok, nil
}

func (h *Hub) readInner(ctx context.Context, key string) (string, bool, error) {
	if fr, ok := h.inner.(FreshReader); ok {
		return fr.GetFresh(ctx, key)
	}
	return h.inner.Get(ctx, key)
}

// Set writes through to the wrapped storage and publishes the change.
func (h *Hub) Set(ctx context.Context, key, value string) error {
	if err := h.inner.Set(ctx, key, value); err != nil {
		h.forget(key)
		return err
	}
	h.remember(key, value, true)
	h.publish(eventFor(ctx, key))
	return nil
}

// Swap writes conditionally. When the wrapped storage is not a Swapper the
// comparison happens here, which only protects writers inside this process.
func (h *Hub) Swap(ctx context.Context, key, old string, existed bool, value string) (bool, error) {
	var (
		written bool
		err     error
	)
	if sw, ok := h.inner.(Swapper); ok {
		written, err = sw.Swap(ctx, key, old, existed, value)
	} else {
		written, err = h.swapLocked(ctx, key, old, existed, value)
	}
	if err != nil || !written {
		h.forget(key)
		return written, err
	}
	h.remember(key, value, true)
	h.publish(eventFor(ctx, key))
	return true, nil
}

func (h *Hub) swapLocked(ctx context.Context, key, old string, existed bool, value string) (bool, error) {
	h.swapMu.Lock()
	defer h.swapMu.Unlock()

	current, ok, err := h.readInner(ctx, key)
	if err != nil {
		return false, err
	}
	if ok != existed || (ok && current != old) {
		return false, nil
	}
	if err := h.inner.Set(ctx, key, value); err != nil {
		return false, err
	}
	return true, nil
}

// Watch subscribes to changes of keys matching pattern until ctx is done.
// An empty pattern matches every key. Events are dropped, never queued
// without bound, when a subscriber falls behind.
func (h *Hub) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	if pattern == "" {
		pattern = "**"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	sub := &subscriber{pattern: pattern, ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = sub
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(sub.ch)
		h.mu.Unlock()
	}()

	return sub.ch, nil
}

// Start bridges change events of the wrapped storage into the hub, so edits
// made by other processes refresh the in-process copy. It is a no-op when the
// wrapped storage cannot be watched.
func (h *Hub) Start(ctx context.Context) error {
	w, ok := h.inner.(Watchable)
	if !ok {
		return nil
	}
	events, err := w.Watch(ctx, "**")
	if err != nil {
		return fmt.Errorf("failed to watch storage: %w", err)
	}

	h.mu.Lock()
	h.bridged = true
	h.mu.Unlock()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer func() {
			h.mu.Lock()
			h.bridged = false
			h.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				h.refresh(ctx, e)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		h.logger.Error("storage bridge stopped", "error", err)
	}))
	return nil
}

// refresh re-reads a key reported by the wrapped storage. Echoes of writes made
// through the hub leave the cached value unchanged and are not republished.
func (h *Hub) refresh(ctx context.Context, e Event) {
	value, ok, err := h.readInner(ctx, e.Key)
	if err != nil {
		h.logger.Warn("failed to refresh collection", "key", e.Key, "error", err)
		h.forget(e.Key)
		return
	}

	h.mu.Lock()
	prev, hit := h.cache[e.Key]
	h.cache[e.Key] = cachedValue{value: value, ok: ok}
	h.mu.Unlock()

	if hit && prev.ok == ok && prev.value == value {
		return
	}

	h.logger.Debug("collection changed outside the process", "key", e.Key)
	typ := EventModify
	if !ok {
		typ = EventDelete
	}
	h.publish(Event{Type: typ, Key: e.Key, Timestamp: time.Now().Unix()})
}

func (h *Hub) remember(key, value string, ok bool) {
	h.mu.Lock()
	h.cache[key] = cachedValue{value: value, ok: ok}
	h.mu.Unlock()
}

func (h *Hub) forget(key string) {
	h.mu.Lock()
	delete(h.cache, key)
	h.mu.Unlock()
}

func (h *Hub) publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if match, _ := doublestar.Match(sub.pattern, e.Key); !match {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			h.dropped.Add(1)
			h.logger.Debug("subscriber is behind, dropping event", "event", e.String())
		}
	}
}

func eventFor(ctx context.Context, key string) Event {
	if e, ok := recordEventFrom(ctx); ok && e.Key == key {
		if e.Timestamp == 0 {
			e.Timestamp = time.Now().Unix()
		}
		return e
	}
	return Event{Type: EventModify, Key: key, Timestamp: time.Now().Unix()}
}

// HubState exposes internal state for observability.
type HubState struct {
	CachedKeys  []string `json:"cached_keys"`
	Subscribers int      `json:"subscribers"`
	Dropped     uint64   `json:"dropped_events"`
	Bridged     bool     `json:"bridged"`
	EventBuffer int      `json:"event_buffer"`
}

// State implements introspection.Introspectable.
func (h *Hub) State() any {
	h.mu.RLock()
	defer h.mu.RUnlock()

	keys := make([]string, 0, len(h.cache))
	for k := range h.cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return HubState{
		CachedKeys:  keys,
		Subscribers: len(h.subs),
		Dropped:     h.dropped.Load(),
		Bridged:     h.bridged,
		EventBuffer: h.buffer,
	}
}

// ComponentType implements introspection.Component.
func (h *Hub) ComponentType() string {
	return "hub"
}

var _ FreshReader = (*Hub)(nil)
