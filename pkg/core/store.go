package core

import (
	"context"
	"fmt"
	"log/slog"
)

// Store loads and saves whole collections on top of a Storage.
//
// Loading never fails: unreadable keys, invalid JSON and non-array values all
// come back as an empty collection and are only logged. Saving replaces the
// whole value and reports failures to the caller.
type Store struct {
	storage Storage
	logger  *slog.Logger
}

// NewStore creates a Store. A nil logger discards output.
func NewStore(storage Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{storage: storage, logger: logger}
}

// Storage returns the underlying key-value storage.
func (s *Store) Storage() Storage { return s.storage }

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	raw, ok, err := s.storage.Get(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read collection, treating as empty", "key", key, "error", err)
		return "", false
	}
	return raw, ok
}

// fresh reads key past any cache the storage keeps.
func (s *Store) fresh(ctx context.Context, key string) (string, bool, error) {
	if fr, ok := s.storage.(FreshReader); ok {
		return fr.GetFresh(ctx, key)
	}
	return s.storage.Get(ctx, key)
}

// Load reads the collection stored under key.
func Load[T Record](ctx context.Context, s *Store, key string) *Snapshot[T] {
	raw, ok := s.read(ctx, key)
	snap, err := decodeSnapshot[T](key, raw, ok, s.logger)
	if err != nil {
		s.logger.Warn("failed to parse collection, treating as empty", "key", key, "error", err)
	}
	return snap
}

// Fetch reads the collection under key for a read-modify-write. Unlike Load it
// bypasses cached copies and fails with ErrStorageRead when the value cannot be
// read or is not a JSON array, so a write never replaces records it could not see.
func Fetch[T Record](ctx context.Context, s *Store, key string) (*Snapshot[T], error) {
	raw, ok, err := s.fresh(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	snap, err := decodeSnapshot[T](key, raw, ok, s.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	return snap, nil
}

// Save writes the whole snapshot back under its key, last writer wins.
func Save[T Record](ctx context.Context, s *Store, snap *Snapshot[T]) error {
	value, err := snap.encode()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	if err := s.storage.Set(ctx, snap.Key, value); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	snap.base, snap.existed = value, true
	return nil
}

// Swap writes the snapshot only if the stored value is still the one the
// snapshot was loaded from. It returns ErrConflict otherwise. Storages that
// cannot write conditionally fall back to Save.
func Swap[T Record](ctx context.Context, s *Store, snap *Snapshot[T]) error {
	sw, ok := s.storage.(Swapper)
	if !ok {
		s.logger.Debug("storage cannot compare-and-swap, saving unconditionally", "key", snap.Key)
		return Save(ctx, s, snap)
	}

	value, err := snap.encode()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	written, err := sw.Swap(ctx, snap.Key, snap.base, snap.existed, value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	if !written {
		return ErrConflict
	}
	snap.base, snap.existed = value, true
	return nil
}

// LoadAll returns the decoded records stored under key.
func LoadAll[T Record](ctx context.Context, s *Store, key string) []T {
	return Load[T](ctx, s, key).Records()
}

// SaveAll replaces the collection under key with recs.
func SaveAll[T Record](ctx context.Context, s *Store, key string, recs []T) error {
	return Save(ctx, s, NewSnapshot(key, recs...))
}
