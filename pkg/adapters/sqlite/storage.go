// Package sqlite stores collections as rows of a single key-value table in a
// SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/notebook/pkg/core"
)

// DefaultFile is the database file name inside the data directory.
const DefaultFile = "notebook.db"

// Storage implements core.Storage on a SQLite table
// kv(key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at INTEGER).
type Storage struct {
	Path   string
	db     *sql.DB
	logger *slog.Logger

	reads, writes, conflicts atomic.Uint64
}

// New opens the database at path.
func New(ctx context.Context, path string, logger *slog.Logger) (*Storage, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	s := NewWithDB(db, logger)
	s.Path = path
	return s, nil
}

// NewWithDB wraps an already open database. The kv table must exist.
func NewWithDB(db *sql.DB, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Storage{db: db, logger: logger}
}

// Get implements core.Storage.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	s.reads.Add(1)
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements core.Storage.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	s.writes.Add(1)
	return nil
}

// Swap implements core.Swapper with a single conditional statement, so it
// also holds against other processes sharing the database file.
func (s *Storage) Swap(ctx context.Context, key, old string, existed bool, value string) (bool, error) {
	now := time.Now().UnixMilli()
	var (
		res sql.Result
		err error
	)
	if existed {
		res, err = s.db.ExecContext(ctx,
			`UPDATE kv SET value = ?, updated_at = ? WHERE key = ? AND value = ?`,
			value, now, key, old)
	} else {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO NOTHING`,
			key, value, now)
	}
	if err != nil {
		return false, fmt.Errorf("failed to write %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		s.conflicts.Add(1)
		s.logger.Debug("conditional write lost", "key", key)
		return false, nil
	}
	s.writes.Add(1)
	return true, nil
}

// Keys lists the stored keys, sorted.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Path      string `json:"path"`
	Reads     uint64 `json:"reads"`
	Writes    uint64 `json:"writes"`
	Conflicts uint64 `json:"conflicts"`
	OpenConns int    `json:"open_connections"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	return StorageState{
		Path:      s.Path,
		Reads:     s.reads.Load(),
		Writes:    s.writes.Load(),
		Conflicts: s.conflicts.Load(),
		OpenConns: s.db.Stats().OpenConnections,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "sqlite"
}

var (
	_ core.Storage                 = (*Storage)(nil)
	_ core.Swapper                 = (*Storage)(nil)
	_ introspection.Introspectable = (*Storage)(nil)
	_ introspection.Component      = (*Storage)(nil)
)
