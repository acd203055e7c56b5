// Package fs stores collections as JSON files in a directory, one file per
// key, and reports edits made to those files by other processes.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/notebook/pkg/core"
)

// DefaultPerm is the mode of newly written collection files.
const DefaultPerm os.FileMode = 0o644

// Storage implements core.Storage on top of a directory.
// The value of key lives in <Path>/<key>.json.
type Storage struct {
	Path   string
	config Config
	cache  *cache

	mu            sync.RWMutex
	locks         map[string]*sync.Mutex
	watcherActive bool
	lastWrite     *time.Time
}

// Config holds the configuration for the filesystem storage.
type Config struct {
	Path      string
	MustExist bool
	Perm      os.FileMode
	Logger    *slog.Logger

	// DebounceInterval merges bursts of filesystem events per key.
	DebounceInterval time.Duration
}

// New creates a filesystem-backed storage. Call Initialize before use.
func New(config Config) *Storage {
	if config.Perm == 0 {
		config.Perm = DefaultPerm
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 50 * time.Millisecond
	}
	return &Storage{
		Path:   config.Path,
		config: config,
		cache:  newCache(),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Initialize creates the directory unless MustExist is set, in which case a
// missing directory is an error.
func (s *Storage) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.Path)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%s is not a directory", s.Path)
	case err == nil:
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to stat data directory: %w", err)
	case s.config.MustExist:
		return fmt.Errorf("data directory %s does not exist", s.Path)
	}

	if err := os.MkdirAll(s.Path, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	s.config.Logger.Debug("created data directory", "path", s.Path)
	return nil
}

func (s *Storage) filename(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.Path, key+Ext), nil
}

// lock returns the in-process mutex serializing writes of key.
func (s *Storage) lock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Get implements core.Storage.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	path, err := s.filename(key)
	if err != nil {
		return "", false, err
	}
	return s.read(path)
}

// GetFresh implements core.FreshReader: it reads the file even when the cache
// holds an entry that still matches its stat.
func (s *Storage) GetFresh(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	path, err := s.filename(key)
	if err != nil {
		return "", false, err
	}
	s.cache.drop(path)
	return s.read(path)
}

func (s *Storage) read(path string) (string, bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.cache.drop(path)
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("%s is a directory", path)
	}
	if v, ok := s.cache.get(path, info); ok {
		return v, true, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	s.cache.put(path, string(data), info)
	return string(data), true, nil
}

// Set implements core.Storage.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.filename(key)
	if err != nil {
		return err
	}

	l := s.lock(key)
	l.Lock()
	defer l.Unlock()
	return s.write(path, value)
}

// Swap implements core.Swapper. The comparison only excludes writers of this
// process; other processes are not locked out.
func (s *Storage) Swap(ctx context.Context, key, old string, existed bool, value string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	path, err := s.filename(key)
	if err != nil {
		return false, err
	}

	l := s.lock(key)
	l.Lock()
	defer l.Unlock()

	s.cache.drop(path)
	current, ok, err := s.read(path)
	if err != nil {
		return false, err
	}
	if ok != existed || (ok && current != old) {
		return false, nil
	}
	if err := s.write(path, value); err != nil {
		return false, err
	}
	return true, nil
}

// write replaces the file at path. Caller holds the key lock.
func (s *Storage) write(path, value string) error {
	if err := writeFileAtomic(path, []byte(value), s.config.Perm); err != nil {
		s.cache.drop(path)
		return err
	}
	if info, err := os.Stat(path); err == nil {
		s.cache.put(path, value, info)
	} else {
		s.cache.drop(path)
	}

	now := time.Now()
	s.mu.Lock()
	s.lastWrite = &now
	s.mu.Unlock()
	return nil
}

// Keys lists the keys currently stored, sorted.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if key, ok := keyOf(e.Name()); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

var (
	_ core.Storage   = (*Storage)(nil)
	_ core.Swapper   = (*Storage)(nil)
	_ core.Watchable = (*Storage)(nil)
)

var (
	_ core.Storage     = (*Storage)(nil)
	_ core.Swapper     = (*Storage)(nil)
	_ core.FreshReader = (*Storage)(nil)
)
