package notebook

import (
	"log/slog"
	"time"

	"github.com/aretw0/notebook/internal/platform"
	"github.com/aretw0/notebook/pkg/core"
)

// --- Types ---

// Notebook is a public alias for the opened notebook.
type Notebook = platform.Notebook

// FileConfig is a public alias for the YAML configuration file.
type FileConfig = platform.FileConfig

// --- Configuration ---

// ConfigFileName is the config file looked up in the data directory.
const ConfigFileName = platform.ConfigFileName

// Option defines a functional option for configuring the notebook.
type Option = platform.Option

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = platform.AdapterFS
	AdapterSQLite = platform.AdapterSQLite
	AdapterMemory = platform.AdapterMemory
)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorage injects a custom storage.
func WithStorage(s core.Storage) Option {
	return platform.WithStorage(s)
}

// WithAdapter selects the storage adapter by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithEventBuffer sets the per-subscriber event buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithReadOnly rejects every mutation.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithCompareAndSwap retries mutations on conflict instead of overwriting.
func WithCompareAndSwap(enabled bool) Option {
	return platform.WithCompareAndSwap(enabled)
}

// WithMaxRetries bounds compare-and-swap attempts.
func WithMaxRetries(n int) Option {
	return platform.WithMaxRetries(n)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLocale selects the display locale.
func WithLocale(tag string) Option {
	return platform.WithLocale(tag)
}

// WithLocation sets the time zone dates are rendered in.
func WithLocation(loc *time.Location) Option {
	return platform.WithLocation(loc)
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithIDGenerator replaces the record id generator.
func WithIDGenerator(gen func() core.ID) Option {
	return platform.WithIDGenerator(gen)
}

// WithConfigFile reads options from a YAML file.
func WithConfigFile(path string) Option {
	return platform.WithConfigFile(path)
}

// --- Factory ---

// New opens a notebook.
func New(uri string, opts ...Option) (*Notebook, error) {
	return platform.New(uri, opts...)
}

// Init opens the storage explicitly.
func Init(uri string, opts ...Option) (core.Storage, error) {
	return platform.Init(uri, opts...)
}

// --- Utils ---

// ErrNoRoot is returned by FindRoot when no notebook is found.
var ErrNoRoot = platform.ErrNoRoot

// FindRoot returns the closest directory at or above startDir holding a notebook.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string, required bool) (FileConfig, error) {
	return platform.LoadConfig(path, required)
}

// SaveConfig writes a YAML configuration file.
func SaveConfig(path string, cfg FileConfig) error {
	return platform.SaveConfig(path, cfg)
}
