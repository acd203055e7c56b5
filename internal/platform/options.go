package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/notebook/pkg/core"
)

// Adapter names.
const (
	AdapterFS     = "fs"
	AdapterSQLite = "sqlite"
	AdapterMemory = "memory"
)

// options holds the internal configuration for the notebook.
type options struct {
	storage        core.Storage
	logger         *slog.Logger
	adapter        string
	eventBuffer    int
	readOnly       bool
	compareAndSwap bool
	maxRetries     int
	mustExist      bool
	locale         string
	location       *time.Location
	now            func() time.Time
	newID          func() core.ID
	configFile     string
}

// Option defines a functional option for configuring the notebook.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter: AdapterFS,
	}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage injects a custom storage (e.g. a test double).
// If provided, the adapter named by WithAdapter is not created.
func WithStorage(s core.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithAdapter selects the storage adapter by name: "fs", "sqlite" or "memory".
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithEventBuffer sets the per-subscriber event buffer.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithReadOnly rejects every mutation with core.ErrReadOnly and skips
// creating the data directory.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithCompareAndSwap makes every mutation a version-checked write that is
// retried on conflict instead of overwriting concurrent changes.
func WithCompareAndSwap(enabled bool) Option {
	return func(o *options) {
		o.compareAndSwap = enabled
	}
}

// WithMaxRetries bounds compare-and-swap attempts. Zero means default (3).
func WithMaxRetries(n int) Option {
	return func(o *options) {
		o.maxRetries = n
	}
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithLocale selects the display locale by tag ("pt-BR", "en-US").
func WithLocale(tag string) Option {
	return func(o *options) {
		o.locale = tag
	}
}

// WithLocation sets the time zone dates are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.location = loc
	}
}

// WithClock replaces time.Now, e.g. for deterministic createdAt values.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator replaces the record id generator.
func WithIDGenerator(gen func() core.ID) Option {
	return func(o *options) {
		o.newID = gen
	}
}

// WithConfigFile reads options from a YAML file. Options passed after it
// take precedence over the file.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}
