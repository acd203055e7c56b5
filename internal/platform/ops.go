package platform

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/notebook/pkg/adapters/fs"
	"github.com/aretw0/notebook/pkg/adapters/memory"
	"github.com/aretw0/notebook/pkg/adapters/sqlite"
	"github.com/aretw0/notebook/pkg/core"
)

// Init opens the storage selected by the options.
// The URI argument is adapter-specific: a directory for "fs", a database file
// or directory for "sqlite", ignored for "memory".
func Init(uri string, opts ...Option) (core.Storage, error) {
	o, err := resolve(uri, opts)
	if err != nil {
		return nil, err
	}
	return initStorage(context.Background(), uri, o)
}

func initStorage(ctx context.Context, uri string, o *options) (core.Storage, error) {
	// 1. Check for injected storage
	if o.storage != nil {
		return o.storage, nil
	}

	// 2. Initialize based on Adapter
	switch o.adapter {
	case AdapterFS:
		return initFS(ctx, uri, o)
	case AdapterSQLite:
		return initSQLite(ctx, uri, o)
	case AdapterMemory:
		return memory.New(nil), nil
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

// initFS handles the initialization logic for the filesystem adapter.
func initFS(ctx context.Context, path string, o *options) (core.Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("fs adapter needs a data directory")
	}
	s := fs.New(fs.Config{
		Path:      path,
		MustExist: o.mustExist || o.readOnly,
		Logger:    o.logger,
	})
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// initSQLite opens <uri>/notebook.db, or uri itself when it names a file.
func initSQLite(ctx context.Context, uri string, o *options) (core.Storage, error) {
	if uri == "" {
		return nil, fmt.Errorf("sqlite adapter needs a database path")
	}
	path := uri
	if ext := strings.ToLower(filepath.Ext(uri)); ext != ".db" && ext != ".sqlite" {
		path = filepath.Join(uri, sqlite.DefaultFile)
	}
	return sqlite.New(ctx, path, o.logger)
}
