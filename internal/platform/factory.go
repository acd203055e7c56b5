package platform

import (
	"context"
	"errors"
	"io"

	"github.com/aretw0/notebook/pkg/core"
	"github.com/aretw0/notebook/pkg/view"
)

// Notebook bundles the mutation service, the change hub every read and write
// goes through, and the projection engine configured for display.
type Notebook struct {
	*core.Service
	Hub  *core.Hub
	View *view.Engine

	storage core.Storage
}

// New opens a notebook.
//
//	nb, err := notebook.New("./data", notebook.WithAdapter("sqlite"))
//
// The URI argument is adapter-specific (see Init).
func New(uri string, opts ...Option) (*Notebook, error) {
	o, err := resolve(uri, opts)
	if err != nil {
		return nil, err
	}

	locale, err := view.LookupLocale(o.locale)
	if err != nil {
		return nil, err
	}

	// 1. Initialize storage
	storage, err := initStorage(context.Background(), uri, o)
	if err != nil {
		return nil, err
	}

	// 2. Wire the hub and the domain service
	hub := core.NewHub(storage, o.eventBuffer, o.logger)
	service := core.NewService(hub, core.Config{
		Logger:         o.logger,
		Now:            o.now,
		NewID:          o.newID,
		CompareAndSwap: o.compareAndSwap,
		MaxRetries:     o.maxRetries,
		ReadOnly:       o.readOnly,
	})

	return &Notebook{
		Service: service,
		Hub:     hub,
		View:    view.NewEngine(locale, o.location),
		storage: storage,
	}, nil
}

// Start picks up changes made to the storage by other processes until ctx
// is done. It is optional for one-shot commands.
func (n *Notebook) Start(ctx context.Context) error {
	return n.Hub.Start(ctx)
}

// Storage returns the storage under the hub.
func (n *Notebook) Storage() core.Storage {
	return n.storage
}

// Close releases the storage.
func (n *Notebook) Close() error {
	if c, ok := n.storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Home loads both collections and renders the dashboard.
func (n *Notebook) Home(ctx context.Context) view.HomeView {
	return n.View.Home(n.Notes(ctx), n.Reminders(ctx))
}

// IsValidation reports whether err rejected input before any write.
func IsValidation(err error) bool {
	return errors.Is(err, core.ErrValidation)
}
