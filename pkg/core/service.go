package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"
)

// DefaultMaxRetries bounds compare-and-swap attempts per mutation.
const DefaultMaxRetries = 3

// Config tunes a Service.
type Config struct {
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() ID

	// CompareAndSwap routes every mutation through a version-checked write that
	// retries on conflict. When false a mutation is load, change, save: the
	// last writer wins.
	CompareAndSwap bool
	MaxRetries     int

	ReadOnly bool
}

// Service applies mutations to the collections.
type Service struct {
	storage Storage
	store   *Store
	hub     *Hub
	cfg     Config
}

// NewService creates a Service on top of storage. When storage is a *Hub,
// mutations are published to its subscribers as record-level events.
func NewService(storage Storage, cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = NewID
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	s := &Service{
		storage: storage,
		store:   NewStore(storage, cfg.Logger),
		cfg:     cfg,
	}
	if h, ok := storage.(*Hub); ok {
		s.hub = h
	}
	return s
}

// Store exposes the collection store the service writes through.
func (s *Service) Store() *Store { return s.store }

// Notes returns the raw notes collection in storage order.
func (s *Service) Notes(ctx context.Context) []Note {
	return LoadAll[Note](ctx, s.store, KeyNotes)
}

// Reminders returns the raw reminders collection in storage order, including
// records without a date.
func (s *Service) Reminders(ctx context.Context) []Reminder {
	return LoadAll[Reminder](ctx, s.store, KeyReminders)
}

// Folders returns the raw folders collection in storage order.
func (s *Service) Folders(ctx context.Context) []Folder {
	return LoadAll[Folder](ctx, s.store, KeyFolders)
}

// GetNote looks a note or list up by id.
func (s *Service) GetNote(ctx context.Context, id ID) (Note, error) {
	n, ok := Load[Note](ctx, s.store, KeyNotes).Find(id)
	if !ok {
		return Note{}, ErrNotFound
	}
	return n, nil
}

// GetReminder looks a reminder up by id.
func (s *Service) GetReminder(ctx context.Context, id ID) (Reminder, error) {
	r, ok := Load[Reminder](ctx, s.store, KeyReminders).Find(id)
	if !ok {
		return Reminder{}, ErrNotFound
	}
	return r, nil
}

// CreateNote appends a plain note.
func (s *Service) CreateNote(ctx context.Context, title, content, color string) (Note, error) {
	n, err := NewNote(s.cfg.NewID(), title, content, color)
	if err != nil {
		return Note{}, err
	}
	return n, create(ctx, s, KeyNotes, "save note", n, nil)
}

// CreateList appends a list built from item texts.
func (s *Service) CreateList(ctx context.Context, title string, items []string, color string) (Note, error) {
	n, err := NewList(s.cfg.NewID(), title, items, color)
	if err != nil {
		return Note{}, err
	}
	return n, create(ctx, s, KeyNotes, "save list", n, nil)
}

// CreateReminder appends a reminder due at date.
func (s *Service) CreateReminder(ctx context.Context, message string, date time.Time, color string) (Reminder, error) {
	r, err := NewReminder(s.cfg.NewID(), message, date, color)
	if err != nil {
		return Reminder{}, err
	}
	return r, create(ctx, s, KeyReminders, "save reminder", r, nil)
}

// CreateFolder appends a folder. The name is trimmed and must not be empty nor
// equal, ignoring case, to the name of a folder in the loaded collection.
func (s *Service) CreateFolder(ctx context.Context, name string) (Folder, error) {
	f, err := NewFolder(s.cfg.NewID(), name, s.cfg.Now())
	if err != nil {
		return Folder{}, err
	}
	unique := func(snap *Snapshot[Folder]) error {
		if snap.Any(func(other Folder) bool {
			return strings.EqualFold(strings.TrimSpace(other.Name), f.Name)
		}) {
			return ErrDuplicateName
		}
		return nil
	}
	return f, create(ctx, s, KeyFolders, "save folder", f, unique)
}

// DeleteNote removes every note or list with the given id.
func (s *Service) DeleteNote(ctx context.Context, id ID) error {
	return remove[Note](ctx, s, KeyNotes, "delete note", id)
}

// DeleteReminder removes every reminder with the given id, dated or not.
func (s *Service) DeleteReminder(ctx context.Context, id ID) error {
	return remove[Reminder](ctx, s, KeyReminders, "delete reminder", id)
}

// DeleteFolder removes every folder with the given id.
func (s *Service) DeleteFolder(ctx context.Context, id ID) error {
	return remove[Folder](ctx, s, KeyFolders, "delete folder", id)
}

// Watch observes collection changes. It needs a Hub or a Watchable storage.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.storage.(Watchable)
	if !ok {
		return nil, errors.New("storage does not support watching")
	}
	return w.Watch(ctx, pattern)
}

// Close releases the storage when it holds resources.
func (s *Service) Close() error {
	var inner Storage = s.storage
	if s.hub != nil {
		inner = s.hub.Inner()
	}
	if c, ok := inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func create[T Record](ctx context.Context, s *Service, key, op string, rec T, check func(*Snapshot[T]) error) error {
	ctx = withRecordEvent(ctx, Event{Type: EventCreate, Key: key, ID: rec.RecordID()})
	return mutate(ctx, s, key, op, func(snap *Snapshot[T]) (bool, error) {
		if check != nil {
			if err := check(snap); err != nil {
				return false, err
			}
		}
		snap.Append(rec)
		return true, nil
	})
}

func remove[T Record](ctx context.Context, s *Service, key, op string, id ID) error {
	ctx = withRecordEvent(ctx, Event{Type: EventDelete, Key: key, ID: id})
	return mutate(ctx, s, key, op, func(snap *Snapshot[T]) (bool, error) {
		return snap.Remove(id) > 0, nil
	})
}

// mutate fetches the authoritative collection, applies change and writes it
// back. change reports whether anything changed; nothing is written otherwise.
// Errors from change are returned untouched and nothing is written. A failed
// fetch aborts before change runs.
func mutate[T Record](ctx context.Context, s *Service, key, op string, change func(*Snapshot[T]) (bool, error)) error {
	if s.cfg.ReadOnly {
		return ErrReadOnly
	}

	attempts := 1
	if s.cfg.CompareAndSwap {
		attempts = s.cfg.MaxRetries
	}

	for attempt := 1; ; attempt++ {
		snap, err := Fetch[T](ctx, s.store, key)
		if err != nil {
			s.cfg.Logger.Warn("collection unreadable, nothing written", "key", key, "op", op, "error", err)
			return &OpError{Op: op, Key: key, Err: err}
		}
		changed, err := change(snap)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		if !s.cfg.CompareAndSwap {
			err = Save(ctx, s.store, snap)
		} else {
			err = Swap(ctx, s.store, snap)
		}
		if err == nil {
			s.cfg.Logger.Debug("collection written", "key", key, "op", op, "records", snap.Len())
			return nil
		}
		if errors.Is(err, ErrConflict) && attempt < attempts {
			s.cfg.Logger.Debug("collection changed concurrently, retrying", "key", key, "op", op, "attempt", attempt)
			continue
		}
		return &OpError{Op: op, Key: key, Err: err}
	}
}

// Update runs a version-checked read-modify-write of the collection under key,
// retrying change up to the configured number of times on conflict. It is
// independent of Config.CompareAndSwap.
func Update[T Record](ctx context.Context, s *Service, key string, change func(*Snapshot[T]) error) error {
	if s.cfg.ReadOnly {
		return ErrReadOnly
	}
	op := "update " + key
	var last error
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		snap, err := Fetch[T](ctx, s.store, key)
		if err != nil {
			return &OpError{Op: op, Key: key, Err: err}
		}
		if err := change(snap); err != nil {
			return err
		}
		last = Swap(ctx, s.store, snap)
		if !errors.Is(last, ErrConflict) {
			break
		}
	}
	if last != nil {
		return &OpError{Op: op, Key: key, Err: last}
	}
	return nil
}
