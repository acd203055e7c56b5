package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebook/pkg/adapters/memory"
	"github.com/aretw0/notebook/pkg/core"
)

// sequentialIDs returns an id generator yielding "id-1", "id-2", ...
func sequentialIDs() func() core.ID {
	var mu sync.Mutex
	n := 0
	return func() core.ID {
		mu.Lock()
		defer mu.Unlock()
		n++
		return core.ID("id-" + strconv.Itoa(n))
	}
}

func newService(t *testing.T, storage core.Storage, cfg core.Config) *core.Service {
	t.Helper()
	if cfg.NewID == nil {
		cfg.NewID = sequentialIDs()
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	}
	return core.NewService(storage, cfg)
}

func TestService_CreateAndLoad(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(nil)
	svc := newService(t, mem, core.Config{})

	note, err := svc.CreateNote(ctx, "Groceries", "milk", "")
	require.NoError(t, err)
	list, err := svc.CreateList(ctx, "Todo", []string{"a", " ", "b"}, "#82789E")
	require.NoError(t, err)

	notes := svc.Notes(ctx)
	require.Len(t, notes, 2)
	assert.Equal(t, note.ID, notes[0].ID)
	assert.Equal(t, core.ModeNote, notes[0].Mode)
	assert.Equal(t, list.ID, notes[1].ID)
	assert.Equal(t, core.ModeList, notes[1].Mode)
	assert.Equal(t, []string{"a", "b"}, notes[1].Items())

	got, err := svc.GetNote(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "Todo", got.Title)

	_, err = svc.GetNote(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_NeverWrittenKeysAreEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, memory.New(nil), core.Config{})

	assert.Empty(t, svc.Notes(ctx))
	assert.Empty(t, svc.Reminders(ctx))
	assert.Empty(t, svc.Folders(ctx))
}

func TestService_ReadFailureIsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(map[string]string{core.KeyNotes: `[{"id":"1","mode":"note"}]`})
	mem.GetErr = errors.New("disk on fire")
	svc := newService(t, mem, core.Config{})

	assert.Empty(t, svc.Notes(ctx))
}

func TestService_UnreadableCollectionIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	const stored = `[{"id":"1","mode":"note","title":"keep me"}]`

	t.Run("Corrupt Value", func(t *testing.T) {
		corrupt := stored[:len(stored)-4]
		mem := memory.New(map[string]string{core.KeyNotes: corrupt})
		svc := newService(t, mem, core.Config{})

		_, err := svc.CreateNote(ctx, "new", "x", "")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrStorageRead)
		var opErr *core.OpError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "save note", opErr.Op)

		v, _ := mem.Value(core.KeyNotes)
		assert.Equal(t, corrupt, v)
		assert.Equal(t, 0, mem.Writes())
	})

	t.Run("Read Error", func(t *testing.T) {
		mem := memory.New(map[string]string{core.KeyNotes: stored})
		mem.GetErr = errors.New("transient io")
		svc := newService(t, mem, core.Config{})

		_, err := svc.CreateNote(ctx, "new", "x", "")
		assert.ErrorIs(t, err, core.ErrStorageRead)
		assert.ErrorContains(t, err, "could not save note: storage read failed: transient io")

		err = svc.DeleteNote(ctx, "1")
		assert.ErrorIs(t, err, core.ErrStorageRead)

		v, _ := mem.Value(core.KeyNotes)
		assert.Equal(t, stored, v)
		assert.Equal(t, 0, mem.Writes())
	})

	t.Run("Folder Duplicate Check Cannot Run", func(t *testing.T) {
		mem := memory.New(map[string]string{core.KeyFolders: `{"broken":true}`})
		svc := newService(t, mem, core.Config{})

		_, err := svc.CreateFolder(ctx, "Work")
		assert.ErrorIs(t, err, core.ErrStorageRead)
		assert.Equal(t, 0, mem.Writes())
	})

	t.Run("Update", func(t *testing.T) {
		mem := memory.New(map[string]string{core.KeyNotes: `[{`})
		svc := newService(t, mem, core.Config{})

		called := false
		err := core.Update(ctx, svc, core.KeyNotes, func(*core.Snapshot[core.Note]) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, core.ErrStorageRead)
		assert.False(t, called)
	})

	t.Run("Screens Still Load Empty", func(t *testing.T) {
		mem := memory.New(map[string]string{core.KeyNotes: `[{`})
		svc := newService(t, mem, core.Config{})
		assert.Empty(t, svc.Notes(ctx))
	})
}

func TestService_TwoHubsOverOneStorage(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(nil)
	a := newService(t, core.NewHub(mem, 0, nil), core.Config{})
	b := newService(t, core.NewHub(mem, 0, nil), core.Config{})

	x, err := a.CreateNote(ctx, "X", "", "")
	require.NoError(t, err)
	require.Len(t, b.Notes(ctx), 1) // b now holds [X] in memory

	y, err := a.CreateNote(ctx, "Y", "", "")
	require.NoError(t, err)

	// b deletes from what is stored now, not from its earlier copy.
	require.NoError(t, b.DeleteNote(ctx, x.ID))

	fresh := newService(t, mem, core.Config{})
	notes := fresh.Notes(ctx)
	require.Len(t, notes, 1)
	assert.Equal(t, y.ID, notes[0].ID)

	// b's own reads see the result of its write.
	require.Len(t, b.Notes(ctx), 1)
}

func TestService_DeleteNote(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(map[string]string{
		core.KeyNotes: `[{"id":"a","mode":"note"},{"id":"b","mode":"list","list":[{"text":"x"}]},{"id":"a","mode":"note","title":"dup"}]`,
	})
	svc := newService(t, mem, core.Config{})

	t.Run("Removes Every Match", func(t *testing.T) {
		require.NoError(t, svc.DeleteNote(ctx, "a"))
		notes := svc.Notes(ctx)
		require.Len(t, notes, 1)
		assert.Equal(t, core.ID("b"), notes[0].ID)
	})

	t.Run("Unknown ID Is A No-op", func(t *testing.T) {
		before, _ := mem.Value(core.KeyNotes)
		writes := mem.Writes()

		require.NoError(t, svc.DeleteNote(ctx, "nope"))

		after, _ := mem.Value(core.KeyNotes)
		assert.Equal(t, before, after)
		assert.Equal(t, writes, mem.Writes())
	})
}

func TestService_DeleteWriteFailure(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(map[string]string{core.KeyNotes: `[{"id":"a","mode":"note"}]`})
	mem.SetErr = errors.New("quota exceeded")
	svc := newService(t, mem, core.Config{})

	err := svc.DeleteNote(ctx, "a")
	require.Error(t, err)

	var opErr *core.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "delete note", opErr.Op)
	assert.ErrorIs(t, err, core.ErrStorageWrite)
	assert.Equal(t, "could not delete note: storage write failed: quota exceeded", err.Error())

	v, _ := mem.Value(core.KeyNotes)
	assert.JSONEq(t, `[{"id":"a","mode":"note"}]`, v)
}

func TestService_CreateFolder(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(nil)
	svc := newService(t, mem, core.Config{})

	f, err := svc.CreateFolder(ctx, "  Work  ")
	require.NoError(t, err)
	assert.Equal(t, "Work", f.Name)
	assert.Equal(t, "2025-03-01T12:00:00.000Z", f.CreatedAt)

	t.Run("Rejects Duplicates Ignoring Case", func(t *testing.T) {
		before, _ := mem.Value(core.KeyFolders)
		writes := mem.Writes()

		_, err := svc.CreateFolder(ctx, "work")
		assert.ErrorIs(t, err, core.ErrDuplicateName)
		assert.ErrorIs(t, err, core.ErrValidation)

		after, _ := mem.Value(core.KeyFolders)
		assert.Equal(t, before, after)
		assert.Equal(t, writes, mem.Writes())
	})

	t.Run("Rejects Empty Names", func(t *testing.T) {
		writes := mem.Writes()
		_, err := svc.CreateFolder(ctx, "   ")
		assert.ErrorIs(t, err, core.ErrEmptyName)
		assert.Equal(t, writes, mem.Writes())
	})

	require.Len(t, svc.Folders(ctx), 1)
}

func TestService_UndatedReminderStaysDeletable(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(map[string]string{
		core.KeyReminders: `[{"id":"r1","message":"no date"},{"id":"r2","date":"2025-01-05T10:00:00.000Z"}]`,
	})
	svc := newService(t, mem, core.Config{})

	require.Len(t, svc.Reminders(ctx), 2)
	require.NoError(t, svc.DeleteReminder(ctx, "r1"))

	rs := svc.Reminders(ctx)
	require.Len(t, rs, 1)
	assert.Equal(t, core.ID("r2"), rs[0].ID)
}

func TestService_CreateReminderNeedsDate(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(nil)
	svc := newService(t, mem, core.Config{})

	_, err := svc.CreateReminder(ctx, "call", time.Time{}, "")
	assert.ErrorIs(t, err, core.ErrMissingDate)
	assert.Equal(t, 0, mem.Writes())

	r, err := svc.CreateReminder(ctx, "call", time.Date(2025, 2, 15, 9, 30, 0, 0, time.UTC), "")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-15T09:30:00.000Z", r.Date)
}

func TestService_ReadOnly(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(nil)
	svc := newService(t, mem, core.Config{ReadOnly: true})

	_, err := svc.CreateNote(ctx, "t", "c", "")
	assert.ErrorIs(t, err, core.ErrReadOnly)
	assert.ErrorIs(t, svc.DeleteNote(ctx, "x"), core.ErrReadOnly)
	assert.Equal(t, 0, mem.Writes())
}

// interleave makes mem write an extra note exactly once, right before the
// next write of the notes collection.
func interleave(mem *memory.Storage) {
	var once sync.Once
	mem.BeforeSet = func(key string) {
		if key != core.KeyNotes {
			return
		}
		once.Do(func() {
			v, _ := mem.Value(core.KeyNotes)
			var elems []json.RawMessage
			_ = json.Unmarshal([]byte(v), &elems)
			elems = append(elems, json.RawMessage(`{"id":"other","mode":"note"}`))
			b, _ := json.Marshal(elems)
			mem.Put(core.KeyNotes, string(b))
		})
	}
}

func TestService_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(map[string]string{core.KeyNotes: `[]`})
	svc := newService(t, mem, core.Config{})
	interleave(mem)

	_, err := svc.CreateNote(ctx, "mine", "", "")
	require.NoError(t, err)

	// The concurrent append landed between load and save and was overwritten.
	notes := svc.Notes(ctx)
	require.Len(t, notes, 1)
	assert.Equal(t, "mine", notes[0].Title)
}

func TestService_LastWriterWinsOnDelete(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(map[string]string{core.KeyNotes: `[{"id":"x","mode":"note"}]`})
	svc := newService(t, mem, core.Config{})
	interleave(mem)

	require.NoError(t, svc.DeleteNote(ctx, "x"))

	// The append made while the delete was pending is gone with it.
	assert.Empty(t, svc.Notes(ctx))
	v, _ := mem.Value(core.KeyNotes)
	assert.JSONEq(t, `[]`, v)
}

func TestService_CompareAndSwapKeepsConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(map[string]string{core.KeyNotes: `[]`})
	svc := newService(t, mem, core.Config{CompareAndSwap: true})
	interleave(mem)

	_, err := svc.CreateNote(ctx, "mine", "", "")
	require.NoError(t, err)

	notes := svc.Notes(ctx)
	require.Len(t, notes, 2)
	assert.Equal(t, core.ID("other"), notes[0].ID)
	assert.Equal(t, "mine", notes[1].Title)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("Retries On Conflict", func(t *testing.T) {
		mem := memory.New(map[string]string{core.KeyNotes: `[]`})
		svc := newService(t, mem, core.Config{})
		interleave(mem)

		calls := 0
		err := core.Update(ctx, svc, core.KeyNotes, func(s *core.Snapshot[core.Note]) error {
			calls++
			s.Append(core.Note{ID: "u", Mode: core.ModeNote})
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Len(t, svc.Notes(ctx), 2)
	})

	t.Run("Gives Up After MaxRetries", func(t *testing.T) {
		mem := memory.New(map[string]string{core.KeyNotes: `[]`})
		svc := newService(t, mem, core.Config{MaxRetries: 2})
		n := 0
		mem.BeforeSet = func(string) {
			n++
			mem.Put(core.KeyNotes, `[{"id":"w`+strconv.Itoa(n)+`","mode":"note"}]`)
		}

		err := core.Update(ctx, svc, core.KeyNotes, func(s *core.Snapshot[core.Note]) error {
			s.Append(core.Note{ID: "u", Mode: core.ModeNote})
			return nil
		})
		assert.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("Change Error Aborts", func(t *testing.T) {
		mem := memory.New(nil)
		svc := newService(t, mem, core.Config{})
		boom := errors.New("boom")
		err := core.Update(ctx, svc, core.KeyNotes, func(*core.Snapshot[core.Note]) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, mem.Writes())
	})
}

func TestService_State(t *testing.T) {
	svc := newService(t, core.NewHub(memory.New(nil), 0, nil), core.Config{CompareAndSwap: true})
	st, ok := svc.State().(core.ServiceState)
	require.True(t, ok)
	assert.Equal(t, "memory", st.StorageType)
	assert.True(t, st.CompareAndSwap)
	assert.Equal(t, core.DefaultMaxRetries, st.MaxRetries)
	assert.NotNil(t, st.Hub)
	assert.Equal(t, "service", svc.ComponentType())
}
