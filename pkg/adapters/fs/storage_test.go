package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebook/pkg/adapters/fs"
	"github.com/aretw0/notebook/pkg/core"
)

func setupStorage(t *testing.T, opts ...func(*fs.Config)) (*fs.Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data")
	cfg := fs.Config{Path: path}
	for _, opt := range opts {
		opt(&cfg)
	}
	return fs.New(cfg), path
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory if Missing", func(t *testing.T) {
		s, path := setupStorage(t)
		require.NoError(t, s.Initialize(context.Background()))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		s, _ := setupStorage(t, func(c *fs.Config) { c.MustExist = true })
		assert.Error(t, s.Initialize(context.Background()))
	})
}

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	s, path := setupStorage(t)
	require.NoError(t, s.Initialize(ctx))

	_, ok, err := s.Get(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.False(t, ok, "never written key must be absent")

	require.NoError(t, s.Set(ctx, core.KeyNotes, `[{"id":"1","mode":"note"}]`))

	v, ok, err := s.Get(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1","mode":"note"}]`, v)

	raw, err := os.ReadFile(filepath.Join(path, "notes.json"))
	require.NoError(t, err)
	assert.Equal(t, v, string(raw))

	t.Run("Sees Edits Made Outside", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(path, "notes.json"), []byte(`["edited elsewhere"]`), 0644))
		v, _, err := s.Get(ctx, core.KeyNotes)
		require.NoError(t, err)
		assert.Equal(t, `["edited elsewhere"]`, v)
	})

	t.Run("Sees Removal Made Outside", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(path, "notes.json")))
		_, ok, err := s.Get(ctx, core.KeyNotes)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Rejects Keys Escaping The Directory", func(t *testing.T) {
		assert.Error(t, s.Set(ctx, "../outside", "[]"))
		_, _, err := s.Get(ctx, "a/b")
		assert.Error(t, err)
	})
}

func TestSwap(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStorage(t)
	require.NoError(t, s.Initialize(ctx))

	written, err := s.Swap(ctx, core.KeyFolders, "", false, "[1]")
	require.NoError(t, err)
	assert.True(t, written)

	written, err = s.Swap(ctx, core.KeyFolders, "", false, "[2]")
	require.NoError(t, err)
	assert.False(t, written, "key exists now")

	written, err = s.Swap(ctx, core.KeyFolders, "[0]", true, "[2]")
	require.NoError(t, err)
	assert.False(t, written, "stale base")

	written, err = s.Swap(ctx, core.KeyFolders, "[1]", true, "[2]")
	require.NoError(t, err)
	assert.True(t, written)

	v, _, _ := s.Get(ctx, core.KeyFolders)
	assert.Equal(t, "[2]", v)
}

func TestConcurrentCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStorage(t)
	require.NoError(t, s.Initialize(ctx))

	svc := core.NewService(s, core.Config{CompareAndSwap: true, MaxRetries: 50})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateNote(ctx, "n", "", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, svc.Notes(ctx), 10)
}

func TestKeys(t *testing.T) {
	ctx := context.Background()
	s, path := setupStorage(t)
	require.NoError(t, s.Initialize(ctx))

	require.NoError(t, s.Set(ctx, core.KeyReminders, "[]"))
	require.NoError(t, s.Set(ctx, core.KeyNotes, "[]"))
	require.NoError(t, os.WriteFile(filepath.Join(path, "notebook.yaml"), []byte("locale: en-US\n"), 0644))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{core.KeyNotes, core.KeyReminders}, keys)

	st := s.State().(fs.StorageState)
	assert.Equal(t, path, st.Path)
	assert.NotNil(t, st.LastWrite)
	assert.Equal(t, "fs", s.ComponentType())
}

// age moves the modification time of the file behind key into the past, as
// for a file nobody touched recently.
func age(t *testing.T, dir, key string) time.Time {
	t.Helper()
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(dir, key+".json"), old, old))
	return old
}

func TestCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Serves Stable Files", func(t *testing.T) {
		s, path := setupStorage(t)
		require.NoError(t, s.Initialize(ctx))
		require.NoError(t, s.Set(ctx, core.KeyNotes, `[]`))
		age(t, path, core.KeyNotes)

		for range 2 {
			v, ok, err := s.Get(ctx, core.KeyNotes)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, `[]`, v)
		}
		state := s.State().(fs.StorageState)
		assert.Equal(t, uint64(1), state.CacheHits)
	})

	t.Run("Outside Edit Invalidates Entry", func(t *testing.T) {
		s, path := setupStorage(t)
		require.NoError(t, s.Initialize(ctx))
		require.NoError(t, s.Set(ctx, core.KeyNotes, `[]`))
		age(t, path, core.KeyNotes)
		_, _, err := s.Get(ctx, core.KeyNotes)
		require.NoError(t, err)

		edited := `[{"id":"1","mode":"note"}]`
		require.NoError(t, os.WriteFile(filepath.Join(path, "notes.json"), []byte(edited), 0644))

		v, ok, err := s.Get(ctx, core.KeyNotes)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, edited, v)
	})

	t.Run("Same Size Rewrite Within Timestamp Granularity", func(t *testing.T) {
		s, path := setupStorage(t)
		require.NoError(t, s.Initialize(ctx))
		file := filepath.Join(path, "notes.json")
		require.NoError(t, os.WriteFile(file, []byte(`[{"id":"a"}]`), 0644))
		info, err := os.Stat(file)
		require.NoError(t, err)

		v, _, err := s.Get(ctx, core.KeyNotes)
		require.NoError(t, err)
		require.Equal(t, `[{"id":"a"}]`, v)

		// Same length and, as on a coarse-grained filesystem, the same mtime.
		require.NoError(t, os.WriteFile(file, []byte(`[{"id":"b"}]`), 0644))
		require.NoError(t, os.Chtimes(file, info.ModTime(), info.ModTime()))

		v, _, err = s.Get(ctx, core.KeyNotes)
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"b"}]`, v)
	})

	t.Run("GetFresh Ignores Matching Entry", func(t *testing.T) {
		s, path := setupStorage(t)
		require.NoError(t, s.Initialize(ctx))
		file := filepath.Join(path, "notes.json")
		require.NoError(t, os.WriteFile(file, []byte(`[{"id":"a"}]`), 0644))
		old := age(t, path, core.KeyNotes)
		_, _, err := s.Get(ctx, core.KeyNotes)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(file, []byte(`[{"id":"b"}]`), 0644))
		require.NoError(t, os.Chtimes(file, old, old))

		v, ok, err := s.GetFresh(ctx, core.KeyNotes)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, `[{"id":"b"}]`, v)
	})

	t.Run("Removed File Reads As Missing", func(t *testing.T) {
		s, path := setupStorage(t)
		require.NoError(t, s.Initialize(ctx))
		require.NoError(t, s.Set(ctx, core.KeyNotes, `[]`))
		require.NoError(t, os.Remove(filepath.Join(path, "notes.json")))

		_, ok, err := s.Get(ctx, core.KeyNotes)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
