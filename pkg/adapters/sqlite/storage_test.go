package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebook/pkg/adapters/sqlite"
	"github.com/aretw0/notebook/pkg/core"
)

func newStorage(t *testing.T) (*sqlite.Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", sqlite.DefaultFile)
	s, err := sqlite.New(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	s, _ := newStorage(t)

	_, ok, err := s.Get(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, core.KeyNotes, `[{"id":"1"}]`))
	require.NoError(t, s.Set(ctx, core.KeyNotes, `[{"id":"2"}]`))

	v, ok, err := s.Get(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"2"}]`, v)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{core.KeyNotes}, keys)
}

func TestSwap(t *testing.T) {
	ctx := context.Background()
	s, _ := newStorage(t)

	written, err := s.Swap(ctx, core.KeyReminders, "", false, "[1]")
	require.NoError(t, err)
	assert.True(t, written)

	written, err = s.Swap(ctx, core.KeyReminders, "", false, "[9]")
	require.NoError(t, err)
	assert.False(t, written)

	written, err = s.Swap(ctx, core.KeyReminders, "[0]", true, "[9]")
	require.NoError(t, err)
	assert.False(t, written)

	written, err = s.Swap(ctx, core.KeyReminders, "[1]", true, "[2]")
	require.NoError(t, err)
	assert.True(t, written)

	st := s.State().(sqlite.StorageState)
	assert.Equal(t, uint64(2), st.Conflicts)
	assert.Equal(t, uint64(2), st.Writes)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	s, path := newStorage(t)

	svc := core.NewService(s, core.Config{})
	_, err := svc.CreateFolder(ctx, "Trabalho")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	again, err := sqlite.New(ctx, path, nil)
	require.NoError(t, err)
	defer again.Close()

	folders := core.NewService(again, core.Config{}).Folders(ctx)
	require.Len(t, folders, 1)
	assert.Equal(t, "Trabalho", folders[0].Name)
}
