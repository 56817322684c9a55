package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, filepath.Join(dir, FileName), s.Path())
	_, err = os.Stat(s.Path())
	assert.NoError(t, err, "database file should exist after Open")
}

func TestNew_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	var name string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		"settings",
	).Scan(&name)
	require.NoError(t, err, "settings table should exist after migrations")
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Settings().Set("dominant_hand", "Left"))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Settings().Get("dominant_hand")
	require.NoError(t, err)
	assert.Equal(t, "Left", v)
}

func TestStore_Close(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	_, err = s.DB().Exec("SELECT 1")
	assert.Error(t, err, "DB operations should fail after close")
}

func TestSettings_GetSet(t *testing.T) {
	r := newTestStore(t).Settings()

	_, err := r.Get("dominant_hand")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.Set("dominant_hand", "Left"))
	v, err := r.Get("dominant_hand")
	require.NoError(t, err)
	assert.Equal(t, "Left", v)

	require.NoError(t, r.Set("dominant_hand", "Right"))
	v, err = r.Get("dominant_hand")
	require.NoError(t, err)
	assert.Equal(t, "Right", v)
}

func TestSettings_List(t *testing.T) {
	r := newTestStore(t).Settings()

	list, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, r.Set("pinch.threshold", "0.4"))
	require.NoError(t, r.Set("dominant_hand", "Left"))

	list, err = r.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "dominant_hand", list[0].Key)
	assert.Equal(t, "Left", list[0].Value)
	assert.Equal(t, "pinch.threshold", list[1].Key)
	assert.False(t, list[1].UpdatedAt.IsZero(), "UpdatedAt should be set")
}

func TestSettings_Delete(t *testing.T) {
	r := newTestStore(t).Settings()

	require.NoError(t, r.Set("gesture.stable_frames", "7"))
	require.NoError(t, r.Delete("gesture.stable_frames"))

	_, err := r.Get("gesture.stable_frames")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.Delete("gesture.stable_frames"), ErrNotFound)
}
