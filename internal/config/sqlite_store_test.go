package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yousum/internal/domain"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "data", "yousum.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_LoadEmptyReturnsDefaults(t *testing.T) {
	store := setupSQLiteStore(t)

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), got)
}

func TestSQLiteStore_SaveOverwritesWholeRecord(t *testing.T) {
	store := setupSQLiteStore(t)

	first := domain.Settings{Length: domain.LengthShort, FocusAreas: []string{"key_points"}, Language: "es"}
	second := domain.Settings{Length: domain.LengthLong, FocusAreas: []string{"action_items"}, Language: "ja"}

	require.NoError(t, store.Save(first))
	require.NoError(t, store.Save(second))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, second, got)

	var rows int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestSQLiteStore_ReopenKeepsSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yousum.db")
	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)

	want := domain.Settings{Length: domain.LengthShort, FocusAreas: []string{"technical_details"}, Language: "ko"}
	require.NoError(t, store.Save(want))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
