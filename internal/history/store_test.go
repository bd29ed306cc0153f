package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	root := t.TempDir()

	store, err := OpenStore(root)
	require.NoError(t, err)
	defer store.Close()

	// Missing key reads as empty.
	value, err := store.Get("absent")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, store.Put("k", "v1"))
	value, err = store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v1", value)

	// Upsert overwrites.
	require.NoError(t, store.Put("k", "v2"))
	value, err = store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)

	require.NoError(t, store.Delete("k"))
	value, err = store.Get("k")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestSQLiteStore_CreatesWorkspaceDir(t *testing.T) {
	root := t.TempDir()

	store, err := OpenStore(root)
	require.NoError(t, err)
	defer store.Close()

	info, err := os.Stat(filepath.Join(root, ".fnr"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSQLiteStore_PersistsAcrossOpens(t *testing.T) {
	root := t.TempDir()

	store, err := OpenStore(root)
	require.NoError(t, err)
	require.NoError(t, store.Put("k", "survives"))
	require.NoError(t, store.Close())

	reopened, err := OpenStore(root)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "survives", value)
}

func TestManagerWithSQLiteStore(t *testing.T) {
	root := t.TempDir()

	store, err := OpenStore(root)
	require.NoError(t, err)

	m := NewManager(store, nil)
	m.RecordQuery("persisted query")
	m.RecordGlob("**/*.rs")
	require.NoError(t, m.Close())

	store, err = OpenStore(root)
	require.NoError(t, err)
	m = NewManager(store, nil)
	defer m.Close()

	assert.Equal(t, []string{"persisted query"}, m.Queries())
	assert.Equal(t, []string{"**/*.rs"}, m.Globs())
}
