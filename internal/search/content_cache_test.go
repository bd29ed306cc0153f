package search

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statFile(t *testing.T, path string) os.FileInfo {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info
}

func TestContentCache_ReuseAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0644))

	cache := newContentCache()

	content, binary, err := cache.load(path, statFile(t, path))
	require.NoError(t, err)
	assert.False(t, binary)
	assert.Equal(t, "first", string(content))

	// Unchanged file: same bytes come back.
	content, _, err = cache.load(path, statFile(t, path))
	require.NoError(t, err)
	assert.Equal(t, "first", string(content))

	// Rewrite with different content and a different size.
	require.NoError(t, os.WriteFile(path, []byte("second!"), 0644))
	content, _, err = cache.load(path, statFile(t, path))
	require.NoError(t, err)
	assert.Equal(t, "second!", string(content))

	cache.invalidate(path)
	content, _, err = cache.load(path, statFile(t, path))
	require.NoError(t, err)
	assert.Equal(t, "second!", string(content))
}

func TestContentCache_TouchWithoutChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("stable"), 0644))

	cache := newContentCache()
	_, _, err := cache.load(path, statFile(t, path))
	require.NoError(t, err)

	// Touch the file: mtime changes, digest does not.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	content, _, err := cache.load(path, statFile(t, path))
	require.NoError(t, err)
	assert.Equal(t, "stable", string(content))
}

func TestContentCache_MissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	info := statFile(t, path)
	require.NoError(t, os.Remove(path))

	cache := newContentCache()
	_, _, err := cache.load(path, info)
	assert.Error(t, err)
}

func TestLooksBinary(t *testing.T) {
	assert.True(t, looksBinary([]byte("abc\x00def")))
	assert.False(t, looksBinary([]byte("plain text\nmore text")))
	assert.False(t, looksBinary(nil))
}
