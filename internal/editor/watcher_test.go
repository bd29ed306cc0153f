package editor

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingInvalidator) Invalidate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recordingInvalidator) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for: %s", msg)
}

func TestWatcher_InvalidatesOnWrite(t *testing.T) {
	root := t.TempDir()
	inv := &recordingInvalidator{}

	w, err := NewWatcher(inv, nil, nil)
	require.NoError(t, err)
	w.SetDebounce(30 * time.Millisecond)
	require.NoError(t, w.Start(root))
	defer w.Stop()

	path := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

	waitFor(t, func() bool {
		for _, p := range inv.seen() {
			if p == path {
				return true
			}
		}
		return false
	}, "invalidation of written file")
}

func TestWatcher_BatchesRapidWrites(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	var batches [][]string

	w, err := NewWatcher(nil, nil, nil)
	require.NoError(t, err)
	w.SetDebounce(80 * time.Millisecond)
	w.SetOnBatch(func(paths []string) {
		mu.Lock()
		batches = append(batches, paths)
		mu.Unlock()
	})
	require.NoError(t, w.Start(root))
	defer w.Stop()

	// Burst of writes inside one debounce window.
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0644))
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > 0
	}, "debounced batch callback")

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 3)
}

func TestWatcher_ReloadsOpenBuffers(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "open.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	buffers := NewBuffers(root, nil)
	buffers.Open("open.txt", "v1")

	w, err := NewWatcher(nil, buffers, nil)
	require.NoError(t, err)
	w.SetDebounce(30 * time.Millisecond)
	require.NoError(t, w.Start(root))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0644))

	waitFor(t, func() bool {
		content, _ := buffers.Content("open.txt")
		return content == "v2"
	}, "buffer reload after external write")
}

func TestWatcher_WatchesNewSubdirectories(t *testing.T) {
	root := t.TempDir()
	inv := &recordingInvalidator{}

	w, err := NewWatcher(inv, nil, nil)
	require.NoError(t, err)
	w.SetDebounce(30 * time.Millisecond)
	require.NoError(t, w.Start(root))
	defer w.Stop()

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))

	// Give the watcher a moment to pick up the new directory watch.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "inner.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	waitFor(t, func() bool {
		for _, p := range inv.seen() {
			if p == path {
				return true
			}
		}
		return false
	}, "invalidation of file in new subdirectory")
}

func TestWatcher_StopDropsPendingEvents(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	calls := 0

	w, err := NewWatcher(nil, nil, nil)
	require.NoError(t, err)
	w.SetDebounce(200 * time.Millisecond)
	w.SetOnBatch(func([]string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, w.Start(root))

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0644))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, w.Stop())

	time.Sleep(300 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}
