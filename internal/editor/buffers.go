// Package editor tracks the host editor's view of the workspace: which
// files are open, which carry unsaved changes, and what their buffer
// content is. The search side consumes this through small read-only
// interfaces; the watcher keeps buffers and the search cache in sync with
// changes on disk.
package editor

import (
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/standardbeagle/fnr/pkg/pathutil"
)

// buffer is one open file. Content mirrors the editor buffer, which may
// differ from disk while modified.
type buffer struct {
	content  string
	modified bool
}

// Buffers is the registry of open editor files. All paths are normalized
// against the workspace root on the way in, so lookups behave the same
// whether callers pass relative or absolute paths.
type Buffers struct {
	mu   sync.RWMutex
	root string
	open map[string]*buffer
	log  *zap.Logger
}

// NewBuffers creates an empty registry for the workspace at root. log may
// be nil.
func NewBuffers(root string, log *zap.Logger) *Buffers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Buffers{
		root: root,
		open: make(map[string]*buffer),
		log:  log,
	}
}

// Open registers a file as open with the given buffer content.
func (b *Buffers) Open(path, content string) {
	key := pathutil.Normalize(path, b.root)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open[key] = &buffer{content: content}
}

// Close forgets an open file.
func (b *Buffers) Close(path string) {
	key := pathutil.Normalize(path, b.root)
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.open, key)
}

// IsOpen reports whether the file is open in the editor.
func (b *Buffers) IsOpen(path string) bool {
	key := pathutil.Normalize(path, b.root)
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.open[key]
	return ok
}

// IsModified reports whether an open file has unsaved changes. Closed
// files are never modified.
func (b *Buffers) IsModified(path string) bool {
	key := pathutil.Normalize(path, b.root)
	b.mu.RLock()
	defer b.mu.RUnlock()
	buf, ok := b.open[key]
	return ok && buf.modified
}

// SetModified flags or clears the unsaved-changes state of an open file.
func (b *Buffers) SetModified(path string, modified bool) {
	key := pathutil.Normalize(path, b.root)
	b.mu.Lock()
	defer b.mu.Unlock()
	if buf, ok := b.open[key]; ok {
		buf.modified = modified
	}
}

// Content returns the buffer content of an open file.
func (b *Buffers) Content(path string) (string, bool) {
	key := pathutil.Normalize(path, b.root)
	b.mu.RLock()
	defer b.mu.RUnlock()
	buf, ok := b.open[key]
	if !ok {
		return "", false
	}
	return buf.content, true
}

// UpdateContent replaces the buffer content of an open file and clears its
// modified flag. Called after a replace commit so open buffers match the
// rewritten disk state; a no-op for files that are not open.
func (b *Buffers) UpdateContent(path, content string) {
	key := pathutil.Normalize(path, b.root)
	b.mu.Lock()
	defer b.mu.Unlock()
	if buf, ok := b.open[key]; ok {
		buf.content = content
		buf.modified = false
	}
}

// OpenPaths returns the normalized paths of all open files, sorted.
func (b *Buffers) OpenPaths() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	paths := make([]string, 0, len(b.open))
	for path := range b.open {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// ModifiedPaths returns the normalized paths of open files with unsaved
// changes, sorted.
func (b *Buffers) ModifiedPaths() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var paths []string
	for path, buf := range b.open {
		if buf.modified {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Reload re-reads an open, unmodified buffer from disk. Modified buffers
// are left alone: the editor's unsaved content wins over disk.
func (b *Buffers) Reload(path string) {
	key := pathutil.Normalize(path, b.root)

	b.mu.RLock()
	buf, ok := b.open[key]
	modified := ok && buf.modified
	b.mu.RUnlock()
	if !ok || modified {
		return
	}

	data, err := os.ReadFile(key)
	if err != nil {
		b.log.Debug("buffer reload failed", zap.String("path", key), zap.Error(err))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if buf, ok := b.open[key]; ok && !buf.modified {
		buf.content = string(data)
	}
}
