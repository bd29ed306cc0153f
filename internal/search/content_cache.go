package search

import (
	"bytes"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// contentCache keeps file contents between searches so that repeated
// searches over an unchanged tree avoid re-reading every file. Entries are
// validated by size and mtime first; when those differ the content digest
// decides whether the cached bytes can still be reused (a touch without a
// change is common with build tools).
type contentCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	size    int64
	modTime time.Time
	digest  uint64
	content []byte
	binary  bool
}

func newContentCache() *contentCache {
	return &contentCache{entries: make(map[string]*cacheEntry)}
}

// load returns the content of path, reusing cached bytes when the file is
// unchanged. binary is true when the content looks non-textual and should
// be skipped by the scanner.
func (c *contentCache) load(path string, info fs.FileInfo) (content []byte, binary bool, err error) {
	c.mu.Lock()
	cached, ok := c.entries[path]
	c.mu.Unlock()

	if ok && cached.size == info.Size() && cached.modTime.Equal(info.ModTime()) {
		return cached.content, cached.binary, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}

	digest := xxhash.Sum64(data)
	if ok && cached.digest == digest {
		// Touched but unchanged; refresh the metadata and keep the bytes.
		c.mu.Lock()
		cached.size = info.Size()
		cached.modTime = info.ModTime()
		c.mu.Unlock()
		return cached.content, cached.binary, nil
	}

	entry := &cacheEntry{
		size:    info.Size(),
		modTime: info.ModTime(),
		digest:  digest,
		content: data,
		binary:  looksBinary(data),
	}
	c.mu.Lock()
	c.entries[path] = entry
	c.mu.Unlock()
	return entry.content, entry.binary, nil
}

// invalidate drops the cached entry for path.
func (c *contentCache) invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// looksBinary reports whether data appears to be non-text content. A NUL
// byte in the first 8 KiB is the classic grep heuristic.
func looksBinary(data []byte) bool {
	probe := data
	if len(probe) > 8192 {
		probe = probe[:8192]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
