// Package history tracks recent successful queries and glob patterns. Both
// lists are bounded, deduplicated, most-recent-first, and persisted per
// workspace so recall survives restarts.
package history

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	keyQueries = "recent_queries"
	keyGlobs   = "recent_globs"
)

// Manager owns the two bounded history lists and keeps the store in sync
// after every mutation. Store failures degrade to in-memory operation; the
// recording interface has no error channel to the search path.
type Manager struct {
	mu      sync.Mutex
	store   Store
	queries *List
	globs   *List
	log     *zap.Logger
}

// NewManager creates a manager backed by store and loads any persisted
// snapshot. A corrupted snapshot resets to empty rather than failing. store
// may be nil for purely in-memory history; log may be nil.
func NewManager(store Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		store:   store,
		queries: NewList(MaxQueries),
		globs:   NewList(MaxGlobs),
		log:     log,
	}
	m.loadList(keyQueries, m.queries)
	m.loadList(keyGlobs, m.globs)
	return m
}

// RecordQuery remembers a query that produced results.
func (m *Manager) RecordQuery(raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries.Add(raw)
	m.persistLocked(keyQueries, m.queries)
}

// RecordGlob remembers a glob pattern used in a search that produced results.
func (m *Manager) RecordGlob(pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globs.Add(pattern)
	m.persistLocked(keyGlobs, m.globs)
}

// Queries returns recent queries, most recent first.
func (m *Manager) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries.Items()
}

// Globs returns recent glob patterns, most recent first.
func (m *Manager) Globs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.globs.Items()
}

// Clear empties both lists and removes the persisted snapshots.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries.Clear()
	m.globs.Clear()
	if m.store == nil {
		return nil
	}
	if err := m.store.Delete(keyQueries); err != nil {
		return err
	}
	return m.store.Delete(keyGlobs)
}

// Close releases the backing store.
func (m *Manager) Close() error {
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}

func (m *Manager) loadList(key string, list *List) {
	if m.store == nil {
		return
	}
	raw, err := m.store.Get(key)
	if err != nil {
		m.log.Warn("history load failed", zap.String("key", key), zap.Error(err))
		return
	}
	if raw == "" {
		return
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		m.log.Warn("history snapshot corrupted, resetting", zap.String("key", key), zap.Error(err))
		return
	}
	list.Replace(items)
}

func (m *Manager) persistLocked(key string, list *List) {
	if m.store == nil {
		return
	}
	data, err := json.Marshal(list.Items())
	if err != nil {
		return
	}
	if err := m.store.Put(key, string(data)); err != nil {
		m.log.Warn("history persist failed", zap.String("key", key), zap.Error(err))
	}
}
