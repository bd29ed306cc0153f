package editor

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Invalidator receives paths whose on-disk content changed. The search
// engine implements this to drop stale cache entries.
type Invalidator interface {
	Invalidate(path string)
}

// DefaultWatchDebounce batches bursts of file system events (editor saves,
// branch switches) into a single notification.
const DefaultWatchDebounce = 200 * time.Millisecond

var watchSkipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
	".fnr":         {},
}

// Watcher monitors the workspace for external file changes. Changed paths
// invalidate the search cache and reload matching open buffers; a debounced
// batch callback lets the orchestrator refresh displayed results once per
// burst instead of once per file.
type Watcher struct {
	watcher     *fsnotify.Watcher
	invalidator Invalidator
	buffers     *Buffers
	debounce    time.Duration
	log         *zap.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	onBatch func(paths []string)
	closed  bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher creates a workspace watcher. invalidator and buffers may be
// nil; log may be nil.
func NewWatcher(invalidator Invalidator, buffers *Buffers, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		watcher:     fsw,
		invalidator: invalidator,
		buffers:     buffers,
		debounce:    DefaultWatchDebounce,
		log:         log,
		pending:     make(map[string]struct{}),
		done:        make(chan struct{}),
	}, nil
}

// SetDebounce overrides the event batching interval. Must be called before
// Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// SetOnBatch installs the callback invoked once per debounced batch with
// the changed paths. Must be called before Start.
func (w *Watcher) SetOnBatch(fn func(paths []string)) {
	w.onBatch = fn
}

// Start adds watches for root and all non-ignored subdirectories and
// begins processing events.
func (w *Watcher) Start(root string) error {
	if err := w.addWatches(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	w.wg.Add(1)
	go w.processEvents()
	return nil
}

// Stop shuts the watcher down and waits for the event goroutine. Pending
// debounced events are dropped.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) addWatches(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			if _, skip := watchSkipDirs[d.Name()]; skip {
				return fs.SkipDir
			}
		}
		if err := w.watcher.Add(path); err != nil {
			w.log.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New directories need their own watch.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if _, skip := watchSkipDirs[filepath.Base(event.Name)]; !skip {
				if err := w.watcher.Add(event.Name); err != nil {
					w.log.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
				}
			}
			return
		}
	}

	w.addPending(event.Name)
}

// addPending records a changed path and re-arms the trailing-edge timer.
// The latest event per path wins; a steady stream of events keeps pushing
// the flush out.
func (w *Watcher) addPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := make([]string, 0, len(w.pending))
	for path := range w.pending {
		batch = append(batch, path)
	}
	w.pending = make(map[string]struct{})
	onBatch := w.onBatch
	w.mu.Unlock()

	w.log.Debug("processing debounced file events", zap.Int("count", len(batch)))

	for _, path := range batch {
		if w.invalidator != nil {
			w.invalidator.Invalidate(path)
		}
		if w.buffers != nil {
			w.buffers.Reload(path)
		}
	}

	if onBatch != nil {
		onBatch(batch)
	}
}
