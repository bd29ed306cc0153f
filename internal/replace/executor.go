package replace

import (
	"os"
	"regexp"

	"go.uber.org/zap"

	"github.com/standardbeagle/fnr/internal/search"
	"github.com/standardbeagle/fnr/internal/searchtypes"
	"github.com/standardbeagle/fnr/pkg/pathutil"
)

// Editor is the buffer accessor the executor uses to keep open editor
// buffers consistent with what it writes to disk.
type Editor interface {
	IsOpen(path string) bool
	UpdateContent(path, content string)
}

// Summary aggregates the outcome of a multi-file replace.
type Summary struct {
	Replaced int `json:"replaced"`
	Failed   int `json:"failed"`
}

// Executor applies substitutions to files on disk. Unlike the preview,
// the commit path replaces file-wide with a freshly built regex rather
// than at tracked offsets, since content may have shifted since the
// search ran.
type Executor struct {
	root         string
	pattern      string
	replacement  string
	opts         searchtypes.SearchOptions
	preserveCase bool
	editor       Editor
	log          *zap.Logger
}

// NewExecutor creates a replace executor. editor may be nil when no
// buffers need syncing; log may be nil.
func NewExecutor(root, pattern, replacement string, opts searchtypes.SearchOptions, preserveCase bool, editor Editor, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{
		root:         root,
		pattern:      pattern,
		replacement:  replacement,
		opts:         opts,
		preserveCase: preserveCase,
		editor:       editor,
		log:          log,
	}
}

// ReplaceInFile reads the file, replaces all matches file-wide, writes the
// result back, and syncs any open editor buffer. Failures are logged and
// reported through the return value, never propagated.
func (e *Executor) ReplaceInFile(path string) bool {
	abs := pathutil.Normalize(path, e.root)

	data, err := os.ReadFile(abs)
	if err != nil {
		e.log.Warn("replace: read failed", zap.String("path", abs), zap.Error(err))
		return false
	}

	content := string(data)
	newContent := e.commitRegexp().ReplaceAllStringFunc(content, func(tok string) string {
		if e.preserveCase {
			return PreserveCase(tok, e.replacement)
		}
		return e.replacement
	})

	if newContent != content {
		perm := os.FileMode(0644)
		if info, err := os.Stat(abs); err == nil {
			perm = info.Mode().Perm()
		}
		if err := os.WriteFile(abs, []byte(newContent), perm); err != nil {
			e.log.Warn("replace: write failed", zap.String("path", abs), zap.Error(err))
			return false
		}
		if e.editor != nil && e.editor.IsOpen(abs) {
			e.editor.UpdateContent(abs, newContent)
		}
	}
	return true
}

// ReplaceInAllFiles applies the replacement to every current file result,
// sequentially to avoid contention on the shared editor-buffer update
// path, then invokes refresh so displayed results reflect the new file
// state. Per-file failures are counted, not aborted on.
func (e *Executor) ReplaceInAllFiles(results []searchtypes.FileResult, refresh func()) Summary {
	var summary Summary
	for _, fr := range results {
		if e.ReplaceInFile(fr.File) {
			summary.Replaced++
		} else {
			summary.Failed++
		}
	}
	if refresh != nil {
		refresh()
	}
	e.log.Info("replace: all files done",
		zap.Int("replaced", summary.Replaced),
		zap.Int("failed", summary.Failed))
	return summary
}

// commitRegexp builds the file-wide replacement regex. A malformed user
// regex falls back to matching the pattern as an escaped literal, so the
// commit path cannot fail on compilation.
func (e *Executor) commitRegexp() *regexp.Regexp {
	re, err := search.CompileSearchPattern(e.pattern, e.opts)
	if err == nil {
		return re
	}
	literal := e.opts
	literal.UseRegex = false
	re, _ = search.CompileSearchPattern(e.pattern, literal)
	return re
}
