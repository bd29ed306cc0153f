package search

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	fnrerrors "github.com/standardbeagle/fnr/internal/errors"
	"github.com/standardbeagle/fnr/internal/searchtypes"
)

// Engine is the file-system content search primitive: given a pattern and
// options it walks the workspace and returns per-file line matches. It is
// consumed by the Orchestrator but usable on its own.
type Engine struct {
	root        string
	excludes    []string
	maxFileSize int64
	cache       *contentCache
	log         *zap.Logger
}

// Directories never worth descending into, regardless of configuration.
var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
	".fnr":         {},
}

const defaultMaxFileSize = 10 * 1024 * 1024

// NewEngine creates a content search engine rooted at root. log may be nil.
func NewEngine(root string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		root:        root,
		maxFileSize: defaultMaxFileSize,
		cache:       newContentCache(),
		log:         log,
	}
}

// SetExcludes installs workspace-level exclude globs (config excludes plus
// detected build-artifact directories). Patterns are matched against
// slash-separated paths relative to the root.
func (e *Engine) SetExcludes(globs []string) {
	e.excludes = globs
}

// SetMaxFileSize caps the size of files the engine will read. Larger files
// are skipped without being opened. Non-positive values are ignored.
func (e *Engine) SetMaxFileSize(limit int64) {
	if limit > 0 {
		e.maxFileSize = limit
	}
}

// Invalidate drops cached content for path, forcing a re-read on the next
// search. Called by the editor watcher when a file changes on disk.
func (e *Engine) Invalidate(path string) {
	e.cache.invalidate(path)
}

// Root returns the workspace root the engine searches under.
func (e *Engine) Root() string {
	return e.root
}

// Search walks the workspace and collects matches for pattern under the
// given options. An empty pattern enumerates candidate files with no
// matches, which the orchestrator uses for filter-only queries. The result
// cap applies across all files; cancellation is checked between files.
func (e *Engine) Search(ctx context.Context, pattern string, opts searchtypes.SearchOptions) (*searchtypes.SearchResponse, error) {
	if e.root == "" {
		return nil, fnrerrors.NewSearchError(pattern, fmt.Errorf("no active project root"))
	}
	if _, err := os.Stat(e.root); err != nil {
		return nil, fnrerrors.NewSearchError(pattern, err)
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = searchtypes.DefaultMaxResults
	}

	var re *matcher
	if pattern != "" {
		compiled, err := CompileSearchPattern(pattern, opts)
		if err != nil {
			return nil, fnrerrors.NewSearchError(pattern, err)
		}
		re = &matcher{re: compiled}
	}

	resp := &searchtypes.SearchResponse{}
	walkErr := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel := e.relPath(path)
		if d.IsDir() {
			if path == e.root {
				return nil
			}
			if _, skip := skipDirs[d.Name()]; skip {
				return fs.SkipDir
			}
			if e.excludedDir(rel) {
				return fs.SkipDir
			}
			return nil
		}

		if !e.fileEligible(rel, opts) {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > e.maxFileSize {
			return nil
		}

		if re == nil {
			// Filter-only query: report the file with no matches.
			resp.Results = append(resp.Results, searchtypes.FileResult{File: rel})
			resp.FilesSearched++
			if len(resp.Results) >= maxResults {
				return fs.SkipAll
			}
			return nil
		}

		content, binary, err := e.cache.load(path, info)
		if err != nil || binary {
			return nil
		}
		resp.FilesSearched++

		matches := re.scan(content, maxResults-resp.TotalMatches)
		if len(matches) == 0 {
			return nil
		}
		resp.Results = append(resp.Results, searchtypes.FileResult{File: rel, Matches: matches})
		resp.TotalMatches += len(matches)
		if resp.TotalMatches >= maxResults {
			return fs.SkipAll
		}
		return nil
	})

	if walkErr != nil && walkErr != fs.SkipAll {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fnrerrors.NewSearchError(pattern, walkErr)
	}
	return resp, nil
}

// relPath converts an absolute walk path to the slash-separated relative
// form used in results and glob matching.
func (e *Engine) relPath(path string) string {
	rel, err := filepath.Rel(e.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// excludedDir reports whether a directory matches an exclude glob, either
// directly or via a "dir/**" pattern.
func (e *Engine) excludedDir(rel string) bool {
	for _, pattern := range e.excludes {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
		trimmed := strings.TrimSuffix(pattern, "/**")
		if trimmed != pattern {
			if matched, _ := doublestar.Match(trimmed, rel); matched {
				return true
			}
		}
	}
	return false
}

// fileEligible applies include/exclude globs to a candidate file.
func (e *Engine) fileEligible(rel string, opts searchtypes.SearchOptions) bool {
	for _, pattern := range e.excludes {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return false
		}
	}
	if opts.ExcludeGlob != "" {
		if matched, _ := doublestar.Match(opts.ExcludeGlob, rel); matched {
			return false
		}
		if matched, _ := doublestar.Match(opts.ExcludeGlob, filepath.Base(rel)); matched {
			return false
		}
	}
	if opts.IncludeGlob != "" {
		if matched, _ := doublestar.Match(opts.IncludeGlob, rel); matched {
			return true
		}
		matched, _ := doublestar.Match(opts.IncludeGlob, filepath.Base(rel))
		return matched
	}
	return true
}
