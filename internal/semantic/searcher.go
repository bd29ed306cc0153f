// Package semantic implements best-effort similarity search over workspace
// files. Lines are tokenized into identifier words and scored against the
// query with Jaro-Winkler similarity plus Porter2 stem equivalence, so
// "authenticate" finds "authentication" and "AuthService". Results carry a
// similarity score in [0, 1] and are reported alongside literal matches
// without deduplication.
package semantic

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	fnrerrors "github.com/standardbeagle/fnr/internal/errors"
	"github.com/standardbeagle/fnr/internal/searchtypes"
)

// Searcher walks the workspace and scores lines by similarity to the query
// text. It is the slow best-effort half of a search; its caller treats any
// error as an empty result set.
type Searcher struct {
	root        string
	threshold   float64
	maxFileSize int64
	log         *zap.Logger
}

var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
	".fnr":         {},
}

// Semantic scoring reads every line of every candidate file; the size cap
// is deliberately tighter than the literal engine's.
const maxSemanticFileSize = 1 * 1024 * 1024

// NewSearcher creates a semantic searcher rooted at root. log may be nil.
func NewSearcher(root string, log *zap.Logger) *Searcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{
		root:        root,
		threshold:   DefaultThreshold,
		maxFileSize: maxSemanticFileSize,
		log:         log,
	}
}

// SetThreshold overrides the minimum similarity for reported hits.
func (s *Searcher) SetThreshold(threshold float64) {
	if threshold > 0 && threshold <= 1 {
		s.threshold = threshold
	}
}

// Search returns up to topK lines similar to text, ordered by descending
// similarity with ties broken by file then line.
func (s *Searcher) Search(ctx context.Context, text string, topK int) ([]searchtypes.SemanticResult, error) {
	if s.root == "" {
		return nil, fnrerrors.NewSearchError(text, fmt.Errorf("no active project root"))
	}
	if topK <= 0 {
		topK = searchtypes.DefaultSemanticTopK
	}

	sc := newScorer(text)
	if sc.empty() {
		return nil, nil
	}

	var hits []searchtypes.SemanticResult
	walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path == s.root {
				return nil
			}
			if _, skip := skipDirs[d.Name()]; skip {
				return fs.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > s.maxFileSize {
			return nil
		}

		fileHits, err := s.scanFile(path, sc)
		if err != nil {
			s.log.Debug("semantic scan skipped file", zap.String("path", path), zap.Error(err))
			return nil
		}
		hits = append(hits, fileHits...)
		return nil
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fnrerrors.NewSearchError(text, walkErr)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		if hits[i].File != hits[j].File {
			return hits[i].File < hits[j].File
		}
		return hits[i].StartLine < hits[j].StartLine
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (s *Searcher) scanFile(path string, sc *scorer) ([]searchtypes.SemanticResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if looksBinary(content) {
		return nil, nil
	}

	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	var hits []searchtypes.SemanticResult
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		tokens := Tokenize(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		score := sc.scoreLine(tokens)
		if score >= s.threshold {
			hits = append(hits, searchtypes.SemanticResult{
				File:       rel,
				StartLine:  line,
				Similarity: score,
			})
		}
	}
	return hits, scanner.Err()
}

func looksBinary(content []byte) bool {
	probe := content
	if len(probe) > 8192 {
		probe = probe[:8192]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
