package search

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/fnr/internal/query"
	"github.com/standardbeagle/fnr/internal/searchtypes"
	"github.com/standardbeagle/fnr/pkg/pathutil"
)

// ContentSearcher is the literal/regex content search collaborator.
type ContentSearcher interface {
	Search(ctx context.Context, pattern string, opts searchtypes.SearchOptions) (*searchtypes.SearchResponse, error)
}

// SemanticSearcher is the best-effort similarity search collaborator.
// Errors from it are swallowed and treated as an empty result set.
type SemanticSearcher interface {
	Search(ctx context.Context, text string, topK int) ([]searchtypes.SemanticResult, error)
}

// EditorState exposes the open/modified file sets used by the modified-only
// filter and the open-files narrowing. Paths passed in are normalized
// absolute paths.
type EditorState interface {
	IsOpen(path string) bool
	IsModified(path string) bool
}

// HistoryRecorder receives queries and glob patterns that produced results.
type HistoryRecorder interface {
	RecordQuery(raw string)
	RecordGlob(pattern string)
}

// State is the orchestrator's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateSearching
	StateErrored
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateSearching:
		return "searching"
	case StateErrored:
		return "errored"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// DefaultDebounce is the trailing-edge debounce applied to query and
// option changes.
const DefaultDebounce = 300 * time.Millisecond

// Snapshot is a consistent copy of the orchestrator's observable state.
// Observers never see a partially updated combination of query, options,
// and results.
type Snapshot struct {
	Query         string
	Options       searchtypes.SearchOptions
	Results       []searchtypes.FileResult
	Semantic      []searchtypes.SemanticResult
	TotalMatches  int
	FilesSearched int
	Err           string
	State         State
}

// OrchestratorConfig wires the orchestrator's collaborators. Content and
// Root are required; everything else is optional.
type OrchestratorConfig struct {
	Root     string
	Content  ContentSearcher
	Semantic SemanticSearcher
	Editor   EditorState
	History  HistoryRecorder
	Debounce time.Duration
	TopK     int
	Log      *zap.Logger
}

// Orchestrator debounces query changes, cancels superseded searches, fans
// out to the literal and semantic collaborators concurrently, and applies
// the parsed query filters to the merged outcome. At most one search is in
// flight at a time; a newer request silently discards the older one's
// resolution. All observable state is mutated only here and replaced
// atomically under one mutex.
type Orchestrator struct {
	cfg OrchestratorConfig
	log *zap.Logger

	mu         sync.Mutex
	rawQuery   string
	opts       searchtypes.SearchOptions
	state      State
	results    []searchtypes.FileResult
	semantic   []searchtypes.SemanticResult
	total      int
	files      int
	errMsg     string
	timer      *time.Timer
	generation uint64
	cancel     context.CancelFunc
	closed     bool

	wg sync.WaitGroup
}

// NewOrchestrator creates a search orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.TopK <= 0 {
		cfg.TopK = searchtypes.DefaultSemanticTopK
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		cfg:   cfg,
		log:   log,
		opts:  searchtypes.DefaultSearchOptions(),
		state: StateIdle,
	}
}

// SetQuery updates the raw query text and restarts the debounce timer.
func (o *Orchestrator) SetQuery(raw string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rawQuery = raw
	o.restartDebounceLocked()
}

// SetOptions updates the search options and restarts the debounce timer,
// exactly as a query text change does.
func (o *Orchestrator) SetOptions(opts searchtypes.SearchOptions) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opts = opts
	o.restartDebounceLocked()
}

// Options returns the current search options.
func (o *Orchestrator) Options() searchtypes.SearchOptions {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opts
}

// Search runs the current query synchronously, superseding any pending
// debounced or in-flight run. It returns the error surfaced to the caller,
// if any; ineligible queries clear results and return nil.
func (o *Orchestrator) Search(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.stopTimerLocked()
	gen, runCtx, raw, opts := o.beginRunLocked(ctx)
	o.mu.Unlock()

	return o.run(runCtx, gen, raw, opts)
}

// Refresh re-runs the current query asynchronously. Used after a commit so
// displayed results reflect the post-replace file state.
func (o *Orchestrator) Refresh() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.stopTimerLocked()
	gen, runCtx, raw, opts := o.beginRunLocked(context.Background())
	o.wg.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.wg.Done()
		o.run(runCtx, gen, raw, opts)
	}()
}

// Snapshot returns a consistent copy of the observable state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{
		Query:         o.rawQuery,
		Options:       o.opts,
		TotalMatches:  o.total,
		FilesSearched: o.files,
		Err:           o.errMsg,
		State:         o.state,
	}
	snap.Results = append(snap.Results, o.results...)
	snap.Semantic = append(snap.Semantic, o.semantic...)
	return snap
}

// Close cancels any pending debounce and in-flight search and waits for
// background runs to finish.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.stopTimerLocked()
	if o.cancel != nil {
		o.cancel()
	}
	o.generation++ // orphan any in-flight run
	o.state = StateCancelled
	o.mu.Unlock()

	o.wg.Wait()
}

// restartDebounceLocked (re)arms the trailing-edge debounce. A pending
// debounced run is discarded, never queued.
func (o *Orchestrator) restartDebounceLocked() {
	if o.closed {
		return
	}
	o.stopTimerLocked()
	o.state = StateDebouncing
	o.timer = time.AfterFunc(o.cfg.Debounce, o.debounceFired)
}

func (o *Orchestrator) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

// debounceFired runs in the timer goroutine once input has been stable for
// the debounce interval.
func (o *Orchestrator) debounceFired() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	gen, runCtx, raw, opts := o.beginRunLocked(context.Background())
	o.wg.Add(1)
	o.mu.Unlock()

	defer o.wg.Done()
	o.run(runCtx, gen, raw, opts)
}

// beginRunLocked supersedes the previous search: it cancels the in-flight
// context, bumps the generation, and hands back a fresh cancellable
// context for the new run.
func (o *Orchestrator) beginRunLocked(parent context.Context) (uint64, context.Context, string, searchtypes.SearchOptions) {
	if o.cancel != nil {
		o.cancel()
	}
	runCtx, cancel := context.WithCancel(parent)
	o.cancel = cancel
	o.generation++
	return o.generation, runCtx, o.rawQuery, o.opts
}

// run executes one search generation end to end. A stale generation (one
// superseded while awaiting its collaborators) discards its outcome
// without touching state.
func (o *Orchestrator) run(ctx context.Context, gen uint64, raw string, opts searchtypes.SearchOptions) error {
	if o.cfg.Root == "" {
		o.publishError(gen, "no active project")
		return fmt.Errorf("no active project")
	}

	pq := query.Parse(raw)
	if !query.Eligible(pq) {
		o.publishCleared(gen)
		return nil
	}

	o.markSearching(gen)

	// A tag-only query has no text to grep for, but the tag filter needs
	// line matches to narrow. Scan for the tag words themselves and let
	// filterTags reduce the hits to the recognized spellings.
	searchText := pq.Text
	searchOpts := opts
	if searchText == "" && len(pq.Filters.Tags) > 0 {
		searchText = tagScanPattern(pq.Filters.Tags)
		searchOpts.UseRegex = true
		searchOpts.CaseSensitive = false
		searchOpts.WholeWord = false
	}

	g, gctx := errgroup.WithContext(ctx)

	var resp *searchtypes.SearchResponse
	g.Go(func() error {
		r, err := o.cfg.Content.Search(gctx, searchText, searchOpts)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})

	var semantic []searchtypes.SemanticResult
	if o.cfg.Semantic != nil && opts.SemanticEnabled && pq.Text != "" {
		g.Go(func() error {
			s, err := o.cfg.Semantic.Search(gctx, pq.Text, o.cfg.TopK)
			if err != nil {
				// Best-effort branch: a semantic failure never fails the
				// literal search.
				o.log.Debug("semantic search failed", zap.Error(err))
				return nil
			}
			semantic = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil // superseded; silent no-op
		}
		o.publishError(gen, err.Error())
		return err
	}
	if ctx.Err() != nil {
		return nil
	}

	results := o.applyFilters(resp.Results, pq.Filters)
	if opts.SearchOpenFilesOnly && o.cfg.Editor != nil {
		results = o.filterOpen(results)
	}

	published := o.publishResults(gen, results, semantic, resp.TotalMatches, resp.FilesSearched)
	if published && o.cfg.History != nil && (len(results) > 0 || len(semantic) > 0) {
		o.cfg.History.RecordQuery(raw)
		if opts.IncludeGlob != "" {
			o.cfg.History.RecordGlob(opts.IncludeGlob)
		}
		if opts.ExcludeGlob != "" {
			o.cfg.History.RecordGlob(opts.ExcludeGlob)
		}
	}
	return nil
}

// markSearching transitions to Searching unless the run is already stale.
func (o *Orchestrator) markSearching(gen uint64) {
	o.mu.Lock()
	if gen == o.generation {
		o.state = StateSearching
	}
	o.mu.Unlock()
}

// publishResults atomically installs a run's outcome, unless superseded.
func (o *Orchestrator) publishResults(gen uint64, results []searchtypes.FileResult, semantic []searchtypes.SemanticResult, total, files int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return false
	}
	o.results = results
	o.semantic = semantic
	o.total = total
	o.files = files
	o.errMsg = ""
	o.state = StateIdle
	return true
}

// publishCleared empties results for an ineligible query without raising
// an error.
func (o *Orchestrator) publishCleared(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return
	}
	o.results = nil
	o.semantic = nil
	o.total = 0
	o.files = 0
	o.errMsg = ""
	o.state = StateIdle
}

// publishError surfaces a search failure and clears results. Stale
// generations stay silent.
func (o *Orchestrator) publishError(gen uint64, msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return
	}
	o.results = nil
	o.semantic = nil
	o.total = 0
	o.files = 0
	o.errMsg = msg
	o.state = StateErrored
}

// applyFilters narrows literal results through the parsed query filters:
// modified-only, then extension, then tag. Each step is a pure narrowing
// of the previous one.
func (o *Orchestrator) applyFilters(results []searchtypes.FileResult, filters searchtypes.QueryFilters) []searchtypes.FileResult {
	if filters.ModifiedOnly {
		results = o.filterModified(results)
	}
	if len(filters.Extensions) > 0 {
		results = filterExtensions(results, filters.Extensions)
	}
	if len(filters.Tags) > 0 {
		results = filterTags(results, filters.Tags)
	}
	return results
}

func (o *Orchestrator) filterModified(results []searchtypes.FileResult) []searchtypes.FileResult {
	if o.cfg.Editor == nil {
		return nil
	}
	var out []searchtypes.FileResult
	for _, fr := range results {
		if o.cfg.Editor.IsModified(pathutil.Normalize(fr.File, o.cfg.Root)) {
			out = append(out, fr)
		}
	}
	return out
}

func (o *Orchestrator) filterOpen(results []searchtypes.FileResult) []searchtypes.FileResult {
	var out []searchtypes.FileResult
	for _, fr := range results {
		if o.cfg.Editor.IsOpen(pathutil.Normalize(fr.File, o.cfg.Root)) {
			out = append(out, fr)
		}
	}
	return out
}

func filterExtensions(results []searchtypes.FileResult, exts map[string]struct{}) []searchtypes.FileResult {
	var out []searchtypes.FileResult
	for _, fr := range results {
		name := strings.ToLower(filepath.Base(fr.File))
		for ext := range exts {
			if strings.HasSuffix(name, "."+ext) {
				out = append(out, fr)
				break
			}
		}
	}
	return out
}

// tagScanPattern builds the content pattern for a tag-only query: an
// alternation of the quoted tag words, matched case-insensitively.
func tagScanPattern(tags map[string]struct{}) string {
	quoted := make([]string, 0, len(tags))
	for tag := range tags {
		quoted = append(quoted, regexp.QuoteMeta(tag))
	}
	sort.Strings(quoted)
	return strings.Join(quoted, "|")
}

// filterTags keeps matches whose line text mentions any requested tag in
// one of three ad hoc spellings: "@tag", "tag:", "[tag]". This is a
// heuristic substring scan, not a structured annotation parser, and its
// false positives and negatives are part of the contract.
func filterTags(results []searchtypes.FileResult, tags map[string]struct{}) []searchtypes.FileResult {
	var out []searchtypes.FileResult
	for _, fr := range results {
		var kept []searchtypes.Match
		for _, m := range fr.Matches {
			line := strings.ToLower(m.Text)
			for tag := range tags {
				if strings.Contains(line, "@"+tag) ||
					strings.Contains(line, tag+":") ||
					strings.Contains(line, "["+tag+"]") {
					kept = append(kept, m)
					break
				}
			}
		}
		if len(kept) > 0 {
			out = append(out, searchtypes.FileResult{File: fr.File, Matches: kept})
		}
	}
	return out
}
