package searchtypes

// QueryFilters restricts candidate files and matches after the raw search.
// Filters compose via logical AND and are independent of token order in the
// original query.
type QueryFilters struct {
	ModifiedOnly bool                `json:"modified_only,omitempty"`
	Extensions   map[string]struct{} `json:"extensions,omitempty"`
	Tags         map[string]struct{} `json:"tags,omitempty"`
}

// Empty reports whether no filter is active.
func (f QueryFilters) Empty() bool {
	return !f.ModifiedOnly && len(f.Extensions) == 0 && len(f.Tags) == 0
}

// ParsedQuery is the result of stripping filter tokens from raw user input.
type ParsedQuery struct {
	Text    string       `json:"text"`
	Filters QueryFilters `json:"filters"`
}

// SearchOptions configures search behavior. The toggles are orthogonal;
// any combination is valid.
type SearchOptions struct {
	CaseSensitive       bool   `json:"case_sensitive"`
	UseRegex            bool   `json:"use_regex"`
	WholeWord           bool   `json:"whole_word"`
	SemanticEnabled     bool   `json:"semantic"`
	SearchOpenFilesOnly bool   `json:"open_files_only"`
	IncludeGlob         string `json:"include,omitempty"`
	ExcludeGlob         string `json:"exclude,omitempty"`
	MaxResults          int    `json:"max_results"`
}

// Match represents a single hit on one line of a file. Line and Column are
// 1-based; MatchStart and MatchEnd are byte offsets into Text with
// 0 <= MatchStart <= MatchEnd <= len(Text).
type Match struct {
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	Text       string `json:"text"`
	MatchStart int    `json:"match_start"`
	MatchEnd   int    `json:"match_end"`
}

// FileResult groups the matches of one file, ordered by ascending line
// number with ties broken by column. File is relative to the search root.
type FileResult struct {
	File    string  `json:"file"`
	Matches []Match `json:"matches"`
}

// SemanticResult is a similarity hit produced by the semantic searcher.
// Semantic results are reported alongside literal matches and are never
// deduplicated against them.
type SemanticResult struct {
	File       string  `json:"file"`
	StartLine  int     `json:"start_line"`
	Similarity float64 `json:"similarity"` // in [0, 1]
}

// LineChange describes what one line would become after substitution.
type LineChange struct {
	Line        int    `json:"line"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
}

// ReplacePreview holds the capped, non-destructive preview of a replace
// operation for one file. The commit path is not capped.
type ReplacePreview struct {
	File    string       `json:"file"`
	Changes []LineChange `json:"changes"`
}

// SearchResponse is returned by the content search engine.
type SearchResponse struct {
	Results       []FileResult `json:"results"`
	TotalMatches  int          `json:"total_matches"`
	FilesSearched int          `json:"files_searched"`
}

// Default limits for the engine and the preview generator.
const (
	DefaultMaxResults        = 1000
	DefaultSemanticTopK      = 15
	PreviewMaxFiles          = 10
	PreviewMaxMatchesPerFile = 5
)

// DefaultSearchOptions returns search options with sensible defaults.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		CaseSensitive:       false,
		UseRegex:            false,
		WholeWord:           false,
		SemanticEnabled:     false,
		SearchOpenFilesOnly: false,
		MaxResults:          DefaultMaxResults,
	}
}
