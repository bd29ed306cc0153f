package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/fnr/internal/query"
	"github.com/standardbeagle/fnr/internal/replace"
	"github.com/standardbeagle/fnr/internal/search"
	"github.com/standardbeagle/fnr/internal/searchtypes"
)

// SearchParams are the arguments shared by the search and replace tools.
type SearchParams struct {
	Query         string `json:"query"`
	Regex         bool   `json:"regex"`
	CaseSensitive bool   `json:"case_sensitive"`
	WholeWord     bool   `json:"whole_word"`
	Semantic      bool   `json:"semantic"`
	OpenOnly      bool   `json:"open_only"`
	Include       string `json:"include"`
	Exclude       string `json:"exclude"`
	Max           int    `json:"max"`
}

// ReplaceParams extends SearchParams with the substitution arguments.
type ReplaceParams struct {
	SearchParams
	Replacement  string `json:"replacement"`
	PreserveCase bool   `json:"preserve_case"`
}

// HistoryParams are the arguments of the history tool.
type HistoryParams struct {
	Clear bool `json:"clear"`
}

// searchOptions folds tool parameters over the workspace defaults: the
// configured max_results and semantic toggle apply unless the caller
// overrides them.
func (s *Server) searchOptions(p SearchParams) searchtypes.SearchOptions {
	opts := searchtypes.DefaultSearchOptions()
	opts.UseRegex = p.Regex
	opts.CaseSensitive = p.CaseSensitive
	opts.WholeWord = p.WholeWord
	opts.SemanticEnabled = p.Semantic || s.cfg.Search.SemanticEnabled
	opts.SearchOpenFilesOnly = p.OpenOnly
	opts.IncludeGlob = p.Include
	opts.ExcludeGlob = p.Exclude
	opts.MaxResults = s.cfg.Search.MaxResults
	if p.Max > 0 {
		opts.MaxResults = p.Max
	}
	return opts
}

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params SearchParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("search", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Query == "" {
		return createErrorResponse("search", fmt.Errorf("query is required"))
	}

	snap, err := s.runSearch(ctx, params)
	if err != nil {
		return createErrorResponse("search", err)
	}

	return createJSONResponse(map[string]interface{}{
		"query":          snap.Query,
		"results":        snap.Results,
		"semantic":       snap.Semantic,
		"total_matches":  snap.TotalMatches,
		"files_searched": snap.FilesSearched,
	})
}

func (s *Server) handlePreviewReplace(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params ReplaceParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("preview_replace", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Query == "" {
		return createErrorResponse("preview_replace", fmt.Errorf("query is required"))
	}

	snap, err := s.runSearch(ctx, params.SearchParams)
	if err != nil {
		return createErrorResponse("preview_replace", err)
	}

	pq := query.Parse(params.Query)
	previews := replace.GeneratePreview(snap.Results, pq.Text, snap.Options, params.Replacement, params.PreserveCase)

	return createJSONResponse(map[string]interface{}{
		"previews":      previews,
		"matched_files": len(snap.Results),
		"truncated":     len(snap.Results) > searchtypes.PreviewMaxFiles,
	})
}

func (s *Server) handleReplace(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params ReplaceParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("replace", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Query == "" {
		return createErrorResponse("replace", fmt.Errorf("query is required"))
	}

	snap, err := s.runSearch(ctx, params.SearchParams)
	if err != nil {
		return createErrorResponse("replace", err)
	}

	pq := query.Parse(params.Query)
	executor := replace.NewExecutor(
		s.cfg.Project.Root,
		pq.Text,
		params.Replacement,
		snap.Options,
		params.PreserveCase,
		s.buffers,
		s.log,
	)
	summary := executor.ReplaceInAllFiles(snap.Results, s.orch.Refresh)

	return createJSONResponse(map[string]interface{}{
		"replaced": summary.Replaced,
		"failed":   summary.Failed,
	})
}

func (s *Server) handleHistory(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params HistoryParams
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return createErrorResponse("history", fmt.Errorf("invalid parameters: %w", err))
		}
	}

	if params.Clear {
		if err := s.history.Clear(); err != nil {
			return createErrorResponse("history", err)
		}
		return createJSONResponse(map[string]interface{}{"cleared": true})
	}

	return createJSONResponse(map[string]interface{}{
		"queries": s.history.Queries(),
		"globs":   s.history.Globs(),
	})
}

// runSearch pushes the tool parameters through the orchestrator and returns
// the resulting snapshot.
func (s *Server) runSearch(ctx context.Context, params SearchParams) (search.Snapshot, error) {
	s.orch.SetOptions(s.searchOptions(params))
	s.orch.SetQuery(params.Query)
	if err := s.orch.Search(ctx); err != nil {
		return search.Snapshot{}, err
	}
	return s.orch.Snapshot(), nil
}
