package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	searchToggles := map[string]*jsonschema.Schema{
		"query": {
			Type:        "string",
			Description: "Search query. Supports filter tokens: @modified, @ext:go,ts, @tag:todo",
		},
		"regex": {
			Type:        "boolean",
			Description: "Treat the query text as a regular expression",
		},
		"case_sensitive": {
			Type:        "boolean",
			Description: "Match case exactly (default: case-insensitive)",
		},
		"whole_word": {
			Type:        "boolean",
			Description: "Match whole words only",
		},
		"semantic": {
			Type:        "boolean",
			Description: "Also run similarity search alongside literal matching",
		},
		"open_only": {
			Type:        "boolean",
			Description: "Restrict results to files open in the editor",
		},
		"include": {
			Type:        "string",
			Description: "Include glob, e.g. \"src/**/*.go\"",
		},
		"exclude": {
			Type:        "string",
			Description: "Exclude glob, e.g. \"**/*_test.go\"",
		},
		"max": {
			Type:        "integer",
			Description: "Maximum total matches",
		},
	}

	s.server.AddTool(&mcp.Tool{
		Name:        "search",
		Description: "Search workspace file contents. Supports literal, regex, whole-word, and similarity matching plus @modified/@ext:/@tag: filter tokens.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: searchToggles,
			Required:   []string{"query"},
		},
	}, s.handleSearch)

	replaceProps := map[string]*jsonschema.Schema{
		"replacement": {
			Type:        "string",
			Description: "Replacement text. May be empty to delete matches.",
		},
		"preserve_case": {
			Type:        "boolean",
			Description: "Adapt the replacement's casing to each match (FOO->BAR, Foo->Bar, foo->bar)",
		},
	}
	for name, schema := range searchToggles {
		replaceProps[name] = schema
	}

	s.server.AddTool(&mcp.Tool{
		Name:        "preview_replace",
		Description: "Show what a replace would change without touching any file. Output is capped; the replace tool itself is not.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: replaceProps,
			Required:   []string{"query", "replacement"},
		},
	}, s.handlePreviewReplace)

	s.server.AddTool(&mcp.Tool{
		Name:        "replace",
		Description: "Apply a replacement across all matching files and report per-file success counts. Open editor buffers are kept in sync.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: replaceProps,
			Required:   []string{"query", "replacement"},
		},
	}, s.handleReplace)

	s.server.AddTool(&mcp.Tool{
		Name:        "history",
		Description: "List recent successful queries and glob patterns, or clear them.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"clear": {
					Type:        "boolean",
					Description: "Clear all recorded history",
				},
			},
		},
	}, s.handleHistory)
}
