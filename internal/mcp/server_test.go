package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/fnr/internal/config"
)

func newTestServer(t *testing.T, files map[string]string) *Server {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	cfg := config.Default(root)
	cfg.Watch.Enabled = false

	s, err := NewServer(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

type handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error)

func callTool(t *testing.T, h handler, name string, params interface{}) (map[string]interface{}, bool) {
	t.Helper()
	args, err := json.Marshal(params)
	require.NoError(t, err)

	result, err := h(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Name: name, Arguments: args},
	})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded, result.IsError
}

func TestHandleSearch(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"a.go": "func handleRequest() {}\n",
		"b.ts": "function handleRequest() {}\n",
	})

	resp, isErr := callTool(t, s.handleSearch, "search", map[string]interface{}{
		"query": "handleRequest",
	})
	require.False(t, isErr)

	assert.Equal(t, float64(2), resp["total_matches"])
	results := resp["results"].([]interface{})
	assert.Len(t, results, 2)
}

func TestHandleSearch_ExtensionFilterToken(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"a.go": "func handleRequest() {}\n",
		"b.ts": "function handleRequest() {}\n",
	})

	resp, isErr := callTool(t, s.handleSearch, "search", map[string]interface{}{
		"query": "@ext:ts handleRequest",
	})
	require.False(t, isErr)

	results := resp["results"].([]interface{})
	require.Len(t, results, 1)
	file := results[0].(map[string]interface{})["file"]
	assert.Equal(t, "b.ts", file)
}

func TestHandleSearch_ConfiguredMaxFileSize(t *testing.T) {
	root := t.TempDir()
	kdl := "search {\n    max_file_size 16\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".fnr.kdl"), []byte(kdl), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "small.txt"), []byte("needle\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.txt"), []byte("needle "+strings.Repeat("x", 1024)), 0644))

	cfg, err := config.Load(root)
	require.NoError(t, err)
	require.Equal(t, int64(16), cfg.Search.MaxFileSize)
	cfg.Watch.Enabled = false

	s, err := NewServer(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	resp, isErr := callTool(t, s.handleSearch, "search", map[string]interface{}{
		"query": "needle",
	})
	require.False(t, isErr)

	results := resp["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, "small.txt", results[0].(map[string]interface{})["file"])
}

func TestHandleSearch_ConfiguredMaxResults(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"a.txt": strings.Repeat("needle\n", 8),
	})
	s.cfg.Search.MaxResults = 2

	resp, isErr := callTool(t, s.handleSearch, "search", map[string]interface{}{
		"query": "needle",
	})
	require.False(t, isErr)
	assert.Equal(t, float64(2), resp["total_matches"])

	// An explicit max parameter overrides the configured default.
	resp, isErr = callTool(t, s.handleSearch, "search", map[string]interface{}{
		"query": "needle",
		"max":   5,
	})
	require.False(t, isErr)
	assert.Equal(t, float64(5), resp["total_matches"])
}

func TestHandleSearch_ConfiguredSemanticDefault(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"auth.go": "authentication token rotation\n",
	})
	s.cfg.Search.SemanticEnabled = true

	resp, isErr := callTool(t, s.handleSearch, "search", map[string]interface{}{
		"query": "authentication",
	})
	require.False(t, isErr)

	semantic, ok := resp["semantic"].([]interface{})
	require.True(t, ok, "semantic results expected without an explicit semantic parameter")
	assert.NotEmpty(t, semantic)
}

func TestHandleSearch_MissingQuery(t *testing.T) {
	s := newTestServer(t, map[string]string{"a.go": "x"})

	resp, isErr := callTool(t, s.handleSearch, "search", map[string]interface{}{})
	assert.True(t, isErr)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "query is required")
}

func TestHandleSearch_MalformedRegexSurfaces(t *testing.T) {
	s := newTestServer(t, map[string]string{"a.go": "content"})

	resp, isErr := callTool(t, s.handleSearch, "search", map[string]interface{}{
		"query": "[unclosed",
		"regex": true,
	})
	assert.True(t, isErr)
	assert.NotEmpty(t, resp["error"])
}

func TestHandlePreviewReplace(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"a.go": "count := oldName + oldName\n",
	})

	resp, isErr := callTool(t, s.handlePreviewReplace, "preview_replace", map[string]interface{}{
		"query":       "oldName",
		"replacement": "newName",
	})
	require.False(t, isErr)

	previews := resp["previews"].([]interface{})
	require.Len(t, previews, 1)
	changes := previews[0].(map[string]interface{})["changes"].([]interface{})
	require.Len(t, changes, 1)
	assert.Equal(t, "count := newName + newName", changes[0].(map[string]interface{})["replacement"])

	// Preview must not touch the file.
	content, err := os.ReadFile(filepath.Join(s.cfg.Project.Root, "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "count := oldName + oldName\n", string(content))
}

func TestHandleReplace(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"a.go": "Foo bar foo FOO\n",
	})

	resp, isErr := callTool(t, s.handleReplace, "replace", map[string]interface{}{
		"query":         "foo",
		"replacement":   "baz",
		"preserve_case": true,
	})
	require.False(t, isErr)
	assert.Equal(t, float64(1), resp["replaced"])
	assert.Equal(t, float64(0), resp["failed"])

	content, err := os.ReadFile(filepath.Join(s.cfg.Project.Root, "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "Baz bar baz BAZ\n", string(content))
}

func TestHandleHistory(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"a.go": "needle\n",
	})

	// A successful search records its query.
	_, isErr := callTool(t, s.handleSearch, "search", map[string]interface{}{
		"query":   "needle",
		"include": "**/*.go",
	})
	require.False(t, isErr)

	resp, isErr := callTool(t, s.handleHistory, "history", map[string]interface{}{})
	require.False(t, isErr)

	queries := resp["queries"].([]interface{})
	require.Len(t, queries, 1)
	assert.Equal(t, "needle", queries[0])
	globs := resp["globs"].([]interface{})
	require.Len(t, globs, 1)
	assert.Equal(t, "**/*.go", globs[0])

	// Clearing empties both lists.
	resp, isErr = callTool(t, s.handleHistory, "history", map[string]interface{}{"clear": true})
	require.False(t, isErr)
	assert.Equal(t, true, resp["cleared"])

	resp, _ = callTool(t, s.handleHistory, "history", map[string]interface{}{})
	assert.Empty(t, resp["queries"])
	assert.Empty(t, resp["globs"])
}
