package replace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/fnr/internal/searchtypes"
	"github.com/standardbeagle/fnr/pkg/pathutil"
)

type fakeEditor struct {
	open    map[string]string
	updates map[string]string
}

func newFakeEditor() *fakeEditor {
	return &fakeEditor{open: make(map[string]string), updates: make(map[string]string)}
}

func (f *fakeEditor) IsOpen(path string) bool { _, ok := f.open[path]; return ok }

func (f *fakeEditor) UpdateContent(path, content string) {
	f.open[path] = content
	f.updates[path] = content
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReplaceInFile_PreserveCase(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.txt", "Foo bar foo FOO")

	exec := NewExecutor(dir, "foo", "baz", searchtypes.DefaultSearchOptions(), true, nil, nil)

	require.True(t, exec.ReplaceInFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Baz bar baz BAZ", string(data))
}

func TestReplaceInFile_DisjointPatternIsNoOp(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.txt", "nothing to see here")

	exec := NewExecutor(dir, "X", "Y", searchtypes.DefaultSearchOptions(), false, nil, nil)

	assert.True(t, exec.ReplaceInFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "nothing to see here", string(data))
}

func TestReplaceInFile_MissingFile(t *testing.T) {
	dir := t.TempDir()
	exec := NewExecutor(dir, "x", "y", searchtypes.DefaultSearchOptions(), false, nil, nil)

	assert.False(t, exec.ReplaceInFile(filepath.Join(dir, "gone.txt")))
}

func TestReplaceInFile_SyncsOpenEditorBuffer(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.txt", "old old")
	norm := pathutil.Normalize(path, dir)

	editor := newFakeEditor()
	editor.open[norm] = "old old"

	exec := NewExecutor(dir, "old", "new", searchtypes.DefaultSearchOptions(), false, editor, nil)
	require.True(t, exec.ReplaceInFile(path))

	assert.Equal(t, "new new", editor.updates[norm])
}

func TestReplaceInFile_WholeWord(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.txt", "test contest testing")

	opts := searchtypes.DefaultSearchOptions()
	opts.WholeWord = true

	exec := NewExecutor(dir, "test", "spec", opts, false, nil, nil)
	require.True(t, exec.ReplaceInFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "spec contest testing", string(data))
}

func TestReplaceInFile_MalformedRegexFallsBackToLiteral(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.txt", "a [bad pattern here")

	opts := searchtypes.DefaultSearchOptions()
	opts.UseRegex = true

	exec := NewExecutor(dir, "[bad", "good", opts, false, nil, nil)
	require.True(t, exec.ReplaceInFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a good pattern here", string(data))
}

func TestReplaceInAllFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "foo one")
	writeTestFile(t, dir, "b.txt", "foo two")

	results := []searchtypes.FileResult{
		{File: "a.txt"},
		{File: "b.txt"},
		{File: "missing.txt"},
	}

	refreshed := false
	exec := NewExecutor(dir, "foo", "bar", searchtypes.DefaultSearchOptions(), false, nil, nil)
	summary := exec.ReplaceInAllFiles(results, func() { refreshed = true })

	assert.Equal(t, 2, summary.Replaced)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, refreshed, "refresh callback must run after the commit loop")

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "bar one", string(data))
}
