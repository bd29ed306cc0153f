// Package pathutil provides utilities for converting between absolute and
// relative paths.
//
// fnr uses absolute paths internally for consistency: the modified-file
// filter and the open-files narrowing both compare editor paths against
// search result paths, and that comparison only works when both sides are
// normalized the same way. User-facing output uses relative paths for
// readability. This package is the conversion layer between the two.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/fnr/internal/searchtypes"
)

// Normalize returns the canonical absolute form of a path for identity
// comparisons. Relative paths are resolved against root.
func Normalize(path, root string) string {
	if path == "" {
		return path
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return filepath.Clean(path)
}

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/main.go", "/home/user/project") → "src/main.go"
//   - ToRelative("/other/location/file.go", "/home/user/project") → "/other/location/file.go" (outside root)
//   - ToRelative("src/main.go", "/home/user/project") → "src/main.go" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// Conversion failed (e.g., different drives on Windows) - return absolute
		return absPath
	}

	// A relative path starting with ".." means the file is outside the root;
	// the absolute form is clearer in that case.
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return relPath
}

// ToRelativeFileResults converts paths in a FileResult slice from absolute
// to relative. Creates a new slice without modifying the original results.
//
// Designed for use at output boundaries where results are displayed:
// CLI output, JSON serialization, MCP server responses.
func ToRelativeFileResults(results []searchtypes.FileResult, rootDir string) []searchtypes.FileResult {
	if len(results) == 0 {
		return results
	}

	converted := make([]searchtypes.FileResult, len(results))
	copy(converted, results)

	for i := range converted {
		converted[i].File = ToRelative(converted[i].File, rootDir)
	}

	return converted
}
