// Package config holds the workspace configuration for fnr: project root,
// search defaults, watcher settings, and exclusion patterns. Configuration
// is read from an optional .fnr.kdl file at the workspace root and enriched
// with detected build-artifact directories.
package config

import (
	"path/filepath"

	fnrerrors "github.com/standardbeagle/fnr/internal/errors"
)

// Config is the resolved workspace configuration.
type Config struct {
	Version int
	Project Project
	Search  Search
	Watch   Watch
	Exclude []string
}

// Project identifies the workspace.
type Project struct {
	Root string
	Name string
}

// Search holds search defaults and limits.
type Search struct {
	DebounceMs        int
	MaxResults        int
	MaxFileSize       int64
	SemanticEnabled   bool
	SemanticTopK      int
	SemanticThreshold float64
}

// Watch configures the file system watcher.
type Watch struct {
	Enabled    bool
	DebounceMs int
}

// Default returns the configuration used when no .fnr.kdl is present.
func Default(root string) *Config {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Search: Search{
			DebounceMs:        300,
			MaxResults:        1000,
			MaxFileSize:       10 * 1024 * 1024,
			SemanticEnabled:   false,
			SemanticTopK:      15,
			SemanticThreshold: 0.80,
		},
		Watch: Watch{
			Enabled:    true,
			DebounceMs: 200,
		},
		Exclude: defaultExclusions(),
	}
}

// Load resolves the configuration for a workspace: .fnr.kdl when present,
// defaults otherwise, then build-artifact enrichment and validation.
func Load(root string) (*Config, error) {
	cfg, err := LoadKDL(root)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = Default(root)
	}
	cfg.EnrichExclusionsWithBuildArtifacts()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	if c.Project.Root == "" {
		return fnrerrors.NewConfigError("project.root", "", errEmptyRoot)
	}
	if c.Search.MaxResults <= 0 {
		return fnrerrors.NewConfigError("search.max_results", itoa(c.Search.MaxResults), errNonPositive)
	}
	if c.Search.MaxFileSize <= 0 {
		return fnrerrors.NewConfigError("search.max_file_size", itoa64(c.Search.MaxFileSize), errNonPositive)
	}
	if c.Search.DebounceMs < 0 {
		return fnrerrors.NewConfigError("search.debounce_ms", itoa(c.Search.DebounceMs), errNegative)
	}
	if c.Search.SemanticTopK <= 0 {
		return fnrerrors.NewConfigError("search.semantic_top_k", itoa(c.Search.SemanticTopK), errNonPositive)
	}
	if c.Search.SemanticThreshold <= 0 || c.Search.SemanticThreshold > 1 {
		return fnrerrors.NewConfigError("search.semantic_threshold", ftoa(c.Search.SemanticThreshold), errOutOfRange)
	}
	if c.Watch.DebounceMs < 0 {
		return fnrerrors.NewConfigError("watch.debounce_ms", itoa(c.Watch.DebounceMs), errNegative)
	}
	return nil
}

// EnrichExclusionsWithBuildArtifacts appends detected build output
// directories to the exclusion list.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	detector := NewBuildArtifactDetector(c.Project.Root)
	c.Exclude = DeduplicatePatterns(append(c.Exclude, detector.DetectOutputDirectories()...))
}

// defaultExclusions covers the directories and file classes no search
// should descend into: dependencies, build output, caches, binary media.
func defaultExclusions() []string {
	return []string{
		"**/node_modules/**",
		"**/vendor/**",
		"**/bower_components/**",
		"**/__pycache__/**",
		"**/.venv/**",
		"**/venv/**",
		"**/site-packages/**",

		"**/dist/**",
		"**/build/**",
		"**/out/**",
		"**/target/**",
		"**/obj/**",
		"**/*.min.js",
		"**/*.min.css",

		"**/.cache/**",
		"**/.next/**",
		"**/.nuxt/**",
		"**/.parcel-cache/**",
		"**/.turbo/**",
		"**/.vite/**",
		"**/.yarn/**",
		"**/.gradle/**",
		"**/.pytest_cache/**",
		"**/.mypy_cache/**",
		"**/.ruff_cache/**",

		"**/coverage/**",
		"**/.nyc_output/**",
		"**/htmlcov/**",

		"**/*.log",
		"**/*.swp",
		"**/*.tmp",
		"**/*.bak",
		"**/.DS_Store",
		"**/Thumbs.db",
	}
}
