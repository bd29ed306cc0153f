package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0644))
}

func TestDetector_TsconfigOutDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "tsconfig.json", `{"compilerOptions": {"outDir": "lib"}}`)

	patterns := NewBuildArtifactDetector(root).DetectOutputDirectories()
	assert.Contains(t, patterns, "**/lib/**")
}

func TestDetector_PackageJSONBuildScript(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"scripts": {"build": "tsc --outDir dist-es"}}`)

	patterns := NewBuildArtifactDetector(root).DetectOutputDirectories()
	assert.Contains(t, patterns, "**/dist-es/**")
}

func TestDetector_CargoToml(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Cargo.toml", `
[package]
name = "demo"

[profile.release]
target-dir = "artifacts"
`)

	patterns := NewBuildArtifactDetector(root).DetectOutputDirectories()
	assert.Contains(t, patterns, "**/artifacts/**")
	assert.Contains(t, patterns, "**/target/**")
}

func TestDetector_PyprojectToml(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pyproject.toml", `
[tool.poetry]
name = "demo"
`)

	patterns := NewBuildArtifactDetector(root).DetectOutputDirectories()
	assert.Contains(t, patterns, "**/*.egg-info/**")
}

func TestDetector_EmptyProject(t *testing.T) {
	patterns := NewBuildArtifactDetector(t.TempDir()).DetectOutputDirectories()
	assert.Empty(t, patterns)
}

func TestDetector_MalformedFilesIgnored(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{broken`)
	writeFile(t, root, "Cargo.toml", "= not toml =")

	patterns := NewBuildArtifactDetector(root).DetectOutputDirectories()
	assert.Empty(t, patterns)
}

func TestDeduplicatePatterns(t *testing.T) {
	out := DeduplicatePatterns([]string{"a", "b", "a", "c", "b"})
	assert.Equal(t, []string{"a", "b", "c"}, out)
}

func TestEnrichExclusions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "tsconfig.json", `{"compilerOptions": {"outDir": "lib"}}`)

	cfg := Default(root)
	before := len(cfg.Exclude)
	cfg.EnrichExclusionsWithBuildArtifacts()

	assert.Greater(t, len(cfg.Exclude), before)
	assert.Contains(t, cfg.Exclude, "**/lib/**")

	// Enriching twice does not duplicate.
	count := len(cfg.Exclude)
	cfg.EnrichExclusionsWithBuildArtifacts()
	assert.Equal(t, count, len(cfg.Exclude))
}
