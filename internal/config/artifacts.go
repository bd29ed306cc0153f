// Build artifact detection from language-specific configuration files.
// Parses package.json, tsconfig.json, Cargo.toml, and pyproject.toml to
// find output directories worth excluding from search.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// BuildArtifactDetector finds language-specific build output directories.
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector creates a detector for the given project root.
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories scans for build configuration files and returns
// glob patterns to exclude (e.g., "**/dist/**", "**/target/**").
func (d *BuildArtifactDetector) DetectOutputDirectories() []string {
	var patterns []string
	patterns = append(patterns, d.detectJavaScriptOutputs()...)
	patterns = append(patterns, d.detectRustOutputs()...)
	patterns = append(patterns, d.detectPythonOutputs()...)
	return patterns
}

func (d *BuildArtifactDetector) detectJavaScriptOutputs() []string {
	var patterns []string

	if data, err := os.ReadFile(filepath.Join(d.projectRoot, "package.json")); err == nil {
		var pkg map[string]interface{}
		if json.Unmarshal(data, &pkg) == nil {
			if scripts, ok := pkg["scripts"].(map[string]interface{}); ok {
				for _, script := range scripts {
					scriptStr, ok := script.(string)
					if !ok {
						continue
					}
					// Pull --outDir values out of build scripts.
					parts := strings.Fields(scriptStr)
					for i, part := range parts {
						if (part == "--outDir" || part == "-outDir") && i+1 < len(parts) {
							outDir := strings.Trim(parts[i+1], "\"'")
							patterns = append(patterns, "**/"+outDir+"/**")
						}
					}
				}
			}
			if buildConfig, ok := pkg["build"].(map[string]interface{}); ok {
				if outDir, ok := buildConfig["outDir"].(string); ok {
					patterns = append(patterns, "**/"+outDir+"/**")
				}
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join(d.projectRoot, "tsconfig.json")); err == nil {
		var tsconfig map[string]interface{}
		if json.Unmarshal(data, &tsconfig) == nil {
			if compilerOptions, ok := tsconfig["compilerOptions"].(map[string]interface{}); ok {
				if outDir, ok := compilerOptions["outDir"].(string); ok {
					patterns = append(patterns, "**/"+outDir+"/**")
				}
			}
		}
	}

	return patterns
}

func (d *BuildArtifactDetector) detectRustOutputs() []string {
	var patterns []string

	if data, err := os.ReadFile(filepath.Join(d.projectRoot, "Cargo.toml")); err == nil {
		var cargo map[string]interface{}
		if toml.Unmarshal(data, &cargo) == nil {
			// Rust outputs to target/ by default; only a custom target-dir
			// needs detection.
			if profile, ok := cargo["profile"].(map[string]interface{}); ok {
				if release, ok := profile["release"].(map[string]interface{}); ok {
					if targetDir, ok := release["target-dir"].(string); ok {
						patterns = append(patterns, "**/"+targetDir+"/**")
					}
				}
			}
			patterns = append(patterns, "**/target/**")
		}
	}

	return patterns
}

func (d *BuildArtifactDetector) detectPythonOutputs() []string {
	var patterns []string

	if data, err := os.ReadFile(filepath.Join(d.projectRoot, "pyproject.toml")); err == nil {
		var pyproject map[string]interface{}
		if toml.Unmarshal(data, &pyproject) == nil {
			if tool, ok := pyproject["tool"].(map[string]interface{}); ok {
				if poetry, ok := tool["poetry"].(map[string]interface{}); ok {
					if build, ok := poetry["build"].(map[string]interface{}); ok {
						if targetDir, ok := build["target-dir"].(string); ok {
							patterns = append(patterns, "**/"+targetDir+"/**")
						}
					}
				}
			}
			patterns = append(patterns, "**/*.egg-info/**")
		}
	}

	return patterns
}

// DeduplicatePatterns removes duplicate exclusion patterns while keeping
// first-seen order.
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}
	return result
}
