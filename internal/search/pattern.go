package search

import (
	"regexp"

	"github.com/standardbeagle/fnr/internal/searchtypes"
)

// CompileSearchPattern resolves a user pattern and search options into a
// compiled regexp. Literal patterns are meta-escaped; whole-word wraps the
// expression in word-boundary anchors; case-insensitive matching uses the
// (?i) flag. Compilation can only fail for malformed user regex patterns.
func CompileSearchPattern(pattern string, opts searchtypes.SearchOptions) (*regexp.Regexp, error) {
	expr := pattern
	if !opts.UseRegex {
		expr = regexp.QuoteMeta(pattern)
	}
	if opts.WholeWord {
		expr = `\b(?:` + expr + `)\b`
	}
	if !opts.CaseSensitive {
		expr = `(?i)` + expr
	}
	return regexp.Compile(expr)
}
