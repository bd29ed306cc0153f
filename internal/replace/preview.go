package replace

import (
	"regexp"

	"github.com/standardbeagle/fnr/internal/search"
	"github.com/standardbeagle/fnr/internal/searchtypes"
)

// GeneratePreview computes, without writing anything, what each matched
// line would become after substitution. For responsiveness the preview is
// capped to the first PreviewMaxFiles files and PreviewMaxMatchesPerFile
// matches per file; the commit path is not capped.
//
// In regex mode every occurrence on the whole line is replaced, with case
// preservation applied per replaced token. When the regex cannot be built
// the preview falls back to a plain substring replacement at the tracked
// match offsets. Literal mode always replaces at the tracked offsets.
func GeneratePreview(results []searchtypes.FileResult, pattern string, opts searchtypes.SearchOptions, replacement string, preserveCase bool) []searchtypes.ReplacePreview {
	var re *regexp.Regexp
	if opts.UseRegex {
		re, _ = search.CompileSearchPattern(pattern, opts)
	}

	previews := make([]searchtypes.ReplacePreview, 0, min(len(results), searchtypes.PreviewMaxFiles))
	for _, fr := range results {
		if len(previews) >= searchtypes.PreviewMaxFiles {
			break
		}

		preview := searchtypes.ReplacePreview{File: fr.File}
		for _, m := range fr.Matches {
			if len(preview.Changes) >= searchtypes.PreviewMaxMatchesPerFile {
				break
			}
			preview.Changes = append(preview.Changes, searchtypes.LineChange{
				Line:        m.Line,
				Original:    m.Text,
				Replacement: previewLine(m, re, replacement, preserveCase),
			})
		}
		previews = append(previews, preview)
	}
	return previews
}

// previewLine computes the substituted form of one matched line.
func previewLine(m searchtypes.Match, re *regexp.Regexp, replacement string, preserveCase bool) string {
	if re != nil {
		return re.ReplaceAllStringFunc(m.Text, func(tok string) string {
			if preserveCase {
				return PreserveCase(tok, replacement)
			}
			return replacement
		})
	}
	return replaceAtOffsets(m, replacement, preserveCase)
}

// replaceAtOffsets performs a single substring replacement at the tracked
// match offsets. Out-of-range offsets leave the line untouched.
func replaceAtOffsets(m searchtypes.Match, replacement string, preserveCase bool) string {
	if m.MatchStart < 0 || m.MatchEnd < m.MatchStart || m.MatchEnd > len(m.Text) {
		return m.Text
	}
	repl := replacement
	if preserveCase {
		repl = PreserveCase(m.Text[m.MatchStart:m.MatchEnd], replacement)
	}
	return m.Text[:m.MatchStart] + repl + m.Text[m.MatchEnd:]
}
