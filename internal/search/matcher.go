package search

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/fnr/internal/searchtypes"
)

// matcher turns byte-offset regexp hits in whole-file content into
// line-oriented Match values.
type matcher struct {
	re *regexp.Regexp
}

// scan finds up to limit matches in content. Match offsets are rebased
// onto the containing line so that 0 <= MatchStart <= MatchEnd <= len(Text);
// a match spanning a newline is clamped to its first line.
func (m *matcher) scan(content []byte, limit int) []searchtypes.Match {
	if limit <= 0 {
		return nil
	}

	locs := m.re.FindAllIndex(content, limit)
	if len(locs) == 0 {
		return nil
	}

	matches := make([]searchtypes.Match, 0, len(locs))
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		lineStart := ComputeLineStart(content, start)
		lineEnd := ComputeLineEnd(content, start)

		text := strings.TrimSuffix(string(content[lineStart:lineEnd]), "\r")

		matchStart := start - lineStart
		matchEnd := end - lineStart
		if matchEnd > len(text) {
			matchEnd = len(text)
		}
		if matchStart > len(text) {
			matchStart = len(text)
		}
		if matchEnd < matchStart {
			matchEnd = matchStart
		}

		matches = append(matches, searchtypes.Match{
			Line:       ComputeLineNumber(content, start),
			Column:     matchStart + 1,
			Text:       text,
			MatchStart: matchStart,
			MatchEnd:   matchEnd,
		})
	}
	return matches
}
