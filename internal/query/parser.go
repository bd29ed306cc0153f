// Package query parses raw search input into a clean search string plus
// structured filters.
//
// Three filter token families are recognized and stripped independently, in
// any order:
//
//	@modified        only files with unsaved editor changes
//	@ext:go,ts       restrict to filename extensions
//	@tag:todo,fixme  restrict to lines mentioning a tag
//
// Whatever remains after stripping, with whitespace collapsed, is the
// search text. Parsing is a pure function.
package query

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/fnr/internal/searchtypes"
)

var (
	modifiedToken = regexp.MustCompile(`@modified\b`)
	extToken      = regexp.MustCompile(`@ext:(\S+)`)
	tagToken      = regexp.MustCompile(`@tag:(\S+)`)
)

// Parse strips filter tokens from raw input and returns the remaining
// search text together with the parsed filters. Token order does not
// affect the result.
func Parse(raw string) searchtypes.ParsedQuery {
	pq := searchtypes.ParsedQuery{}

	rest := raw

	if modifiedToken.MatchString(rest) {
		pq.Filters.ModifiedOnly = true
		rest = modifiedToken.ReplaceAllString(rest, " ")
	}

	for _, m := range extToken.FindAllStringSubmatch(rest, -1) {
		for _, ext := range splitCSV(m[1]) {
			ext = strings.TrimPrefix(ext, ".")
			if ext == "" {
				continue
			}
			if pq.Filters.Extensions == nil {
				pq.Filters.Extensions = make(map[string]struct{})
			}
			pq.Filters.Extensions[ext] = struct{}{}
		}
	}
	rest = extToken.ReplaceAllString(rest, " ")

	for _, m := range tagToken.FindAllStringSubmatch(rest, -1) {
		for _, tag := range splitCSV(m[1]) {
			if pq.Filters.Tags == nil {
				pq.Filters.Tags = make(map[string]struct{})
			}
			pq.Filters.Tags[tag] = struct{}{}
		}
	}
	rest = tagToken.ReplaceAllString(rest, " ")

	pq.Text = strings.Join(strings.Fields(rest), " ")
	return pq
}

// Eligible reports whether a parsed query should trigger a search: the
// stripped text has at least two characters, or at least one filter is
// present (a filter-only query like "@modified" means "all modified files").
func Eligible(pq searchtypes.ParsedQuery) bool {
	return len(pq.Text) >= 2 || !pq.Filters.Empty()
}

// splitCSV lower-cases and comma-splits a token argument, dropping empty
// entries.
func splitCSV(arg string) []string {
	parts := strings.Split(strings.ToLower(arg), ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
