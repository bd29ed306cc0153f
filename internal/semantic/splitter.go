package semantic

import (
	"strings"
	"unicode"
)

// identifier splitting: "getUserName" -> [get, user, name],
// "HTTP_SERVER" -> [http, server], "parse-query" -> [parse, query].

// SplitIdentifier breaks a source identifier into lowercase words along
// camelCase humps and _-. separators. Acronym runs stay together: "HTTPServer"
// splits into [http, server], not [h, t, t, p, server].
func SplitIdentifier(name string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || r == ' ':
			flush()
		case unicode.IsUpper(r):
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			// Start a new word at a lower->Upper boundary and at the last
			// letter of an acronym run ("HTTPServer": break before 'S').
			if prevLower || (nextLower && current.Len() > 0) {
				flush()
			}
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return words
}

// Tokenize extracts the identifier-like tokens of a line of text, split into
// lowercase words. Tokens shorter than two characters and pure numbers are
// dropped.
func Tokenize(text string) []string {
	var tokens []string
	seen := make(map[string]struct{})

	start := -1
	flushWord := func(end int) {
		if start < 0 {
			return
		}
		word := text[start:end]
		start = -1
		for _, part := range SplitIdentifier(word) {
			if len(part) < 2 || isNumeric(part) {
				continue
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			tokens = append(tokens, part)
		}
	}

	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			if start < 0 {
				start = i
			}
			continue
		}
		flushWord(i)
	}
	flushWord(len(text))
	return tokens
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
