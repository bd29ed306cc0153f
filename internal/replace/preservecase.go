// Package replace implements case-preserving substitution, the replace
// preview generator, and the commit executor that writes replacements to
// disk.
package replace

import (
	"strings"
	"unicode"
)

// PreserveCase derives a replacement string whose letter-casing mirrors the
// matched text. The original's case pattern is classified in priority
// order: all-uppercase, all-lowercase, capitalized, then mixed. Mixed case
// transfers casing rune-by-rune for positions covered by the original;
// replacement runes beyond the original's length pass through unchanged.
func PreserveCase(original, replacement string) string {
	upper := strings.ToUpper(original)
	lower := strings.ToLower(original)

	switch {
	case original == upper && original != lower:
		return strings.ToUpper(replacement)
	case original == lower && original != upper:
		return strings.ToLower(replacement)
	case isCapitalized(original):
		return capitalize(replacement)
	default:
		return transferCase(original, replacement)
	}
}

// isCapitalized reports whether the first rune is upper-case and the rest
// is entirely lower-case.
func isCapitalized(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	rest := string(runes[1:])
	return rest == strings.ToLower(rest)
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
}

// transferCase copies the per-position casing of original onto replacement.
func transferCase(original, replacement string) string {
	origRunes := []rune(original)
	replRunes := []rune(replacement)

	for i, r := range replRunes {
		if i >= len(origRunes) {
			break
		}
		switch {
		case unicode.IsUpper(origRunes[i]):
			replRunes[i] = unicode.ToUpper(r)
		case unicode.IsLower(origRunes[i]):
			replRunes[i] = unicode.ToLower(r)
		}
	}
	return string(replRunes)
}
