// internal/dialogue/text/normalize.go
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Normalize collapses every run of whitespace to a single ASCII space, trims
// the ends and case-folds the result. Devanagari has no case and passes
// through untouched. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// cases.Caser is stateful, so a fresh one per call keeps Normalize safe
	// for concurrent use.
	folded := cases.Fold().String(s)
	return strings.Join(strings.Fields(folded), " ")
}

// IsDevanagari reports whether r falls in the Devanagari block (U+0900-U+097F).
func IsDevanagari(r rune) bool {
	return r >= 0x0900 && r <= 0x097F
}

// HasDevanagari reports whether s contains at least one Devanagari code point.
func HasDevanagari(s string) bool {
	return strings.IndexFunc(s, IsDevanagari) >= 0
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}
