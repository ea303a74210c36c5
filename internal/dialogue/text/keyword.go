// internal/dialogue/text/keyword.go
package text

import (
	"strings"
	"unicode/utf8"
)

// IsPhrase reports whether a keyword must be matched as a plain substring:
// multi-word phrases and anything containing Devanagari, where word
// boundaries are not reliable.
func IsPhrase(keyword string) bool {
	return strings.Contains(keyword, " ") || HasDevanagari(keyword)
}

// MatchKeyword reports whether keyword occurs in the normalized message.
// Single Latin words only match whole words, so "hi" does not match "this".
func MatchKeyword(normalized, keyword string) bool {
	_, _, ok := LocateKeyword(normalized, keyword)
	return ok
}

// LocateKeyword returns the byte span of the first occurrence of keyword in
// the normalized message under the same rules as MatchKeyword.
func LocateKeyword(normalized, keyword string) (start, end int, ok bool) {
	if keyword == "" {
		return 0, 0, false
	}
	if IsPhrase(keyword) {
		i := strings.Index(normalized, keyword)
		if i < 0 {
			return 0, 0, false
		}
		return i, i + len(keyword), true
	}

	offset := 0
	for offset <= len(normalized) {
		i := strings.Index(normalized[offset:], keyword)
		if i < 0 {
			return 0, 0, false
		}
		s := offset + i
		e := s + len(keyword)
		if wordBoundaryBefore(normalized, s) && wordBoundaryAfter(normalized, e) {
			return s, e, true
		}
		_, size := utf8.DecodeRuneInString(normalized[s:])
		offset = s + size
	}
	return 0, 0, false
}

func wordBoundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func wordBoundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}
