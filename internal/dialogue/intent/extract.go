// internal/dialogue/intent/extract.go
package intent

import (
	"sort"
	"unicode/utf8"

	"assistant-engine/internal/dialogue/text"
)

// StripFirstKeyword removes the trigger phrase from a message and returns
// the normalized remainder, e.g. the search query. Keywords are tried
// longest first and only the first one found is removed, once. When no
// keyword occurs the normalized message is returned unchanged. An empty
// result means the user gave no payload.
func StripFirstKeyword(message string, keywords []string) string {
	msg := text.Normalize(message)

	ordered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = text.Normalize(k); k != "" {
			ordered = append(ordered, k)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return utf8.RuneCountInString(ordered[i]) > utf8.RuneCountInString(ordered[j])
	})

	for _, kw := range ordered {
		if start, end, ok := text.LocateKeyword(msg, kw); ok {
			return text.Normalize(msg[:start] + msg[end:])
		}
	}
	return msg
}
