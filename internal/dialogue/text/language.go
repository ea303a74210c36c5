// internal/dialogue/text/language.go
package text

import "regexp"

// Language is the register a message was written in.
type Language string

const (
	English  Language = "english"
	Hindi    Language = "hindi"
	Hinglish Language = "hinglish"
)

// hinglishThreshold is the number of distinct marker tokens needed before a
// Latin-script message is tagged as Hinglish. One marker is not enough.
const hinglishThreshold = 2

var (
	latinToken = regexp.MustCompile(`\b[a-z]+\b`)

	hinglishMarkers = map[string]struct{}{
		"kya": {}, "hai": {}, "ka": {}, "tum": {}, "mera": {}, "tera": {}, "krna": {},
		"krta": {}, "krte": {}, "nahi": {}, "mat": {}, "kar": {}, "karo": {}, "krdo": {},
	}
)

// DetectLanguage classifies a raw message. Any Devanagari code point makes it
// Hindi; otherwise two or more distinct Hinglish markers make it Hinglish;
// everything else is English.
func DetectLanguage(message string) Language {
	msg := Normalize(message)
	if HasDevanagari(msg) {
		return Hindi
	}
	if HinglishScore(msg) >= hinglishThreshold {
		return Hinglish
	}
	return English
}

// HinglishScore counts the distinct Hinglish marker tokens in a normalized message.
func HinglishScore(normalized string) int {
	seen := make(map[string]struct{})
	for _, tok := range latinToken.FindAllString(normalized, -1) {
		if _, ok := hinglishMarkers[tok]; ok {
			seen[tok] = struct{}{}
		}
	}
	return len(seen)
}
