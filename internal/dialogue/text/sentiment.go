// internal/dialogue/text/sentiment.go
package text

import "strings"

// Sentiment is the coarse valence of a message.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

var (
	negativeWords = []string{"bad", "angry", "upset", "ghussa", "bura", "worst", "hate", "bakwas", "बेकार", "गुस्सा"}
	positiveWords = []string{"good", "great", "awesome", "shukriya", "thanks", "thank you", "धन्यवाद", "अच्छा"}
)

// ClassifySentiment is a purely lexical check against fixed word lists.
// Negation is not handled: "not bad" is negative.
func ClassifySentiment(message string) Sentiment {
	msg := Normalize(message)
	neg := containsAny(msg, negativeWords)
	pos := containsAny(msg, positiveWords)
	switch {
	case neg && !pos:
		return Negative
	case pos && !neg:
		return Positive
	default:
		return Neutral
	}
}

func containsAny(msg string, words []string) bool {
	for _, w := range words {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}
