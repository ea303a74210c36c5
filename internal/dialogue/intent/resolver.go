// internal/dialogue/intent/resolver.go
package intent

import (
	"sort"
	"unicode/utf8"

	"assistant-engine/internal/dialogue/text"
)

// Score ranks one intent against one message.
type Score struct {
	Hits        int // keywords found in the message
	Specificity int // summed rune length of the keywords found
}

// Less orders scores so that more hits win, then higher specificity.
func (s Score) Less(o Score) bool {
	if s.Hits != o.Hits {
		return s.Hits < o.Hits
	}
	return s.Specificity < o.Specificity
}

// Match is a resolved intent together with the score that won.
type Match struct {
	Intent Definition
	Score  Score
}

// ScoreIntent scores a single definition against an already normalized message.
func ScoreIntent(normalized string, def Definition) Score {
	var s Score
	for _, kw := range def.Keywords {
		if text.MatchKeyword(normalized, kw) {
			s.Hits++
			s.Specificity += utf8.RuneCountInString(kw)
		}
	}
	return s
}

// Rank returns every intent with at least one hit, best first. Ties on
// (hits, specificity) keep catalog order.
func (c *Catalog) Rank(message string) []Match {
	normalized := text.Normalize(message)
	if normalized == "" {
		return nil
	}

	var matches []Match
	for _, def := range c.intents {
		if s := ScoreIntent(normalized, def); s.Hits > 0 {
			matches = append(matches, Match{Intent: def, Score: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[j].Score.Less(matches[i].Score)
	})
	return matches
}

// Resolve picks the single best intent for a raw message.
func (c *Catalog) Resolve(message string) (Match, bool) {
	ranked := c.Rank(message)
	if len(ranked) == 0 {
		return Match{}, false
	}
	return ranked[0], true
}
