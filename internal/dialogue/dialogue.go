// internal/dialogue/dialogue.go

// Package dialogue holds the value types shared by the intent engine: the
// per-session carried context and the structured reply.
package dialogue

import "assistant-engine/internal/dialogue/text"

// Context is the state one conversation carries from turn to turn. It is
// owned by a single session and is not safe for concurrent turns; callers
// serialize turns per session.
type Context struct {
	LastIntent string `json:"last_intent,omitempty"`
	LastQuery  string `json:"last_query,omitempty"`
}

// Reply is the structured answer to one turn.
type Reply struct {
	Intent      string        `json:"intent"`
	Response    string        `json:"response"`
	URL         string        `json:"url,omitempty"`
	Lang        text.Language `json:"lang"`
	Confidence  float64       `json:"confidence"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// UnknownIntent is the intent name of a turn nothing matched.
const UnknownIntent = "unknown"
