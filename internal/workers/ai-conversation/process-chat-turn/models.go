// internal/workers/ai-conversation/process-chat-turn/models.go
package processchatturn

import "assistant-engine/internal/dialogue/text"

type Input struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// Output is merged into the process instance variables.
type Output struct {
	SessionID   string        `json:"sessionId"`
	Intent      string        `json:"intent"`
	Response    string        `json:"response"`
	URL         string        `json:"url,omitempty"`
	Lang        text.Language `json:"lang"`
	Confidence  float64       `json:"confidence"`
	Suggestions []string      `json:"suggestions,omitempty"`
	State       string        `json:"turnState"`
}
