package models

import "time"

// Conversation is one answered chat turn as kept in the audit trail.
type Conversation struct {
	SessionID   string    `json:"session_id" db:"session_id"`
	UserMessage string    `json:"user_message" db:"user_message"`
	BotResponse string    `json:"bot_response" db:"bot_response"`
	Intent      string    `json:"intent" db:"intent"`
	Confidence  float64   `json:"confidence" db:"confidence"`
	Lang        string    `json:"lang" db:"lang"`
	URL         string    `json:"url,omitempty" db:"url"`
	Surface     string    `json:"surface" db:"surface"`
	Timestamp   time.Time `json:"timestamp" db:"created_at"`
}
