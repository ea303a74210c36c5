// internal/audit/postgres.go
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"assistant-engine/internal/models"
)

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)

// PostgresSink inserts one row per turn. See migrations/001_conversations.sql.
type PostgresSink struct {
	db     *sql.DB
	insert string
}

func NewPostgresSink(db *sql.DB, table string) (*PostgresSink, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid audit table name %q", table)
	}
	return &PostgresSink{
		db: db,
		insert: fmt.Sprintf(`
		INSERT INTO %s (
			session_id, user_message, bot_response, intent,
			confidence, lang, url, surface, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, table),
	}, nil
}

func (p *PostgresSink) Name() string { return "postgres" }

func (p *PostgresSink) Record(ctx context.Context, c *models.Conversation) error {
	_, err := p.db.ExecContext(ctx, p.insert,
		c.SessionID,
		c.UserMessage,
		c.BotResponse,
		c.Intent,
		c.Confidence,
		c.Lang,
		sql.NullString{String: c.URL, Valid: c.URL != ""},
		c.Surface,
		c.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}
