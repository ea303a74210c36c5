// internal/audit/audit.go

// Package audit records answered chat turns. Records are write-only: the
// assistant never reads them back, and a failed write never fails a turn.
package audit

import (
	"context"
	"errors"
	"fmt"

	"assistant-engine/internal/common/logger"
	"assistant-engine/internal/models"
)

// Sink stores conversation records.
type Sink interface {
	Name() string
	Record(ctx context.Context, c *models.Conversation) error
}

// FailureObserver is told which sink failed to write.
type FailureObserver func(sink string)

// MultiSink writes every record to all of its sinks. One sink failing does
// not stop the others.
type MultiSink struct {
	sinks     []Sink
	logger    logger.Logger
	onFailure FailureObserver
}

func NewMultiSink(log logger.Logger, onFailure FailureObserver, sinks ...Sink) *MultiSink {
	if onFailure == nil {
		onFailure = func(string) {}
	}
	return &MultiSink{
		sinks:     sinks,
		logger:    log.With(map[string]interface{}{"component": "audit"}),
		onFailure: onFailure,
	}
}

func (m *MultiSink) Name() string { return "multi" }

// Len is the number of configured sinks.
func (m *MultiSink) Len() int { return len(m.sinks) }

func (m *MultiSink) Record(ctx context.Context, c *models.Conversation) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Record(ctx, c); err != nil {
			m.onFailure(s.Name())
			m.logger.Warn("audit write failed", map[string]interface{}{
				"sink":       s.Name(),
				"session_id": c.SessionID,
				"error":      err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Discard drops every record.
type Discard struct{}

func (Discard) Name() string { return "discard" }
func (Discard) Record(ctx context.Context, c *models.Conversation) error { return nil }
