// internal/conversation/service.go

// Package conversation runs one chat turn end to end: it serializes turns
// per session, carries the dialogue context between turns, asks the engine
// for a reply and records the result.
package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	apperrors "assistant-engine/internal/common/errors"
	"assistant-engine/internal/audit"
	"assistant-engine/internal/common/logger"
	"assistant-engine/internal/common/observability"
	"assistant-engine/internal/dialogue"
	"assistant-engine/internal/dialogue/engine"
	"assistant-engine/internal/models"
	"assistant-engine/internal/session"
)

// Surfaces a turn can arrive on.
const (
	SurfaceHTTP  = "http"
	SurfaceZeebe = "zeebe"
)

// Result is a reply together with the session it belongs to.
type Result struct {
	SessionID string
	Reply     dialogue.Reply
	State     engine.State
}

// TurnEngine is the part of the dialogue engine the service needs.
type TurnEngine interface {
	Run(ctx context.Context, message string, state *dialogue.Context) engine.Outcome
}

type Service struct {
	engine TurnEngine
	store  session.Store
	audit  audit.Sink
	obs    *observability.Observability
	logger logger.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithAudit(sink audit.Sink) Option { return func(s *Service) { s.audit = sink } }

func WithObservability(o *observability.Observability) Option {
	return func(s *Service) { s.obs = o }
}

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(e TurnEngine, store session.Store, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		engine: e,
		store:  store,
		audit:  audit.Discard{},
		logger: log.With(map[string]interface{}{"component": "conversation"}),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSessionID returns a fresh conversation id.
func NewSessionID() string { return uuid.NewString() }

// HandleMessage answers message within the session sessionID, creating a
// new session when sessionID is empty. It fails only when the session
// cannot be locked or loaded; a failed save or audit write is logged and
// the reply is still returned.
func (s *Service) HandleMessage(ctx context.Context, sessionID, message, surface string) (*Result, error) {
	start := s.now()
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	ctx = logger.ContextWith(ctx, map[string]interface{}{
		"session_id": sessionID,
		"surface":    surface,
	})
	log := logger.FromContext(ctx, s.logger)

	ctx, span := s.obs.StartSpan(ctx, "conversation.turn",
		attribute.String("session.id", sessionID),
		attribute.String("surface", surface),
	)
	defer span.End()

	unlock, err := s.store.Lock(ctx, sessionID)
	if err != nil {
		s.obs.RecordTurn(ctx, surface, "busy", s.now().Sub(start))
		span.RecordError(err)
		if errors.Is(err, session.ErrBusy) {
			return nil, apperrors.NewSessionBusyError(sessionID)
		}
		return nil, apperrors.NewSessionLoadFailedError(sessionID, err)
	}
	defer unlock()

	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		s.obs.RecordTurn(ctx, surface, "load_failed", s.now().Sub(start))
		span.RecordError(err)
		return nil, apperrors.NewSessionLoadFailedError(sessionID, err)
	}

	out := s.engine.Run(ctx, message, state)
	span.SetAttributes(
		attribute.String("dialogue.intent", out.Reply.Intent),
		attribute.String("dialogue.state", string(out.State)),
		attribute.Float64("dialogue.confidence", out.Reply.Confidence),
	)

	if err := s.store.Save(ctx, sessionID, state); err != nil {
		span.RecordError(err)
		log.Warn("session context not saved", map[string]interface{}{
			"error_code": string(apperrors.ErrCodeSessionSaveFailed),
			"error":      err.Error(),
		})
	}

	s.record(ctx, sessionID, message, surface, out.Reply)
	s.obs.RecordTurn(ctx, surface, "ok", s.now().Sub(start))

	log.Debug("turn answered", map[string]interface{}{
		"intent":     out.Reply.Intent,
		"state":      string(out.State),
		"confidence": out.Reply.Confidence,
	})

	return &Result{SessionID: sessionID, Reply: out.Reply, State: out.State}, nil
}

func (s *Service) record(ctx context.Context, sessionID, message, surface string, reply dialogue.Reply) {
	// Audit writes outlive caller cancellation.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := s.audit.Record(ctx, &models.Conversation{
		SessionID:   sessionID,
		UserMessage: message,
		BotResponse: reply.Response,
		Intent:      reply.Intent,
		Confidence:  reply.Confidence,
		Lang:        string(reply.Lang),
		URL:         reply.URL,
		Surface:     surface,
		Timestamp:   s.now().UTC(),
	})
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("audit write failed", map[string]interface{}{
			"error_code": string(apperrors.ErrCodeAuditWriteFailed),
			"sink":       s.audit.Name(),
			"error":      err.Error(),
		})
	}
}
