// internal/workers/ai-conversation/process-chat-turn/handler_test.go
package processchatturn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-engine/internal/common/config"
	apperrors "assistant-engine/internal/common/errors"
	"assistant-engine/internal/common/logger"
	"assistant-engine/internal/conversation"
	"assistant-engine/internal/dialogue"
	"assistant-engine/internal/dialogue/action"
	"assistant-engine/internal/dialogue/engine"
	"assistant-engine/internal/dialogue/intent"
	"assistant-engine/internal/dialogue/text"
	"assistant-engine/internal/session"
)

// ==========================
// Test Helper Functions
// ==========================

type stubChat struct {
	result  *conversation.Result
	err     error
	surface string
}

func (s *stubChat) HandleMessage(ctx context.Context, sessionID, message, surface string) (*conversation.Result, error) {
	s.surface = surface
	return s.result, s.err
}

func createTestHandler(t *testing.T, chat ChatService) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second}, chat, logger.NewTestLogger(t))
}

// newRealService builds the full turn pipeline over an in-memory store.
func newRealService(t *testing.T) *conversation.Service {
	log := logger.NewTestLogger(t)
	d := action.NewDispatcher(log)
	action.RegisterDefaults(d, action.Options{}, log)
	e := engine.New(intent.DefaultCatalog(), d, log, engine.WithRandom(func(int) int { return 0 }))
	return conversation.NewService(e, session.NewMemoryStore(session.Options{}), log)
}

// ==========================
// Input decoding
// ==========================

func TestHandler_DecodeInput(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantErr   bool
		want      *Input
	}{
		{
			name:      "message and session",
			variables: `{"message":"hello","sessionId":"order-42","otherVar":true}`,
			want:      &Input{Message: "hello", SessionID: "order-42"},
		},
		{
			name:      "empty message allowed",
			variables: `{"sessionId":"order-42"}`,
			want:      &Input{SessionID: "order-42"},
		},
		{
			name:      "null message treated as empty",
			variables: `{"message":null,"sessionId":"order-42"}`,
			want:      &Input{SessionID: "order-42"},
		},
		{name: "missing session id", variables: `{"message":"hi"}`, wantErr: true},
		{name: "bad session id", variables: `{"message":"hi","sessionId":"a b"}`, wantErr: true},
		{name: "not json", variables: `nope`, wantErr: true},
	}

	h := createTestHandler(t, &stubChat{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.decodeInput(tt.variables)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidChatRequest))
				assert.Zero(t, apperrors.GetRetryCount(apperrors.AsStandard(err).Code), "validation errors are not retried")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_MapsReply(t *testing.T) {
	chat := &stubChat{result: &conversation.Result{
		SessionID: "order-42",
		State:     engine.StateMatchedWithRedirect,
		Reply: dialogue.Reply{
			Intent:     "open_youtube",
			Response:   "Opening YouTube",
			URL:        "https://www.youtube.com",
			Lang:       text.English,
			Confidence: 0.9,
		},
	}}
	h := createTestHandler(t, chat)

	out, err := h.Execute(context.Background(), &Input{Message: "open youtube", SessionID: "order-42"})
	require.NoError(t, err)
	assert.Equal(t, conversation.SurfaceZeebe, chat.surface)
	assert.Equal(t, "order-42", out.SessionID)
	assert.Equal(t, "open_youtube", out.Intent)
	assert.Equal(t, "https://www.youtube.com", out.URL)
	assert.Equal(t, 0.9, out.Confidence)
	assert.Equal(t, "matched_with_redirect", out.State)
}

func TestHandler_Execute_PropagatesServiceError(t *testing.T) {
	h := createTestHandler(t, &stubChat{err: apperrors.NewSessionBusyError("order-42")})

	_, err := h.Execute(context.Background(), &Input{Message: "hi", SessionID: "order-42"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionBusy))
	assert.Positive(t, apperrors.GetRetryCount(apperrors.ErrCodeSessionBusy))
}

func TestHandler_Execute_PlainErrorBecomesInternal(t *testing.T) {
	h := createTestHandler(t, &stubChat{err: errors.New("boom")})

	_, err := h.Execute(context.Background(), &Input{SessionID: "order-42"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.AsStandard(err).Code)
}

func TestHandler_Execute_ContextCarriesAcrossJobs(t *testing.T) {
	h := createTestHandler(t, newRealService(t))
	ctx := context.Background()

	first, err := h.Execute(ctx, &Input{Message: "play", SessionID: "order-42"})
	require.NoError(t, err)
	assert.Equal(t, "youtube_search", first.Intent)
	assert.Empty(t, first.URL)

	second, err := h.Execute(ctx, &Input{Message: "lofi beats", SessionID: "order-42"})
	require.NoError(t, err)
	assert.Equal(t, "youtube_search", second.Intent)
	assert.Equal(t, "context_fallback", second.State)
	assert.Contains(t, second.URL, "lofi+beats")
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name string
		wcfg config.WorkerConfig
		want time.Duration
	}{
		{"from worker timeout", config.WorkerConfig{Timeout: 1500}, 1500 * time.Millisecond},
		{"zero falls back", config.WorkerConfig{}, defaultTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LoadConfig(tt.wcfg).Timeout)
		})
	}
}
