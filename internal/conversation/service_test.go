// internal/conversation/service_test.go
package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "assistant-engine/internal/common/errors"
	"assistant-engine/internal/common/logger"
	"assistant-engine/internal/dialogue"
	"assistant-engine/internal/dialogue/action"
	"assistant-engine/internal/dialogue/engine"
	"assistant-engine/internal/dialogue/intent"
	"assistant-engine/internal/models"
	"assistant-engine/internal/session"
)

// ==========================
// Test doubles
// ==========================

type recordingSink struct {
	mu      sync.Mutex
	err     error
	records []*models.Conversation
}

func (r *recordingSink) Name() string { return "recording" }

func (r *recordingSink) Record(ctx context.Context, c *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, c)
	return r.err
}

type brokenStore struct {
	session.Store
	lockErr, loadErr, saveErr error
}

func (b *brokenStore) Lock(ctx context.Context, id string) (session.Unlock, error) {
	if b.lockErr != nil {
		return nil, b.lockErr
	}
	return b.Store.Lock(ctx, id)
}

func (b *brokenStore) Load(ctx context.Context, id string) (*dialogue.Context, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	return b.Store.Load(ctx, id)
}

func (b *brokenStore) Save(ctx context.Context, id string, state *dialogue.Context) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	return b.Store.Save(ctx, id, state)
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	log := logger.NewTestLogger(t)
	d := action.NewDispatcher(log)
	action.RegisterDefaults(d, action.Options{}, log)
	return engine.New(intent.DefaultCatalog(), d, log, engine.WithRandom(func(int) int { return 0 }))
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, store session.Store, sink *recordingSink) *Service {
	return NewService(newEngine(t), store, logger.NewTestLogger(t),
		WithAudit(sink),
		WithClock(func() time.Time { return fixedNow }),
	)
}

// ==========================
// Happy paths
// ==========================

func TestHandleMessage_AssignsSessionID(t *testing.T) {
	sink := &recordingSink{}
	svc := newService(t, session.NewMemoryStore(session.Options{}), sink)

	res, err := svc.HandleMessage(context.Background(), "", "open youtube", SurfaceHTTP)
	require.NoError(t, err)

	_, parseErr := uuid.Parse(res.SessionID)
	assert.NoError(t, parseErr)
	assert.Equal(t, "youtube_open", res.Reply.Intent)
	assert.Equal(t, engine.StateMatchedWithRedirect, res.State)
}

func TestHandleMessage_CarriesContextAcrossTurns(t *testing.T) {
	store := session.NewMemoryStore(session.Options{})
	svc := newService(t, store, &recordingSink{})
	ctx := context.Background()

	first, err := svc.HandleMessage(ctx, "s1", "weather", SurfaceHTTP)
	require.NoError(t, err)
	assert.Contains(t, first.Reply.Response, "Please share your city")

	second, err := svc.HandleMessage(ctx, "s1", "Delhi", SurfaceHTTP)
	require.NoError(t, err)
	assert.Equal(t, engine.StateContextFallback, second.State)
	assert.Contains(t, second.Reply.Response, "Delhi")

	// Another session does not see s1's context.
	other, err := svc.HandleMessage(ctx, "s2", "Delhi", SurfaceHTTP)
	require.NoError(t, err)
	assert.Equal(t, dialogue.UnknownIntent, other.Reply.Intent)

	state, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "weather", state.LastIntent)
}

func TestHandleMessage_RecordsAudit(t *testing.T) {
	sink := &recordingSink{}
	svc := newService(t, session.NewMemoryStore(session.Options{}), sink)

	res, err := svc.HandleMessage(context.Background(), "s1", "play lofi beats", SurfaceZeebe)
	require.NoError(t, err)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, "s1", rec.SessionID)
	assert.Equal(t, "play lofi beats", rec.UserMessage)
	assert.Equal(t, res.Reply.Response, rec.BotResponse)
	assert.Equal(t, "youtube_search", rec.Intent)
	assert.Equal(t, res.Reply.Confidence, rec.Confidence)
	assert.Equal(t, res.Reply.URL, rec.URL)
	assert.Equal(t, SurfaceZeebe, rec.Surface)
	assert.Equal(t, fixedNow, rec.Timestamp)
}

// ==========================
// Degraded paths
// ==========================

func TestHandleMessage_AuditFailureDoesNotFailTurn(t *testing.T) {
	sink := &recordingSink{err: errors.New("postgres down")}
	svc := newService(t, session.NewMemoryStore(session.Options{}), sink)

	res, err := svc.HandleMessage(context.Background(), "s1", "hello", SurfaceHTTP)
	require.NoError(t, err)
	assert.Equal(t, "greeting", res.Reply.Intent)
}

func TestHandleMessage_SaveFailureDoesNotFailTurn(t *testing.T) {
	store := &brokenStore{Store: session.NewMemoryStore(session.Options{}), saveErr: errors.New("READONLY")}
	svc := newService(t, store, &recordingSink{})

	res, err := svc.HandleMessage(context.Background(), "s1", "hello", SurfaceHTTP)
	require.NoError(t, err)
	assert.Equal(t, "greeting", res.Reply.Intent)
}

func TestHandleMessage_InfrastructureFailures(t *testing.T) {
	tests := []struct {
		name     string
		store    *brokenStore
		wantCode apperrors.ErrorCode
	}{
		{"busy", &brokenStore{lockErr: session.ErrBusy}, apperrors.ErrCodeSessionBusy},
		{"lock backend down", &brokenStore{lockErr: errors.New("dial tcp")}, apperrors.ErrCodeSessionLoadFailed},
		{"load fails", &brokenStore{loadErr: errors.New("timeout")}, apperrors.ErrCodeSessionLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.store.Store = session.NewMemoryStore(session.Options{})
			sink := &recordingSink{}
			svc := newService(t, tt.store, sink)

			res, err := svc.HandleMessage(context.Background(), "s1", "hello", SurfaceHTTP)
			assert.Nil(t, res)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), err)
			assert.Empty(t, sink.records)
		})
	}
}

func TestHandleMessage_SerializesSameSession(t *testing.T) {
	store := session.NewMemoryStore(session.Options{LockWait: 5 * time.Second})
	svc := newService(t, store, &recordingSink{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.HandleMessage(context.Background(), "shared", "play lofi beats", SurfaceHTTP)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := store.Load(context.Background(), "shared")
	require.NoError(t, err)
	assert.Equal(t, "lofi beats", state.LastQuery)
}
