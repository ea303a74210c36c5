// internal/session/session.go

// Package session persists the per-conversation dialogue context between
// turns and serializes turns of the same conversation.
package session

import (
	"context"
	"errors"
	"time"

	"assistant-engine/internal/dialogue"
)

var (
	// ErrBusy is returned by Lock when another turn holds the session for
	// longer than the caller is willing to wait.
	ErrBusy = errors.New("SESSION_BUSY")
	// ErrInvalidID rejects empty session identifiers.
	ErrInvalidID = errors.New("SESSION_INVALID_ID")
)

// Unlock releases a session lock. It is safe to call more than once.
type Unlock func()

// Store loads and saves dialogue contexts by session id.
type Store interface {
	// Load returns the stored context, or a fresh one for an unknown id.
	Load(ctx context.Context, id string) (*dialogue.Context, error)
	Save(ctx context.Context, id string, state *dialogue.Context) error
	// Lock blocks until the caller exclusively owns the session, the wait
	// budget is spent (ErrBusy) or ctx is done.
	Lock(ctx context.Context, id string) (Unlock, error)
}

// Options are shared by all store implementations.
type Options struct {
	TTL      time.Duration // how long an idle session is kept
	LockTTL  time.Duration // lease on a lock whose holder died
	LockWait time.Duration // how long Lock waits for a busy session
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = 24 * time.Hour
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 30 * time.Second
	}
	if o.LockWait <= 0 {
		o.LockWait = 5 * time.Second
	}
	return o
}

// sweepInterval bounds how often MemoryStore scans for expired sessions.
func (o Options) sweepInterval() time.Duration {
	if o.TTL < time.Minute {
		return o.TTL
	}
	return time.Minute
}
