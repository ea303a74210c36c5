// internal/session/memory.go
package session

import (
	"context"
	"sync"
	"time"

	"assistant-engine/internal/dialogue"
)

type memoryEntry struct {
	state   dialogue.Context
	expires time.Time
}

// memoryLock is dropped from the store once no caller holds or awaits it.
type memoryLock struct {
	ch   chan struct{}
	refs int
}

// MemoryStore is an in-process Store for single-instance deployments and
// tests. Expired sessions are dropped on access and by a sweep that runs
// from Save at most once per sweep interval.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]memoryEntry
	locks     map[string]*memoryLock
	opts      Options
	now       func() time.Time
	nextSweep time.Time
}

func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		locks:    make(map[string]*memoryLock),
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*dialogue.Context, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok || m.now().After(e.expires) {
		delete(m.sessions, id)
		return &dialogue.Context{}, nil
	}
	state := e.state
	return &state, nil
}

func (m *MemoryStore) Save(ctx context.Context, id string, state *dialogue.Context) error {
	if id == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sessions[id] = memoryEntry{state: *state, expires: now.Add(m.opts.TTL)}
	m.sweepLocked(now)
	return nil
}

// sweepLocked drops expired sessions. m.mu must be held.
func (m *MemoryStore) sweepLocked(now time.Time) {
	if now.Before(m.nextSweep) {
		return
	}
	for id, e := range m.sessions {
		if now.After(e.expires) {
			delete(m.sessions, id)
		}
	}
	m.nextSweep = now.Add(m.opts.sweepInterval())
}

func (m *MemoryStore) Lock(ctx context.Context, id string) (Unlock, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &memoryLock{ch: make(chan struct{}, 1)}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	timer := time.NewTimer(m.opts.LockWait)
	defer timer.Stop()

	select {
	case l.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-l.ch
				m.release(id, l)
			})
		}, nil
	case <-ctx.Done():
		m.release(id, l)
		return nil, ctx.Err()
	case <-timer.C:
		m.release(id, l)
		return nil, ErrBusy
	}
}

func (m *MemoryStore) release(id string, l *memoryLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, id)
	}
}

// Len reports how many sessions are stored, including expired ones not yet
// swept.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
