// internal/session/redis.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"assistant-engine/internal/common/logger"
	"assistant-engine/internal/dialogue"
)

const (
	keyPrefix    = "session:"
	lockSuffix   = ":lock"
	lockRetryGap = 25 * time.Millisecond
)

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps sessions as JSON strings with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	opts   Options
	logger logger.Logger
}

func NewRedisStore(client *redis.Client, opts Options, log logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		opts:   opts.withDefaults(),
		logger: log.With(map[string]interface{}{"component": "session-store", "backend": "redis"}),
	}
}

func Key(id string) string { return keyPrefix + id }

func (s *RedisStore) Load(ctx context.Context, id string) (*dialogue.Context, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	raw, err := s.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &dialogue.Context{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var state dialogue.Context
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupt record is not worth failing the conversation over.
		s.logger.Warn("discarding unreadable session", map[string]interface{}{
			"session_id": id,
			"error":      err.Error(),
		})
		return &dialogue.Context{}, nil
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, state *dialogue.Context) error {
	if id == "" {
		return ErrInvalidID
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	if err := s.client.Set(ctx, Key(id), raw, s.opts.TTL).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Lock(ctx context.Context, id string) (Unlock, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	key := Key(id) + lockSuffix
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, s.opts.LockWait)
	defer cancel()

	ticker := time.NewTicker(lockRetryGap)
	defer ticker.Stop()

	for {
		ok, err := s.client.SetNX(waitCtx, key, token, s.opts.LockTTL).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("lock session %s: %w", id, err)
		}
		if ok {
			return s.unlocker(key, token), nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrBusy
		case <-ticker.C:
		}
	}
}

func (s *RedisStore) unlocker(key, token string) Unlock {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, s.client, []string{key}, token).Err(); err != nil {
				s.logger.Warn("failed to release session lock", map[string]interface{}{
					"key":   key,
					"error": err.Error(),
				})
			}
		})
	}
}
