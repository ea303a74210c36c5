// internal/lookup/cache.go
package lookup

import (
	"context"
	"errors"
	"time"

	"assistant-engine/internal/common/logger"
	"assistant-engine/internal/dialogue/text"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "lookup:summary:"

// CachedSummarizer keeps successful summaries in Redis. Failures are never
// cached and a Redis outage only costs the cache, not the lookup.
type CachedSummarizer struct {
	next   Summarizer
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSummarizer(next Summarizer, redisClient *redis.Client, ttl time.Duration, log logger.Logger) *CachedSummarizer {
	return &CachedSummarizer{
		next:  next,
		redis: redisClient,
		ttl:   ttl,
		logger: log.With(map[string]interface{}{
			"component": "lookup-cache",
		}),
	}
}

func (c *CachedSummarizer) Summary(ctx context.Context, topic string, locale Locale) (string, error) {
	key := CacheKey(topic, locale)

	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		return val, nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("summary cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	summary, err := c.next.Summary(ctx, topic, locale)
	if err != nil {
		return "", err
	}

	if err := c.redis.Set(ctx, key, summary, c.ttl).Err(); err != nil {
		c.logger.Warn("summary cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return summary, nil
}

// CacheKey is the Redis key a summary is stored under.
func CacheKey(topic string, locale Locale) string {
	return cacheKeyPrefix + string(locale) + ":" + text.Normalize(topic)
}
