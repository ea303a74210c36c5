// internal/lookup/cache_test.go
package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"assistant-engine/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSummarizer struct {
	calls   int
	summary string
	err     error
}

func (c *countingSummarizer) Summary(ctx context.Context, topic string, locale Locale) (string, error) {
	c.calls++
	return c.summary, c.err
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedSummarizer_MissThenHit(t *testing.T) {
	mr, client := setupMiniredis(t)
	next := &countingSummarizer{summary: "Go is a programming language."}
	cached := NewCachedSummarizer(next, client, time.Hour, logger.NewTestLogger(t))

	ctx := context.Background()
	first, err := cached.Summary(ctx, "Golang", LocaleEnglish)
	require.NoError(t, err)
	second, err := cached.Summary(ctx, "  golang ", LocaleEnglish)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)

	stored, err := mr.Get(CacheKey("golang", LocaleEnglish))
	require.NoError(t, err)
	assert.Equal(t, "Go is a programming language.", stored)
	assert.Equal(t, time.Hour, mr.TTL(CacheKey("golang", LocaleEnglish)))
}

func TestCachedSummarizer_LocalesAreSeparate(t *testing.T) {
	_, client := setupMiniredis(t)
	next := &countingSummarizer{summary: "text"}
	cached := NewCachedSummarizer(next, client, time.Hour, logger.NewTestLogger(t))

	ctx := context.Background()
	_, _ = cached.Summary(ctx, "India", LocaleEnglish)
	_, _ = cached.Summary(ctx, "India", LocaleHindi)

	assert.Equal(t, 2, next.calls)
}

func TestCachedSummarizer_ErrorsAreNotCached(t *testing.T) {
	mr, client := setupMiniredis(t)
	next := &countingSummarizer{err: ErrNotFound}
	cached := NewCachedSummarizer(next, client, time.Hour, logger.NewTestLogger(t))

	_, err := cached.Summary(context.Background(), "nothing", LocaleEnglish)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, mr.Exists(CacheKey("nothing", LocaleEnglish)))
}

func TestCachedSummarizer_RedisDownFallsThrough(t *testing.T) {
	client, mock := redismock.NewClientMock()
	key := CacheKey("golang", LocaleEnglish)
	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	mock.ExpectSet(key, "Go.", time.Minute).SetErr(errors.New("connection refused"))

	next := &countingSummarizer{summary: "Go."}
	cached := NewCachedSummarizer(next, client, time.Minute, logger.NewTestLogger(t))

	summary, err := cached.Summary(context.Background(), "golang", LocaleEnglish)
	require.NoError(t, err)
	assert.Equal(t, "Go.", summary)
	assert.Equal(t, 1, next.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
