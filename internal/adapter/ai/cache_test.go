package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interview-oracle/api/internal/domain"
)

type countingClient struct {
	calls int
	reply string
	err   error
}

func (c *countingClient) Complete(_ domain.Context, _ string, _ int) (string, error) {
	c.calls++
	return c.reply, c.err
}

func TestNewCompletionCache_NilRedisReturnsBase(t *testing.T) {
	t.Parallel()

	base := &countingClient{reply: "out"}
	got := NewCompletionCache(base, nil, time.Hour)
	assert.Same(t, base, got)
}

func TestCompletionCache_ReadThrough(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	base := &countingClient{reply: `{"behavioral":[]}`}
	cached := NewCompletionCache(base, rdb, time.Minute)

	ctx := context.Background()
	out, err := cached.Complete(ctx, "prompt", 1500)
	require.NoError(t, err)
	assert.Equal(t, base.reply, out)
	assert.Equal(t, 1, base.calls)

	// second call is served from the cache
	out, err = cached.Complete(ctx, "prompt", 1500)
	require.NoError(t, err)
	assert.Equal(t, base.reply, out)
	assert.Equal(t, 1, base.calls)

	// a different token budget is a different key
	_, err = cached.Complete(ctx, "prompt", 3000)
	require.NoError(t, err)
	assert.Equal(t, 2, base.calls)

	// entries carry the configured TTL
	assert.Equal(t, time.Minute, mr.TTL(cacheKey("prompt", 1500)))
}

func TestCompletionCache_ErrorsNotCached(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	base := &countingClient{err: errors.New("boom")}
	cached := NewCompletionCache(base, rdb, time.Minute)

	ctx := context.Background()
	_, err := cached.Complete(ctx, "prompt", 1500)
	require.Error(t, err)
	_, err = cached.Complete(ctx, "prompt", 1500)
	require.Error(t, err)
	assert.Equal(t, 2, base.calls)
	assert.False(t, mr.Exists(cacheKey("prompt", 1500)))
}

func TestCompletionCache_DegradesWhenRedisDown(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	base := &countingClient{reply: "out"}
	cached := NewCompletionCache(base, rdb, time.Minute)

	out, err := cached.Complete(context.Background(), "prompt", 1500)
	require.NoError(t, err)
	assert.Equal(t, "out", out)
	assert.Equal(t, 1, base.calls)
}
