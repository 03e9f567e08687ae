package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/interview-oracle/api/internal/domain"
)

// completionCache wraps a CompletionClient with a read-through Redis
// cache keyed by prompt hash. Cache failures degrade to a direct call;
// they never fail the request.
type completionCache struct {
	base domain.CompletionClient
	rdb  *redis.Client
	ttl  time.Duration
}

// NewCompletionCache wraps base with a Redis cache. If rdb is nil the
// base client is returned unmodified.
func NewCompletionCache(base domain.CompletionClient, rdb *redis.Client, ttl time.Duration) domain.CompletionClient {
	if rdb == nil || base == nil {
		return base
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &completionCache{base: base, rdb: rdb, ttl: ttl}
}

func (c *completionCache) Complete(ctx domain.Context, prompt string, maxTokens int) (string, error) {
	key := cacheKey(prompt, maxTokens)
	if v, err := c.rdb.Get(ctx, key).Result(); err == nil {
		return v, nil
	} else if err != redis.Nil {
		slog.Debug("completion cache read failed", slog.Any("error", err))
	}
	out, err := c.base.Complete(ctx, prompt, maxTokens)
	if err != nil {
		return "", err
	}
	if err := c.rdb.Set(ctx, key, out, c.ttl).Err(); err != nil {
		slog.Debug("completion cache write failed", slog.Any("error", err))
	}
	return out, nil
}

func cacheKey(prompt string, maxTokens int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d\n%s", maxTokens, prompt)))
	return "completion:" + hex.EncodeToString(sum[:])
}
