package redis

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/config"
)

// RateLimiter is a fixed-window counter backed by Redis. A window starts
// on the first hit for a key and all hits inside it share one counter.
type RateLimiter struct {
	client *redis.Client
	cfg    config.RateLimitConfig
	logger *zap.Logger
}

// NewRateLimiter creates a Redis-backed rate limiter.
func NewRateLimiter(client *Client, cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{client: client.Underlying(), cfg: cfg, logger: logger}
}

// Allow counts a hit against the rule and reports whether it stays within
// the limit. On Redis failure it fails open: blocking every login because
// the counter store is down is worse than briefly losing the limit.
func (r *RateLimiter) Allow(ctx context.Context, key string, rule config.RateLimitRule) (bool, error) {
	if !r.cfg.Enabled || !rule.Enabled || rule.Limit <= 0 {
		return true, nil
	}

	redisKey := "ratelimit:" + key

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rule.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Rate limit counter update failed", zap.String("key", key), zap.Error(err))
		return true, fmt.Errorf("redis operation failed during rate limit check: %w", err)
	}

	return incr.Val() <= int64(rule.Limit), nil
}
