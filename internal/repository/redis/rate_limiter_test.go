package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/config"
)

func newTestLimiter(t *testing.T, cfg config.RateLimitConfig) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewClientFromRedis(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), zap.NewNop())
	return NewRateLimiter(client, cfg, zap.NewNop()), mr
}

func TestAllowWithinLimit(t *testing.T) {
	rule := config.RateLimitRule{Enabled: true, Limit: 3, Window: time.Minute}
	limiter, _ := newTestLimiter(t, config.RateLimitConfig{Enabled: true})

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(context.Background(), "login:1.2.3.4", rule)
		require.NoError(t, err)
		assert.True(t, allowed, "hit %d should pass", i+1)
	}

	allowed, err := limiter.Allow(context.Background(), "login:1.2.3.4", rule)
	require.NoError(t, err)
	assert.False(t, allowed, "hit over the limit should be blocked")
}

func TestKeysAreIndependent(t *testing.T) {
	rule := config.RateLimitRule{Enabled: true, Limit: 1, Window: time.Minute}
	limiter, _ := newTestLimiter(t, config.RateLimitConfig{Enabled: true})

	allowed, err := limiter.Allow(context.Background(), "login:1.2.3.4", rule)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(context.Background(), "login:5.6.7.8", rule)
	require.NoError(t, err)
	assert.True(t, allowed, "a different IP must not share the counter")
}

func TestWindowExpiryResetsCounter(t *testing.T) {
	rule := config.RateLimitRule{Enabled: true, Limit: 1, Window: time.Minute}
	limiter, mr := newTestLimiter(t, config.RateLimitConfig{Enabled: true})

	allowed, err := limiter.Allow(context.Background(), "login:1.2.3.4", rule)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(context.Background(), "login:1.2.3.4", rule)
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(2 * time.Minute)

	allowed, err = limiter.Allow(context.Background(), "login:1.2.3.4", rule)
	require.NoError(t, err)
	assert.True(t, allowed, "a new window starts after expiry")
}

func TestDisabledLimiterAlwaysAllows(t *testing.T) {
	rule := config.RateLimitRule{Enabled: true, Limit: 1, Window: time.Minute}
	limiter, _ := newTestLimiter(t, config.RateLimitConfig{Enabled: false})

	for i := 0; i < 10; i++ {
		allowed, err := limiter.Allow(context.Background(), "login:1.2.3.4", rule)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestFailOpenWhenRedisIsDown(t *testing.T) {
	rule := config.RateLimitRule{Enabled: true, Limit: 1, Window: time.Minute}
	limiter, mr := newTestLimiter(t, config.RateLimitConfig{Enabled: true})
	mr.Close()

	allowed, err := limiter.Allow(context.Background(), "login:1.2.3.4", rule)
	assert.Error(t, err)
	assert.True(t, allowed)
}
