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
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewClientFromRedis(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), zap.NewNop()), mr
}

func TestBlacklistRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	blacklisted, err := client.IsBlacklisted(ctx, "some-token")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, client.AddToBlacklist(ctx, "some-token", time.Minute))

	blacklisted, err = client.IsBlacklisted(ctx, "some-token")
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestBlacklistEntryExpiresWithToken(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.AddToBlacklist(ctx, "short-lived", time.Minute))
	mr.FastForward(2 * time.Minute)

	blacklisted, err := client.IsBlacklisted(ctx, "short-lived")
	require.NoError(t, err)
	assert.False(t, blacklisted)
}

func TestBlacklistSkipsExpiredTokens(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	// A token past its expiry needs no blacklist entry at all.
	require.NoError(t, client.AddToBlacklist(ctx, "already-expired", -time.Minute))
	assert.Empty(t, mr.Keys())
}
