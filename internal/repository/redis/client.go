package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/config"
)

// Client wraps the Redis connection and exposes the access-token blacklist.
type Client struct {
	client *redis.Client
	logger *zap.Logger
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{client: rdb, logger: logger}, nil
}

// NewClientFromRedis wraps an existing connection, used by tests.
func NewClientFromRedis(rdb *redis.Client, logger *zap.Logger) *Client {
	return &Client{client: rdb, logger: logger}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Underlying exposes the raw connection for collaborators such as the
// rate limiter.
func (c *Client) Underlying() *redis.Client {
	return c.client
}

func blacklistKey(token string) string {
	return "token:blacklist:" + token
}

// AddToBlacklist stores the access token until its natural expiry, after
// which the stateless JWT check alone is enough to reject it.
func (c *Client) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, blacklistKey(token), "1", ttl).Err(); err != nil {
		c.logger.Error("Failed to blacklist access token", zap.Error(err))
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// IsBlacklisted reports whether the access token was revoked before expiry.
func (c *Client) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	_, err := c.client.Get(ctx, blacklistKey(token)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return true, nil
}
