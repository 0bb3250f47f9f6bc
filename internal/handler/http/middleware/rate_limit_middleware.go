package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/config"
)

// Limiter counts a hit against a rule and reports whether it is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string, rule config.RateLimitRule) (bool, error)
}

// RateLimit applies a fixed-window limit keyed by client IP. The scope
// separates counters of different endpoint groups.
func RateLimit(limiter Limiter, rule config.RateLimitRule, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), scope+":"+c.ClientIP(), rule)
		if err != nil {
			// Fail open; the limiter already logged the cause.
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
