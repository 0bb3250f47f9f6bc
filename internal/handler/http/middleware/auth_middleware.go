package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/errors"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/infrastructure/security"
)

// Context keys set by the auth middleware.
const (
	ContextKeyUser        = "currentUser"
	ContextKeyUserID      = "currentUserID"
	ContextKeyAccessToken = "accessToken"

	// AccessTokenCookie is the cookie browser clients carry the access
	// token in when no Authorization header is set.
	AccessTokenCookie = "accessToken"
)

// UserLoader resolves an authenticated user id to the account, so the
// middleware can reject disabled accounts even while their JWT is valid.
type UserLoader interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// BlacklistChecker reports whether an access token was revoked by logout.
type BlacklistChecker interface {
	IsAccessTokenBlacklisted(ctx context.Context, accessToken string) (bool, error)
}

func extractAccessToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

// Auth authenticates the request via a Bearer header or the access-token
// cookie, loads the account and stores it in the request context.
func Auth(tm *security.TokenManager, users UserLoader, blacklist BlacklistChecker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractAccessToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domainErrors.ErrTokenMissing.Error()})
			return
		}

		blacklisted, err := blacklist.IsAccessTokenBlacklisted(c.Request.Context(), tokenString)
		if err != nil {
			// Redis being down must not lock everyone out; the JWT check
			// below still stands.
			logger.Warn("Blacklist check failed", zap.Error(err))
		} else if blacklisted {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domainErrors.ErrTokenRevoked.Error()})
			return
		}

		claims, err := tm.ParseAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domainErrors.ErrInvalidToken.Error()})
			return
		}

		user, err := users.GetProfile(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domainErrors.ErrUnauthorized.Error()})
			return
		}
		if user.Status != models.UserStatusActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": domainErrors.ErrAccountDisabled.Error()})
			return
		}

		c.Set(ContextKeyUser, user)
		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyAccessToken, tokenString)
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by Auth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(ContextKeyUser)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// CurrentUserID returns the authenticated user id stored by Auth.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(ContextKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

// CurrentAccessToken returns the raw access token of the request.
func CurrentAccessToken(c *gin.Context) string {
	return c.GetString(ContextKeyAccessToken)
}
