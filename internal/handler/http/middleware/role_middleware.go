package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/errors"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
)

// RequireRole rejects requests whose authenticated user holds a lesser role.
// Must run after Auth.
func RequireRole(minRole models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domainErrors.ErrUnauthorized.Error()})
			return
		}
		if user.Role < minRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": domainErrors.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}
