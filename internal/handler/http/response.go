package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/errors"
)

// ErrorResponse is the uniform error envelope of the API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RespondWithData writes a success envelope.
func RespondWithData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

// RespondWithMessage writes a simple message envelope.
func RespondWithMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// RespondWithError maps a service error onto an HTTP status and a safe
// message. In production internal details are replaced by a generic message;
// classification errors keep their text because they are written for
// clients.
func RespondWithError(c *gin.Context, logger *zap.Logger, err error, isProduction bool) {
	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		c.AbortWithStatusJSON(appErr.StatusCode, ErrorResponse{Error: appErr.Message, Code: appErr.Code})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domainErrors.ErrInvalidRequest):
		status = http.StatusBadRequest
	case domainErrors.IsUnauthorized(err):
		status = http.StatusUnauthorized
	case domainErrors.IsForbidden(err):
		status = http.StatusForbidden
	case domainErrors.IsNotFound(err):
		status = http.StatusNotFound
	case domainErrors.IsConflict(err):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error("Unhandled error in request", zap.String("path", c.FullPath()), zap.Error(err))
		if isProduction {
			c.AbortWithStatusJSON(status, ErrorResponse{Error: "internal server error"})
			return
		}
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}
