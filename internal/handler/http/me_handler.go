package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/config"
	domainErrors "github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/errors"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/handler/http/middleware"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/service"
)

// MeHandler serves the authenticated user's own endpoints: profile, session
// management and logout-all.
type MeHandler struct {
	authService  *service.AuthService
	tokenService *service.TokenService
	cfg          config.ServerConfig
	logger       *zap.Logger
}

// NewMeHandler creates the handler for the protected /users/me surface.
func NewMeHandler(
	authService *service.AuthService,
	tokenService *service.TokenService,
	cfg config.ServerConfig,
	logger *zap.Logger,
) *MeHandler {
	return &MeHandler{
		authService:  authService,
		tokenService: tokenService,
		cfg:          cfg,
		logger:       logger,
	}
}

// Profile handles GET /api/v1/users/me.
func (h *MeHandler) Profile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		RespondWithError(c, h.logger, domainErrors.ErrUnauthorized, h.cfg.IsProduction())
		return
	}
	RespondWithData(c, http.StatusOK, user.ToResponse())
}

// ListSessions handles GET /api/v1/auth/sessions, the active-devices view.
func (h *MeHandler) ListSessions(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		RespondWithError(c, h.logger, domainErrors.ErrUnauthorized, h.cfg.IsProduction())
		return
	}

	sessions, err := h.tokenService.ListActive(c.Request.Context(), userID)
	if err != nil {
		RespondWithError(c, h.logger, err, h.cfg.IsProduction())
		return
	}
	RespondWithData(c, http.StatusOK, sessions)
}

// RevokeSession handles DELETE /api/v1/auth/sessions/:sessionId. A session
// id that belongs to another user behaves exactly like a missing one.
func (h *MeHandler) RevokeSession(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		RespondWithError(c, h.logger, domainErrors.ErrUnauthorized, h.cfg.IsProduction())
		return
	}

	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		RespondWithError(c, h.logger, domainErrors.ErrSessionNotFound, h.cfg.IsProduction())
		return
	}

	if err := h.tokenService.RevokeSession(c.Request.Context(), userID, sessionID); err != nil {
		RespondWithError(c, h.logger, err, h.cfg.IsProduction())
		return
	}
	RespondWithMessage(c, http.StatusOK, "session revoked")
}

// LogoutAll handles POST /api/v1/auth/logout-all. Every session dies,
// including the one behind this request.
func (h *MeHandler) LogoutAll(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		RespondWithError(c, h.logger, domainErrors.ErrUnauthorized, h.cfg.IsProduction())
		return
	}

	if err := h.authService.LogoutAll(c.Request.Context(), userID, middleware.CurrentAccessToken(c)); err != nil {
		RespondWithError(c, h.logger, err, h.cfg.IsProduction())
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", h.cfg.IsProduction(), true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", h.cfg.IsProduction(), true)
	RespondWithMessage(c, http.StatusOK, "all sessions revoked")
}
