package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/config"
	domainErrors "github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/errors"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/service"
)

// AdminHandler serves the admin console endpoints: user management and
// session maintenance.
type AdminHandler struct {
	authService  *service.AuthService
	tokenService *service.TokenService
	cfg          config.ServerConfig
	logger       *zap.Logger
}

// NewAdminHandler creates the handler for the /admin surface.
func NewAdminHandler(
	authService *service.AuthService,
	tokenService *service.TokenService,
	cfg config.ServerConfig,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		authService:  authService,
		tokenService: tokenService,
		cfg:          cfg,
		logger:       logger,
	}
}

// ListUsers handles GET /api/v1/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := models.ListUsersParams{
		Search: c.Query("search"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		params.Page = page
	}
	if pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		params.PageSize = pageSize
	}
	if statusParam := c.Query("status"); statusParam != "" {
		if value, err := strconv.Atoi(statusParam); err == nil {
			status := models.UserStatus(value)
			params.Status = &status
		}
	}

	users, total, err := h.authService.ListUsers(c.Request.Context(), params)
	if err != nil {
		RespondWithError(c, h.logger, err, h.cfg.IsProduction())
		return
	}

	responses := make([]models.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, user.ToResponse())
	}
	RespondWithData(c, http.StatusOK, gin.H{
		"users": responses,
		"total": total,
		"page":  params.Page,
	})
}

// GetUser handles GET /api/v1/admin/users/:user_id.
func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		RespondWithError(c, h.logger, domainErrors.ErrAccountNotFound, h.cfg.IsProduction())
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		RespondWithError(c, h.logger, err, h.cfg.IsProduction())
		return
	}
	RespondWithData(c, http.StatusOK, user.ToResponse())
}

// BlockUser handles POST /api/v1/admin/users/:user_id/block.
func (h *AdminHandler) BlockUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		RespondWithError(c, h.logger, domainErrors.ErrAccountNotFound, h.cfg.IsProduction())
		return
	}

	var req models.UpdateUserStatusRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.BlockUser(c.Request.Context(), userID, req.Reason); err != nil {
		RespondWithError(c, h.logger, err, h.cfg.IsProduction())
		return
	}
	RespondWithMessage(c, http.StatusOK, "user blocked")
}

// UnblockUser handles POST /api/v1/admin/users/:user_id/unblock.
func (h *AdminHandler) UnblockUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		RespondWithError(c, h.logger, domainErrors.ErrAccountNotFound, h.cfg.IsProduction())
		return
	}

	if err := h.authService.UnblockUser(c.Request.Context(), userID); err != nil {
		RespondWithError(c, h.logger, err, h.cfg.IsProduction())
		return
	}
	RespondWithMessage(c, http.StatusOK, "user unblocked")
}

// PurgeExpiredSessions handles POST /api/v1/admin/maintenance/purge-expired-sessions.
// Expired rows are hard-deleted; revoked but unexpired ones stay for audit.
func (h *AdminHandler) PurgeExpiredSessions(c *gin.Context) {
	removed, err := h.tokenService.PurgeExpired(c.Request.Context())
	if err != nil {
		RespondWithError(c, h.logger, err, h.cfg.IsProduction())
		return
	}
	RespondWithData(c, http.StatusOK, gin.H{"removed": removed})
}
