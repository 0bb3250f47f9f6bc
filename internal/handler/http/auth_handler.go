package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/config"
	domainErrors "github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/errors"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/handler/http/middleware"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/service"
)

const (
	accessTokenCookie  = middleware.AccessTokenCookie
	refreshTokenCookie = "refreshToken"
)

// AuthHandler serves the public authentication endpoints and the cookie
// plumbing around them.
type AuthHandler struct {
	authService  *service.AuthService
	tokenService *service.TokenService
	cfg          config.ServerConfig
	jwtCfg       config.JWTConfig
	logger       *zap.Logger
}

// NewAuthHandler creates the handler for /api/v1/auth.
func NewAuthHandler(
	authService *service.AuthService,
	tokenService *service.TokenService,
	cfg config.ServerConfig,
	jwtCfg config.JWTConfig,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenService: tokenService,
		cfg:          cfg,
		jwtCfg:       jwtCfg,
		logger:       logger,
	}
}

func deviceContext(c *gin.Context) service.DeviceContext {
	return service.DeviceContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, maxAge, "/", "", h.cfg.IsProduction(), true)
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	h.setCookie(c, accessTokenCookie, accessToken, int(h.jwtCfg.AccessTokenTTL.Seconds()))
	h.setCookie(c, refreshTokenCookie, refreshToken, int(h.jwtCfg.RefreshTokenTTL.Seconds()))
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	h.setCookie(c, accessTokenCookie, "", -1)
	h.setCookie(c, refreshTokenCookie, "", -1)
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, h.logger, fmt.Errorf("%w: %v", domainErrors.ErrInvalidRequest, err), h.cfg.IsProduction())
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req, deviceContext(c))
	if err != nil {
		RespondWithError(c, h.logger, err, h.cfg.IsProduction())
		return
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	RespondWithData(c, http.StatusCreated, gin.H{
		"user":         result.User.ToResponse(),
		"access_token": result.AccessToken,
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, h.logger, fmt.Errorf("%w: %v", domainErrors.ErrInvalidRequest, err), h.cfg.IsProduction())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req, deviceContext(c))
	if err != nil {
		RespondWithError(c, h.logger, err, h.cfg.IsProduction())
		return
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	RespondWithData(c, http.StatusOK, gin.H{
		"user":         result.User.ToResponse(),
		"access_token": result.AccessToken,
	})
}

// Refresh handles POST /api/v1/auth/refresh. The refresh token comes from
// the cookie; on any failure both cookies are cleared so the browser stops
// retrying a dead token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshTokenCookie)

	result, err := h.tokenService.Refresh(c.Request.Context(), refreshToken, deviceContext(c))
	if err != nil {
		h.clearAuthCookies(c)
		RespondWithError(c, h.logger, err, h.cfg.IsProduction())
		return
	}

	// Only the access cookie is reissued; the refresh token is not rotated.
	h.setCookie(c, accessTokenCookie, result.AccessToken, int(h.jwtCfg.AccessTokenTTL.Seconds()))
	RespondWithData(c, http.StatusOK, gin.H{
		"user":         result.User.ToResponse(),
		"access_token": result.AccessToken,
	})
}

// Logout handles POST /api/v1/auth/logout. It succeeds even when the tokens
// are already invalid; the point is to leave the browser clean.
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshTokenCookie)
	accessToken := middleware.CurrentAccessToken(c)
	if accessToken == "" {
		accessToken, _ = c.Cookie(accessTokenCookie)
	}

	if err := h.authService.Logout(c.Request.Context(), refreshToken, accessToken); err != nil {
		h.logger.Warn("Logout cleanup failed", zap.Error(err))
	}

	h.clearAuthCookies(c)
	RespondWithMessage(c, http.StatusOK, "logged out")
}

// ValidateToken handles POST /api/v1/auth/validate. It reports whether the
// refresh token held by the client still backs a live session.
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshTokenCookie)

	valid, err := h.tokenService.Validate(c.Request.Context(), refreshToken)
	if err != nil {
		RespondWithError(c, h.logger, err, h.cfg.IsProduction())
		return
	}
	RespondWithData(c, http.StatusOK, gin.H{"valid": valid})
}
