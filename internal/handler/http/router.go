package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/config"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/handler/http/middleware"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/infrastructure/security"
	redisrepo "github.com/vuducanh221104/server-ecommerce-shopp/internal/repository/redis"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/service"
)

// RouterDeps bundles everything the router wires together.
type RouterDeps struct {
	Config       *config.Config
	Logger       *zap.Logger
	AuthService  *service.AuthService
	TokenService *service.TokenService
	TokenManager *security.TokenManager
	RateLimiter  *redisrepo.RateLimiter
	DB           *pgxpool.Pool
	Redis        *redisrepo.Client
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(deps.Logger),
		middleware.RequestLogger(deps.Logger),
		middleware.CORS(deps.Config.Server.CORSAllowedOrigins),
	)
	if deps.Config.Metrics.Enabled {
		router.Use(middleware.Metrics())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readiness", func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := deps.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "database"})
			return
		}
		if err := deps.Redis.Underlying().Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "redis"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	authHandler := NewAuthHandler(deps.AuthService, deps.TokenService, deps.Config.Server, deps.Config.JWT, deps.Logger)
	meHandler := NewMeHandler(deps.AuthService, deps.TokenService, deps.Config.Server, deps.Logger)
	adminHandler := NewAdminHandler(deps.AuthService, deps.TokenService, deps.Config.Server, deps.Logger)

	authMiddleware := middleware.Auth(deps.TokenManager, deps.AuthService, deps.AuthService, deps.Logger)
	rateCfg := deps.Config.Security.RateLimiting

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(deps.RateLimiter, rateCfg.Auth, "auth"))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login",
				middleware.RateLimit(deps.RateLimiter, rateCfg.LoginIP, "login"),
				authHandler.Login,
			)
			auth.POST("/refresh-token", authHandler.Refresh)
			auth.POST("/validate", authHandler.ValidateToken)
			// Logout is deliberately unauthenticated: a client with a dead
			// access token must still be able to clear its cookies.
			auth.POST("/logout", authHandler.Logout)

			auth.POST("/logout-all", authMiddleware, meHandler.LogoutAll)
			auth.GET("/sessions", authMiddleware, meHandler.ListSessions)
			auth.DELETE("/sessions/:sessionId", authMiddleware, meHandler.RevokeSession)
		}

		v1.GET("/users/me", authMiddleware, meHandler.Profile)

		admin := v1.Group("/admin")
		admin.Use(authMiddleware, middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:user_id", adminHandler.GetUser)
			admin.POST("/users/:user_id/block", adminHandler.BlockUser)
			admin.POST("/users/:user_id/unblock", adminHandler.UnblockUser)
			admin.POST("/maintenance/purge-expired-sessions", adminHandler.PurgeExpiredSessions)
		}
	}

	return router
}
