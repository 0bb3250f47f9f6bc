package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/config"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/events"
	kafkaevents "github.com/vuducanh221104/server-ecommerce-shopp/internal/events/kafka"
	httphandler "github.com/vuducanh221104/server-ecommerce-shopp/internal/handler/http"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/infrastructure/security"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/repository/postgres"
	redisrepo "github.com/vuducanh221104/server-ecommerce-shopp/internal/repository/redis"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/service"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/utils/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "auth-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("Starting auth service",
		zap.String("environment", cfg.Server.Environment),
		zap.Int("port", cfg.Server.Port),
	)

	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg.Database, log); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewDBPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	redisClient, err := redisrepo.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	var producer events.Producer = events.NoopProducer{}
	if cfg.Kafka.Enabled {
		kafkaProducer := kafkaevents.NewProducer(cfg.Kafka, log)
		defer kafkaProducer.Close()
		producer = kafkaProducer
	}

	tokenManager, err := security.NewTokenManager(cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build token manager: %w", err)
	}
	passwordService, err := security.NewArgon2idPasswordService(cfg.Security.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to build password service: %w", err)
	}

	userRepo := postgres.NewPgxUserRepository(pool)
	sessionRepo := postgres.NewPgxSessionRepository(pool)

	tokenService := service.NewTokenService(sessionRepo, userRepo, tokenManager, cfg.Security, log)
	authService := service.NewAuthService(userRepo, passwordService, tokenManager, tokenService, redisClient, producer, log)

	rateLimiter := redisrepo.NewRateLimiter(redisClient, cfg.Security.RateLimiting, log)

	router := httphandler.NewRouter(httphandler.RouterDeps{
		Config:       cfg,
		Logger:       log,
		AuthService:  authService,
		TokenService: tokenService,
		TokenManager: tokenManager,
		RateLimiter:  rateLimiter,
		DB:           pool,
		Redis:        redisClient,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

func runMigrations(cfg config.DatabaseConfig, log *zap.Logger) error {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode)

	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info("Database migrations applied")
	return nil
}
