package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/errors"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/events"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/infrastructure/security"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/repository/interfaces"
	redisrepo "github.com/vuducanh221104/server-ecommerce-shopp/internal/repository/redis"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

// AuthService implements account lifecycle on top of the token service:
// registration, login, logout and the admin user operations.
type AuthService struct {
	userRepo        interfaces.UserRepository
	passwordService security.PasswordService
	tokenManager    *security.TokenManager
	tokenService    *TokenService
	blacklist       *redisrepo.Client
	producer        events.Producer
	logger          *zap.Logger
}

// NewAuthService wires the auth service with its dependencies.
func NewAuthService(
	userRepo interfaces.UserRepository,
	passwordService security.PasswordService,
	tokenManager *security.TokenManager,
	tokenService *TokenService,
	blacklist *redisrepo.Client,
	producer events.Producer,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		passwordService: passwordService,
		tokenManager:    tokenManager,
		tokenService:    tokenService,
		blacklist:       blacklist,
		producer:        producer,
		logger:          logger,
	}
}

// Register creates a customer account and immediately opens its first
// session, so the client lands logged in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, device DeviceContext) (*models.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email address", domainErrors.ErrInvalidRequest)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domainErrors.ErrInvalidRequest, minPasswordLength)
	}

	emailTaken, usernameTaken, err := s.userRepo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if emailTaken {
		return nil, domainErrors.ErrEmailExists
	}
	if usernameTaken {
		return nil, domainErrors.ErrUsernameExists
	}

	passwordHash, err := s.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         models.RoleCustomer,
		Status:       models.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	s.publishUserEvent(ctx, models.EventUserRegistered, user, device)

	return s.openSession(ctx, user, device)
}

// Login verifies credentials and opens a session. Invalid email and wrong
// password produce the same error so the endpoint does not leak which
// accounts exist.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, device DeviceContext) (*models.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if domainErrors.IsNotFound(err) {
			return nil, domainErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := s.passwordService.CheckPasswordHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, domainErrors.ErrInvalidCredentials
	}

	if user.Status != models.UserStatusActive {
		return nil, domainErrors.ErrAccountDisabled
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("ip", device.IPAddress),
	)
	s.publishUserEvent(ctx, models.EventUserLogin, user, device)

	return s.openSession(ctx, user, device)
}

func (s *AuthService) openSession(ctx context.Context, user *models.User, device DeviceContext) (*models.LoginResult, error) {
	refreshToken, err := s.tokenService.Issue(ctx, user.ID, device)
	if err != nil {
		return nil, err
	}
	accessToken, err := s.tokenManager.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &models.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// Logout revokes the refresh token's session and blacklists the presented
// access token for its remaining lifetime. Both tokens may be absent or
// already dead; logout still succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	revoked, err := s.tokenService.Revoke(ctx, refreshToken)
	if err != nil {
		return err
	}

	if accessToken != "" {
		if claims, parseErr := s.tokenManager.ParseAccessToken(accessToken); parseErr == nil {
			ttl := time.Until(claims.ExpiresAt.Time)
			if blErr := s.blacklist.AddToBlacklist(ctx, accessToken, ttl); blErr != nil {
				// The refresh session is already dead; a missed blacklist
				// entry only shortens nothing, the JWT still expires.
				s.logger.Warn("Failed to blacklist access token on logout", zap.Error(blErr))
			}
		}
	}

	if revoked {
		if session, findErr := s.tokenService.sessionRepo.FindByTokenHash(ctx, security.HashToken(refreshToken)); findErr == nil {
			s.publishSessionEvent(ctx, models.EventSessionRevoked, session.UserID, session.ID.String(), "logout")
		}
	}
	return nil
}

// LogoutAll revokes every session of the user and blacklists the current
// access token.
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID, accessToken string) error {
	if err := s.tokenService.RevokeAll(ctx, userID); err != nil {
		return err
	}
	if accessToken != "" {
		if claims, parseErr := s.tokenManager.ParseAccessToken(accessToken); parseErr == nil {
			ttl := time.Until(claims.ExpiresAt.Time)
			if blErr := s.blacklist.AddToBlacklist(ctx, accessToken, ttl); blErr != nil {
				s.logger.Warn("Failed to blacklist access token on logout-all", zap.Error(blErr))
			}
		}
	}
	s.publishSessionEvent(ctx, models.EventAllSessionsRevoked, userID, "", "logout_all")
	return nil
}

// GetProfile returns the account behind the id.
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// ListUsers returns a page of users for the admin console.
func (s *AuthService) ListUsers(ctx context.Context, params models.ListUsersParams) ([]*models.User, int64, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 || params.PageSize > 100 {
		params.PageSize = 20
	}
	return s.userRepo.List(ctx, params)
}

// GetUser returns a single account for the admin console.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// BlockUser disables the account and kills every session it holds, so the
// block takes effect before the current access tokens expire on their own.
func (s *AuthService) BlockUser(ctx context.Context, userID uuid.UUID, reason string) error {
	if err := s.userRepo.UpdateStatus(ctx, userID, models.UserStatusDisabled); err != nil {
		return err
	}
	if err := s.tokenService.RevokeAll(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("User blocked",
		zap.String("user_id", userID.String()),
		zap.String("reason", reason),
	)
	s.publishSessionEvent(ctx, models.EventAllSessionsRevoked, userID, "", "blocked")
	return nil
}

// UnblockUser re-enables the account. Old sessions stay revoked; the user
// logs in again.
func (s *AuthService) UnblockUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.UpdateStatus(ctx, userID, models.UserStatusActive); err != nil {
		return err
	}
	s.logger.Info("User unblocked", zap.String("user_id", userID.String()))
	return nil
}

// IsAccessTokenBlacklisted reports whether the access token was revoked by a
// logout before its natural expiry.
func (s *AuthService) IsAccessTokenBlacklisted(ctx context.Context, accessToken string) (bool, error) {
	return s.blacklist.IsBlacklisted(ctx, accessToken)
}

func (s *AuthService) publishUserEvent(ctx context.Context, eventType string, user *models.User, device DeviceContext) {
	err := s.producer.PublishUserEvent(ctx, eventType, models.UserEvent{
		UserID:     user.ID.String(),
		Username:   user.Username,
		Email:      user.Email,
		IPAddress:  device.IPAddress,
		OccurredAt: time.Now(),
	})
	if err != nil {
		s.logger.Warn("Failed to publish user event", zap.String("type", eventType), zap.Error(err))
	}
}

func (s *AuthService) publishSessionEvent(ctx context.Context, eventType string, userID uuid.UUID, sessionID, reason string) {
	err := s.producer.PublishSessionEvent(ctx, eventType, models.SessionEvent{
		SessionID:  sessionID,
		UserID:     userID.String(),
		Reason:     reason,
		OccurredAt: time.Now(),
	})
	if err != nil {
		s.logger.Warn("Failed to publish session event", zap.String("type", eventType), zap.Error(err))
	}
}
