package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/config"
	domainErrors "github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/errors"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/infrastructure/security"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/repository/interfaces"
)

// DeviceContext is the client fingerprint captured with every issued or
// refreshed session.
type DeviceContext struct {
	IPAddress string
	UserAgent string
}

// TokenService owns the refresh-token session lifecycle: issuing sessions,
// validating and refreshing tokens, and revocation in all its forms.
type TokenService struct {
	sessionRepo  interfaces.SessionRepository
	userRepo     interfaces.UserRepository
	tokenManager *security.TokenManager
	maxActive    int
	logger       *zap.Logger
}

// NewTokenService wires the token service with its dependencies.
func NewTokenService(
	sessionRepo interfaces.SessionRepository,
	userRepo interfaces.UserRepository,
	tokenManager *security.TokenManager,
	securityCfg config.SecurityConfig,
	logger *zap.Logger,
) *TokenService {
	maxActive := securityCfg.MaxActiveSessions
	if maxActive <= 0 {
		maxActive = 5
	}
	return &TokenService{
		sessionRepo:  sessionRepo,
		userRepo:     userRepo,
		tokenManager: tokenManager,
		maxActive:    maxActive,
		logger:       logger,
	}
}

// Issue mints a refresh token for the user and records the session. When the
// user is at the active-session cap, the oldest active session is revoked to
// make room; revoked sessions are kept for audit and never count against the
// cap.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID, device DeviceContext) (string, error) {
	refreshToken, err := s.tokenManager.GenerateRefreshToken(userID)
	if err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	claims, err := s.tokenManager.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to decode freshly issued token: %w", err)
	}

	now := time.Now()
	session := &models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: security.HashToken(refreshToken),
		IPAddress: device.IPAddress,
		UserAgent: device.UserAgent,
		ExpiresAt: claims.ExpiresAt.Time,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.sessionRepo.CreateCapped(ctx, session, s.maxActive); err != nil {
		return "", err
	}

	s.logger.Info("Session issued",
		zap.String("user_id", userID.String()),
		zap.String("session_id", session.ID.String()),
		zap.String("ip", device.IPAddress),
	)
	return refreshToken, nil
}

// Validate reports whether the refresh token corresponds to a live session.
// It never mutates state.
func (s *TokenService) Validate(ctx context.Context, refreshToken string) (bool, error) {
	if refreshToken == "" {
		return false, nil
	}
	session, err := s.sessionRepo.FindByTokenHash(ctx, security.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, domainErrors.ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}
	return session.Active(time.Now()), nil
}

// Refresh exchanges a live refresh token for a fresh access token. The
// refresh token itself is not rotated; its session stays valid until the
// original expiry. Reuse of a revoked token is treated as theft and revokes
// every session of the account.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string, device DeviceContext) (*models.RefreshResult, error) {
	if refreshToken == "" {
		return nil, domainErrors.ErrTokenMissing
	}

	session, err := s.sessionRepo.FindByTokenHash(ctx, security.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, domainErrors.ErrSessionNotFound) {
			return nil, domainErrors.ErrTokenNotFound
		}
		return nil, err
	}

	if session.Revoked() {
		// A token the service itself revoked came back. Either the client
		// is badly broken or the token was stolen before revocation;
		// invalidating the whole account forces a clean re-login.
		s.logger.Warn("Revoked refresh token reused, revoking all sessions",
			zap.String("user_id", session.UserID.String()),
			zap.String("session_id", session.ID.String()),
			zap.String("ip", device.IPAddress),
		)
		if err := s.sessionRepo.RevokeAllForUser(ctx, session.UserID); err != nil {
			return nil, err
		}
		return nil, domainErrors.ErrTokenRevoked
	}

	now := time.Now()
	if !session.ExpiresAt.After(now) {
		return nil, domainErrors.ErrTokenExpired
	}

	// The signature check comes after the store lookup on purpose: a token
	// that is not in the store at all should not reveal whether it was ever
	// signed by us.
	if _, err := s.tokenManager.ParseRefreshToken(refreshToken); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user.Status != models.UserStatusActive {
		return nil, domainErrors.ErrAccountDisabled
	}

	if session.IPAddress != device.IPAddress {
		// Legitimate mobile clients change IPs constantly, so this is a
		// signal for later analysis, not a block.
		s.logger.Warn("Refresh from a different IP",
			zap.String("user_id", user.ID.String()),
			zap.String("session_id", session.ID.String()),
			zap.String("previous_ip", session.IPAddress),
			zap.String("current_ip", device.IPAddress),
		)
	}

	if err := s.sessionRepo.UpdateDeviceContext(ctx, session.ID, device.IPAddress, device.UserAgent); err != nil {
		return nil, err
	}

	accessToken, err := s.tokenManager.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &models.RefreshResult{AccessToken: accessToken, User: user}, nil
}

// Revoke invalidates the session behind the refresh token. It reports
// whether a live session was actually revoked so logout can succeed quietly
// on already-dead tokens.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) (bool, error) {
	if refreshToken == "" {
		return false, nil
	}
	return s.sessionRepo.RevokeByTokenHash(ctx, security.HashToken(refreshToken))
}

// RevokeAll invalidates every active session of the user.
func (s *TokenService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessionRepo.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("All sessions revoked", zap.String("user_id", userID.String()))
	return nil
}

// RevokeSession invalidates one session by id, but only if it belongs to
// the calling user. Foreign session ids revoke nothing and return not-found.
func (s *TokenService) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	revoked, err := s.sessionRepo.RevokeByID(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if !revoked {
		return domainErrors.ErrSessionNotFound
	}
	return nil
}

// ListActive returns the user's live sessions, newest first, for the
// device-management view.
func (s *TokenService) ListActive(ctx context.Context, userID uuid.UUID) ([]models.SessionResponse, error) {
	sessions, err := s.sessionRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, session.ToResponse())
	}
	return out, nil
}

// PurgeExpired hard-deletes sessions past their expiry across all users.
// Revoked but unexpired rows are kept for audit.
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	removed, err := s.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("Purged expired sessions", zap.Int64("removed", removed))
	}
	return removed, nil
}
