package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/config"
	domainErrors "github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/errors"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/infrastructure/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessTokenSecret:  "test-access-secret",
		RefreshTokenSecret: "test-refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
		Issuer:             "test",
	}
}

func newTestTokenService(t *testing.T, sessions *mockSessionRepo, users *mockUserRepo) *TokenService {
	t.Helper()
	tm, err := security.NewTokenManager(testJWTConfig())
	require.NoError(t, err)
	return NewTokenService(sessions, users, tm, config.SecurityConfig{MaxActiveSessions: 5}, zap.NewNop())
}

func testDevice() DeviceContext {
	return DeviceContext{IPAddress: "203.0.113.7", UserAgent: "test-agent"}
}

func TestIssueStoresHashedSession(t *testing.T) {
	sessions := new(mockSessionRepo)
	users := new(mockUserRepo)
	svc := newTestTokenService(t, sessions, users)

	userID := uuid.New()
	var stored *models.Session
	sessions.On("CreateCapped", mock.Anything, mock.AnythingOfType("*models.Session"), 5).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*models.Session)
		}).
		Return(nil)

	token, err := svc.Issue(context.Background(), userID, testDevice())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NotNil(t, stored)
	assert.Equal(t, userID, stored.UserID)
	assert.Equal(t, security.HashToken(token), stored.TokenHash)
	assert.NotEqual(t, token, stored.TokenHash)
	assert.Equal(t, "203.0.113.7", stored.IPAddress)
	assert.Nil(t, stored.RevokedAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), stored.ExpiresAt, time.Minute)
	sessions.AssertExpectations(t)
}

func TestValidateUnknownTokenIsFalseWithoutError(t *testing.T) {
	sessions := new(mockSessionRepo)
	svc := newTestTokenService(t, sessions, new(mockUserRepo))

	sessions.On("FindByTokenHash", mock.Anything, mock.Anything).
		Return(nil, domainErrors.ErrSessionNotFound)

	valid, err := svc.Validate(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestValidateLiveSessionIsTrue(t *testing.T) {
	sessions := new(mockSessionRepo)
	svc := newTestTokenService(t, sessions, new(mockUserRepo))

	sessions.On("FindByTokenHash", mock.Anything, security.HashToken("tok")).
		Return(&models.Session{ExpiresAt: time.Now().Add(time.Hour)}, nil)

	valid, err := svc.Validate(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestValidateRevokedSessionIsFalse(t *testing.T) {
	sessions := new(mockSessionRepo)
	svc := newTestTokenService(t, sessions, new(mockUserRepo))

	revokedAt := time.Now().Add(-time.Minute)
	sessions.On("FindByTokenHash", mock.Anything, mock.Anything).
		Return(&models.Session{ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &revokedAt}, nil)

	valid, err := svc.Validate(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestRefreshHappyPathDoesNotRotate(t *testing.T) {
	sessions := new(mockSessionRepo)
	users := new(mockUserRepo)
	svc := newTestTokenService(t, sessions, users)

	userID := uuid.New()
	user := &models.User{ID: userID, Role: models.RoleCustomer, Status: models.UserStatusActive}

	tm, err := security.NewTokenManager(testJWTConfig())
	require.NoError(t, err)
	refreshToken, err := tm.GenerateRefreshToken(userID)
	require.NoError(t, err)

	session := &models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: security.HashToken(refreshToken),
		IPAddress: "198.51.100.1",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	sessions.On("FindByTokenHash", mock.Anything, session.TokenHash).Return(session, nil)
	sessions.On("UpdateDeviceContext", mock.Anything, session.ID, "203.0.113.7", "test-agent").Return(nil)
	users.On("FindByID", mock.Anything, userID).Return(user, nil)

	result, err := svc.Refresh(context.Background(), refreshToken, testDevice())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, userID, result.User.ID)

	claims, err := tm.ParseAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Minute)

	sessions.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestRefreshUnknownTokenFails(t *testing.T) {
	sessions := new(mockSessionRepo)
	svc := newTestTokenService(t, sessions, new(mockUserRepo))

	sessions.On("FindByTokenHash", mock.Anything, mock.Anything).
		Return(nil, domainErrors.ErrSessionNotFound)

	_, err := svc.Refresh(context.Background(), "forged", testDevice())
	assert.ErrorIs(t, err, domainErrors.ErrTokenNotFound)
	sessions.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything)
}

func TestRefreshRevokedTokenRevokesAllSessions(t *testing.T) {
	sessions := new(mockSessionRepo)
	svc := newTestTokenService(t, sessions, new(mockUserRepo))

	userID := uuid.New()
	revokedAt := time.Now().Add(-time.Minute)
	session := &models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
		RevokedAt: &revokedAt,
	}

	sessions.On("FindByTokenHash", mock.Anything, mock.Anything).Return(session, nil)
	sessions.On("RevokeAllForUser", mock.Anything, userID).Return(nil)

	_, err := svc.Refresh(context.Background(), "stolen", testDevice())
	assert.ErrorIs(t, err, domainErrors.ErrTokenRevoked)
	sessions.AssertCalled(t, "RevokeAllForUser", mock.Anything, userID)
}

func TestRefreshExpiredTokenMutatesNothing(t *testing.T) {
	sessions := new(mockSessionRepo)
	svc := newTestTokenService(t, sessions, new(mockUserRepo))

	session := &models.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	sessions.On("FindByTokenHash", mock.Anything, mock.Anything).Return(session, nil)

	_, err := svc.Refresh(context.Background(), "old", testDevice())
	assert.ErrorIs(t, err, domainErrors.ErrTokenExpired)
	sessions.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything)
	sessions.AssertNotCalled(t, "UpdateDeviceContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshDisabledAccountFails(t *testing.T) {
	sessions := new(mockSessionRepo)
	users := new(mockUserRepo)
	svc := newTestTokenService(t, sessions, users)

	userID := uuid.New()
	tm, err := security.NewTokenManager(testJWTConfig())
	require.NoError(t, err)
	refreshToken, err := tm.GenerateRefreshToken(userID)
	require.NoError(t, err)

	session := &models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: security.HashToken(refreshToken),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	sessions.On("FindByTokenHash", mock.Anything, session.TokenHash).Return(session, nil)
	users.On("FindByID", mock.Anything, userID).
		Return(&models.User{ID: userID, Status: models.UserStatusDisabled}, nil)

	_, err = svc.Refresh(context.Background(), refreshToken, testDevice())
	assert.ErrorIs(t, err, domainErrors.ErrAccountDisabled)
}

func TestRevokeThenValidateIsFalse(t *testing.T) {
	sessions := new(mockSessionRepo)
	svc := newTestTokenService(t, sessions, new(mockUserRepo))

	hash := security.HashToken("tok")
	revokedAt := time.Now()

	sessions.On("RevokeByTokenHash", mock.Anything, hash).Return(true, nil)
	sessions.On("FindByTokenHash", mock.Anything, hash).
		Return(&models.Session{ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &revokedAt}, nil)

	revoked, err := svc.Revoke(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	valid, err := svc.Validate(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestRevokeEmptyTokenIsQuietNoop(t *testing.T) {
	sessions := new(mockSessionRepo)
	svc := newTestTokenService(t, sessions, new(mockUserRepo))

	revoked, err := svc.Revoke(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, revoked)
	sessions.AssertNotCalled(t, "RevokeByTokenHash", mock.Anything, mock.Anything)
}

func TestRevokeSessionForeignIDReturnsNotFound(t *testing.T) {
	sessions := new(mockSessionRepo)
	svc := newTestTokenService(t, sessions, new(mockUserRepo))

	userID := uuid.New()
	foreignSessionID := uuid.New()
	sessions.On("RevokeByID", mock.Anything, userID, foreignSessionID).Return(false, nil)

	err := svc.RevokeSession(context.Background(), userID, foreignSessionID)
	assert.ErrorIs(t, err, domainErrors.ErrSessionNotFound)
}

func TestListActiveMapsToResponses(t *testing.T) {
	sessions := new(mockSessionRepo)
	svc := newTestTokenService(t, sessions, new(mockUserRepo))

	userID := uuid.New()
	s1 := &models.Session{ID: uuid.New(), UserID: userID, IPAddress: "10.0.0.1", ExpiresAt: time.Now().Add(time.Hour)}
	s2 := &models.Session{ID: uuid.New(), UserID: userID, IPAddress: "10.0.0.2", ExpiresAt: time.Now().Add(time.Hour)}

	sessions.On("FindActiveByUserID", mock.Anything, userID).
		Return([]*models.Session{s2, s1}, nil)

	result, err := svc.ListActive(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, s2.ID, result[0].ID)
	assert.Equal(t, "10.0.0.2", result[0].IPAddress)
}

func TestPurgeExpiredReturnsCount(t *testing.T) {
	sessions := new(mockSessionRepo)
	svc := newTestTokenService(t, sessions, new(mockUserRepo))

	sessions.On("DeleteExpired", mock.Anything).Return(int64(42), nil)

	removed, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), removed)
}
