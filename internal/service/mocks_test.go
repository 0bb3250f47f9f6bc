package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
)

type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) CreateCapped(ctx context.Context, session *models.Session, maxActive int) error {
	args := m.Called(ctx, session, maxActive)
	return args.Error(0)
}

func (m *mockSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	args := m.Called(ctx, tokenHash)
	if session, ok := args.Get(0).(*models.Session); ok {
		return session, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionRepo) FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Session, error) {
	args := m.Called(ctx, userID)
	if sessions, ok := args.Get(0).([]*models.Session); ok {
		return sessions, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionRepo) UpdateDeviceContext(ctx context.Context, id uuid.UUID, ipAddress, userAgent string) error {
	args := m.Called(ctx, id, ipAddress, userAgent)
	return args.Error(0)
}

func (m *mockSessionRepo) RevokeByTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	args := m.Called(ctx, tokenHash)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionRepo) RevokeByID(ctx context.Context, userID, sessionID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *mockUserRepo) List(ctx context.Context, params models.ListUsersParams) ([]*models.User, int64, error) {
	args := m.Called(ctx, params)
	if users, ok := args.Get(0).([]*models.User); ok {
		return users, args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
