package interfaces

import (
	"context"

	"github.com/google/uuid"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
)

// UserRepository is the persistence contract for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (emailTaken, usernameTaken bool, err error)
	List(ctx context.Context, params models.ListUsersParams) ([]*models.User, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) error
}

// SessionRepository is the persistence contract for refresh-token sessions.
type SessionRepository interface {
	// CreateCapped inserts the session and, when the owner already holds
	// maxActive non-revoked sessions, revokes the oldest one first. The
	// whole operation runs in one transaction that locks the owning user
	// row, so two concurrent issues cannot both pass the cap check.
	CreateCapped(ctx context.Context, session *models.Session, maxActive int) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Session, error)
	// UpdateDeviceContext records the ip/user-agent seen on a successful
	// refresh without touching any other session field.
	UpdateDeviceContext(ctx context.Context, id uuid.UUID, ipAddress, userAgent string) error
	// RevokeByTokenHash marks the matching session revoked and reports
	// whether a non-revoked session was actually changed.
	RevokeByTokenHash(ctx context.Context, tokenHash string) (bool, error)
	// RevokeByID revokes one session only if it belongs to userID.
	RevokeByID(ctx context.Context, userID, sessionID uuid.UUID) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	// DeleteExpired hard-deletes sessions past their expiry across all
	// users and returns the number of rows removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
