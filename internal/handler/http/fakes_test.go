package http

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/errors"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
)

// In-memory repositories backing the handler tests. The session fake keeps
// the same cap-and-evict behavior as the Postgres implementation.

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return domainErrors.ErrEmailExists
		}
		if existing.Username == user.Username {
			return domainErrors.ErrUsernameExists
		}
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domainErrors.ErrAccountNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrAccountNotFound
}

func (r *memUserRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var emailTaken, usernameTaken bool
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			emailTaken = true
		}
		if user.Username == username {
			usernameTaken = true
		}
	}
	return emailTaken, usernameTaken, nil
}

func (r *memUserRepo) List(_ context.Context, _ models.ListUsersParams) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *memUserRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domainErrors.ErrAccountNotFound
	}
	user.Status = status
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions []*models.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{}
}

func (r *memSessionRepo) CreateCapped(_ context.Context, session *models.Session, maxActive int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var active []*models.Session
	for _, s := range r.sessions {
		if s.UserID == session.UserID && s.RevokedAt == nil {
			active = append(active, s)
		}
	}
	if len(active) >= maxActive {
		oldest := active[0]
		for _, s := range active[1:] {
			if s.CreatedAt.Before(oldest.CreatedAt) {
				oldest = s
			}
		}
		now := time.Now()
		oldest.RevokedAt = &now
	}

	copied := *session
	r.sessions = append(r.sessions, &copied)
	return nil
}

func (r *memSessionRepo) FindByTokenHash(_ context.Context, tokenHash string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.TokenHash == tokenHash {
			copied := *s
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrSessionNotFound
}

func (r *memSessionRepo) FindActiveByUserID(_ context.Context, userID uuid.UUID) ([]*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []*models.Session
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil && s.ExpiresAt.After(now) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memSessionRepo) UpdateDeviceContext(_ context.Context, id uuid.UUID, ipAddress, userAgent string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == id {
			s.IPAddress = ipAddress
			s.UserAgent = userAgent
			s.UpdatedAt = time.Now()
			return nil
		}
	}
	return domainErrors.ErrSessionNotFound
}

func (r *memSessionRepo) RevokeByTokenHash(_ context.Context, tokenHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.TokenHash == tokenHash && s.RevokedAt == nil {
			now := time.Now()
			s.RevokedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (r *memSessionRepo) RevokeByID(_ context.Context, userID, sessionID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == sessionID && s.UserID == userID && s.RevokedAt == nil {
			now := time.Now()
			s.RevokedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (r *memSessionRepo) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var kept []*models.Session
	var removed int64
	for _, s := range r.sessions {
		if s.ExpiresAt.Before(now) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	r.sessions = kept
	return removed, nil
}

func (r *memSessionRepo) activeCount(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			count++
		}
	}
	return count
}

func (r *memSessionRepo) totalCount(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, s := range r.sessions {
		if s.UserID == userID {
			count++
		}
	}
	return count
}
