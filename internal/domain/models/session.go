package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one issued refresh token bound to a device context. Sessions
// transition ACTIVE -> REVOKED (revoked_at set, terminal) or expire by time;
// they are never reactivated and are hard-deleted only by the maintenance
// sweep.
type Session struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash string     `json:"-" db:"token_hash"`
	IPAddress string     `json:"ip_address" db:"ip_address"`
	UserAgent string     `json:"user_agent" db:"user_agent"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Revoked reports whether the session has been permanently invalidated.
func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}

// Active reports whether the session can still mint access tokens.
func (s *Session) Active(now time.Time) bool {
	return !s.Revoked() && s.ExpiresAt.After(now)
}

// SessionResponse is the reduced session shape used by the active-devices UI.
type SessionResponse struct {
	ID         uuid.UUID `json:"id"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// ToResponse converts a Session to its API representation.
func (s *Session) ToResponse() SessionResponse {
	return SessionResponse{
		ID:         s.ID,
		IPAddress:  s.IPAddress,
		UserAgent:  s.UserAgent,
		CreatedAt:  s.CreatedAt,
		LastUsedAt: s.UpdatedAt,
	}
}
