package models

import "time"

// Event types published to the auth events topic.
const (
	EventUserRegistered     = "user.registered"
	EventUserLogin          = "user.login"
	EventSessionRevoked     = "session.revoked"
	EventAllSessionsRevoked = "session.all_revoked"
)

// UserEvent is the payload for user lifecycle events.
type UserEvent struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IPAddress  string    `json:"ip_address,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SessionEvent is the payload for session lifecycle events.
type SessionEvent struct {
	SessionID  string    `json:"session_id,omitempty"`
	UserID     string    `json:"user_id"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
