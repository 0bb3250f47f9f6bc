package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole mirrors the numeric role tiers of the store frontend.
type UserRole int16

const (
	RoleCustomer UserRole = 0
	RoleStaff    UserRole = 1
	RoleAdmin    UserRole = 2
)

// UserStatus is the account state. Disabled accounts cannot log in or refresh.
type UserStatus int16

const (
	UserStatusDisabled UserStatus = 0
	UserStatusActive   UserStatus = 1
)

// User represents a row of the users table.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"full_name" db:"full_name"`
	AvatarURL    string     `json:"avatar_url" db:"avatar_url"`
	Role         UserRole   `json:"role" db:"role"`
	Status       UserStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// ListUsersParams defines pagination and filtering for the admin user list.
type ListUsersParams struct {
	Page     int
	PageSize int
	Status   *UserStatus
	Search   string
}

// UserResponse is the user shape returned by API endpoints. The password
// hash never leaves the service.
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	Role      UserRole   `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToResponse converts a User to its API representation.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
