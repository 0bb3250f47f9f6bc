package models

// RegisterRequest is the payload of POST /api/v1/auth/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

// LoginRequest is the payload of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult carries everything the handler needs to answer a successful
// login or registration.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

// RefreshResult carries the outcome of a successful token refresh. The
// refresh token itself is not rotated.
type RefreshResult struct {
	AccessToken string
	User        *User
}

// UpdateUserStatusRequest is used by the admin block/unblock endpoints.
type UpdateUserStatusRequest struct {
	Reason string `json:"reason,omitempty"`
}
