package dto

import (
	"time"

	"github.com/spec-kit/ticketdesk/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,max=256"`
}

// CreateUserRequest payload for administrators.
type CreateUserRequest struct {
	Username string      `json:"username" validate:"required,max=64"`
	Password string      `json:"password" validate:"required,max=256"`
	Role     domain.Role `json:"role" validate:"required,oneof=Requester Support Administrator"`
}

// UserResponse is the public account view.
type UserResponse struct {
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// SummaryResponse carries the administrator dashboard figures.
type SummaryResponse struct {
	OpenTickets              int     `json:"open_tickets"`
	ResolvedTickets          int     `json:"resolved_tickets"`
	AverageResolutionSeconds float64 `json:"average_resolution_seconds"`
	AverageResolution        string  `json:"average_resolution"`
}
