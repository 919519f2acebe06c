package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public account shape.
type UserResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// User converts a domain user to its response shape.
func User(user *domain.User) UserResponse {
	return UserResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}
