package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthService handles sign-in and sign-out. Session activity feeds the
// notification log next to ticket activity.
type AuthService struct {
	users         repository.UserRepository
	tokens        *auth.TokenManager
	notifications *NotificationService
	bcryptCost    int
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.Config, users repository.UserRepository, notifications *NotificationService) *AuthService {
	return &AuthService{
		users:         users,
		tokens:        auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		notifications: notifications,
		bcryptCost:    cfg.Auth.BcryptCost,
	}
}

// LoginResult carries the issued token and its subject.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials and issues a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, err
	}

	s.notifications.RecordLogin(user.Ref(), time.Now())
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout records the sign-out. Tokens are stateless; the entry exists
// for the notification feed.
func (s *AuthService) Logout(_ context.Context, user domain.UserRef) {
	s.notifications.RecordLogout(user, time.Now())
}

// Register creates an account with a hashed password.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
