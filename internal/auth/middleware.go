package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. Role is loaded fresh
// from the account so a role change takes effect before the token
// expires.
type Principal struct {
	User *domain.User
	Role domain.Role
}

// Ref returns the principal's user reference.
func (p *Principal) Ref() domain.UserRef {
	return p.User.Ref()
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.Context(), claims.SubjectID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{User: user, Role: user.Role})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
