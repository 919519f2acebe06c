package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// UsersHandler manages account and session endpoints.
type UsersHandler struct {
	authService *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{authService: authService}
}

// Register POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}
	if !validRole(req.Role) {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": req.Role})
	}

	user, err := h.authService.Register(c.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.User(user)})
}

// Login POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.User(result.User),
	}})
}

// Logout POST /auth/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	h.authService.Logout(c.Context(), principal.Ref())
	return c.SendStatus(http.StatusNoContent)
}

func validRole(role domain.Role) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleTechnician, domain.RoleTechnicianN2, domain.RoleUser, domain.RoleFinancial:
		return true
	}
	return false
}
