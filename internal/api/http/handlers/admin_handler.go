package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-relay/internal/api/dto"
	"github.com/spec-kit/ticket-relay/internal/service"
)

// AdminHandler exposes the administrative login endpoint.
type AdminHandler struct {
	auth *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{auth: authService}
}

// Login handles POST /auth/admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "password required")
	}

	token, exp, err := h.auth.LoginAdmin(c.Context(), req.Password)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}

	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}
