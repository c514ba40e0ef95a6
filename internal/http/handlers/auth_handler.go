package handlers

import (
	"github.com/estate-backoffice/backend/internal/http/dto"
	"github.com/estate-backoffice/backend/internal/middleware"
	"github.com/estate-backoffice/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *services.AuthService
	log         *zap.Logger
}

func NewAuthHandler(authService *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	user, token, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return dto.Fail(c, err)
	}

	return dto.OK(c, dto.AuthResponse{Token: token, User: user})
}

// Me returns the profile of the token's subject.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.authService.Me(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, user)
}
