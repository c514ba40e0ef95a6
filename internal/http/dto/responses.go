package dto

import (
	"github.com/estate-backoffice/backend/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

type SuccessResponse struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

// OK writes the success envelope.
func OK(c *fiber.Ctx, data any) error {
	return c.JSON(SuccessResponse{Data: data})
}

func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(SuccessResponse{Data: data})
}

func OKMessage(c *fiber.Ctx, data any, message string) error {
	return c.JSON(SuccessResponse{Data: data, Message: message})
}

// Fail maps any error to the error envelope, hiding internals behind the
// generic message from apperr.From.
func Fail(c *fiber.Ctx, err error) error {
	appErr := apperr.From(err)
	return c.Status(appErr.Status).JSON(ErrorResponse{
		Error:   appErr.Category,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}
