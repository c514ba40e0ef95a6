package handlers

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/estate-backoffice/backend/internal/http/dto"
	"github.com/estate-backoffice/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LifecycleRunner lets tests drive the handler without a database.
type LifecycleRunner interface {
	ProcessLifecycle(ctx context.Context) (services.LifecycleResult, error)
}

// CronHandler exposes the lifecycle pass to an external scheduler. The
// endpoint is unauthenticated except for the shared secret, so the compare is
// constant-time.
type CronHandler struct {
	lifecycle  LifecycleRunner
	cronSecret string
	log        *zap.Logger
}

func NewCronHandler(lifecycle LifecycleRunner, cronSecret string, log *zap.Logger) *CronHandler {
	return &CronHandler{lifecycle: lifecycle, cronSecret: cronSecret, log: log}
}

func (h *CronHandler) ProcessLifecycle(c *fiber.Ctx) error {
	if h.cronSecret == "" {
		h.log.Error("lifecycle endpoint called but CRON_SECRET is not set")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Internal", Message: "cron secret not configured"})
	}

	token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized", Message: "invalid cron secret"})
	}

	result, err := h.lifecycle.ProcessLifecycle(c.Context())
	if err != nil {
		// Partial results are still reported; the scheduler retries anyway.
		h.log.Error("lifecycle run failed", zap.Error(err))
	}

	return c.JSON(fiber.Map{
		"success":     err == nil,
		"result":      result,
		"processedAt": time.Now().UTC().Format(time.RFC3339),
	})
}
