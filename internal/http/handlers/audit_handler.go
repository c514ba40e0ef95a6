package handlers

import (
	"strconv"

	"github.com/estate-backoffice/backend/internal/http/dto"
	"github.com/estate-backoffice/backend/internal/middleware"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/rbac"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuditHandler struct {
	auditRepo *repositories.AuditRepo
	log       *zap.Logger
}

func NewAuditHandler(auditRepo *repositories.AuditRepo, log *zap.Logger) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo, log: log}
}

// History returns the audit trail for one entity, newest first.
func (h *AuditHandler) History(c *fiber.Ctx) error {
	if !rbac.HasPermission(middleware.GetRole(c), rbac.PermAuditRead) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "Forbidden", Message: "missing audit:read permission"})
	}

	entityType := c.Query("entity_type")
	if !models.IsAuditableEntityType(entityType) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "unknown entity_type"})
	}
	entityID, err := uuid.Parse(c.Query("entity_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid entity_id"})
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	entries, err := h.auditRepo.GetByEntity(c.Context(), entityType, entityID, limit, offset)
	if err != nil {
		h.log.Error("audit history failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Internal", Message: "could not load audit history"})
	}
	return dto.OK(c, entries)
}
