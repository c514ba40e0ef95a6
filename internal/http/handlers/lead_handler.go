package handlers

import (
	"crypto/subtle"
	"strconv"

	"github.com/estate-backoffice/backend/internal/config"
	"github.com/estate-backoffice/backend/internal/http/dto"
	"github.com/estate-backoffice/backend/internal/leadparser"
	"github.com/estate-backoffice/backend/internal/middleware"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/estate-backoffice/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LeadHandler struct {
	leadService *services.LeadService
	cfg         *config.Config
	log         *zap.Logger
}

func NewLeadHandler(leadService *services.LeadService, cfg *config.Config, log *zap.Logger) *LeadHandler {
	return &LeadHandler{leadService: leadService, cfg: cfg, log: log}
}

func requirementFromPayload(p *dto.RequirementPayload) *models.Requirement {
	if p == nil {
		return nil
	}
	return &models.Requirement{
		BudgetMin:  p.BudgetMin,
		BudgetMax:  p.BudgetMax,
		Localities: p.Localities,
		Bedrooms:   p.Bedrooms,
		Extra:      p.Extra,
	}
}

func parseOptionalUUID(s *string) (*uuid.UUID, bool) {
	if s == nil || *s == "" {
		return nil, true
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func (h *LeadHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	agentID, ok := parseOptionalUUID(req.AssignedAgentID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid assigned_agent_id"})
	}

	lead, err := h.leadService.Create(c.Context(), middleware.GetActor(c), services.CreateLeadInput{
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		Source:          req.Source,
		AssignedAgentID: agentID,
		Requirement:     requirementFromPayload(req.Requirement),
	})
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.Created(c, lead)
}

// Inbound receives portal inquiry payloads. It sits outside the auth group;
// the shared secret is the only caller check.
func (h *LeadHandler) Inbound(c *fiber.Ctx) error {
	if h.cfg.PortalWebhookSecret == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Internal", Message: "webhook secret not configured"})
	}
	secret := c.Get("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.PortalWebhookSecret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized", Message: "invalid webhook secret"})
	}

	parsed, err := leadparser.Parse(string(c.Body()))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "unparseable payload"})
	}

	lead, err := h.leadService.CreateFromPortal(c.Context(), services.CreateLeadInput{
		Name:        parsed.Name,
		Phone:       parsed.Phone,
		Email:       parsed.Email,
		Requirement: parsed.Requirement,
	})
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.Created(c, lead)
}

func (h *LeadHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid lead id"})
	}

	lead, err := h.leadService.Get(c.Context(), middleware.GetActor(c), id)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, lead)
}

func (h *LeadHandler) List(c *fiber.Ctx) error {
	filter := repositories.LeadFilter{}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("source"); v != "" {
		filter.Source = &v
	}
	if v := c.Query("agent_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid agent_id"})
		}
		filter.AssignedAgentID = &id
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	leads, err := h.leadService.List(c.Context(), middleware.GetActor(c), filter)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, leads)
}

func (h *LeadHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid lead id"})
	}

	var req dto.UpdateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	lead, err := h.leadService.Update(c.Context(), middleware.GetActor(c), id, services.UpdateLeadInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Status:      req.Status,
		Requirement: requirementFromPayload(req.Requirement),
		Contacted:   req.Contacted,
	})
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, lead)
}

func (h *LeadHandler) Assign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid lead id"})
	}

	var req dto.AssignLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}
	agentID, ok := parseOptionalUUID(req.AgentID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid agent_id"})
	}

	lead, err := h.leadService.Assign(c.Context(), middleware.GetActor(c), id, agentID)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, lead)
}

func (h *LeadHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid lead id"})
	}

	if err := h.leadService.Delete(c.Context(), middleware.GetActor(c), id); err != nil {
		return dto.Fail(c, err)
	}
	return dto.OKMessage(c, nil, "lead deleted")
}
