package handlers

import (
	"strconv"

	"github.com/estate-backoffice/backend/internal/http/dto"
	"github.com/estate-backoffice/backend/internal/middleware"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/estate-backoffice/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SellerLeadHandler struct {
	service *services.SellerLeadService
	log     *zap.Logger
}

func NewSellerLeadHandler(service *services.SellerLeadService, log *zap.Logger) *SellerLeadHandler {
	return &SellerLeadHandler{service: service, log: log}
}

func (h *SellerLeadHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSellerLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	agentID, ok := parseOptionalUUID(req.AssignedAgentID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid assigned_agent_id"})
	}

	lead, err := h.service.Create(c.Context(), middleware.GetActor(c), services.CreateSellerLeadInput{
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		PropertyAddress: req.PropertyAddress,
		ExpectedPrice:   req.ExpectedPrice,
		AssignedAgentID: agentID,
	})
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.Created(c, lead)
}

func (h *SellerLeadHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid seller lead id"})
	}

	lead, err := h.service.Get(c.Context(), middleware.GetActor(c), id)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, lead)
}

func (h *SellerLeadHandler) List(c *fiber.Ctx) error {
	filter := repositories.SellerLeadFilter{}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
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

	leads, err := h.service.List(c.Context(), middleware.GetActor(c), filter)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, leads)
}

func (h *SellerLeadHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid seller lead id"})
	}

	var req dto.UpdateSellerLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	lead, err := h.service.Update(c.Context(), middleware.GetActor(c), id, services.UpdateSellerLeadInput{
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		Status:          req.Status,
		PropertyAddress: req.PropertyAddress,
		ExpectedPrice:   req.ExpectedPrice,
	})
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, lead)
}

func (h *SellerLeadHandler) Convert(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid seller lead id"})
	}

	var req dto.ConvertSellerLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid listing_id"})
	}

	lead, err := h.service.ConvertToListing(c.Context(), middleware.GetActor(c), id, listingID)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, lead)
}

func (h *SellerLeadHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid seller lead id"})
	}

	if err := h.service.Delete(c.Context(), middleware.GetActor(c), id); err != nil {
		return dto.Fail(c, err)
	}
	return dto.OKMessage(c, nil, "seller lead deleted")
}
