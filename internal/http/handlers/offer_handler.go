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

type OfferHandler struct {
	service *services.OfferService
	log     *zap.Logger
}

func NewOfferHandler(service *services.OfferService, log *zap.Logger) *OfferHandler {
	return &OfferHandler{service: service, log: log}
}

func (h *OfferHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid listing_id"})
	}
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid lead_id"})
	}

	offer, err := h.service.Create(c.Context(), middleware.GetActor(c), services.CreateOfferInput{
		ListingID: listingID,
		LeadID:    leadID,
		Amount:    req.Amount,
		Terms:     req.Terms,
	})
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.Created(c, offer)
}

func (h *OfferHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid offer id"})
	}

	offer, err := h.service.Get(c.Context(), middleware.GetActor(c), id)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, offer)
}

func (h *OfferHandler) List(c *fiber.Ctx) error {
	filter := repositories.OfferFilter{}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("listing_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid listing_id"})
		}
		filter.ListingID = &id
	}
	if v := c.Query("lead_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid lead_id"})
		}
		filter.LeadID = &id
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

	offers, err := h.service.List(c.Context(), middleware.GetActor(c), filter)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, offers)
}

func (h *OfferHandler) Accept(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid offer id"})
	}

	offer, err := h.service.Accept(c.Context(), middleware.GetActor(c), id)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, offer)
}

func (h *OfferHandler) Reject(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid offer id"})
	}

	offer, err := h.service.Reject(c.Context(), middleware.GetActor(c), id)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, offer)
}

func (h *OfferHandler) Counter(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid offer id"})
	}

	var req dto.CounterOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	counter, err := h.service.Counter(c.Context(), middleware.GetActor(c), id, req.Amount, req.Terms)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.Created(c, counter)
}
