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

type VisitHandler struct {
	service *services.VisitService
	log     *zap.Logger
}

func NewVisitHandler(service *services.VisitService, log *zap.Logger) *VisitHandler {
	return &VisitHandler{service: service, log: log}
}

func (h *VisitHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateVisitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid lead_id"})
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid listing_id"})
	}

	visit, err := h.service.Create(c.Context(), middleware.GetActor(c), leadID, listingID, req.ScheduledAt)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.Created(c, visit)
}

func (h *VisitHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid visit id"})
	}

	visit, err := h.service.Get(c.Context(), middleware.GetActor(c), id)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, visit)
}

func (h *VisitHandler) List(c *fiber.Ctx) error {
	filter := repositories.VisitFilter{}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("lead_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid lead_id"})
		}
		filter.LeadID = &id
	}
	if v := c.Query("listing_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid listing_id"})
		}
		filter.ListingID = &id
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

	visits, err := h.service.List(c.Context(), middleware.GetActor(c), filter)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, visits)
}

// Action dispatches POST /visits/:id/actions/:action. The service rejects
// anything outside the known action set.
func (h *VisitHandler) Action(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid visit id"})
	}

	var req dto.VisitActionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	visit, err := h.service.Perform(c.Context(), middleware.GetActor(c), id, c.Params("action"), services.VisitActionInput{
		DropReason:       req.DropReason,
		NewScheduledAt:   req.NewScheduledAt,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		OTPCode:          req.OTPCode,
		Rating:           req.Rating,
		BuyerScore:       req.BuyerScore,
		PrimaryPainPoint: req.PrimaryPainPoint,
		Feedback:         req.Feedback,
	})
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, visit)
}
