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

type ListingHandler struct {
	service *services.ListingService
	log     *zap.Logger
}

func NewListingHandler(service *services.ListingService, log *zap.Logger) *ListingHandler {
	return &ListingHandler{service: service, log: log}
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	buildingID, err := uuid.Parse(req.BuildingID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid building_id"})
	}
	ownerID, ok := parseOptionalUUID(req.OwnerUserID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid owner_user_id"})
	}

	listing, err := h.service.Create(c.Context(), middleware.GetActor(c), services.CreateListingInput{
		UnitNumber:  req.UnitNumber,
		BuildingID:  buildingID,
		AskingPrice: req.AskingPrice,
		OwnerUserID: ownerID,
	})
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.Created(c, listing)
}

func (h *ListingHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid listing id"})
	}

	listing, err := h.service.Get(c.Context(), middleware.GetActor(c), id)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, listing)
}

func (h *ListingHandler) List(c *fiber.Ctx) error {
	filter := repositories.ListingFilter{}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("building_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid building_id"})
		}
		filter.BuildingID = &id
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

	listings, err := h.service.List(c.Context(), middleware.GetActor(c), filter)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, listings)
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid listing id"})
	}

	var req dto.UpdateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	listing, err := h.service.Update(c.Context(), middleware.GetActor(c), id, services.UpdateListingInput{
		UnitNumber:  req.UnitNumber,
		AskingPrice: req.AskingPrice,
	})
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, listing)
}

func (h *ListingHandler) Transition(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid listing id"})
	}

	var req dto.TransitionListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	listing, err := h.service.Transition(c.Context(), middleware.GetActor(c), id, req.Status)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, listing)
}

func (h *ListingHandler) RequestInspection(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid listing id"})
	}

	var req dto.RequestInspectionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}
	inspectorID, ok := parseOptionalUUID(req.InspectorID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid inspector_id"})
	}

	inspection, err := h.service.RequestInspection(c.Context(), middleware.GetActor(c), id, inspectorID)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.Created(c, inspection)
}

func (h *ListingHandler) CompleteInspection(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("inspectionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid inspection id"})
	}

	var req dto.CompleteInspectionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	inspection, err := h.service.CompleteInspection(c.Context(), middleware.GetActor(c), id, req.Notes)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, inspection)
}

func (h *ListingHandler) SubmitCatalogue(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid listing id"})
	}

	catalogue, err := h.service.SubmitCatalogue(c.Context(), middleware.GetActor(c), id)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.Created(c, catalogue)
}

func (h *ListingHandler) ReviewCatalogue(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("catalogueId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid catalogue id"})
	}

	var req dto.ReviewCatalogueRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	catalogue, err := h.service.ReviewCatalogue(c.Context(), middleware.GetActor(c), id, req.Approve, req.RejectReason)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, catalogue)
}
