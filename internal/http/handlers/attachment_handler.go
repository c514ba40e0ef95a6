package handlers

import (
	"github.com/estate-backoffice/backend/internal/http/dto"
	"github.com/estate-backoffice/backend/internal/middleware"
	"github.com/estate-backoffice/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AttachmentHandler struct {
	service *services.AttachmentService
	log     *zap.Logger
}

func NewAttachmentHandler(service *services.AttachmentService, log *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{service: service, log: log}
}

func entityRef(c *fiber.Ctx) (string, uuid.UUID, error) {
	entityType := c.Query("entity_type")
	entityID, err := uuid.Parse(c.Query("entity_id"))
	if err != nil {
		return "", uuid.Nil, err
	}
	return entityType, entityID, nil
}

// ---- Notes ----

func (h *AttachmentHandler) CreateNote(c *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}
	entityID, err := uuid.Parse(req.EntityID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid entity_id"})
	}

	note, err := h.service.AddNote(c.Context(), middleware.GetActor(c), req.EntityType, entityID, req.Body)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.Created(c, note)
}

func (h *AttachmentHandler) ListNotes(c *fiber.Ctx) error {
	entityType, entityID, err := entityRef(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid entity_id"})
	}

	notes, err := h.service.ListNotes(c.Context(), middleware.GetActor(c), entityType, entityID)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, notes)
}

func (h *AttachmentHandler) DeleteNote(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid note id"})
	}

	if err := h.service.DeleteNote(c.Context(), middleware.GetActor(c), id); err != nil {
		return dto.Fail(c, err)
	}
	return dto.OKMessage(c, nil, "note deleted")
}

// ---- Media ----

func (h *AttachmentHandler) CreateMedia(c *fiber.Ctx) error {
	var req dto.CreateMediaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}
	entityID, err := uuid.Parse(req.EntityID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid entity_id"})
	}

	item, err := h.service.AddMedia(c.Context(), middleware.GetActor(c), services.AddMediaInput{
		EntityType: req.EntityType,
		EntityID:   entityID,
		URL:        req.URL,
		Kind:       req.Kind,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.Created(c, item)
}

func (h *AttachmentHandler) ListMedia(c *fiber.Ctx) error {
	entityType, entityID, err := entityRef(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid entity_id"})
	}

	items, err := h.service.ListMedia(c.Context(), middleware.GetActor(c), entityType, entityID)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, items)
}

func (h *AttachmentHandler) ReorderMedia(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid media id"})
	}

	var req dto.ReorderMediaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}

	if err := h.service.ReorderMedia(c.Context(), middleware.GetActor(c), id, req.SortOrder); err != nil {
		return dto.Fail(c, err)
	}
	return dto.OKMessage(c, nil, "media reordered")
}

func (h *AttachmentHandler) DeleteMedia(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid media id"})
	}

	if err := h.service.DeleteMedia(c.Context(), middleware.GetActor(c), id); err != nil {
		return dto.Fail(c, err)
	}
	return dto.OKMessage(c, nil, "media deleted")
}

// ---- Tasks ----

func (h *AttachmentHandler) CreateTask(c *fiber.Ctx) error {
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid request body"})
	}
	entityID, err := uuid.Parse(req.EntityID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid entity_id"})
	}
	assigneeID, ok := parseOptionalUUID(req.AssigneeID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid assignee_id"})
	}

	task, err := h.service.CreateTask(c.Context(), middleware.GetActor(c), services.CreateTaskInput{
		EntityType: req.EntityType,
		EntityID:   entityID,
		Title:      req.Title,
		AssigneeID: assigneeID,
		DueAt:      req.DueAt,
	})
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.Created(c, task)
}

func (h *AttachmentHandler) ListTasks(c *fiber.Ctx) error {
	entityType, entityID, err := entityRef(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid entity_id"})
	}

	tasks, err := h.service.ListTasks(c.Context(), middleware.GetActor(c), entityType, entityID)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, tasks)
}

func (h *AttachmentHandler) CompleteTask(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid task id"})
	}

	task, err := h.service.CompleteTask(c.Context(), middleware.GetActor(c), id)
	if err != nil {
		return dto.Fail(c, err)
	}
	return dto.OK(c, task)
}

func (h *AttachmentHandler) DeleteTask(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "ValidationError", Message: "invalid task id"})
	}

	if err := h.service.DeleteTask(c.Context(), middleware.GetActor(c), id); err != nil {
		return dto.Fail(c, err)
	}
	return dto.OKMessage(c, nil, "task deleted")
}
