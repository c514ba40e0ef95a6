package services

import (
	"context"
	"time"

	"github.com/estate-backoffice/backend/internal/apperr"
	"github.com/estate-backoffice/backend/internal/audit"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/rbac"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AttachmentService covers notes, media and tasks, all attached to a parent
// entity. Creation and deletion are audited like any other mutation.
type AttachmentService struct {
	repo     *repositories.AttachmentRepo
	recorder *audit.Recorder
	log      *zap.Logger
}

func NewAttachmentService(repo *repositories.AttachmentRepo, recorder *audit.Recorder, log *zap.Logger) *AttachmentService {
	return &AttachmentService{repo: repo, recorder: recorder, log: log}
}

func validateEntityRef(entityType string) error {
	if !models.IsValidEntityType(entityType) {
		return apperr.ValidationWithDetails("invalid attachment", map[string]string{"entity_type": "unknown entity type"})
	}
	return nil
}

// ---- Notes ----

func (s *AttachmentService) AddNote(ctx context.Context, actor Actor, entityType string, entityID uuid.UUID, body string) (*models.Note, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermNoteWrite) {
		return nil, apperr.Forbidden("missing note:write permission")
	}
	if err := validateEntityRef(entityType); err != nil {
		return nil, err
	}
	if body == "" {
		return nil, apperr.ValidationWithDetails("invalid note", map[string]string{"body": "required"})
	}

	note := &models.Note{EntityType: entityType, EntityID: entityID, Body: body, AuthorID: actor.ID}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		s.log.Error("note create failed", zap.Error(err))
		return nil, apperr.Internal("could not create note")
	}

	s.recorder.Record(ctx, models.EntityTypeNote, note.ID, models.AuditActionCreate,
		audit.Diff(nil, map[string]any{
			"entity_type": note.EntityType,
			"entity_id":   note.EntityID.String(),
			"body":        note.Body,
		}), &actor.ID, models.ActorTypeUser)

	return note, nil
}

func (s *AttachmentService) ListNotes(ctx context.Context, actor Actor, entityType string, entityID uuid.UUID) ([]models.Note, error) {
	if err := validateEntityRef(entityType); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListNotes(ctx, entityType, entityID)
	if err != nil {
		s.log.Error("note list failed", zap.Error(err))
		return nil, apperr.Internal("could not list notes")
	}
	return notes, nil
}

// DeleteNote soft-deletes. Only the author or an elevated role may remove a note.
func (s *AttachmentService) DeleteNote(ctx context.Context, actor Actor, id uuid.UUID) error {
	note, err := s.repo.GetNoteByID(ctx, id)
	if err != nil {
		return apperr.NotFound("note not found")
	}
	if !rbac.IsElevated(actor.Role) && note.AuthorID != actor.ID {
		return apperr.Forbidden("not allowed to delete this note")
	}
	if err := s.repo.SoftDeleteNote(ctx, id); err != nil {
		s.log.Error("note delete failed", zap.String("note_id", id.String()), zap.Error(err))
		return apperr.Internal("could not delete note")
	}

	s.recorder.Record(ctx, models.EntityTypeNote, id, models.AuditActionDelete,
		models.ChangeSet{"deleted_at": {Old: nil, New: time.Now()}}, &actor.ID, models.ActorTypeUser)

	return nil
}

// ---- Media ----

type AddMediaInput struct {
	EntityType string
	EntityID   uuid.UUID
	URL        string
	Kind       string
	SortOrder  int
}

func (s *AttachmentService) AddMedia(ctx context.Context, actor Actor, input AddMediaInput) (*models.MediaItem, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermMediaWrite) {
		return nil, apperr.Forbidden("missing media:write permission")
	}
	if err := validateEntityRef(input.EntityType); err != nil {
		return nil, err
	}
	if input.URL == "" {
		return nil, apperr.ValidationWithDetails("invalid media", map[string]string{"url": "required"})
	}

	item := &models.MediaItem{
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		URL:        input.URL,
		Kind:       input.Kind,
		SortOrder:  input.SortOrder,
		UploadedBy: actor.ID,
	}
	if err := s.repo.CreateMedia(ctx, item); err != nil {
		s.log.Error("media create failed", zap.Error(err))
		return nil, apperr.Internal("could not create media item")
	}

	s.recorder.Record(ctx, models.EntityTypeMediaItem, item.ID, models.AuditActionCreate,
		audit.Diff(nil, map[string]any{
			"entity_type": item.EntityType,
			"entity_id":   item.EntityID.String(),
			"url":         item.URL,
			"kind":        item.Kind,
		}), &actor.ID, models.ActorTypeUser)

	return item, nil
}

func (s *AttachmentService) ListMedia(ctx context.Context, actor Actor, entityType string, entityID uuid.UUID) ([]models.MediaItem, error) {
	if err := validateEntityRef(entityType); err != nil {
		return nil, err
	}
	items, err := s.repo.ListMedia(ctx, entityType, entityID)
	if err != nil {
		s.log.Error("media list failed", zap.Error(err))
		return nil, apperr.Internal("could not list media")
	}
	return items, nil
}

func (s *AttachmentService) ReorderMedia(ctx context.Context, actor Actor, id uuid.UUID, sortOrder int) error {
	if !rbac.HasPermission(actor.Role, rbac.PermMediaWrite) {
		return apperr.Forbidden("missing media:write permission")
	}
	if _, err := s.repo.GetMediaByID(ctx, id); err != nil {
		return apperr.NotFound("media item not found")
	}
	if err := s.repo.UpdateMediaOrder(ctx, id, sortOrder); err != nil {
		s.log.Error("media reorder failed", zap.String("media_id", id.String()), zap.Error(err))
		return apperr.Internal("could not reorder media")
	}
	return nil
}

func (s *AttachmentService) DeleteMedia(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !rbac.HasPermission(actor.Role, rbac.PermMediaWrite) {
		return apperr.Forbidden("missing media:write permission")
	}
	if _, err := s.repo.GetMediaByID(ctx, id); err != nil {
		return apperr.NotFound("media item not found")
	}
	if err := s.repo.SoftDeleteMedia(ctx, id); err != nil {
		s.log.Error("media delete failed", zap.String("media_id", id.String()), zap.Error(err))
		return apperr.Internal("could not delete media")
	}

	s.recorder.Record(ctx, models.EntityTypeMediaItem, id, models.AuditActionDelete,
		models.ChangeSet{"deleted_at": {Old: nil, New: time.Now()}}, &actor.ID, models.ActorTypeUser)

	return nil
}

// ---- Tasks ----

type CreateTaskInput struct {
	EntityType string
	EntityID   uuid.UUID
	Title      string
	AssigneeID *uuid.UUID
	DueAt      *time.Time
}

func (s *AttachmentService) CreateTask(ctx context.Context, actor Actor, input CreateTaskInput) (*models.Task, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermTaskWrite) {
		return nil, apperr.Forbidden("missing task:write permission")
	}
	if err := validateEntityRef(input.EntityType); err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, apperr.ValidationWithDetails("invalid task", map[string]string{"title": "required"})
	}

	task := &models.Task{
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		Title:      input.Title,
		Status:     models.TaskStatusOpen,
		AssigneeID: input.AssigneeID,
		DueAt:      input.DueAt,
		CreatedBy:  actor.ID,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		s.log.Error("task create failed", zap.Error(err))
		return nil, apperr.Internal("could not create task")
	}

	s.recorder.Record(ctx, models.EntityTypeTask, task.ID, models.AuditActionCreate,
		audit.Diff(nil, map[string]any{
			"entity_type": task.EntityType,
			"entity_id":   task.EntityID.String(),
			"title":       task.Title,
			"status":      task.Status,
		}), &actor.ID, models.ActorTypeUser)

	return task, nil
}

func (s *AttachmentService) ListTasks(ctx context.Context, actor Actor, entityType string, entityID uuid.UUID) ([]models.Task, error) {
	if err := validateEntityRef(entityType); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasks(ctx, entityType, entityID)
	if err != nil {
		s.log.Error("task list failed", zap.Error(err))
		return nil, apperr.Internal("could not list tasks")
	}
	return tasks, nil
}

func (s *AttachmentService) CompleteTask(ctx context.Context, actor Actor, id uuid.UUID) (*models.Task, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermTaskWrite) {
		return nil, apperr.Forbidden("missing task:write permission")
	}
	task, err := s.repo.GetTaskByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("task not found")
	}
	if task.Status == models.TaskStatusDone {
		return nil, apperr.Conflict("task is already done")
	}

	now := time.Now()
	if err := s.repo.CompleteTask(ctx, id, now); err != nil {
		s.log.Error("task complete failed", zap.String("task_id", id.String()), zap.Error(err))
		return nil, apperr.Internal("could not complete task")
	}
	task.Status = models.TaskStatusDone
	task.CompletedAt = &now

	s.recorder.Record(ctx, models.EntityTypeTask, task.ID, models.AuditActionUpdate,
		models.ChangeSet{"status": {Old: models.TaskStatusOpen, New: models.TaskStatusDone}},
		&actor.ID, models.ActorTypeUser)

	return task, nil
}

func (s *AttachmentService) DeleteTask(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !rbac.HasPermission(actor.Role, rbac.PermTaskWrite) {
		return apperr.Forbidden("missing task:write permission")
	}
	if _, err := s.repo.GetTaskByID(ctx, id); err != nil {
		return apperr.NotFound("task not found")
	}
	if err := s.repo.SoftDeleteTask(ctx, id); err != nil {
		s.log.Error("task delete failed", zap.String("task_id", id.String()), zap.Error(err))
		return apperr.Internal("could not delete task")
	}

	s.recorder.Record(ctx, models.EntityTypeTask, id, models.AuditActionDelete,
		models.ChangeSet{"deleted_at": {Old: nil, New: time.Now()}}, &actor.ID, models.ActorTypeUser)

	return nil
}
