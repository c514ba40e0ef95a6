package repositories

import (
	"context"
	"time"

	"github.com/estate-backoffice/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttachmentRepo holds notes, media items and tasks, all attached to an
// arbitrary entity via the (entity_type, entity_id) pair.
type AttachmentRepo struct {
	pool *pgxpool.Pool
}

func NewAttachmentRepo(pool *pgxpool.Pool) *AttachmentRepo {
	return &AttachmentRepo{pool: pool}
}

// ---- Notes ----

func (r *AttachmentRepo) CreateNote(ctx context.Context, n *models.Note) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO notes (entity_type, entity_id, body, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, n.EntityType, n.EntityID, n.Body, n.AuthorID).Scan(&n.ID, &n.CreatedAt)
}

func (r *AttachmentRepo) ListNotes(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entity_type, entity_id, body, author_id, created_at, deleted_at
		FROM notes WHERE entity_type = $1 AND entity_id = $2 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.EntityType, &n.EntityID, &n.Body, &n.AuthorID, &n.CreatedAt, &n.DeletedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func (r *AttachmentRepo) GetNoteByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	var n models.Note
	err := r.pool.QueryRow(ctx, `
		SELECT id, entity_type, entity_id, body, author_id, created_at, deleted_at
		FROM notes WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(&n.ID, &n.EntityType, &n.EntityID, &n.Body, &n.AuthorID, &n.CreatedAt, &n.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *AttachmentRepo) SoftDeleteNote(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE notes SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

// ---- Media ----

func (r *AttachmentRepo) CreateMedia(ctx context.Context, m *models.MediaItem) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO media_items (entity_type, entity_id, url, kind, sort_order, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, m.EntityType, m.EntityID, m.URL, m.Kind, m.SortOrder, m.UploadedBy).Scan(&m.ID, &m.CreatedAt)
}

func (r *AttachmentRepo) ListMedia(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.MediaItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entity_type, entity_id, url, kind, sort_order, uploaded_by, created_at, deleted_at
		FROM media_items WHERE entity_type = $1 AND entity_id = $2 AND deleted_at IS NULL
		ORDER BY sort_order ASC, created_at ASC
	`, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		var m models.MediaItem
		if err := rows.Scan(&m.ID, &m.EntityType, &m.EntityID, &m.URL, &m.Kind, &m.SortOrder, &m.UploadedBy, &m.CreatedAt, &m.DeletedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, nil
}

func (r *AttachmentRepo) GetMediaByID(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	var m models.MediaItem
	err := r.pool.QueryRow(ctx, `
		SELECT id, entity_type, entity_id, url, kind, sort_order, uploaded_by, created_at, deleted_at
		FROM media_items WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(&m.ID, &m.EntityType, &m.EntityID, &m.URL, &m.Kind, &m.SortOrder, &m.UploadedBy, &m.CreatedAt, &m.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *AttachmentRepo) UpdateMediaOrder(ctx context.Context, id uuid.UUID, sortOrder int) error {
	_, err := r.pool.Exec(ctx, `UPDATE media_items SET sort_order = $1 WHERE id = $2 AND deleted_at IS NULL`, sortOrder, id)
	return err
}

func (r *AttachmentRepo) SoftDeleteMedia(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE media_items SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

// ---- Tasks ----

func (r *AttachmentRepo) CreateTask(ctx context.Context, t *models.Task) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tasks (entity_type, entity_id, title, status, assignee_id, due_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, t.EntityType, t.EntityID, t.Title, t.Status, t.AssigneeID, t.DueAt, t.CreatedBy).Scan(&t.ID, &t.CreatedAt)
}

func (r *AttachmentRepo) ListTasks(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entity_type, entity_id, title, status, assignee_id, due_at, completed_at, created_by, created_at, deleted_at
		FROM tasks WHERE entity_type = $1 AND entity_id = $2 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.EntityType, &t.EntityID, &t.Title, &t.Status, &t.AssigneeID, &t.DueAt, &t.CompletedAt, &t.CreatedBy, &t.CreatedAt, &t.DeletedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *AttachmentRepo) GetTaskByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var t models.Task
	err := r.pool.QueryRow(ctx, `
		SELECT id, entity_type, entity_id, title, status, assignee_id, due_at, completed_at, created_by, created_at, deleted_at
		FROM tasks WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(&t.ID, &t.EntityType, &t.EntityID, &t.Title, &t.Status, &t.AssigneeID, &t.DueAt, &t.CompletedAt, &t.CreatedBy, &t.CreatedAt, &t.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *AttachmentRepo) CompleteTask(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE tasks SET status = $1, completed_at = $2 WHERE id = $3 AND deleted_at IS NULL
	`, models.TaskStatusDone, at, id)
	return err
}

func (r *AttachmentRepo) SoftDeleteTask(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE tasks SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}
