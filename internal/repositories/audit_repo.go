package repositories

import (
	"context"
	"encoding/json"

	"github.com/estate-backoffice/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// Insert appends one audit row. The table is append-only: there is no update
// or delete method on purpose.
func (r *AuditRepo) Insert(ctx context.Context, entry models.AuditLog) error {
	changesBytes, err := json.Marshal(entry.Changes)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO audit_logs (entity_type, entity_id, action, changes, performed_by_id, actor_type)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.EntityType, entry.EntityID, entry.Action, changesBytes, entry.PerformedByID, entry.ActorType)
	return err
}

func (r *AuditRepo) GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, entity_type, entity_id, action, changes, performed_by_id, actor_type, created_at
		FROM audit_logs WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4
	`, entityType, entityID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		var changesBytes []byte
		if err := rows.Scan(&l.ID, &l.EntityType, &l.EntityID, &l.Action, &changesBytes, &l.PerformedByID, &l.ActorType, &l.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(changesBytes, &l.Changes)
		logs = append(logs, l)
	}
	return logs, nil
}
