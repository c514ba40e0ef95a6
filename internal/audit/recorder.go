package audit

import (
	"context"

	"github.com/estate-backoffice/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the persistence needed by the recorder.
type Store interface {
	Insert(ctx context.Context, entry models.AuditLog) error
}

// Recorder writes audit rows best-effort: a failed audit write is logged and
// swallowed, never aborting the mutation it describes.
type Recorder struct {
	store Store
	log   *zap.Logger
}

func NewRecorder(store Store, log *zap.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// Record persists one audit row. A nil change set means the mutation was a
// no-op and no row is written.
func (r *Recorder) Record(ctx context.Context, entityType string, entityID uuid.UUID, action string, changes models.ChangeSet, performedBy *uuid.UUID, actorType string) {
	if action != models.AuditActionDelete && changes == nil {
		return
	}

	entry := models.AuditLog{
		EntityType:    entityType,
		EntityID:      entityID,
		Action:        action,
		Changes:       changes,
		PerformedByID: performedBy,
		ActorType:     actorType,
	}

	if err := r.store.Insert(ctx, entry); err != nil {
		r.log.Warn("audit write failed",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID.String()),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
