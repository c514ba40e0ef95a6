package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

// Actor types
const (
	ActorTypeUser   = "user"
	ActorTypeSystem = "system"
)

// FieldChange is one before/after pair in an audit entry.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// ChangeSet maps field name to its change. A nil ChangeSet means "nothing
// changed, do not write an audit row".
type ChangeSet map[string]FieldChange

// AuditLog is append-only; rows are never updated or deleted.
type AuditLog struct {
	ID            uuid.UUID  `json:"id"`
	EntityType    string     `json:"entity_type"`
	EntityID      uuid.UUID  `json:"entity_id"`
	Action        string     `json:"action"`
	Changes       ChangeSet  `json:"changes"`
	PerformedByID *uuid.UUID `json:"performed_by_id,omitempty"`
	ActorType     string     `json:"actor_type"`
	CreatedAt     time.Time  `json:"created_at"`
}
