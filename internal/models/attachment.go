package models

import (
	"time"

	"github.com/google/uuid"
)

// Entity types attachments and audit rows reference.
const (
	EntityTypeLead       = "lead"
	EntityTypeSellerLead = "seller_lead"
	EntityTypeListing    = "listing"
	EntityTypeVisit      = "visit"
	EntityTypeOffer      = "offer"
	EntityTypeInspection = "inspection"
	EntityTypeCatalogue  = "catalogue"
)

var EntityTypes = []string{
	EntityTypeLead, EntityTypeSellerLead, EntityTypeListing,
	EntityTypeVisit, EntityTypeOffer, EntityTypeInspection, EntityTypeCatalogue,
}

func IsValidEntityType(t string) bool {
	for _, e := range EntityTypes {
		if e == t {
			return true
		}
	}
	return false
}

// Attachment entity types only appear in audit rows, never as attachment
// parents.
const (
	EntityTypeNote      = "note"
	EntityTypeMediaItem = "media_item"
	EntityTypeTask      = "task"
)

func IsAuditableEntityType(t string) bool {
	return IsValidEntityType(t) || t == EntityTypeNote || t == EntityTypeMediaItem || t == EntityTypeTask
}

type Note struct {
	ID         uuid.UUID  `json:"id"`
	EntityType string     `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`
	Body       string     `json:"body"`
	AuthorID   uuid.UUID  `json:"author_id"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

type MediaItem struct {
	ID         uuid.UUID  `json:"id"`
	EntityType string     `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`
	URL        string     `json:"url"`
	Kind       string     `json:"kind"` // photo / video / document
	SortOrder  int        `json:"sort_order"`
	UploadedBy uuid.UUID  `json:"uploaded_by"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// Task statuses
const (
	TaskStatusOpen = "open"
	TaskStatusDone = "done"
)

type Task struct {
	ID          uuid.UUID  `json:"id"`
	EntityType  string     `json:"entity_type"`
	EntityID    uuid.UUID  `json:"entity_id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}
