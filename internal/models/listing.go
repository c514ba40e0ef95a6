package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing statuses
const (
	ListingStatusDraft              = "draft"
	ListingStatusInspectionPending  = "inspection_pending"
	ListingStatusCataloguingPending = "cataloguing_pending"
	ListingStatusActive             = "active"
	ListingStatusOnHold             = "on_hold"
	ListingStatusInactive           = "inactive"
	ListingStatusSold               = "sold"
	ListingStatusDelisted           = "delisted"
)

// Valid state transitions: from -> []to
var ValidListingTransitions = map[string][]string{
	ListingStatusDraft:              {ListingStatusInspectionPending, ListingStatusInactive},
	ListingStatusInspectionPending:  {ListingStatusCataloguingPending, ListingStatusOnHold, ListingStatusInactive},
	ListingStatusCataloguingPending: {ListingStatusActive, ListingStatusOnHold, ListingStatusInactive},
	ListingStatusActive:             {ListingStatusOnHold, ListingStatusSold, ListingStatusDelisted},
	ListingStatusOnHold:             {ListingStatusActive, ListingStatusInactive, ListingStatusDelisted},
	ListingStatusInactive:           {ListingStatusDraft},
	ListingStatusSold:               {},
	ListingStatusDelisted:           {},
}

func IsValidListingTransition(from, to string) bool {
	allowed, ok := ValidListingTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

type Listing struct {
	ID          uuid.UUID  `json:"id"`
	UnitNumber  string     `json:"unit_number"`
	BuildingID  uuid.UUID  `json:"building_id"`
	Status      string     `json:"status"`
	AskingPrice int64      `json:"asking_price"`
	OwnerUserID *uuid.UUID `json:"owner_user_id,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Inspection statuses
const (
	InspectionStatusPending   = "pending"
	InspectionStatusCompleted = "completed"
)

type Inspection struct {
	ID          uuid.UUID  `json:"id"`
	ListingID   uuid.UUID  `json:"listing_id"`
	Status      string     `json:"status"`
	InspectorID *uuid.UUID `json:"inspector_id,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Catalogue statuses
const (
	CatalogueStatusPending  = "pending"
	CatalogueStatusApproved = "approved"
	CatalogueStatusRejected = "rejected"
)

type Catalogue struct {
	ID           uuid.UUID  `json:"id"`
	ListingID    uuid.UUID  `json:"listing_id"`
	Status       string     `json:"status"`
	ReviewerID   *uuid.UUID `json:"reviewer_id,omitempty"`
	RejectReason *string    `json:"reject_reason,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
