package dto

import (
	"time"

	"github.com/estate-backoffice/backend/internal/optional"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Leads

type RequirementPayload struct {
	BudgetMin  *int64         `json:"budget_min,omitempty"`
	BudgetMax  *int64         `json:"budget_max,omitempty"`
	Localities []string       `json:"localities,omitempty"`
	Bedrooms   *int           `json:"bedrooms,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

type CreateLeadRequest struct {
	Name            string              `json:"name"`
	Phone           string              `json:"phone"`
	Email           *string             `json:"email,omitempty"`
	Source          string              `json:"source,omitempty"`
	AssignedAgentID *string             `json:"assigned_agent_id,omitempty"`
	Requirement     *RequirementPayload `json:"requirement,omitempty"`
}

// UpdateLeadRequest: email is tri-state, an explicit null clears it.
type UpdateLeadRequest struct {
	Name        *string                `json:"name,omitempty"`
	Phone       *string                `json:"phone,omitempty"`
	Email       optional.Field[string] `json:"email"`
	Status      *string                `json:"status,omitempty"`
	Requirement *RequirementPayload    `json:"requirement,omitempty"`
	Contacted   bool                   `json:"contacted,omitempty"`
}

type AssignLeadRequest struct {
	AgentID *string `json:"agent_id"` // null unassigns
}

// Seller leads

type CreateSellerLeadRequest struct {
	Name            string  `json:"name"`
	Phone           string  `json:"phone"`
	Email           *string `json:"email,omitempty"`
	PropertyAddress *string `json:"property_address,omitempty"`
	ExpectedPrice   *int64  `json:"expected_price,omitempty"`
	AssignedAgentID *string `json:"assigned_agent_id,omitempty"`
}

// UpdateSellerLeadRequest: the optional fields are tri-state, an explicit
// null clears the stored value.
type UpdateSellerLeadRequest struct {
	Name            *string                `json:"name,omitempty"`
	Phone           *string                `json:"phone,omitempty"`
	Email           optional.Field[string] `json:"email"`
	Status          *string                `json:"status,omitempty"`
	PropertyAddress optional.Field[string] `json:"property_address"`
	ExpectedPrice   optional.Field[int64]  `json:"expected_price"`
}

type ConvertSellerLeadRequest struct {
	ListingID string `json:"listing_id"`
}

// Listings

type CreateListingRequest struct {
	UnitNumber  string  `json:"unit_number"`
	BuildingID  string  `json:"building_id"`
	AskingPrice int64   `json:"asking_price"`
	OwnerUserID *string `json:"owner_user_id,omitempty"`
}

type UpdateListingRequest struct {
	UnitNumber  *string `json:"unit_number,omitempty"`
	AskingPrice *int64  `json:"asking_price,omitempty"`
}

type TransitionListingRequest struct {
	Status string `json:"status"`
}

type RequestInspectionRequest struct {
	InspectorID *string `json:"inspector_id,omitempty"`
}

type CompleteInspectionRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type ReviewCatalogueRequest struct {
	Approve      bool    `json:"approve"`
	RejectReason *string `json:"reject_reason,omitempty"`
}

// Visits

type CreateVisitRequest struct {
	LeadID      string    `json:"lead_id"`
	ListingID   string    `json:"listing_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// VisitActionRequest covers all four actions; unused fields are ignored.
type VisitActionRequest struct {
	DropReason       *string    `json:"drop_reason,omitempty"`
	NewScheduledAt   *time.Time `json:"new_scheduled_at,omitempty"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	OTPCode          *string    `json:"otp_code,omitempty"`
	Rating           *int       `json:"rating,omitempty"`
	BuyerScore       *int       `json:"buyer_score,omitempty"`
	PrimaryPainPoint *string    `json:"primary_pain_point,omitempty"`
	Feedback         *string    `json:"feedback,omitempty"`
}

// Offers

type CreateOfferRequest struct {
	ListingID string  `json:"listing_id"`
	LeadID    string  `json:"lead_id"`
	Amount    int64   `json:"amount"`
	Terms     *string `json:"terms,omitempty"`
}

type CounterOfferRequest struct {
	Amount int64   `json:"amount"`
	Terms  *string `json:"terms,omitempty"`
}

// Attachments

type CreateNoteRequest struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Body       string `json:"body"`
}

type CreateMediaRequest struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	URL        string `json:"url"`
	Kind       string `json:"kind"`
	SortOrder  int    `json:"sort_order"`
}

type ReorderMediaRequest struct {
	SortOrder int `json:"sort_order"`
}

type CreateTaskRequest struct {
	EntityType string     `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Title      string     `json:"title"`
	AssigneeID *string    `json:"assignee_id,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}
