package models

import (
	"time"

	"github.com/google/uuid"
)

// Visit statuses
const (
	VisitStatusPending   = "pending"
	VisitStatusScheduled = "scheduled"
	VisitStatusConfirmed = "confirmed"
	VisitStatusCompleted = "completed"
	VisitStatusCancelled = "cancelled"
)

// Visit workflow actions. The set is closed: anything else is a bad request.
const (
	VisitActionConfirm    = "confirm"
	VisitActionCancel     = "cancel"
	VisitActionReschedule = "reschedule"
	VisitActionComplete   = "complete"
)

var VisitActions = []string{
	VisitActionConfirm, VisitActionCancel, VisitActionReschedule, VisitActionComplete,
}

func IsValidVisitAction(action string) bool {
	for _, a := range VisitActions {
		if a == action {
			return true
		}
	}
	return false
}

// Valid state transitions: from -> []to
var ValidVisitTransitions = map[string][]string{
	VisitStatusPending:   {VisitStatusScheduled, VisitStatusCancelled},
	VisitStatusScheduled: {VisitStatusScheduled, VisitStatusCompleted, VisitStatusCancelled},
	VisitStatusConfirmed: {VisitStatusCompleted, VisitStatusCancelled},
	VisitStatusCompleted: {},
	VisitStatusCancelled: {},
}

func IsValidVisitTransition(from, to string) bool {
	allowed, ok := ValidVisitTransitions[from]
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

type Visit struct {
	ID          uuid.UUID `json:"id"`
	LeadID      uuid.UUID `json:"lead_id"`
	ListingID   uuid.UUID `json:"listing_id"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`

	VisitConfirmed bool       `json:"visit_confirmed"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
	VisitCanceled  bool       `json:"visit_canceled"`
	CanceledAt     *time.Time `json:"canceled_at,omitempty"`
	DropReason     *string    `json:"drop_reason,omitempty"`
	VisitCompleted bool       `json:"visit_completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`

	// A reschedule inserts a new row pointing back at the cancelled original,
	// so the chain keeps full history.
	RescheduledFromVisitID *uuid.UUID `json:"rescheduled_from_visit_id,omitempty"`

	// Completion capture
	OTPCode          *string  `json:"-"`
	OTPVerified      bool     `json:"otp_verified"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	Rating           *int     `json:"rating,omitempty"`
	BuyerScore       *int     `json:"buyer_score,omitempty"`
	PrimaryPainPoint *string  `json:"primary_pain_point,omitempty"`
	Feedback         *string  `json:"feedback,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
