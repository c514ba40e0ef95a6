package models

import (
	"time"

	"github.com/google/uuid"
)

// Seller lead statuses
const (
	SellerLeadStatusNew              = "new"
	SellerLeadStatusContacted        = "contacted"
	SellerLeadStatusAgreementPending = "agreement_pending"
	SellerLeadStatusListed           = "listed"
	SellerLeadStatusDropped          = "dropped"
)

var SellerLeadStatuses = []string{
	SellerLeadStatusNew, SellerLeadStatusContacted,
	SellerLeadStatusAgreementPending, SellerLeadStatusListed, SellerLeadStatusDropped,
}

func IsValidSellerLeadStatus(status string) bool {
	for _, s := range SellerLeadStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// SellerLead is a prospective property seller, tracked separately from buyer
// leads because it converts into a Listing instead of a Visit/Offer chain.
type SellerLead struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Email           *string    `json:"email,omitempty"`
	Status          string     `json:"status"`
	PropertyAddress *string    `json:"property_address,omitempty"`
	ExpectedPrice   *int64     `json:"expected_price,omitempty"`
	AssignedAgentID *uuid.UUID `json:"assigned_agent_id,omitempty"`
	ListingID       *uuid.UUID `json:"listing_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}
