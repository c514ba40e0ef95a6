package models

import (
	"time"

	"github.com/google/uuid"
)

// Offer statuses
const (
	OfferStatusPending   = "pending"
	OfferStatusAccepted  = "accepted"
	OfferStatusRejected  = "rejected"
	OfferStatusCountered = "countered"
	OfferStatusExpired   = "expired"
)

// Valid state transitions: from -> []to. Everything past pending is terminal;
// a counter never mutates the original amount, it spawns a new pending row.
var ValidOfferTransitions = map[string][]string{
	OfferStatusPending:   {OfferStatusAccepted, OfferStatusRejected, OfferStatusCountered, OfferStatusExpired},
	OfferStatusAccepted:  {},
	OfferStatusRejected:  {},
	OfferStatusCountered: {},
	OfferStatusExpired:   {},
}

func IsValidOfferTransition(from, to string) bool {
	allowed, ok := ValidOfferTransitions[from]
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

type Offer struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listing_id"`
	LeadID    uuid.UUID `json:"lead_id"`
	Status    string    `json:"status"`
	Amount    int64     `json:"amount"`
	Terms     *string   `json:"terms,omitempty"`

	// Negotiation chain: a counter row points back at the offer it answers.
	CounterOfOfferID *uuid.UUID `json:"counter_of_offer_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
