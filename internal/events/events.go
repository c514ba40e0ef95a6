package events

import "context"

// Event types
const (
	EventLeadStatusChanged    = "lead_status_changed"
	EventLeadAssigned         = "lead_assigned"
	EventVisitStatusChanged   = "visit_status_changed"
	EventOfferStatusChanged   = "offer_status_changed"
	EventListingStatusChanged = "listing_status_changed"
)

// StreamEntity carries every entity status event consumed by the back-office UI.
const StreamEntity = "events:entity"

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
