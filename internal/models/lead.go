package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead statuses
const (
	LeadStatusNew           = "new"
	LeadStatusContacted     = "contacted"
	LeadStatusActiveVisitor = "active_visitor"
	LeadStatusAtRisk        = "at_risk"
	LeadStatusClosed        = "closed"
)

// Lead sources
const (
	LeadSourceWebsite  = "website"
	LeadSourcePortal   = "portal"
	LeadSourceReferral = "referral"
	LeadSourceWalkIn   = "walk_in"
)

// LeadStatuses is the closed enum. The pipeline deliberately does not enforce
// an ordering between them: any PUT may move a lead to any known status.
var LeadStatuses = []string{
	LeadStatusNew, LeadStatusContacted, LeadStatusActiveVisitor,
	LeadStatusAtRisk, LeadStatusClosed,
}

func IsValidLeadStatus(status string) bool {
	for _, s := range LeadStatuses {
		if s == status {
			return true
		}
	}
	return false
}

var LeadSources = []string{LeadSourceWebsite, LeadSourcePortal, LeadSourceReferral, LeadSourceWalkIn}

func IsValidLeadSource(source string) bool {
	for _, s := range LeadSources {
		if s == source {
			return true
		}
	}
	return false
}

// Requirement captures the buyer's search criteria. Unknown fields sent by a
// portal integration land in Extra rather than being silently dropped.
type Requirement struct {
	BudgetMin  *int64         `json:"budget_min,omitempty"`
	BudgetMax  *int64         `json:"budget_max,omitempty"`
	Localities []string       `json:"localities,omitempty"`
	Bedrooms   *int           `json:"bedrooms,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

type Lead struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	Phone           string       `json:"phone"`
	Email           *string      `json:"email,omitempty"`
	Status          string       `json:"status"`
	Source          string       `json:"source"`
	AssignedAgentID *uuid.UUID   `json:"assigned_agent_id,omitempty"`
	Requirement     *Requirement `json:"requirement,omitempty"`
	LastContactedAt *time.Time   `json:"last_contacted_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	DeletedAt       *time.Time   `json:"deleted_at,omitempty"`
}
