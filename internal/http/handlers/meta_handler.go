package handlers

import (
	"github.com/estate-backoffice/backend/internal/http/dto"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/rbac"
	"github.com/gofiber/fiber/v2"
)

// MetaHandler serves the enums the back-office UI needs to render dropdowns
// and kanban columns.
type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

func (h *MetaHandler) GetStatuses(c *fiber.Ctx) error {
	return dto.OK(c, fiber.Map{
		"lead":        models.LeadStatuses,
		"seller_lead": models.SellerLeadStatuses,
		"visit": []string{
			models.VisitStatusPending, models.VisitStatusScheduled, models.VisitStatusConfirmed,
			models.VisitStatusCompleted, models.VisitStatusCancelled,
		},
		"listing": []string{
			models.ListingStatusDraft, models.ListingStatusInspectionPending,
			models.ListingStatusCataloguingPending, models.ListingStatusActive,
			models.ListingStatusOnHold, models.ListingStatusInactive,
			models.ListingStatusSold, models.ListingStatusDelisted,
		},
		"offer": []string{
			models.OfferStatusPending, models.OfferStatusAccepted,
			models.OfferStatusRejected, models.OfferStatusCountered, models.OfferStatusExpired,
		},
	})
}

func (h *MetaHandler) GetLeadSources(c *fiber.Ctx) error {
	return dto.OK(c, models.LeadSources)
}

func (h *MetaHandler) GetVisitActions(c *fiber.Ctx) error {
	return dto.OK(c, models.VisitActions)
}

func (h *MetaHandler) GetRoles(c *fiber.Ctx) error {
	return dto.OK(c, []string{rbac.RoleAdmin, rbac.RoleTeamLead, rbac.RoleAgent, rbac.RoleCoordinator})
}
