package services

import (
	"context"
	"time"

	"github.com/estate-backoffice/backend/internal/apperr"
	"github.com/estate-backoffice/backend/internal/audit"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/optional"
	"github.com/estate-backoffice/backend/internal/rbac"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SellerLeadStore is the persistence slice the service needs.
type SellerLeadStore interface {
	Create(ctx context.Context, s *models.SellerLead) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SellerLead, error)
	List(ctx context.Context, f repositories.SellerLeadFilter) ([]models.SellerLead, error)
	Update(ctx context.Context, s *models.SellerLead) error
	LinkListing(ctx context.Context, id, listingID uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type SellerLeadService struct {
	repo     SellerLeadStore
	recorder *audit.Recorder
	log      *zap.Logger
}

func NewSellerLeadService(repo SellerLeadStore, recorder *audit.Recorder, log *zap.Logger) *SellerLeadService {
	return &SellerLeadService{repo: repo, recorder: recorder, log: log}
}

func sellerLeadSnapshot(s *models.SellerLead) map[string]any {
	return map[string]any{
		"name":              s.Name,
		"phone":             s.Phone,
		"email":             s.Email,
		"status":            s.Status,
		"property_address":  s.PropertyAddress,
		"expected_price":    s.ExpectedPrice,
		"assigned_agent_id": s.AssignedAgentID,
		"listing_id":        s.ListingID,
	}
}

type CreateSellerLeadInput struct {
	Name            string
	Phone           string
	Email           *string
	PropertyAddress *string
	ExpectedPrice   *int64
	AssignedAgentID *uuid.UUID
}

func (s *SellerLeadService) Create(ctx context.Context, actor Actor, input CreateSellerLeadInput) (*models.SellerLead, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermSellerLeadCreate) {
		return nil, apperr.Forbidden("missing seller_lead:create permission")
	}

	details := map[string]string{}
	if input.Name == "" {
		details["name"] = "required"
	}
	if input.Phone == "" {
		details["phone"] = "required"
	}
	if len(details) > 0 {
		return nil, apperr.ValidationWithDetails("invalid seller lead", details)
	}

	lead := &models.SellerLead{
		Name:            input.Name,
		Phone:           input.Phone,
		Email:           input.Email,
		Status:          models.SellerLeadStatusNew,
		PropertyAddress: input.PropertyAddress,
		ExpectedPrice:   input.ExpectedPrice,
		AssignedAgentID: input.AssignedAgentID,
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		s.log.Error("seller lead create failed", zap.Error(err))
		return nil, apperr.Internal("could not create seller lead")
	}

	s.recorder.Record(ctx, models.EntityTypeSellerLead, lead.ID, models.AuditActionCreate,
		audit.Diff(nil, sellerLeadSnapshot(lead)), &actor.ID, models.ActorTypeUser)

	return lead, nil
}

func (s *SellerLeadService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.SellerLead, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermSellerLeadRead) {
		return nil, apperr.Forbidden("missing seller_lead:read permission")
	}
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("seller lead not found")
	}
	return lead, nil
}

func (s *SellerLeadService) List(ctx context.Context, actor Actor, f repositories.SellerLeadFilter) ([]models.SellerLead, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermSellerLeadRead) {
		return nil, apperr.Forbidden("missing seller_lead:read permission")
	}
	if !rbac.IsElevated(actor.Role) {
		f.AssignedAgentID = &actor.ID
	}
	leads, err := s.repo.List(ctx, f)
	if err != nil {
		s.log.Error("seller lead list failed", zap.Error(err))
		return nil, apperr.Internal("could not list seller leads")
	}
	return leads, nil
}

// UpdateSellerLeadInput uses optional fields where null is a meaningful
// value: it clears what is stored.
type UpdateSellerLeadInput struct {
	Name            *string
	Phone           *string
	Email           optional.Field[string]
	Status          *string
	PropertyAddress optional.Field[string]
	ExpectedPrice   optional.Field[int64]
}

func (s *SellerLeadService) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateSellerLeadInput) (*models.SellerLead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("seller lead not found")
	}
	if !rbac.CanAccessResource(actor.Role, rbac.PermSellerLeadUpdate, lead.AssignedAgentID, actor.ID) {
		return nil, apperr.Forbidden("not allowed to update this seller lead")
	}
	if input.Status != nil && !models.IsValidSellerLeadStatus(*input.Status) {
		return nil, apperr.ValidationWithDetails("invalid seller lead", map[string]string{"status": "unknown status"})
	}

	oldSnapshot := sellerLeadSnapshot(lead)

	if input.Name != nil {
		lead.Name = *input.Name
	}
	if input.Phone != nil {
		lead.Phone = *input.Phone
	}
	if input.Email.Set {
		lead.Email = input.Email.Value
	}
	if input.PropertyAddress.Set {
		lead.PropertyAddress = input.PropertyAddress.Value
	}
	if input.ExpectedPrice.Set {
		lead.ExpectedPrice = input.ExpectedPrice.Value
	}
	if input.Status != nil {
		lead.Status = *input.Status
	}

	changes := audit.Diff(oldSnapshot, sellerLeadSnapshot(lead))
	if changes == nil {
		return lead, nil
	}

	if err := s.repo.Update(ctx, lead); err != nil {
		s.log.Error("seller lead update failed", zap.String("seller_lead_id", id.String()), zap.Error(err))
		return nil, apperr.Internal("could not update seller lead")
	}

	s.recorder.Record(ctx, models.EntityTypeSellerLead, lead.ID, models.AuditActionUpdate,
		changes, &actor.ID, models.ActorTypeUser)

	return lead, nil
}

// ConvertToListing links a seller lead to the listing born from it and moves
// the lead to listed.
func (s *SellerLeadService) ConvertToListing(ctx context.Context, actor Actor, id, listingID uuid.UUID) (*models.SellerLead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("seller lead not found")
	}
	if !rbac.CanAccessResource(actor.Role, rbac.PermSellerLeadUpdate, lead.AssignedAgentID, actor.ID) {
		return nil, apperr.Forbidden("not allowed to update this seller lead")
	}
	if lead.ListingID != nil {
		return nil, apperr.Conflict("seller lead is already linked to a listing")
	}

	old := sellerLeadSnapshot(lead)
	if err := s.repo.LinkListing(ctx, id, listingID); err != nil {
		s.log.Error("seller lead link failed", zap.String("seller_lead_id", id.String()), zap.Error(err))
		return nil, apperr.Internal("could not link seller lead")
	}
	lead.ListingID = &listingID
	lead.Status = models.SellerLeadStatusListed

	s.recorder.Record(ctx, models.EntityTypeSellerLead, lead.ID, models.AuditActionUpdate,
		audit.Diff(old, sellerLeadSnapshot(lead)), &actor.ID, models.ActorTypeUser)

	return lead, nil
}

func (s *SellerLeadService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !rbac.HasPermission(actor.Role, rbac.PermSellerLeadDelete) {
		return apperr.Forbidden("missing seller_lead:delete permission")
	}
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperr.NotFound("seller lead not found")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		s.log.Error("seller lead delete failed", zap.String("seller_lead_id", id.String()), zap.Error(err))
		return apperr.Internal("could not delete seller lead")
	}

	s.recorder.Record(ctx, models.EntityTypeSellerLead, lead.ID, models.AuditActionDelete,
		models.ChangeSet{"deleted_at": {Old: nil, New: time.Now()}}, &actor.ID, models.ActorTypeUser)

	return nil
}
