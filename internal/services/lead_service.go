package services

import (
	"context"
	"time"

	"github.com/estate-backoffice/backend/internal/apperr"
	"github.com/estate-backoffice/backend/internal/audit"
	"github.com/estate-backoffice/backend/internal/events"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/optional"
	"github.com/estate-backoffice/backend/internal/rbac"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadStore is the slice of the lead repository the service drives.
type LeadStore interface {
	Create(ctx context.Context, l *models.Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error)
	GetByPhone(ctx context.Context, phone string) (*models.Lead, error)
	List(ctx context.Context, f repositories.LeadFilter) ([]models.Lead, error)
	Update(ctx context.Context, l *models.Lead) error
	Assign(ctx context.Context, id uuid.UUID, agentID *uuid.UUID) error
	TouchLastContacted(ctx context.Context, id uuid.UUID, at time.Time) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type LeadService struct {
	leadRepo  LeadStore
	recorder  *audit.Recorder
	publisher events.Publisher
	log       *zap.Logger
}

func NewLeadService(leadRepo LeadStore, recorder *audit.Recorder, publisher events.Publisher, log *zap.Logger) *LeadService {
	return &LeadService{leadRepo: leadRepo, recorder: recorder, publisher: publisher, log: log}
}

func leadSnapshot(l *models.Lead) map[string]any {
	return map[string]any{
		"name":              l.Name,
		"phone":             l.Phone,
		"email":             l.Email,
		"status":            l.Status,
		"source":            l.Source,
		"assigned_agent_id": l.AssignedAgentID,
		"requirement":       l.Requirement,
		"last_contacted_at": l.LastContactedAt,
	}
}

type CreateLeadInput struct {
	Name            string
	Phone           string
	Email           *string
	Source          string
	AssignedAgentID *uuid.UUID
	Requirement     *models.Requirement
}

func (s *LeadService) Create(ctx context.Context, actor Actor, input CreateLeadInput) (*models.Lead, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermLeadCreate) {
		return nil, apperr.Forbidden("missing lead:create permission")
	}

	details := map[string]string{}
	if input.Name == "" {
		details["name"] = "required"
	}
	if input.Phone == "" {
		details["phone"] = "required"
	}
	if input.Source != "" && !models.IsValidLeadSource(input.Source) {
		details["source"] = "unknown source"
	}
	if len(details) > 0 {
		return nil, apperr.ValidationWithDetails("invalid lead", details)
	}

	if existing, err := s.leadRepo.GetByPhone(ctx, input.Phone); err == nil && existing != nil {
		return nil, apperr.Conflict("a lead with this phone number already exists")
	}

	source := input.Source
	if source == "" {
		source = models.LeadSourceWebsite
	}
	now := time.Now()
	lead := &models.Lead{
		Name:            input.Name,
		Phone:           input.Phone,
		Email:           input.Email,
		Status:          models.LeadStatusNew,
		Source:          source,
		AssignedAgentID: input.AssignedAgentID,
		Requirement:     input.Requirement,
		LastContactedAt: &now,
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		s.log.Error("lead create failed", zap.Error(err))
		return nil, apperr.Internal("could not create lead")
	}

	s.recorder.Record(ctx, models.EntityTypeLead, lead.ID, models.AuditActionCreate,
		audit.Diff(nil, leadSnapshot(lead)), &actor.ID, models.ActorTypeUser)

	return lead, nil
}

// CreateFromPortal ingests a lead parsed off an inbound portal payload. The
// actor is the system: there is no user behind the webhook.
func (s *LeadService) CreateFromPortal(ctx context.Context, input CreateLeadInput) (*models.Lead, error) {
	if input.Phone == "" {
		return nil, apperr.Validation("portal payload has no phone number")
	}
	if existing, err := s.leadRepo.GetByPhone(ctx, input.Phone); err == nil && existing != nil {
		// Repeat inquiry from a known lead counts as contact, not a new row.
		_ = s.leadRepo.TouchLastContacted(ctx, existing.ID, time.Now())
		return existing, nil
	}

	now := time.Now()
	lead := &models.Lead{
		Name:            input.Name,
		Phone:           input.Phone,
		Email:           input.Email,
		Status:          models.LeadStatusNew,
		Source:          models.LeadSourcePortal,
		Requirement:     input.Requirement,
		LastContactedAt: &now,
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		s.log.Error("portal lead create failed", zap.Error(err))
		return nil, apperr.Internal("could not create lead")
	}

	s.recorder.Record(ctx, models.EntityTypeLead, lead.ID, models.AuditActionCreate,
		audit.Diff(nil, leadSnapshot(lead)), nil, models.ActorTypeSystem)

	return lead, nil
}

func (s *LeadService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Lead, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermLeadRead) {
		return nil, apperr.Forbidden("missing lead:read permission")
	}
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (s *LeadService) List(ctx context.Context, actor Actor, f repositories.LeadFilter) ([]models.Lead, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermLeadRead) {
		return nil, apperr.Forbidden("missing lead:read permission")
	}
	// Agents only see their own book; elevated roles see everything.
	if !rbac.IsElevated(actor.Role) && actor.Role != rbac.RoleCoordinator {
		f.AssignedAgentID = &actor.ID
	}
	leads, err := s.leadRepo.List(ctx, f)
	if err != nil {
		s.log.Error("lead list failed", zap.Error(err))
		return nil, apperr.Internal("could not list leads")
	}
	return leads, nil
}

type UpdateLeadInput struct {
	Name        *string
	Phone       *string
	Email       optional.Field[string] // null clears a stored email
	Status      *string
	Requirement *models.Requirement
	Contacted   bool // marks the lead as contacted now
}

func (s *LeadService) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateLeadInput) (*models.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("lead not found")
	}
	if !rbac.CanAccessResource(actor.Role, rbac.PermLeadUpdate, lead.AssignedAgentID, actor.ID) {
		return nil, apperr.Forbidden("not allowed to update this lead")
	}

	if input.Status != nil && !models.IsValidLeadStatus(*input.Status) {
		return nil, apperr.ValidationWithDetails("invalid lead", map[string]string{"status": "unknown status"})
	}

	oldSnapshot := leadSnapshot(lead)
	oldStatus := lead.Status

	if input.Name != nil {
		lead.Name = *input.Name
	}
	if input.Phone != nil {
		lead.Phone = *input.Phone
	}
	if input.Email.Set {
		lead.Email = input.Email.Value
	}
	if input.Requirement != nil {
		lead.Requirement = input.Requirement
	}
	if input.Status != nil {
		lead.Status = *input.Status
	}
	if input.Contacted {
		now := time.Now()
		lead.LastContactedAt = &now
	}

	changes := audit.Diff(oldSnapshot, leadSnapshot(lead))
	if changes == nil {
		return lead, nil
	}

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		s.log.Error("lead update failed", zap.String("lead_id", id.String()), zap.Error(err))
		return nil, apperr.Internal("could not update lead")
	}
	if lead.Status != oldStatus {
		_ = s.publisher.Publish(ctx, events.StreamEntity, events.Event{
			Type: events.EventLeadStatusChanged,
			Payload: map[string]any{
				"lead_id":    lead.ID.String(),
				"old_status": oldStatus,
				"new_status": lead.Status,
			},
		})
	}

	s.recorder.Record(ctx, models.EntityTypeLead, lead.ID, models.AuditActionUpdate,
		changes, &actor.ID, models.ActorTypeUser)

	return lead, nil
}

func (s *LeadService) Assign(ctx context.Context, actor Actor, id uuid.UUID, agentID *uuid.UUID) (*models.Lead, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermLeadAssign) {
		return nil, apperr.Forbidden("missing lead:assign permission")
	}
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("lead not found")
	}

	changes := audit.Diff(
		map[string]any{"assigned_agent_id": lead.AssignedAgentID},
		map[string]any{"assigned_agent_id": agentID},
	)
	if changes == nil {
		return lead, nil
	}

	if err := s.leadRepo.Assign(ctx, id, agentID); err != nil {
		s.log.Error("lead assign failed", zap.String("lead_id", id.String()), zap.Error(err))
		return nil, apperr.Internal("could not assign lead")
	}
	lead.AssignedAgentID = agentID

	s.recorder.Record(ctx, models.EntityTypeLead, lead.ID, models.AuditActionUpdate,
		changes, &actor.ID, models.ActorTypeUser)

	payload := map[string]any{"lead_id": lead.ID.String()}
	if agentID != nil {
		payload["agent_id"] = agentID.String()
	}
	_ = s.publisher.Publish(ctx, events.StreamEntity, events.Event{Type: events.EventLeadAssigned, Payload: payload})

	return lead, nil
}

// Delete soft-deletes. Leads are never hard-deleted.
func (s *LeadService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !rbac.HasPermission(actor.Role, rbac.PermLeadDelete) {
		return apperr.Forbidden("missing lead:delete permission")
	}
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		return apperr.NotFound("lead not found")
	}
	if err := s.leadRepo.SoftDelete(ctx, id); err != nil {
		s.log.Error("lead delete failed", zap.String("lead_id", id.String()), zap.Error(err))
		return apperr.Internal("could not delete lead")
	}

	s.recorder.Record(ctx, models.EntityTypeLead, lead.ID, models.AuditActionDelete,
		models.ChangeSet{"deleted_at": {Old: nil, New: time.Now()}}, &actor.ID, models.ActorTypeUser)

	return nil
}
