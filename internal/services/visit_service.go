package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/estate-backoffice/backend/internal/apperr"
	"github.com/estate-backoffice/backend/internal/audit"
	"github.com/estate-backoffice/backend/internal/events"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/rbac"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VisitStore is the visit persistence the workflow drives. Reschedule is
// atomic: the replacement insert and the original's cancellation commit
// together or not at all.
type VisitStore interface {
	Create(ctx context.Context, v *models.Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Visit, error)
	List(ctx context.Context, f repositories.VisitFilter) ([]models.Visit, error)
	Confirm(ctx context.Context, id uuid.UUID, at time.Time) error
	Cancel(ctx context.Context, id uuid.UUID, at time.Time, dropReason string) error
	Reschedule(ctx context.Context, original *models.Visit, newScheduledAt time.Time, otpCode *string) (*models.Visit, error)
	Complete(ctx context.Context, id uuid.UUID, at time.Time, c repositories.VisitCompletion) error
}

// VisitLeadStore is the slice of the lead repository a booking touches.
type VisitLeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type VisitService struct {
	visitRepo VisitStore
	leadRepo  VisitLeadStore
	recorder  *audit.Recorder
	publisher events.Publisher
	log       *zap.Logger
}

func NewVisitService(visitRepo VisitStore, leadRepo VisitLeadStore, recorder *audit.Recorder, publisher events.Publisher, log *zap.Logger) *VisitService {
	return &VisitService{visitRepo: visitRepo, leadRepo: leadRepo, recorder: recorder, publisher: publisher, log: log}
}

func visitSnapshot(v *models.Visit) map[string]any {
	return map[string]any{
		"lead_id":                   v.LeadID.String(),
		"listing_id":                v.ListingID.String(),
		"status":                    v.Status,
		"scheduled_at":              v.ScheduledAt,
		"visit_confirmed":           v.VisitConfirmed,
		"visit_canceled":            v.VisitCanceled,
		"visit_completed":           v.VisitCompleted,
		"drop_reason":               v.DropReason,
		"rescheduled_from_visit_id": v.RescheduledFromVisitID,
	}
}

func genOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

func (s *VisitService) Create(ctx context.Context, actor Actor, leadID, listingID uuid.UUID, scheduledAt time.Time) (*models.Visit, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermVisitCreate) {
		return nil, apperr.Forbidden("missing visit:create permission")
	}
	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		return nil, apperr.NotFound("lead not found")
	}
	if scheduledAt.Before(time.Now()) {
		return nil, apperr.ValidationWithDetails("invalid visit", map[string]string{"scheduled_at": "must be in the future"})
	}

	otp := genOTP()
	visit := &models.Visit{
		LeadID:      leadID,
		ListingID:   listingID,
		Status:      models.VisitStatusPending,
		ScheduledAt: scheduledAt,
		OTPCode:     &otp,
	}
	if err := s.visitRepo.Create(ctx, visit); err != nil {
		s.log.Error("visit create failed", zap.Error(err))
		return nil, apperr.Internal("could not create visit")
	}

	// Booking a visit promotes the lead into the visitor pipeline.
	if lead.Status == models.LeadStatusNew || lead.Status == models.LeadStatusContacted || lead.Status == models.LeadStatusAtRisk {
		oldStatus := lead.Status
		if err := s.leadRepo.UpdateStatus(ctx, leadID, models.LeadStatusActiveVisitor); err == nil {
			s.recorder.Record(ctx, models.EntityTypeLead, leadID, models.AuditActionUpdate,
				models.ChangeSet{"status": {Old: oldStatus, New: models.LeadStatusActiveVisitor}}, &actor.ID, models.ActorTypeUser)
		}
	}

	s.recorder.Record(ctx, models.EntityTypeVisit, visit.ID, models.AuditActionCreate,
		audit.Diff(nil, visitSnapshot(visit)), &actor.ID, models.ActorTypeUser)

	return visit, nil
}

func (s *VisitService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Visit, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermVisitRead) {
		return nil, apperr.Forbidden("missing visit:read permission")
	}
	visit, err := s.visitRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("visit not found")
	}
	return visit, nil
}

func (s *VisitService) List(ctx context.Context, actor Actor, f repositories.VisitFilter) ([]models.Visit, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermVisitRead) {
		return nil, apperr.Forbidden("missing visit:read permission")
	}
	visits, err := s.visitRepo.List(ctx, f)
	if err != nil {
		s.log.Error("visit list failed", zap.Error(err))
		return nil, apperr.Internal("could not list visits")
	}
	return visits, nil
}

// VisitActionInput carries the per-action payload; which fields matter
// depends on the action.
type VisitActionInput struct {
	DropReason       *string
	NewScheduledAt   *time.Time
	Latitude         *float64
	Longitude        *float64
	OTPCode          *string
	Rating           *int
	BuyerScore       *int
	PrimaryPainPoint *string
	Feedback         *string
}

// Perform executes one of the four workflow actions. The action set is
// closed: anything else is a validation error.
func (s *VisitService) Perform(ctx context.Context, actor Actor, id uuid.UUID, action string, input VisitActionInput) (*models.Visit, error) {
	if !models.IsValidVisitAction(action) {
		return nil, apperr.Validation(fmt.Sprintf("unknown visit action %q", action))
	}
	if !rbac.HasPermission(actor.Role, rbac.PermVisitUpdate) {
		return nil, apperr.Forbidden("missing visit:update permission")
	}
	visit, err := s.visitRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("visit not found")
	}

	switch action {
	case models.VisitActionConfirm:
		return s.confirm(ctx, actor, visit)
	case models.VisitActionCancel:
		return s.cancel(ctx, actor, visit, input)
	case models.VisitActionReschedule:
		return s.reschedule(ctx, actor, visit, input)
	case models.VisitActionComplete:
		return s.complete(ctx, actor, visit, input)
	default:
		return nil, apperr.Validation(fmt.Sprintf("unknown visit action %q", action))
	}
}

func (s *VisitService) confirm(ctx context.Context, actor Actor, visit *models.Visit) (*models.Visit, error) {
	if visit.Status != models.VisitStatusPending && visit.Status != models.VisitStatusScheduled {
		return nil, apperr.Validation(fmt.Sprintf("visit cannot be confirmed from status %q", visit.Status))
	}

	old := visitSnapshot(visit)
	now := time.Now()
	if err := s.visitRepo.Confirm(ctx, visit.ID, now); err != nil {
		s.log.Error("visit confirm failed", zap.String("visit_id", visit.ID.String()), zap.Error(err))
		return nil, apperr.Internal("could not confirm visit")
	}
	oldStatus := visit.Status
	visit.VisitConfirmed = true
	visit.ConfirmedAt = &now
	visit.Status = models.VisitStatusScheduled

	s.recorder.Record(ctx, models.EntityTypeVisit, visit.ID, models.AuditActionUpdate,
		audit.Diff(old, visitSnapshot(visit)), &actor.ID, models.ActorTypeUser)
	s.publishStatus(ctx, visit, oldStatus)
	return visit, nil
}

func (s *VisitService) cancel(ctx context.Context, actor Actor, visit *models.Visit, input VisitActionInput) (*models.Visit, error) {
	if input.DropReason == nil || *input.DropReason == "" {
		return nil, apperr.ValidationWithDetails("invalid cancellation", map[string]string{"drop_reason": "required"})
	}
	if !models.IsValidVisitTransition(visit.Status, models.VisitStatusCancelled) {
		return nil, apperr.Validation(fmt.Sprintf("visit cannot be cancelled from status %q", visit.Status))
	}

	old := visitSnapshot(visit)
	now := time.Now()
	if err := s.visitRepo.Cancel(ctx, visit.ID, now, *input.DropReason); err != nil {
		s.log.Error("visit cancel failed", zap.String("visit_id", visit.ID.String()), zap.Error(err))
		return nil, apperr.Internal("could not cancel visit")
	}
	oldStatus := visit.Status
	visit.VisitCanceled = true
	visit.CanceledAt = &now
	visit.DropReason = input.DropReason
	visit.Status = models.VisitStatusCancelled

	s.recorder.Record(ctx, models.EntityTypeVisit, visit.ID, models.AuditActionUpdate,
		audit.Diff(old, visitSnapshot(visit)), &actor.ID, models.ActorTypeUser)
	s.publishStatus(ctx, visit, oldStatus)
	return visit, nil
}

// reschedule never moves the existing visit: the original is cancelled and a
// replacement row is inserted pointing back at it, both in one transaction.
func (s *VisitService) reschedule(ctx context.Context, actor Actor, visit *models.Visit, input VisitActionInput) (*models.Visit, error) {
	if input.NewScheduledAt == nil {
		return nil, apperr.ValidationWithDetails("invalid reschedule", map[string]string{"new_scheduled_at": "required"})
	}
	if visit.Status == models.VisitStatusCompleted || visit.Status == models.VisitStatusCancelled {
		return nil, apperr.Validation(fmt.Sprintf("visit cannot be rescheduled from status %q", visit.Status))
	}

	oldOriginal := visitSnapshot(visit)
	otp := genOTP()
	replacement, err := s.visitRepo.Reschedule(ctx, visit, *input.NewScheduledAt, &otp)
	if err != nil {
		s.log.Error("visit reschedule failed", zap.String("visit_id", visit.ID.String()), zap.Error(err))
		return nil, apperr.Internal("could not reschedule visit")
	}
	oldStatus := visit.Status
	now := time.Now()
	visit.VisitCanceled = true
	visit.CanceledAt = &now
	visit.Status = models.VisitStatusCancelled

	s.recorder.Record(ctx, models.EntityTypeVisit, replacement.ID, models.AuditActionCreate,
		audit.Diff(nil, visitSnapshot(replacement)), &actor.ID, models.ActorTypeUser)
	s.recorder.Record(ctx, models.EntityTypeVisit, visit.ID, models.AuditActionUpdate,
		audit.Diff(oldOriginal, visitSnapshot(visit)), &actor.ID, models.ActorTypeUser)
	s.publishStatus(ctx, visit, oldStatus)

	return replacement, nil
}

func (s *VisitService) complete(ctx context.Context, actor Actor, visit *models.Visit, input VisitActionInput) (*models.Visit, error) {
	details := map[string]string{}
	if input.Latitude == nil || input.Longitude == nil {
		details["location"] = "latitude and longitude are required"
	}
	if input.OTPCode == nil || *input.OTPCode == "" {
		details["otp_code"] = "required"
	}
	if len(details) > 0 {
		return nil, apperr.ValidationWithDetails("invalid completion", details)
	}
	if !models.IsValidVisitTransition(visit.Status, models.VisitStatusCompleted) {
		return nil, apperr.Validation(fmt.Sprintf("visit cannot be completed from status %q", visit.Status))
	}
	if visit.OTPCode == nil || *visit.OTPCode != *input.OTPCode {
		return nil, apperr.Validation("otp verification failed")
	}

	old := visitSnapshot(visit)
	now := time.Now()
	completion := repositories.VisitCompletion{
		Latitude:         *input.Latitude,
		Longitude:        *input.Longitude,
		Rating:           input.Rating,
		BuyerScore:       input.BuyerScore,
		PrimaryPainPoint: input.PrimaryPainPoint,
		Feedback:         input.Feedback,
	}
	if err := s.visitRepo.Complete(ctx, visit.ID, now, completion); err != nil {
		s.log.Error("visit complete failed", zap.String("visit_id", visit.ID.String()), zap.Error(err))
		return nil, apperr.Internal("could not complete visit")
	}
	oldStatus := visit.Status
	visit.VisitCompleted = true
	visit.CompletedAt = &now
	visit.Status = models.VisitStatusCompleted
	visit.OTPVerified = true
	visit.Latitude = input.Latitude
	visit.Longitude = input.Longitude
	visit.Rating = input.Rating
	visit.BuyerScore = input.BuyerScore
	visit.PrimaryPainPoint = input.PrimaryPainPoint
	visit.Feedback = input.Feedback

	s.recorder.Record(ctx, models.EntityTypeVisit, visit.ID, models.AuditActionUpdate,
		audit.Diff(old, visitSnapshot(visit)), &actor.ID, models.ActorTypeUser)
	s.publishStatus(ctx, visit, oldStatus)
	return visit, nil
}

func (s *VisitService) publishStatus(ctx context.Context, visit *models.Visit, oldStatus string) {
	_ = s.publisher.Publish(ctx, events.StreamEntity, events.Event{
		Type: events.EventVisitStatusChanged,
		Payload: map[string]any{
			"visit_id":   visit.ID.String(),
			"lead_id":    visit.LeadID.String(),
			"old_status": oldStatus,
			"new_status": visit.Status,
		},
	})
}
