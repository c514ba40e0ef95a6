package services

import (
	"context"
	"fmt"
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

type ListingService struct {
	repo      *repositories.ListingRepo
	recorder  *audit.Recorder
	publisher events.Publisher
	log       *zap.Logger
}

func NewListingService(repo *repositories.ListingRepo, recorder *audit.Recorder, publisher events.Publisher, log *zap.Logger) *ListingService {
	return &ListingService{repo: repo, recorder: recorder, publisher: publisher, log: log}
}

func listingSnapshot(l *models.Listing) map[string]any {
	return map[string]any{
		"unit_number":   l.UnitNumber,
		"building_id":   l.BuildingID.String(),
		"status":        l.Status,
		"asking_price":  l.AskingPrice,
		"owner_user_id": l.OwnerUserID,
		"published_at":  l.PublishedAt,
	}
}

type CreateListingInput struct {
	UnitNumber  string
	BuildingID  uuid.UUID
	AskingPrice int64
	OwnerUserID *uuid.UUID
}

func (s *ListingService) Create(ctx context.Context, actor Actor, input CreateListingInput) (*models.Listing, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermListingCreate) {
		return nil, apperr.Forbidden("missing listing:create permission")
	}

	details := map[string]string{}
	if input.UnitNumber == "" {
		details["unit_number"] = "required"
	}
	if input.AskingPrice <= 0 {
		details["asking_price"] = "must be positive"
	}
	if len(details) > 0 {
		return nil, apperr.ValidationWithDetails("invalid listing", details)
	}

	listing := &models.Listing{
		UnitNumber:  input.UnitNumber,
		BuildingID:  input.BuildingID,
		Status:      models.ListingStatusDraft,
		AskingPrice: input.AskingPrice,
		OwnerUserID: input.OwnerUserID,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		s.log.Error("listing create failed", zap.Error(err))
		return nil, apperr.Internal("could not create listing")
	}

	s.recorder.Record(ctx, models.EntityTypeListing, listing.ID, models.AuditActionCreate,
		audit.Diff(nil, listingSnapshot(listing)), &actor.ID, models.ActorTypeUser)

	return listing, nil
}

func (s *ListingService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Listing, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermListingRead) {
		return nil, apperr.Forbidden("missing listing:read permission")
	}
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("listing not found")
	}
	return listing, nil
}

func (s *ListingService) List(ctx context.Context, actor Actor, f repositories.ListingFilter) ([]models.Listing, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermListingRead) {
		return nil, apperr.Forbidden("missing listing:read permission")
	}
	listings, err := s.repo.List(ctx, f)
	if err != nil {
		s.log.Error("listing list failed", zap.Error(err))
		return nil, apperr.Internal("could not list listings")
	}
	return listings, nil
}

type UpdateListingInput struct {
	UnitNumber  *string
	AskingPrice *int64
}

func (s *ListingService) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateListingInput) (*models.Listing, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermListingUpdate) {
		return nil, apperr.Forbidden("missing listing:update permission")
	}
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("listing not found")
	}

	old := listingSnapshot(listing)
	if input.UnitNumber != nil {
		listing.UnitNumber = *input.UnitNumber
	}
	if input.AskingPrice != nil {
		if *input.AskingPrice <= 0 {
			return nil, apperr.ValidationWithDetails("invalid listing", map[string]string{"asking_price": "must be positive"})
		}
		listing.AskingPrice = *input.AskingPrice
	}

	changes := audit.Diff(old, listingSnapshot(listing))
	if changes == nil {
		return listing, nil
	}

	if err := s.repo.Update(ctx, listing); err != nil {
		s.log.Error("listing update failed", zap.String("listing_id", id.String()), zap.Error(err))
		return nil, apperr.Internal("could not update listing")
	}

	s.recorder.Record(ctx, models.EntityTypeListing, listing.ID, models.AuditActionUpdate,
		changes, &actor.ID, models.ActorTypeUser)

	return listing, nil
}

// Transition moves a listing along its workflow. Every hop is checked against
// the transition table; sold and delisted are dead ends.
func (s *ListingService) Transition(ctx context.Context, actor Actor, id uuid.UUID, target string) (*models.Listing, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermListingUpdate) {
		return nil, apperr.Forbidden("missing listing:update permission")
	}
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("listing not found")
	}
	if !models.IsValidListingTransition(listing.Status, target) {
		return nil, apperr.Validation(fmt.Sprintf("listing cannot move from %q to %q", listing.Status, target))
	}

	oldStatus := listing.Status
	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		s.log.Error("listing transition failed", zap.String("listing_id", id.String()), zap.Error(err))
		return nil, apperr.Internal("could not update listing")
	}
	listing.Status = target

	s.recorder.Record(ctx, models.EntityTypeListing, listing.ID, models.AuditActionUpdate,
		models.ChangeSet{"status": {Old: oldStatus, New: target}}, &actor.ID, models.ActorTypeUser)
	s.publishStatus(ctx, listing, oldStatus)

	return listing, nil
}

// ---- Inspections ----

func (s *ListingService) RequestInspection(ctx context.Context, actor Actor, listingID uuid.UUID, inspectorID *uuid.UUID) (*models.Inspection, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermInspectionUpdate) {
		return nil, apperr.Forbidden("missing inspection:update permission")
	}
	listing, err := s.repo.GetByID(ctx, listingID)
	if err != nil {
		return nil, apperr.NotFound("listing not found")
	}
	if !models.IsValidListingTransition(listing.Status, models.ListingStatusInspectionPending) {
		return nil, apperr.Validation(fmt.Sprintf("listing cannot enter inspection from status %q", listing.Status))
	}

	inspection := &models.Inspection{
		ListingID:   listingID,
		Status:      models.InspectionStatusPending,
		InspectorID: inspectorID,
	}
	if err := s.repo.CreateInspection(ctx, inspection); err != nil {
		s.log.Error("inspection create failed", zap.String("listing_id", listingID.String()), zap.Error(err))
		return nil, apperr.Internal("could not create inspection")
	}
	oldStatus := listing.Status
	if err := s.repo.UpdateStatus(ctx, listingID, models.ListingStatusInspectionPending); err != nil {
		s.log.Error("listing status update failed", zap.String("listing_id", listingID.String()), zap.Error(err))
		return nil, apperr.Internal("could not update listing")
	}
	listing.Status = models.ListingStatusInspectionPending

	s.recorder.Record(ctx, models.EntityTypeInspection, inspection.ID, models.AuditActionCreate,
		models.ChangeSet{"status": {Old: nil, New: inspection.Status}, "listing_id": {Old: nil, New: listingID.String()}},
		&actor.ID, models.ActorTypeUser)
	s.recorder.Record(ctx, models.EntityTypeListing, listingID, models.AuditActionUpdate,
		models.ChangeSet{"status": {Old: oldStatus, New: listing.Status}}, &actor.ID, models.ActorTypeUser)
	s.publishStatus(ctx, listing, oldStatus)

	return inspection, nil
}

// CompleteInspection closes the inspection and advances the listing to
// cataloguing.
func (s *ListingService) CompleteInspection(ctx context.Context, actor Actor, inspectionID uuid.UUID, notes *string) (*models.Inspection, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermInspectionUpdate) {
		return nil, apperr.Forbidden("missing inspection:update permission")
	}
	inspection, err := s.repo.GetInspectionByID(ctx, inspectionID)
	if err != nil {
		return nil, apperr.NotFound("inspection not found")
	}
	if inspection.Status == models.InspectionStatusCompleted {
		return nil, apperr.Conflict("inspection is already completed")
	}

	now := time.Now()
	if err := s.repo.CompleteInspection(ctx, inspectionID, notes, now); err != nil {
		s.log.Error("inspection complete failed", zap.String("inspection_id", inspectionID.String()), zap.Error(err))
		return nil, apperr.Internal("could not complete inspection")
	}
	inspection.Status = models.InspectionStatusCompleted
	inspection.Notes = notes
	inspection.CompletedAt = &now

	s.recorder.Record(ctx, models.EntityTypeInspection, inspection.ID, models.AuditActionUpdate,
		models.ChangeSet{"status": {Old: models.InspectionStatusPending, New: models.InspectionStatusCompleted}},
		&actor.ID, models.ActorTypeUser)

	listing, err := s.repo.GetByID(ctx, inspection.ListingID)
	if err == nil && models.IsValidListingTransition(listing.Status, models.ListingStatusCataloguingPending) {
		oldStatus := listing.Status
		if err := s.repo.UpdateStatus(ctx, listing.ID, models.ListingStatusCataloguingPending); err == nil {
			listing.Status = models.ListingStatusCataloguingPending
			s.recorder.Record(ctx, models.EntityTypeListing, listing.ID, models.AuditActionUpdate,
				models.ChangeSet{"status": {Old: oldStatus, New: listing.Status}}, &actor.ID, models.ActorTypeUser)
			s.publishStatus(ctx, listing, oldStatus)
		}
	}

	return inspection, nil
}

// ---- Catalogues ----

func (s *ListingService) SubmitCatalogue(ctx context.Context, actor Actor, listingID uuid.UUID) (*models.Catalogue, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermCatalogueReview) {
		return nil, apperr.Forbidden("missing catalogue:review permission")
	}
	listing, err := s.repo.GetByID(ctx, listingID)
	if err != nil {
		return nil, apperr.NotFound("listing not found")
	}
	if listing.Status != models.ListingStatusCataloguingPending {
		return nil, apperr.Validation(fmt.Sprintf("catalogue cannot be submitted while listing is %q", listing.Status))
	}

	catalogue := &models.Catalogue{
		ListingID: listingID,
		Status:    models.CatalogueStatusPending,
	}
	if err := s.repo.CreateCatalogue(ctx, catalogue); err != nil {
		s.log.Error("catalogue create failed", zap.String("listing_id", listingID.String()), zap.Error(err))
		return nil, apperr.Internal("could not create catalogue")
	}

	s.recorder.Record(ctx, models.EntityTypeCatalogue, catalogue.ID, models.AuditActionCreate,
		models.ChangeSet{"status": {Old: nil, New: catalogue.Status}, "listing_id": {Old: nil, New: listingID.String()}},
		&actor.ID, models.ActorTypeUser)

	return catalogue, nil
}

// ReviewCatalogue approves or rejects. Approval publishes the listing;
// rejection keeps it in cataloguing so a fixed catalogue can be resubmitted.
func (s *ListingService) ReviewCatalogue(ctx context.Context, actor Actor, catalogueID uuid.UUID, approve bool, rejectReason *string) (*models.Catalogue, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermCatalogueReview) {
		return nil, apperr.Forbidden("missing catalogue:review permission")
	}
	catalogue, err := s.repo.GetCatalogueByID(ctx, catalogueID)
	if err != nil {
		return nil, apperr.NotFound("catalogue not found")
	}
	if catalogue.Status != models.CatalogueStatusPending {
		return nil, apperr.Conflict("catalogue is already reviewed")
	}
	if !approve && (rejectReason == nil || *rejectReason == "") {
		return nil, apperr.ValidationWithDetails("invalid review", map[string]string{"reject_reason": "required on rejection"})
	}

	target := models.CatalogueStatusApproved
	if !approve {
		target = models.CatalogueStatusRejected
	}
	now := time.Now()
	if err := s.repo.ReviewCatalogue(ctx, catalogueID, target, actor.ID, rejectReason, now); err != nil {
		s.log.Error("catalogue review failed", zap.String("catalogue_id", catalogueID.String()), zap.Error(err))
		return nil, apperr.Internal("could not review catalogue")
	}
	catalogue.Status = target
	catalogue.ReviewerID = &actor.ID
	catalogue.RejectReason = rejectReason
	catalogue.ReviewedAt = &now

	s.recorder.Record(ctx, models.EntityTypeCatalogue, catalogue.ID, models.AuditActionUpdate,
		models.ChangeSet{"status": {Old: models.CatalogueStatusPending, New: target}}, &actor.ID, models.ActorTypeUser)

	if approve {
		listing, err := s.repo.GetByID(ctx, catalogue.ListingID)
		if err == nil && models.IsValidListingTransition(listing.Status, models.ListingStatusActive) {
			oldStatus := listing.Status
			if err := s.repo.MarkPublished(ctx, listing.ID, now); err == nil {
				listing.Status = models.ListingStatusActive
				s.recorder.Record(ctx, models.EntityTypeListing, listing.ID, models.AuditActionUpdate,
					models.ChangeSet{
						"status":       {Old: oldStatus, New: models.ListingStatusActive},
						"published_at": {Old: nil, New: now},
					}, &actor.ID, models.ActorTypeUser)
				s.publishStatus(ctx, listing, oldStatus)
			}
		}
	}

	return catalogue, nil
}

func (s *ListingService) publishStatus(ctx context.Context, listing *models.Listing, oldStatus string) {
	_ = s.publisher.Publish(ctx, events.StreamEntity, events.Event{
		Type: events.EventListingStatusChanged,
		Payload: map[string]any{
			"listing_id": listing.ID.String(),
			"old_status": oldStatus,
			"new_status": listing.Status,
		},
	})
}
