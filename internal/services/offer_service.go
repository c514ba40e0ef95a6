package services

import (
	"context"
	"fmt"

	"github.com/estate-backoffice/backend/internal/apperr"
	"github.com/estate-backoffice/backend/internal/audit"
	"github.com/estate-backoffice/backend/internal/events"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/rbac"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OfferStore is the offer persistence the negotiation chain needs. Counter is
// atomic: the new pending row and the original's countered status commit
// together or not at all.
type OfferStore interface {
	Create(ctx context.Context, o *models.Offer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	List(ctx context.Context, f repositories.OfferFilter) ([]models.Offer, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Counter(ctx context.Context, original *models.Offer, amount int64, terms *string) (*models.Offer, error)
}

// OfferListingStore resolves and settles the listing an offer points at.
type OfferListingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type OfferService struct {
	offerRepo   OfferStore
	listingRepo OfferListingStore
	recorder    *audit.Recorder
	publisher   events.Publisher
	log         *zap.Logger
}

func NewOfferService(offerRepo OfferStore, listingRepo OfferListingStore, recorder *audit.Recorder, publisher events.Publisher, log *zap.Logger) *OfferService {
	return &OfferService{offerRepo: offerRepo, listingRepo: listingRepo, recorder: recorder, publisher: publisher, log: log}
}

func offerSnapshot(o *models.Offer) map[string]any {
	return map[string]any{
		"listing_id":          o.ListingID.String(),
		"lead_id":             o.LeadID.String(),
		"status":              o.Status,
		"amount":              o.Amount,
		"terms":               o.Terms,
		"counter_of_offer_id": o.CounterOfOfferID,
	}
}

type CreateOfferInput struct {
	ListingID uuid.UUID
	LeadID    uuid.UUID
	Amount    int64
	Terms     *string
}

func (s *OfferService) Create(ctx context.Context, actor Actor, input CreateOfferInput) (*models.Offer, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermOfferCreate) {
		return nil, apperr.Forbidden("missing offer:create permission")
	}
	if input.Amount <= 0 {
		return nil, apperr.ValidationWithDetails("invalid offer", map[string]string{"amount": "must be positive"})
	}
	listing, err := s.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		return nil, apperr.NotFound("listing not found")
	}
	if listing.Status != models.ListingStatusActive {
		return nil, apperr.Validation("offers can only be made on active listings")
	}

	offer := &models.Offer{
		ListingID: input.ListingID,
		LeadID:    input.LeadID,
		Status:    models.OfferStatusPending,
		Amount:    input.Amount,
		Terms:     input.Terms,
	}
	if err := s.offerRepo.Create(ctx, offer); err != nil {
		s.log.Error("offer create failed", zap.Error(err))
		return nil, apperr.Internal("could not create offer")
	}

	s.recorder.Record(ctx, models.EntityTypeOffer, offer.ID, models.AuditActionCreate,
		audit.Diff(nil, offerSnapshot(offer)), &actor.ID, models.ActorTypeUser)

	return offer, nil
}

func (s *OfferService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Offer, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermOfferRead) {
		return nil, apperr.Forbidden("missing offer:read permission")
	}
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("offer not found")
	}
	return offer, nil
}

func (s *OfferService) List(ctx context.Context, actor Actor, f repositories.OfferFilter) ([]models.Offer, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermOfferRead) {
		return nil, apperr.Forbidden("missing offer:read permission")
	}
	offers, err := s.offerRepo.List(ctx, f)
	if err != nil {
		s.log.Error("offer list failed", zap.Error(err))
		return nil, apperr.Internal("could not list offers")
	}
	return offers, nil
}

// Accept resolves a pending offer and marks the listing sold.
func (s *OfferService) Accept(ctx context.Context, actor Actor, id uuid.UUID) (*models.Offer, error) {
	return s.decide(ctx, actor, id, models.OfferStatusAccepted)
}

func (s *OfferService) Reject(ctx context.Context, actor Actor, id uuid.UUID) (*models.Offer, error) {
	return s.decide(ctx, actor, id, models.OfferStatusRejected)
}

func (s *OfferService) decide(ctx context.Context, actor Actor, id uuid.UUID, target string) (*models.Offer, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermOfferDecide) {
		return nil, apperr.Forbidden("missing offer:decide permission")
	}
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("offer not found")
	}
	if !models.IsValidOfferTransition(offer.Status, target) {
		return nil, apperr.Validation(fmt.Sprintf("offer cannot move from %q to %q", offer.Status, target))
	}

	old := offerSnapshot(offer)
	if err := s.offerRepo.UpdateStatus(ctx, id, target); err != nil {
		s.log.Error("offer decide failed", zap.String("offer_id", id.String()), zap.Error(err))
		return nil, apperr.Internal("could not update offer")
	}
	oldStatus := offer.Status
	offer.Status = target

	if target == models.OfferStatusAccepted {
		listing, err := s.listingRepo.GetByID(ctx, offer.ListingID)
		if err == nil && models.IsValidListingTransition(listing.Status, models.ListingStatusSold) {
			if err := s.listingRepo.UpdateStatus(ctx, listing.ID, models.ListingStatusSold); err != nil {
				s.log.Error("listing sold update failed", zap.String("listing_id", listing.ID.String()), zap.Error(err))
			} else {
				s.recorder.Record(ctx, models.EntityTypeListing, listing.ID, models.AuditActionUpdate,
					models.ChangeSet{"status": {Old: listing.Status, New: models.ListingStatusSold}}, &actor.ID, models.ActorTypeUser)
			}
		}
	}

	s.recorder.Record(ctx, models.EntityTypeOffer, offer.ID, models.AuditActionUpdate,
		audit.Diff(old, offerSnapshot(offer)), &actor.ID, models.ActorTypeUser)
	s.publishStatus(ctx, offer, oldStatus)

	return offer, nil
}

// Counter answers a pending offer with a new pending offer. The original is
// frozen at countered and its amount never changes.
func (s *OfferService) Counter(ctx context.Context, actor Actor, id uuid.UUID, amount int64, terms *string) (*models.Offer, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermOfferDecide) {
		return nil, apperr.Forbidden("missing offer:decide permission")
	}
	if amount <= 0 {
		return nil, apperr.ValidationWithDetails("invalid counter", map[string]string{"amount": "must be positive"})
	}
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("offer not found")
	}
	if !models.IsValidOfferTransition(offer.Status, models.OfferStatusCountered) {
		return nil, apperr.Validation(fmt.Sprintf("offer cannot be countered from status %q", offer.Status))
	}

	oldOriginal := offerSnapshot(offer)
	counter, err := s.offerRepo.Counter(ctx, offer, amount, terms)
	if err != nil {
		s.log.Error("offer counter failed", zap.String("offer_id", id.String()), zap.Error(err))
		return nil, apperr.Internal("could not counter offer")
	}
	oldStatus := offer.Status
	offer.Status = models.OfferStatusCountered

	s.recorder.Record(ctx, models.EntityTypeOffer, counter.ID, models.AuditActionCreate,
		audit.Diff(nil, offerSnapshot(counter)), &actor.ID, models.ActorTypeUser)
	s.recorder.Record(ctx, models.EntityTypeOffer, offer.ID, models.AuditActionUpdate,
		audit.Diff(oldOriginal, offerSnapshot(offer)), &actor.ID, models.ActorTypeUser)
	s.publishStatus(ctx, offer, oldStatus)

	return counter, nil
}

func (s *OfferService) publishStatus(ctx context.Context, offer *models.Offer, oldStatus string) {
	_ = s.publisher.Publish(ctx, events.StreamEntity, events.Event{
		Type: events.EventOfferStatusChanged,
		Payload: map[string]any{
			"offer_id":   offer.ID.String(),
			"listing_id": offer.ListingID.String(),
			"old_status": oldStatus,
			"new_status": offer.Status,
		},
	})
}
