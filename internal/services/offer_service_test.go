package services

import (
	"context"
	"errors"
	"testing"

	"github.com/estate-backoffice/backend/internal/apperr"
	"github.com/estate-backoffice/backend/internal/audit"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/rbac"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeOfferStore struct {
	offers map[uuid.UUID]*models.Offer
}

func newFakeOfferStore() *fakeOfferStore {
	return &fakeOfferStore{offers: map[uuid.UUID]*models.Offer{}}
}

func (f *fakeOfferStore) seed(o models.Offer) uuid.UUID {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	f.offers[o.ID] = &o
	return o.ID
}

func (f *fakeOfferStore) Create(ctx context.Context, o *models.Offer) error {
	o.ID = uuid.New()
	cp := *o
	f.offers[o.ID] = &cp
	return nil
}

func (f *fakeOfferStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	o, ok := f.offers[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOfferStore) List(ctx context.Context, _ repositories.OfferFilter) ([]models.Offer, error) {
	return nil, nil
}

func (f *fakeOfferStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	f.offers[id].Status = status
	return nil
}

// Counter mirrors the repo transaction: the counter row and the original's
// countered status change together, and the original amount is untouched.
func (f *fakeOfferStore) Counter(ctx context.Context, original *models.Offer, amount int64, terms *string) (*models.Offer, error) {
	counter := &models.Offer{
		ID:               uuid.New(),
		ListingID:        original.ListingID,
		LeadID:           original.LeadID,
		Status:           models.OfferStatusPending,
		Amount:           amount,
		Terms:            terms,
		CounterOfOfferID: &original.ID,
	}
	f.offers[counter.ID] = counter
	f.offers[original.ID].Status = models.OfferStatusCountered
	cp := *counter
	return &cp, nil
}

type fakeOfferListingStore struct {
	listings map[uuid.UUID]*models.Listing
}

func (f *fakeOfferListingStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *l
	return &cp, nil
}

func (f *fakeOfferListingStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	f.listings[id].Status = status
	return nil
}

func newOfferFixture(store *fakeOfferStore, listings *fakeOfferListingStore) (*OfferService, *fakeAuditStore, *fakePublisher) {
	auditStore := &fakeAuditStore{}
	publisher := &fakePublisher{}
	svc := NewOfferService(store, listings, audit.NewRecorder(auditStore, zap.NewNop()), publisher, zap.NewNop())
	return svc, auditStore, publisher
}

func TestOfferCounterAppendOnly(t *testing.T) {
	store := newFakeOfferStore()
	listingID := uuid.New()
	originalID := store.seed(models.Offer{
		ListingID: listingID,
		LeadID:    uuid.New(),
		Status:    models.OfferStatusPending,
		Amount:    9_000_000,
	})
	svc, auditStore, publisher := newOfferFixture(store, &fakeOfferListingStore{})
	actor := Actor{ID: uuid.New(), Role: rbac.RoleAgent}

	counter, err := svc.Counter(context.Background(), actor, originalID, 9_500_000, nil)
	if err != nil {
		t.Fatalf("Counter() error = %v", err)
	}

	if len(store.offers) != 2 {
		t.Fatalf("offers in store = %d, want exactly 2", len(store.offers))
	}
	if counter.Status != models.OfferStatusPending || counter.Amount != 9_500_000 {
		t.Errorf("counter = %q/%d, want pending/9500000", counter.Status, counter.Amount)
	}
	if counter.CounterOfOfferID == nil || *counter.CounterOfOfferID != originalID {
		t.Error("counter must point back at the original offer")
	}
	orig := store.offers[originalID]
	if orig.Status != models.OfferStatusCountered {
		t.Errorf("original status = %q, want countered", orig.Status)
	}
	if orig.Amount != 9_000_000 {
		t.Errorf("original amount = %d, want unchanged 9000000", orig.Amount)
	}
	if len(auditStore.entries) != 2 {
		t.Fatalf("audit entries = %d, want 2 (counter create + original update)", len(auditStore.entries))
	}
	if len(publisher.published) != 1 {
		t.Errorf("published events = %d, want 1", len(publisher.published))
	}
}

func TestOfferCounterTerminalRejected(t *testing.T) {
	store := newFakeOfferStore()
	id := store.seed(models.Offer{Status: models.OfferStatusAccepted, Amount: 100})
	svc, auditStore, _ := newOfferFixture(store, &fakeOfferListingStore{})
	actor := Actor{ID: uuid.New(), Role: rbac.RoleAgent}

	_, err := svc.Counter(context.Background(), actor, id, 200, nil)
	assertCategory(t, err, apperr.CategoryValidation)
	if len(store.offers) != 1 {
		t.Errorf("offers in store = %d, want 1 (no counter row)", len(store.offers))
	}
	if len(auditStore.entries) != 0 {
		t.Errorf("audit entries = %d, want 0", len(auditStore.entries))
	}
}

func TestOfferAcceptSellsListing(t *testing.T) {
	listingID := uuid.New()
	listings := &fakeOfferListingStore{listings: map[uuid.UUID]*models.Listing{
		listingID: {ID: listingID, Status: models.ListingStatusActive},
	}}
	store := newFakeOfferStore()
	offerID := store.seed(models.Offer{ListingID: listingID, Status: models.OfferStatusPending, Amount: 100})
	svc, auditStore, _ := newOfferFixture(store, listings)
	actor := Actor{ID: uuid.New(), Role: rbac.RoleTeamLead}

	offer, err := svc.Accept(context.Background(), actor, offerID)
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if offer.Status != models.OfferStatusAccepted {
		t.Errorf("offer status = %q, want accepted", offer.Status)
	}
	if got := listings.listings[listingID].Status; got != models.ListingStatusSold {
		t.Errorf("listing status = %q, want sold", got)
	}
	if len(auditStore.entries) != 2 {
		t.Errorf("audit entries = %d, want 2 (listing + offer)", len(auditStore.entries))
	}
}
