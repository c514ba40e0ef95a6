package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/estate-backoffice/backend/internal/audit"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/optional"
	"github.com/estate-backoffice/backend/internal/rbac"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeSellerLeadStore struct {
	leads       map[uuid.UUID]*models.SellerLead
	updateCalls int
}

func newFakeSellerLeadStore() *fakeSellerLeadStore {
	return &fakeSellerLeadStore{leads: map[uuid.UUID]*models.SellerLead{}}
}

func (f *fakeSellerLeadStore) seed(s models.SellerLead) uuid.UUID {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	f.leads[s.ID] = &s
	return s.ID
}

func (f *fakeSellerLeadStore) Create(ctx context.Context, s *models.SellerLead) error {
	s.ID = uuid.New()
	cp := *s
	f.leads[s.ID] = &cp
	return nil
}

func (f *fakeSellerLeadStore) GetByID(ctx context.Context, id uuid.UUID) (*models.SellerLead, error) {
	s, ok := f.leads[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSellerLeadStore) List(ctx context.Context, _ repositories.SellerLeadFilter) ([]models.SellerLead, error) {
	return nil, nil
}

func (f *fakeSellerLeadStore) Update(ctx context.Context, s *models.SellerLead) error {
	f.updateCalls++
	cp := *s
	f.leads[s.ID] = &cp
	return nil
}

func (f *fakeSellerLeadStore) LinkListing(ctx context.Context, id, listingID uuid.UUID) error {
	s := f.leads[id]
	s.ListingID = &listingID
	s.Status = models.SellerLeadStatusListed
	return nil
}

func (f *fakeSellerLeadStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	f.leads[id].DeletedAt = &now
	return nil
}

func newSellerLeadFixture(store *fakeSellerLeadStore) (*SellerLeadService, *fakeAuditStore) {
	auditStore := &fakeAuditStore{}
	svc := NewSellerLeadService(store, audit.NewRecorder(auditStore, zap.NewNop()), zap.NewNop())
	return svc, auditStore
}

func TestSellerLeadUpdateClearsOptionalFields(t *testing.T) {
	email := "owner@example.com"
	addr := "12 Hill Road"
	price := int64(20_000_000)
	store := newFakeSellerLeadStore()
	id := store.seed(models.SellerLead{
		Name:            "Owner",
		Phone:           "+919800000002",
		Email:           &email,
		Status:          models.SellerLeadStatusNew,
		PropertyAddress: &addr,
		ExpectedPrice:   &price,
	})
	svc, auditStore := newSellerLeadFixture(store)
	actor := Actor{ID: uuid.New(), Role: rbac.RoleAgent}

	lead, err := svc.Update(context.Background(), actor, id, UpdateSellerLeadInput{
		Email:           optional.Null[string](),
		PropertyAddress: optional.Null[string](),
		ExpectedPrice:   optional.Null[int64](),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if lead.Email != nil || lead.PropertyAddress != nil || lead.ExpectedPrice != nil {
		t.Errorf("optional fields = %v/%v/%v, want all cleared", lead.Email, lead.PropertyAddress, lead.ExpectedPrice)
	}
	stored := store.leads[id]
	if stored.Email != nil || stored.PropertyAddress != nil || stored.ExpectedPrice != nil {
		t.Error("cleared fields must be cleared in the store too")
	}
	if len(auditStore.entries) != 1 {
		t.Errorf("audit entries = %d, want 1", len(auditStore.entries))
	}
}

func TestSellerLeadUpdateStatusSingleWrite(t *testing.T) {
	store := newFakeSellerLeadStore()
	id := store.seed(models.SellerLead{Name: "Owner", Phone: "+919800000002", Status: models.SellerLeadStatusNew})
	svc, _ := newSellerLeadFixture(store)
	actor := Actor{ID: uuid.New(), Role: rbac.RoleAgent}

	status := models.SellerLeadStatusAgreementPending
	if _, err := svc.Update(context.Background(), actor, id, UpdateSellerLeadInput{Status: &status}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if store.updateCalls != 1 {
		t.Errorf("store writes = %d, want 1", store.updateCalls)
	}
	if store.leads[id].Status != models.SellerLeadStatusAgreementPending {
		t.Errorf("stored status = %q, want agreement_pending", store.leads[id].Status)
	}
}

func TestSellerLeadUpdateAbsentFieldsUntouched(t *testing.T) {
	email := "owner@example.com"
	store := newFakeSellerLeadStore()
	id := store.seed(models.SellerLead{Name: "Owner", Phone: "+919800000002", Email: &email, Status: models.SellerLeadStatusNew})
	svc, _ := newSellerLeadFixture(store)
	actor := Actor{ID: uuid.New(), Role: rbac.RoleAgent}

	name := "Owner Two"
	lead, err := svc.Update(context.Background(), actor, id, UpdateSellerLeadInput{Name: &name})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if lead.Email == nil || *lead.Email != "owner@example.com" {
		t.Error("email must survive an update that does not mention it")
	}
}
