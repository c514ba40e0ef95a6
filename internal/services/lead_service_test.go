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

type fakeLeadStore struct {
	leads       map[uuid.UUID]*models.Lead
	updateCalls int
}

func newFakeLeadStore() *fakeLeadStore {
	return &fakeLeadStore{leads: map[uuid.UUID]*models.Lead{}}
}

func (f *fakeLeadStore) seed(l models.Lead) uuid.UUID {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	f.leads[l.ID] = &l
	return l.ID
}

func (f *fakeLeadStore) Create(ctx context.Context, l *models.Lead) error {
	l.ID = uuid.New()
	cp := *l
	f.leads[l.ID] = &cp
	return nil
}

func (f *fakeLeadStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLeadStore) GetByPhone(ctx context.Context, phone string) (*models.Lead, error) {
	for _, l := range f.leads {
		if l.Phone == phone {
			cp := *l
			return &cp, nil
		}
	}
	return nil, errors.New("no rows")
}

func (f *fakeLeadStore) List(ctx context.Context, _ repositories.LeadFilter) ([]models.Lead, error) {
	return nil, nil
}

func (f *fakeLeadStore) Update(ctx context.Context, l *models.Lead) error {
	f.updateCalls++
	cp := *l
	f.leads[l.ID] = &cp
	return nil
}

func (f *fakeLeadStore) Assign(ctx context.Context, id uuid.UUID, agentID *uuid.UUID) error {
	f.leads[id].AssignedAgentID = agentID
	return nil
}

func (f *fakeLeadStore) TouchLastContacted(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.leads[id].LastContactedAt = &at
	return nil
}

func (f *fakeLeadStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	f.leads[id].DeletedAt = &now
	return nil
}

func newLeadFixture(store *fakeLeadStore) (*LeadService, *fakeAuditStore, *fakePublisher) {
	auditStore := &fakeAuditStore{}
	publisher := &fakePublisher{}
	svc := NewLeadService(store, audit.NewRecorder(auditStore, zap.NewNop()), publisher, zap.NewNop())
	return svc, auditStore, publisher
}

func TestLeadUpdateStatusSingleWrite(t *testing.T) {
	store := newFakeLeadStore()
	id := store.seed(models.Lead{Name: "Asha", Phone: "+919800000001", Status: models.LeadStatusContacted})
	svc, auditStore, publisher := newLeadFixture(store)
	actor := Actor{ID: uuid.New(), Role: rbac.RoleAgent}

	name := "Asha Rao"
	status := models.LeadStatusClosed
	lead, err := svc.Update(context.Background(), actor, id, UpdateLeadInput{Name: &name, Status: &status})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if store.updateCalls != 1 {
		t.Fatalf("store writes = %d, want 1 (profile and status in one statement)", store.updateCalls)
	}
	stored := store.leads[id]
	if stored.Name != "Asha Rao" || stored.Status != models.LeadStatusClosed {
		t.Errorf("stored lead = %q/%q, want both fields committed together", stored.Name, stored.Status)
	}
	if lead.Status != models.LeadStatusClosed {
		t.Errorf("returned status = %q, want closed", lead.Status)
	}
	if len(publisher.published) != 1 {
		t.Errorf("published events = %d, want 1 status change", len(publisher.published))
	}
	if len(auditStore.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(auditStore.entries))
	}
	if _, ok := auditStore.entries[0].Changes["status"]; !ok {
		t.Error("audit entry should include the status change")
	}
}

func TestLeadUpdateClearsEmail(t *testing.T) {
	email := "a@b.com"
	store := newFakeLeadStore()
	id := store.seed(models.Lead{Name: "Asha", Phone: "+919800000001", Email: &email, Status: models.LeadStatusNew})
	svc, auditStore, _ := newLeadFixture(store)
	actor := Actor{ID: uuid.New(), Role: rbac.RoleAgent}

	lead, err := svc.Update(context.Background(), actor, id, UpdateLeadInput{Email: optional.Null[string]()})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if lead.Email != nil {
		t.Errorf("email = %q, want cleared", *lead.Email)
	}
	if store.leads[id].Email != nil {
		t.Error("stored email should be cleared")
	}
	if len(auditStore.entries) != 1 {
		t.Errorf("audit entries = %d, want 1", len(auditStore.entries))
	}
}

func TestLeadUpdateAbsentEmailUntouched(t *testing.T) {
	email := "a@b.com"
	store := newFakeLeadStore()
	id := store.seed(models.Lead{Name: "Asha", Phone: "+919800000001", Email: &email, Status: models.LeadStatusNew})
	svc, _, _ := newLeadFixture(store)
	actor := Actor{ID: uuid.New(), Role: rbac.RoleAgent}

	name := "Asha Rao"
	lead, err := svc.Update(context.Background(), actor, id, UpdateLeadInput{Name: &name})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if lead.Email == nil || *lead.Email != "a@b.com" {
		t.Error("email must survive an update that does not mention it")
	}
}

func TestLeadUpdateNoChangeSkipsWrite(t *testing.T) {
	store := newFakeLeadStore()
	id := store.seed(models.Lead{Name: "Asha", Phone: "+919800000001", Status: models.LeadStatusNew})
	svc, auditStore, publisher := newLeadFixture(store)
	actor := Actor{ID: uuid.New(), Role: rbac.RoleAgent}

	if _, err := svc.Update(context.Background(), actor, id, UpdateLeadInput{}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if store.updateCalls != 0 {
		t.Errorf("store writes = %d, want 0 for a no-op update", store.updateCalls)
	}
	if len(auditStore.entries) != 0 || len(publisher.published) != 0 {
		t.Error("no-op update must not audit or publish")
	}
}
