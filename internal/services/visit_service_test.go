package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/estate-backoffice/backend/internal/apperr"
	"github.com/estate-backoffice/backend/internal/audit"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/rbac"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func assertCategory(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := apperr.From(err).Category; got != want {
		t.Errorf("error category = %q, want %q", got, want)
	}
}

type fakeVisitStore struct {
	visits map[uuid.UUID]*models.Visit
}

func newFakeVisitStore() *fakeVisitStore {
	return &fakeVisitStore{visits: map[uuid.UUID]*models.Visit{}}
}

func (f *fakeVisitStore) seed(v models.Visit) uuid.UUID {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	f.visits[v.ID] = &v
	return v.ID
}

func (f *fakeVisitStore) Create(ctx context.Context, v *models.Visit) error {
	v.ID = uuid.New()
	cp := *v
	f.visits[v.ID] = &cp
	return nil
}

func (f *fakeVisitStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Visit, error) {
	v, ok := f.visits[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVisitStore) List(ctx context.Context, _ repositories.VisitFilter) ([]models.Visit, error) {
	return nil, nil
}

func (f *fakeVisitStore) Confirm(ctx context.Context, id uuid.UUID, at time.Time) error {
	v := f.visits[id]
	v.VisitConfirmed = true
	v.ConfirmedAt = &at
	v.Status = models.VisitStatusScheduled
	return nil
}

func (f *fakeVisitStore) Cancel(ctx context.Context, id uuid.UUID, at time.Time, dropReason string) error {
	v := f.visits[id]
	v.VisitCanceled = true
	v.CanceledAt = &at
	v.DropReason = &dropReason
	v.Status = models.VisitStatusCancelled
	return nil
}

// Reschedule mirrors the repo transaction: both rows change in one call.
func (f *fakeVisitStore) Reschedule(ctx context.Context, original *models.Visit, newScheduledAt time.Time, otpCode *string) (*models.Visit, error) {
	replacement := &models.Visit{
		ID:                     uuid.New(),
		LeadID:                 original.LeadID,
		ListingID:              original.ListingID,
		Status:                 models.VisitStatusPending,
		ScheduledAt:            newScheduledAt,
		RescheduledFromVisitID: &original.ID,
		OTPCode:                otpCode,
	}
	f.visits[replacement.ID] = replacement
	orig := f.visits[original.ID]
	orig.VisitCanceled = true
	orig.Status = models.VisitStatusCancelled
	cp := *replacement
	return &cp, nil
}

func (f *fakeVisitStore) Complete(ctx context.Context, id uuid.UUID, at time.Time, c repositories.VisitCompletion) error {
	v := f.visits[id]
	v.VisitCompleted = true
	v.CompletedAt = &at
	v.Status = models.VisitStatusCompleted
	v.OTPVerified = true
	v.Latitude = &c.Latitude
	v.Longitude = &c.Longitude
	return nil
}

type fakeVisitLeadStore struct {
	leads map[uuid.UUID]*models.Lead
}

func (f *fakeVisitLeadStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *l
	return &cp, nil
}

func (f *fakeVisitLeadStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	f.leads[id].Status = status
	return nil
}

func newVisitFixture(store *fakeVisitStore, leads *fakeVisitLeadStore) (*VisitService, *fakeAuditStore, *fakePublisher) {
	auditStore := &fakeAuditStore{}
	publisher := &fakePublisher{}
	svc := NewVisitService(store, leads, audit.NewRecorder(auditStore, zap.NewNop()), publisher, zap.NewNop())
	return svc, auditStore, publisher
}

func TestVisitCreatePromotesLead(t *testing.T) {
	leadID := uuid.New()
	leads := &fakeVisitLeadStore{leads: map[uuid.UUID]*models.Lead{
		leadID: {ID: leadID, Status: models.LeadStatusNew},
	}}
	store := newFakeVisitStore()
	svc, auditStore, _ := newVisitFixture(store, leads)
	actor := Actor{ID: uuid.New(), Role: rbac.RoleAgent}

	visit, err := svc.Create(context.Background(), actor, leadID, uuid.New(), time.Now().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if visit.Status != models.VisitStatusPending {
		t.Errorf("visit status = %q, want pending", visit.Status)
	}
	if visit.OTPCode == nil || len(*visit.OTPCode) != 6 {
		t.Error("visit should carry a 6-digit otp")
	}
	if got := leads.leads[leadID].Status; got != models.LeadStatusActiveVisitor {
		t.Errorf("lead status = %q, want active_visitor", got)
	}
	if len(auditStore.entries) != 2 {
		t.Fatalf("audit entries = %d, want 2 (lead promotion + visit create)", len(auditStore.entries))
	}
}

func TestVisitRescheduleKeepsChain(t *testing.T) {
	store := newFakeVisitStore()
	otp := "123456"
	originalID := store.seed(models.Visit{
		LeadID:      uuid.New(),
		ListingID:   uuid.New(),
		Status:      models.VisitStatusScheduled,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		OTPCode:     &otp,
	})
	svc, auditStore, publisher := newVisitFixture(store, &fakeVisitLeadStore{})
	actor := Actor{ID: uuid.New(), Role: rbac.RoleAgent}

	newAt := time.Now().Add(48 * time.Hour)
	replacement, err := svc.Perform(context.Background(), actor, originalID, models.VisitActionReschedule,
		VisitActionInput{NewScheduledAt: &newAt})
	if err != nil {
		t.Fatalf("Perform(reschedule) error = %v", err)
	}

	if len(store.visits) != 2 {
		t.Fatalf("visits in store = %d, want exactly 2", len(store.visits))
	}
	if replacement.RescheduledFromVisitID == nil || *replacement.RescheduledFromVisitID != originalID {
		t.Error("replacement must point back at the original visit")
	}
	if replacement.Status != models.VisitStatusPending {
		t.Errorf("replacement status = %q, want pending", replacement.Status)
	}
	if !replacement.ScheduledAt.Equal(newAt) {
		t.Errorf("replacement scheduled_at = %v, want %v", replacement.ScheduledAt, newAt)
	}
	orig := store.visits[originalID]
	if orig.Status != models.VisitStatusCancelled || !orig.VisitCanceled {
		t.Errorf("original after reschedule = %q canceled=%v, want cancelled", orig.Status, orig.VisitCanceled)
	}
	if len(auditStore.entries) != 2 {
		t.Fatalf("audit entries = %d, want 2 (replacement create + original update)", len(auditStore.entries))
	}
	creates, updates := 0, 0
	for _, e := range auditStore.entries {
		switch e.Action {
		case models.AuditActionCreate:
			creates++
			if e.EntityID != replacement.ID {
				t.Error("create entry should target the replacement")
			}
		case models.AuditActionUpdate:
			updates++
			if e.EntityID != originalID {
				t.Error("update entry should target the original")
			}
		}
	}
	if creates != 1 || updates != 1 {
		t.Errorf("audit actions = %d creates / %d updates, want 1/1", creates, updates)
	}
	if len(publisher.published) != 1 {
		t.Errorf("published events = %d, want 1", len(publisher.published))
	}
}

func TestVisitRescheduleTerminalRejected(t *testing.T) {
	store := newFakeVisitStore()
	id := store.seed(models.Visit{Status: models.VisitStatusCompleted, ScheduledAt: time.Now()})
	svc, auditStore, _ := newVisitFixture(store, &fakeVisitLeadStore{})
	actor := Actor{ID: uuid.New(), Role: rbac.RoleAgent}

	newAt := time.Now().Add(24 * time.Hour)
	_, err := svc.Perform(context.Background(), actor, id, models.VisitActionReschedule,
		VisitActionInput{NewScheduledAt: &newAt})
	assertCategory(t, err, apperr.CategoryValidation)
	if len(store.visits) != 1 {
		t.Errorf("visits in store = %d, want 1 (no replacement row)", len(store.visits))
	}
	if len(auditStore.entries) != 0 {
		t.Errorf("audit entries = %d, want 0", len(auditStore.entries))
	}
}

func TestVisitCompleteOTPMismatch(t *testing.T) {
	store := newFakeVisitStore()
	otp := "123456"
	id := store.seed(models.Visit{Status: models.VisitStatusScheduled, ScheduledAt: time.Now(), OTPCode: &otp})
	svc, _, _ := newVisitFixture(store, &fakeVisitLeadStore{})
	actor := Actor{ID: uuid.New(), Role: rbac.RoleAgent}

	lat, lng, wrong := 12.97, 77.59, "000000"
	_, err := svc.Perform(context.Background(), actor, id, models.VisitActionComplete,
		VisitActionInput{Latitude: &lat, Longitude: &lng, OTPCode: &wrong})
	assertCategory(t, err, apperr.CategoryValidation)
	if store.visits[id].Status != models.VisitStatusScheduled {
		t.Error("visit must stay scheduled on otp mismatch")
	}
}

func TestVisitPerformUnknownAction(t *testing.T) {
	store := newFakeVisitStore()
	id := store.seed(models.Visit{Status: models.VisitStatusScheduled, ScheduledAt: time.Now()})
	svc, _, _ := newVisitFixture(store, &fakeVisitLeadStore{})

	// Action membership is checked first, so even a role with no visit
	// permissions gets the validation error.
	_, err := svc.Perform(context.Background(), Actor{ID: uuid.New(), Role: "nobody"}, id, "archive", VisitActionInput{})
	assertCategory(t, err, apperr.CategoryValidation)
}
