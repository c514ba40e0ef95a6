package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/estate-backoffice/backend/internal/audit"
	"github.com/estate-backoffice/backend/internal/events"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeDecayStore mimics the repo predicates: a demoted lead leaves the
// eligible set, so a second pass returns nothing.
type fakeDecayStore struct {
	pre     []repositories.StatusDecay
	post    []repositories.StatusDecay
	preErr  error
	postErr error
}

func (f *fakeDecayStore) DecayPreVisit(ctx context.Context, cutoff time.Time) ([]repositories.StatusDecay, error) {
	if f.preErr != nil {
		return nil, f.preErr
	}
	pre := f.pre
	f.pre = nil
	return pre, nil
}

func (f *fakeDecayStore) DecayPostVisit(ctx context.Context, cutoff time.Time) ([]repositories.StatusDecay, error) {
	if f.postErr != nil {
		return nil, f.postErr
	}
	post := f.post
	f.post = nil
	return post, nil
}

type fakeAuditStore struct {
	entries []models.AuditLog
}

func (f *fakeAuditStore) Insert(ctx context.Context, entry models.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakePublisher struct {
	published []events.Event
}

func (f *fakePublisher) Publish(ctx context.Context, stream string, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func newLifecycleFixture(store *fakeDecayStore) (*LifecycleService, *fakeAuditStore, *fakePublisher) {
	auditStore := &fakeAuditStore{}
	publisher := &fakePublisher{}
	svc := NewLifecycleService(store, audit.NewRecorder(auditStore, zap.NewNop()), publisher, 7, 14, zap.NewNop())
	return svc, auditStore, publisher
}

func TestProcessLifecycleCounts(t *testing.T) {
	store := &fakeDecayStore{
		pre: []repositories.StatusDecay{
			{ID: uuid.New(), OldStatus: models.LeadStatusNew},
			{ID: uuid.New(), OldStatus: models.LeadStatusContacted},
		},
		post: []repositories.StatusDecay{
			{ID: uuid.New(), OldStatus: models.LeadStatusActiveVisitor},
		},
	}
	svc, auditStore, publisher := newLifecycleFixture(store)

	result, err := svc.ProcessLifecycle(context.Background())
	if err != nil {
		t.Fatalf("ProcessLifecycle() error = %v", err)
	}
	if result.PreVisitDecayed != 2 || result.PostVisitDecayed != 1 || result.Total != 3 {
		t.Errorf("result = %+v, want pre=2 post=1 total=3", result)
	}
	if result.ProcessedAt.IsZero() {
		t.Error("ProcessedAt should be set")
	}
	if len(auditStore.entries) != 3 {
		t.Fatalf("audit entries = %d, want 3", len(auditStore.entries))
	}
	for _, e := range auditStore.entries {
		if e.ActorType != models.ActorTypeSystem {
			t.Errorf("actor type = %q, want system", e.ActorType)
		}
		if e.PerformedByID != nil {
			t.Error("system decay should have no performer")
		}
		change, ok := e.Changes["status"]
		if !ok {
			t.Fatal("audit entry missing status change")
		}
		if change.New != models.LeadStatusAtRisk {
			t.Errorf("new status = %v, want at_risk", change.New)
		}
	}
	if len(publisher.published) != 3 {
		t.Errorf("published events = %d, want 3", len(publisher.published))
	}
}

func TestProcessLifecycleZeroCounts(t *testing.T) {
	svc, auditStore, publisher := newLifecycleFixture(&fakeDecayStore{})

	result, err := svc.ProcessLifecycle(context.Background())
	if err != nil {
		t.Fatalf("ProcessLifecycle() error = %v", err)
	}
	if result.Total != 0 || result.PreVisitDecayed != 0 || result.PostVisitDecayed != 0 {
		t.Errorf("result = %+v, want all zero", result)
	}
	if len(auditStore.entries) != 0 {
		t.Errorf("audit entries = %d, want 0", len(auditStore.entries))
	}
	if len(publisher.published) != 0 {
		t.Errorf("published events = %d, want 0", len(publisher.published))
	}
}

func TestProcessLifecycleRerunChangesNothing(t *testing.T) {
	store := &fakeDecayStore{
		pre: []repositories.StatusDecay{
			{ID: uuid.New(), OldStatus: models.LeadStatusContacted},
		},
		post: []repositories.StatusDecay{
			{ID: uuid.New(), OldStatus: models.LeadStatusActiveVisitor},
		},
	}
	svc, auditStore, publisher := newLifecycleFixture(store)

	first, err := svc.ProcessLifecycle(context.Background())
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}
	if first.Total != 2 {
		t.Fatalf("first run total = %d, want 2", first.Total)
	}

	second, err := svc.ProcessLifecycle(context.Background())
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if second.Total != 0 || second.PreVisitDecayed != 0 || second.PostVisitDecayed != 0 {
		t.Errorf("second run = %+v, want all zero", second)
	}
	if len(auditStore.entries) != 2 {
		t.Errorf("audit entries after rerun = %d, want 2", len(auditStore.entries))
	}
	if len(publisher.published) != 2 {
		t.Errorf("published events after rerun = %d, want 2", len(publisher.published))
	}
}

func TestProcessLifecyclePartialFailure(t *testing.T) {
	store := &fakeDecayStore{
		preErr: errors.New("timeout"),
		post: []repositories.StatusDecay{
			{ID: uuid.New(), OldStatus: models.LeadStatusActiveVisitor},
		},
	}
	svc, auditStore, _ := newLifecycleFixture(store)

	result, err := svc.ProcessLifecycle(context.Background())
	if err == nil {
		t.Fatal("ProcessLifecycle() should surface the failing pass")
	}
	if result.PreVisitDecayed != 0 {
		t.Errorf("pre-visit count = %d, want 0", result.PreVisitDecayed)
	}
	if result.PostVisitDecayed != 1 {
		t.Errorf("post-visit count = %d, want 1 despite pre-visit failure", result.PostVisitDecayed)
	}
	if len(auditStore.entries) != 1 {
		t.Errorf("audit entries = %d, want 1", len(auditStore.entries))
	}
}
