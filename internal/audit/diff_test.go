package audit

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/estate-backoffice/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func TestDiffCreatePath(t *testing.T) {
	var nilStr *string
	changes := Diff(nil, map[string]any{
		"name":   "Asha Rao",
		"status": "new",
		"email":  nilStr,
		"phone":  nil,
	})

	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d: %v", len(changes), changes)
	}
	if c := changes["name"]; c.Old != nil || c.New != "Asha Rao" {
		t.Errorf("name change = %+v", c)
	}
	if c := changes["status"]; c.Old != nil || c.New != "new" {
		t.Errorf("status change = %+v", c)
	}
	if _, ok := changes["email"]; ok {
		t.Error("nil pointer field should not appear on create")
	}
}

func TestDiffIdenticalSnapshotsIsNil(t *testing.T) {
	snap := map[string]any{"status": "new", "phone": "9900112233", "agent": strPtr("a1")}
	same := map[string]any{"status": "new", "phone": "9900112233", "agent": strPtr("a1")}
	if changes := Diff(snap, same); changes != nil {
		t.Errorf("identical snapshots should diff to nil, got %v", changes)
	}
}

func TestDiffSingleFieldChange(t *testing.T) {
	old := map[string]any{"status": "new", "phone": "9900112233"}
	updated := map[string]any{"status": "contacted", "phone": "9900112233"}

	changes := Diff(old, updated)
	want := models.ChangeSet{"status": {Old: "new", New: "contacted"}}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("Diff = %v, want %v", changes, want)
	}
}

func TestDiffNormalizesTypedNils(t *testing.T) {
	var nilStr *string
	old := map[string]any{"drop_reason": nilStr}
	updated := map[string]any{"drop_reason": nil}
	if changes := Diff(old, updated); changes != nil {
		t.Errorf("typed nil vs nil should be a no-op, got %v", changes)
	}

	updated = map[string]any{"drop_reason": strPtr("budget mismatch")}
	changes := Diff(old, updated)
	if c := changes["drop_reason"]; c.Old != nil || c.New != "budget mismatch" {
		t.Errorf("drop_reason change = %+v", c)
	}
}

func TestDiffOnlyComparesFieldsPresentInNew(t *testing.T) {
	old := map[string]any{"status": "new", "source": "portal"}
	updated := map[string]any{"status": "contacted"}

	changes := Diff(old, updated)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %v", changes)
	}
	if _, ok := changes["source"]; ok {
		t.Error("fields absent from the new snapshot must not be diffed")
	}
}

type fakeStore struct {
	entries []models.AuditLog
	err     error
}

func (f *fakeStore) Insert(_ context.Context, entry models.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func TestRecorderSkipsNilChanges(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, zap.NewNop())

	rec.Record(context.Background(), models.EntityTypeLead, uuid.New(), models.AuditActionUpdate, nil, nil, models.ActorTypeUser)
	if len(store.entries) != 0 {
		t.Errorf("no-op update must not write an audit row, got %d", len(store.entries))
	}

	actor := uuid.New()
	rec.Record(context.Background(), models.EntityTypeLead, uuid.New(), models.AuditActionUpdate,
		models.ChangeSet{"status": {Old: "new", New: "contacted"}}, &actor, models.ActorTypeUser)
	if len(store.entries) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(store.entries))
	}
	if store.entries[0].Changes["status"].New != "contacted" {
		t.Errorf("unexpected changes: %v", store.entries[0].Changes)
	}
}

func TestRecorderSwallowsStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	rec := NewRecorder(store, zap.NewNop())

	// Must not panic or propagate
	rec.Record(context.Background(), models.EntityTypeVisit, uuid.New(), models.AuditActionUpdate,
		models.ChangeSet{"status": {Old: "pending", New: "scheduled"}}, nil, models.ActorTypeSystem)
}
