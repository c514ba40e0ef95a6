package services

import (
	"context"
	"time"

	"github.com/estate-backoffice/backend/internal/audit"
	"github.com/estate-backoffice/backend/internal/events"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/repositories"
	"go.uber.org/zap"
)

// DecayStore is the slice of the lead repository the lifecycle engine needs.
type DecayStore interface {
	DecayPreVisit(ctx context.Context, cutoff time.Time) ([]repositories.StatusDecay, error)
	DecayPostVisit(ctx context.Context, cutoff time.Time) ([]repositories.StatusDecay, error)
}

// LifecycleResult is returned from every run, zero counts included.
type LifecycleResult struct {
	PreVisitDecayed  int       `json:"preVisitDecayed"`
	PostVisitDecayed int       `json:"postVisitDecayed"`
	Total            int       `json:"total"`
	ProcessedAt      time.Time `json:"processedAt"`
}

// LifecycleService runs the time-decay passes that move stale leads to
// at_risk. Each run is idempotent: the eligibility predicates exclude leads
// already decayed, so a rerun over the same data changes nothing.
type LifecycleService struct {
	store             DecayStore
	recorder          *audit.Recorder
	publisher         events.Publisher
	preVisitDecayDur  time.Duration
	postVisitDecayDur time.Duration
	log               *zap.Logger
}

func NewLifecycleService(store DecayStore, recorder *audit.Recorder, publisher events.Publisher, preVisitDays, postVisitDays int, log *zap.Logger) *LifecycleService {
	return &LifecycleService{
		store:             store,
		recorder:          recorder,
		publisher:         publisher,
		preVisitDecayDur:  time.Duration(preVisitDays) * 24 * time.Hour,
		postVisitDecayDur: time.Duration(postVisitDays) * 24 * time.Hour,
		log:               log,
	}
}

// ProcessLifecycle runs both decay populations. A failure in one population
// does not stop the other; the error from the last failing pass is returned
// alongside whatever counts were achieved.
func (s *LifecycleService) ProcessLifecycle(ctx context.Context) (LifecycleResult, error) {
	now := time.Now()
	result := LifecycleResult{ProcessedAt: now}
	var lastErr error

	preDecays, err := s.store.DecayPreVisit(ctx, now.Add(-s.preVisitDecayDur))
	if err != nil {
		s.log.Error("pre-visit decay pass failed", zap.Error(err))
		lastErr = err
	} else {
		result.PreVisitDecayed = len(preDecays)
		s.recordDecays(ctx, preDecays)
	}

	postDecays, err := s.store.DecayPostVisit(ctx, now.Add(-s.postVisitDecayDur))
	if err != nil {
		s.log.Error("post-visit decay pass failed", zap.Error(err))
		lastErr = err
	} else {
		result.PostVisitDecayed = len(postDecays)
		s.recordDecays(ctx, postDecays)
	}

	result.Total = result.PreVisitDecayed + result.PostVisitDecayed
	s.log.Info("lifecycle pass finished",
		zap.Int("pre_visit_decayed", result.PreVisitDecayed),
		zap.Int("post_visit_decayed", result.PostVisitDecayed),
		zap.Int("total", result.Total))
	return result, lastErr
}

func (s *LifecycleService) recordDecays(ctx context.Context, decays []repositories.StatusDecay) {
	for _, d := range decays {
		s.recorder.Record(ctx, models.EntityTypeLead, d.ID, models.AuditActionUpdate,
			models.ChangeSet{"status": {Old: d.OldStatus, New: models.LeadStatusAtRisk}},
			nil, models.ActorTypeSystem)
		_ = s.publisher.Publish(ctx, events.StreamEntity, events.Event{
			Type: events.EventLeadStatusChanged,
			Payload: map[string]any{
				"lead_id":    d.ID.String(),
				"old_status": d.OldStatus,
				"new_status": models.LeadStatusAtRisk,
			},
		})
	}
}
