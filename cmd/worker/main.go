package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/estate-backoffice/backend/internal/audit"
	"github.com/estate-backoffice/backend/internal/config"
	"github.com/estate-backoffice/backend/internal/db"
	"github.com/estate-backoffice/backend/internal/events"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/estate-backoffice/backend/internal/services"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repos
	leadRepo := repositories.NewLeadRepo(pool)
	offerRepo := repositories.NewOfferRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Services
	publisher := events.NewRedisPublisher(rdb, log)
	recorder := audit.NewRecorder(auditRepo, log)
	lifecycleService := services.NewLifecycleService(leadRepo, recorder, publisher, cfg.PreVisitDecayDays, cfg.PostVisitDecayDays, log)

	log.Info("worker started", zap.String("decay_cron", cfg.DecayCronSpec))

	// Daily lifecycle pass on a cron schedule
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.DecayCronSpec, func() {
		result, err := lifecycleService.ProcessLifecycle(ctx)
		if err != nil {
			log.Error("scheduled lifecycle run failed", zap.Error(err))
		}
		log.Info("scheduled lifecycle run done", zap.Int("total", result.Total))
	})
	if err != nil {
		log.Fatal("invalid DECAY_CRON_SPEC", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Stale offer expiry on a ticker
	offerTicker := time.NewTicker(15 * time.Minute)
	defer offerTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-offerTicker.C:
			runOfferExpiry(ctx, offerRepo, recorder, publisher, cfg, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		}
	}
}

func runOfferExpiry(ctx context.Context, offerRepo *repositories.OfferRepo, recorder *audit.Recorder, publisher events.Publisher, cfg *config.Config, log *zap.Logger) {
	cutoff := time.Now().Add(-time.Duration(cfg.OfferExpiryHours) * time.Hour)
	expired, err := offerRepo.ExpireStale(ctx, cutoff)
	if err != nil {
		log.Error("offer expiry pass failed", zap.Error(err))
		return
	}
	for _, e := range expired {
		recorder.Record(ctx, models.EntityTypeOffer, e.ID, models.AuditActionUpdate,
			models.ChangeSet{"status": {Old: e.OldStatus, New: models.OfferStatusExpired}},
			nil, models.ActorTypeSystem)
		_ = publisher.Publish(ctx, events.StreamEntity, events.Event{
			Type: events.EventOfferStatusChanged,
			Payload: map[string]any{
				"offer_id":   e.ID.String(),
				"old_status": e.OldStatus,
				"new_status": models.OfferStatusExpired,
			},
		})
	}
	if len(expired) > 0 {
		log.Info("expired stale offers", zap.Int("count", len(expired)))
	}
}
