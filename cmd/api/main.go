package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/estate-backoffice/backend/internal/audit"
	"github.com/estate-backoffice/backend/internal/config"
	"github.com/estate-backoffice/backend/internal/db"
	"github.com/estate-backoffice/backend/internal/events"
	apphttp "github.com/estate-backoffice/backend/internal/http"
	"github.com/estate-backoffice/backend/internal/http/handlers"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/estate-backoffice/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	leadRepo := repositories.NewLeadRepo(pool)
	sellerLeadRepo := repositories.NewSellerLeadRepo(pool)
	listingRepo := repositories.NewListingRepo(pool)
	visitRepo := repositories.NewVisitRepo(pool)
	offerRepo := repositories.NewOfferRepo(pool)
	attachmentRepo := repositories.NewAttachmentRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Audit
	recorder := audit.NewRecorder(auditRepo, log)

	// Services
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiration, log)
	leadService := services.NewLeadService(leadRepo, recorder, publisher, log)
	sellerLeadService := services.NewSellerLeadService(sellerLeadRepo, recorder, log)
	listingService := services.NewListingService(listingRepo, recorder, publisher, log)
	visitService := services.NewVisitService(visitRepo, leadRepo, recorder, publisher, log)
	offerService := services.NewOfferService(offerRepo, listingRepo, recorder, publisher, log)
	attachmentService := services.NewAttachmentService(attachmentRepo, recorder, log)
	lifecycleService := services.NewLifecycleService(leadRepo, recorder, publisher, cfg.PreVisitDecayDays, cfg.PostVisitDecayDays, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, log)
	leadHandler := handlers.NewLeadHandler(leadService, cfg, log)
	sellerLeadHandler := handlers.NewSellerLeadHandler(sellerLeadService, log)
	listingHandler := handlers.NewListingHandler(listingService, log)
	visitHandler := handlers.NewVisitHandler(visitService, log)
	offerHandler := handlers.NewOfferHandler(offerService, log)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService, log)
	auditHandler := handlers.NewAuditHandler(auditRepo, log)
	cronHandler := handlers.NewCronHandler(lifecycleService, cfg.CronSecret, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": "Internal", "message": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb,
		authHandler, leadHandler, sellerLeadHandler, listingHandler,
		visitHandler, offerHandler, attachmentHandler, auditHandler,
		cronHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
