package http

import (
	"time"

	"github.com/estate-backoffice/backend/internal/config"
	"github.com/estate-backoffice/backend/internal/http/handlers"
	"github.com/estate-backoffice/backend/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	leadHandler *handlers.LeadHandler,
	sellerLeadHandler *handlers.SellerLeadHandler,
	listingHandler *handlers.ListingHandler,
	visitHandler *handlers.VisitHandler,
	offerHandler *handlers.OfferHandler,
	attachmentHandler *handlers.AttachmentHandler,
	auditHandler *handlers.AuditHandler,
	cronHandler *handlers.CronHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-Webhook-Secret",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Scheduler entry point, guarded by the cron secret only
	app.Get("/api/cron/process-lifecycle", cronHandler.ProcessLifecycle)

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/login", authHandler.Login)

	// Portal webhook (public, shared-secret guarded)
	api.Post("/leads/inbound", leadHandler.Inbound)

	// Rate-limited from here on
	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Meta (public, no auth required)
	metaHandler := handlers.NewMetaHandler()
	api.Get("/meta/statuses", metaHandler.GetStatuses)
	api.Get("/meta/lead-sources", metaHandler.GetLeadSources)
	api.Get("/meta/visit-actions", metaHandler.GetVisitActions)
	api.Get("/meta/roles", metaHandler.GetRoles)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	protected.Get("/me", authHandler.Me)

	// Buyer leads
	protected.Post("/leads", leadHandler.Create)
	protected.Get("/leads", leadHandler.List)
	protected.Get("/leads/:id", leadHandler.Get)
	protected.Put("/leads/:id", leadHandler.Update)
	protected.Post("/leads/:id/assign", leadHandler.Assign)
	protected.Delete("/leads/:id", leadHandler.Delete)

	// Seller leads
	protected.Post("/seller-leads", sellerLeadHandler.Create)
	protected.Get("/seller-leads", sellerLeadHandler.List)
	protected.Get("/seller-leads/:id", sellerLeadHandler.Get)
	protected.Put("/seller-leads/:id", sellerLeadHandler.Update)
	protected.Post("/seller-leads/:id/convert", sellerLeadHandler.Convert)
	protected.Delete("/seller-leads/:id", sellerLeadHandler.Delete)

	// Listings and their inspection/cataloguing workflow
	protected.Post("/listings", listingHandler.Create)
	protected.Get("/listings", listingHandler.List)
	protected.Get("/listings/:id", listingHandler.Get)
	protected.Put("/listings/:id", listingHandler.Update)
	protected.Post("/listings/:id/transition", listingHandler.Transition)
	protected.Post("/listings/:id/inspections", listingHandler.RequestInspection)
	protected.Post("/inspections/:inspectionId/complete", listingHandler.CompleteInspection)
	protected.Post("/listings/:id/catalogues", listingHandler.SubmitCatalogue)
	protected.Post("/catalogues/:catalogueId/review", listingHandler.ReviewCatalogue)

	// Visits
	protected.Post("/visits", visitHandler.Create)
	protected.Get("/visits", visitHandler.List)
	protected.Get("/visits/:id", visitHandler.Get)
	protected.Post("/visits/:id/actions/:action", visitHandler.Action)

	// Offers
	protected.Post("/offers", offerHandler.Create)
	protected.Get("/offers", offerHandler.List)
	protected.Get("/offers/:id", offerHandler.Get)
	protected.Post("/offers/:id/accept", offerHandler.Accept)
	protected.Post("/offers/:id/reject", offerHandler.Reject)
	protected.Post("/offers/:id/counter", offerHandler.Counter)

	// Notes / media / tasks
	protected.Post("/notes", attachmentHandler.CreateNote)
	protected.Get("/notes", attachmentHandler.ListNotes)
	protected.Delete("/notes/:id", attachmentHandler.DeleteNote)
	protected.Post("/media", attachmentHandler.CreateMedia)
	protected.Get("/media", attachmentHandler.ListMedia)
	protected.Put("/media/:id/order", attachmentHandler.ReorderMedia)
	protected.Delete("/media/:id", attachmentHandler.DeleteMedia)
	protected.Post("/tasks", attachmentHandler.CreateTask)
	protected.Get("/tasks", attachmentHandler.ListTasks)
	protected.Post("/tasks/:id/complete", attachmentHandler.CompleteTask)
	protected.Delete("/tasks/:id", attachmentHandler.DeleteTask)

	// Audit trail
	protected.Get("/audit-logs", auditHandler.History)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
