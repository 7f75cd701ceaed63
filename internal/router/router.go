package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Ahad-dev/fypify-api/internal/config"
	"github.com/Ahad-dev/fypify-api/internal/handler"
	"github.com/Ahad-dev/fypify-api/internal/middleware"
	"github.com/Ahad-dev/fypify-api/internal/models"
	"github.com/Ahad-dev/fypify-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CatalogHandler      *handler.CatalogHandler
	DeadlineHandler     *handler.DeadlineHandler
	SubmissionHandler   *handler.SubmissionHandler
	MarkingHandler      *handler.MarkingHandler
	ResultHandler       *handler.ResultHandler
	NotificationHandler *handler.NotificationHandler
	ActivityHandler     *handler.ActivityHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.CatalogHandler != nil {
		catalog := api.Group("/document-types", jwtMiddleware)
		deps.CatalogHandler.Register(catalog)
	}

	if deps.DeadlineHandler != nil {
		deadlines := api.Group("/deadlines", jwtMiddleware)
		// The sweep is schedulable from outside; keep it from being hammered.
		deadlines.Use("/scan", middleware.RateLimit("deadline-scan", 6, time.Minute))
		deps.DeadlineHandler.Register(deadlines)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.MarkingHandler != nil {
		marks := api.Group("/marks", jwtMiddleware)
		deps.MarkingHandler.Register(marks)
	}

	if deps.ResultHandler != nil {
		results := api.Group("/results", jwtMiddleware)
		deps.ResultHandler.Register(results)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", jwtMiddleware,
			middleware.RequireCapability(models.CapViewActivityLog))
		deps.ActivityHandler.Register(activity)
	}
}
