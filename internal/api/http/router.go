package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/redlink/internal/api/http/handlers"
	"github.com/spec-kit/redlink/internal/auth"
	"github.com/spec-kit/redlink/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Donors         *handlers.DonorsHandler
	Requests       *handlers.RequestsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	donors := app.Group("/donors")
	donors.Post("/login", cfg.Donors.Login)

	session := donors.Group("", cfg.AuthMiddleware.Handle, auth.RequireDonor())
	session.Post("/logout", cfg.Donors.Logout)
	session.Get("/me", cfg.Donors.Me)
	session.Put("/me/availability", cfg.Donors.SetAvailability)
	session.Post("/me/schedule", cfg.Donors.Schedule)
	session.Delete("/me/schedule", cfg.Donors.ClearSchedule)
	session.Put("/me/blood-group", cfg.Donors.ChangeBloodGroup)
	session.Get("/me/feed", cfg.Donors.Feed)
	session.Get("/me/notifications", cfg.Donors.Notifications)

	app.Post("/requests/:id/respond", cfg.AuthMiddleware.Handle, auth.RequireDonor(), cfg.Requests.Respond)

	hospital := app.Group("/hospital")
	hospital.Post("/requests", cfg.Requests.Create)
	hospital.Get("/requests", cfg.Requests.List)
}
