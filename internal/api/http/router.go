package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lanoanh-osi/ServiceOps/internal/api/http/handlers"
	"github.com/lanoanh-osi/ServiceOps/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Actions        *handlers.ActionsHandler
	Reference      *handlers.ReferenceHandler
	AuthMiddleware *auth.AuthMiddleware
	// AuthLimiter guards the unauthenticated auth routes; nil skips it.
	AuthLimiter    fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	limit := cfg.AuthLimiter
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}
	authGroup := app.Group("/auth")
	authGroup.Post("/login", limit, cfg.Auth.Login)
	authGroup.Post("/otp/send", limit, cfg.Auth.SendOTP)
	authGroup.Post("/otp/reset", limit, cfg.Auth.ResetPassword)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireSession())
	protectedAuth.Post("/logout", cfg.Auth.Logout)
	protectedAuth.Get("/me", cfg.Auth.Me)
	protectedAuth.Post("/password/change", cfg.Auth.ChangePassword)

	me := app.Group("/me", cfg.AuthMiddleware.Handle, auth.RequireSession())
	me.Get("/performance", cfg.Tickets.Performance)

	reference := app.Group("/reference", cfg.AuthMiddleware.Handle, auth.RequireSession())
	reference.Get("/activity-types", cfg.Reference.ActivityTypes)
	reference.Get("/maintenance-categories", cfg.Reference.MaintenanceCategories)
	reference.Get("/maintenance-types", cfg.Reference.MaintenanceTypes)
	reference.Post("/devices/check", cfg.Reference.CheckDevice)
	reference.Post("/serials/check", cfg.Reference.CheckSerial)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireSession())
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/counts", cfg.Tickets.Counts)
	tickets.Get("/unassigned", cfg.Tickets.Unassigned)
	tickets.Get("/:type/:id", cfg.Tickets.Detail)

	staff := auth.RequireStaffCode()
	tickets.Post("/sales", staff, cfg.Actions.CreateActivity)
	tickets.Post("/maintenance/emergency", staff, cfg.Actions.CreateEmergency)
	tickets.Post("/:type/:id/accept", staff, cfg.Actions.Accept)

	tickets.Post("/delivery/:id/complete", cfg.Actions.CompleteDelivery)

	maintenance := tickets.Group("/maintenance/:id")
	maintenance.Post("/contact", cfg.Actions.UpdateContact)
	maintenance.Post("/device", cfg.Actions.UpdateDevice)
	maintenance.Post("/type", cfg.Actions.UpdateType)
	maintenance.Post("/first-response", cfg.Actions.FirstResponse)
	maintenance.Post("/supplier", cfg.Actions.Supplier)
	maintenance.Post("/start", cfg.Actions.Start)
	maintenance.Post("/result", cfg.Actions.Result)

	sales := tickets.Group("/sales/:id")
	sales.Post("/info", cfg.Actions.ActivityInfo)
	sales.Post("/result", cfg.Actions.ActivityResult)
}
