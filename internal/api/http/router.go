package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-relay/internal/api/http/handlers"
	"github.com/spec-kit/ticket-relay/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Forward        *handlers.ForwardHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/admin/login", cfg.Admin.Login)

	app.Post("/tickets", cfg.Tickets.SubmitTicket)
	app.Post("/ticket/forward", cfg.Forward.ForwardTicket)

	admin := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Post("/ticket/forward-all", cfg.Forward.ForwardAll)
	admin.Get("/tickets", cfg.Tickets.ListTickets)
	admin.Get("/tickets/:id", cfg.Tickets.GetTicket)
}
