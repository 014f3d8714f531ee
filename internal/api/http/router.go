package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketdesk/internal/api/http/handlers"
	"github.com/spec-kit/ticketdesk/internal/auth"
	"github.com/spec-kit/ticketdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	History        *handlers.HistoryHandler
	Users          *handlers.UsersHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)

	authenticated := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	authenticated.Post("/logout", cfg.Auth.Logout)
	authenticated.Get("/me", cfg.Auth.Me)
	authenticated.Post("/password/change", cfg.Auth.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireRole())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/transitions", cfg.Tickets.Transitions)
	tickets.Get("/:id/history", cfg.History.List)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Put("/:id/feedback", cfg.Tickets.UpdateFeedback)
	tickets.Put("/:id/assignee", cfg.Tickets.AssignTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdministrator))
	users.Post("/", cfg.Users.Create)
	users.Get("/", cfg.Users.List)
	users.Delete("/:username", cfg.Users.Delete)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdministrator))
	reports.Get("/summary", cfg.Reports.Summary)
}
