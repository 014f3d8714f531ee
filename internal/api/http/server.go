package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/api/http/handlers"
	"github.com/spec-kit/ticketdesk/internal/auth"
	"github.com/spec-kit/ticketdesk/internal/observability"
	"github.com/spec-kit/ticketdesk/internal/repository"
	"github.com/spec-kit/ticketdesk/internal/service"
)

// ServerDependencies carries everything the HTTP surface needs.
type ServerDependencies struct {
	Name           string
	Version        string
	RequestTimeout time.Duration
	Logger         *zap.Logger
	Metrics        *observability.Metrics

	Tickets *service.TicketService
	History *service.HistoryService
	Users   *service.UserService
	Auth    *service.AuthService
	Reports *service.ReportService

	UserRepo     repository.UserRepository
	Revocations  auth.Revocations
	Dependencies []handlers.Dependency
}

// NewServer builds the fiber application with middlewares and routes.
func NewServer(deps ServerDependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               deps.Name,
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	RegisterMiddlewares(app, deps.Logger, deps.Metrics, deps.RequestTimeout)

	authMiddleware := auth.NewAuthMiddleware(deps.Auth.TokenManager(), deps.UserRepo, deps.Revocations, deps.Logger)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(deps.Name, deps.Version, deps.Metrics, deps.Dependencies...),
		Auth:           handlers.NewAuthHandler(deps.Auth),
		Tickets:        handlers.NewTicketsHandler(deps.Tickets),
		History:        handlers.NewHistoryHandler(deps.History),
		Users:          handlers.NewUsersHandler(deps.Users),
		Reports:        handlers.NewReportsHandler(deps.Reports),
		AuthMiddleware: authMiddleware,
	})
	return app
}
