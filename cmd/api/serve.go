package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticketdesk/internal/api/http"
	"github.com/spec-kit/ticketdesk/internal/api/http/handlers"
	"github.com/spec-kit/ticketdesk/internal/auth"
	"github.com/spec-kit/ticketdesk/internal/clock"
	"github.com/spec-kit/ticketdesk/internal/events"
	"github.com/spec-kit/ticketdesk/internal/observability"
	"github.com/spec-kit/ticketdesk/internal/persistence"
	"github.com/spec-kit/ticketdesk/internal/service"
	"github.com/spec-kit/ticketdesk/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Start the ticketdesk HTTP API. Without POSTGRES_DSN the server keeps all data in memory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply pending migrations on startup")
	return cmd
}

func runServe(parent context.Context, skipMigrations bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, logger := rt.cfg, rt.logger

	if rt.postgres.Enabled() && cfg.Postgres.RunMigrations && !skipMigrations {
		if err := persistence.RunMigrations(ctx, rt.postgres.PoolHandle(), logger); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
			return err
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	clk := clock.Real()
	var revocations auth.Revocations
	if redis.Enabled() {
		revocations = auth.NewRedisRevocations(redis.Client)
	} else {
		logger.Warn("token revocation is process-local")
		revocations = auth.NewMemoryRevocations(clk)
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	countEvents(dispatcher, metrics)

	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo: rt.tickets,
		UserRepo:   rt.users,
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
	})
	users := service.NewUserService(service.UserDependencies{
		UserRepo:   rt.users,
		Dispatcher: dispatcher,
		Clock:      clk,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:     rt.users,
		TokenManager: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), clk),
		Revocations:  revocations,
		Clock:        clk,
		BcryptCost:   cfg.Auth.BcryptCost,
		Logger:       logger,
	})

	history := service.NewHistoryService(service.HistoryDependencies{
		HistoryRepo: rt.history,
		TicketRepo:  rt.tickets,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	history.RegisterHandlers()

	if _, err := users.EnsureBootstrapAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		logger.Error("failed to bootstrap administrator", zap.Error(err))
		return err
	}

	notifier := worker.NewNotificationWorker(
		worker.NewConfiguredSender(cfg.Notification, logger),
		cfg.Notification.QueueSize,
		logger,
	)
	worker.StartNotificationWorker(ctx, service.NewNotificationService(dispatcher, notifier, logger), notifier)
	defer notifier.Stop()

	deps := []handlers.Dependency{{Name: "postgres", Check: rt.postgres}}
	if cfg.Redis.Enabled {
		deps = append(deps, handlers.Dependency{Name: "redis", Check: redis, Optional: true})
	}

	app := httptransport.NewServer(httptransport.ServerDependencies{
		Name:           cfg.App.Name,
		Version:        cfg.App.Version,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        metrics,
		Tickets:        tickets,
		History:        history,
		Users:          users,
		Auth:           authService,
		Reports:        service.NewReportService(rt.tickets),
		UserRepo:       rt.users,
		Revocations:    revocations,
		Dependencies:   deps,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.Bool("postgres", rt.postgres.Enabled()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		logger.Error("fiber listen", zap.Error(err))
		return err
	case sig := <-shutdownSignal():
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	return app.ShutdownWithTimeout(shutdownTimeout)
}

func countEvents(dispatcher events.Dispatcher, metrics *observability.Metrics) {
	types := append([]events.EventType{}, events.AllTicketEvents...)
	types = append(types, events.EventUserCreated, events.EventUserDeleted)
	for _, et := range types {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			metrics.RecordEvent(string(e.Type))
			return nil
		})
	}
}

func shutdownSignal() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}
