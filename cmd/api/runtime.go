package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/config"
	"github.com/spec-kit/ticketdesk/internal/observability"
	"github.com/spec-kit/ticketdesk/internal/persistence"
	"github.com/spec-kit/ticketdesk/internal/repository"
)

var errDatabaseRequired = errors.New("this command requires POSTGRES_DSN")

// runtime holds the configuration, logger and store shared by every command.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	postgres *persistence.Postgres
	tickets  repository.TicketRepository
	users    repository.UserRepository
	history  repository.TicketHistoryRepository
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logger, postgres: pg}
	if pg.Enabled() {
		rt.tickets = repository.NewTicketRepository(pg.PoolHandle())
		rt.users = repository.NewUserRepository(pg.PoolHandle())
		rt.history = repository.NewTicketHistoryRepository(pg.PoolHandle())
	} else {
		store := repository.NewMemoryStore()
		rt.tickets = store.Tickets()
		rt.users = store.Users()
		rt.history = store.History()
	}
	return rt, nil
}

func (r *runtime) requireDatabase() error {
	if !r.postgres.Enabled() {
		return errDatabaseRequired
	}
	return nil
}

func (r *runtime) Close() {
	r.postgres.Close()
	_ = r.logger.Sync()
}
