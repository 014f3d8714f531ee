package persistence

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNoDatabase is returned by migration commands when no pool is configured.
var ErrNoDatabase = errors.New("postgres is not configured")

// RunMigrations applies every pending embedded migration.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}
	return withGoose(pool, func(db *sql.DB) error {
		before, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("read migration version: %w", err)
		}
		if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		after, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("read migration version: %w", err)
		}
		logger.Info("migrations applied", zap.Int64("from_version", before), zap.Int64("to_version", after))
		return nil
	})
}

// RollbackMigrations reverts the given number of migrations.
func RollbackMigrations(ctx context.Context, pool *pgxpool.Pool, steps int, logger *zap.Logger) error {
	if pool == nil {
		return ErrNoDatabase
	}
	return withGoose(pool, func(db *sql.DB) error {
		for i := 0; i < steps; i++ {
			if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
				return fmt.Errorf("rollback migration: %w", err)
			}
		}
		logger.Info("migrations rolled back", zap.Int("steps", steps))
		return nil
	})
}

// MigrationStatus prints the state of every migration through goose's logger.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return ErrNoDatabase
	}
	return withGoose(pool, func(db *sql.DB) error {
		return goose.StatusContext(ctx, db, migrationsDir)
	})
}

func withGoose(pool *pgxpool.Pool, fn func(db *sql.DB) error) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return fn(db)
}
