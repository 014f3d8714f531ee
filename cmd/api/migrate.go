package main

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/ticketdesk/internal/persistence"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back or inspect the embedded Postgres schema migrations.`,
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.requireDatabase(); err != nil {
				return err
			}
			return persistence.RollbackMigrations(cmd.Context(), rt.postgres.PoolHandle(), steps, rt.logger)
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Run all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				rt, err := openRuntime(cmd.Context())
				if err != nil {
					return err
				}
				defer rt.Close()
				if err := rt.requireDatabase(); err != nil {
					return err
				}
				return persistence.RunMigrations(cmd.Context(), rt.postgres.PoolHandle(), rt.logger)
			},
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE: func(cmd *cobra.Command, _ []string) error {
				rt, err := openRuntime(cmd.Context())
				if err != nil {
					return err
				}
				defer rt.Close()
				if err := rt.requireDatabase(); err != nil {
					return err
				}
				return persistence.MigrationStatus(cmd.Context(), rt.postgres.PoolHandle())
			},
		},
	)
	return cmd
}
