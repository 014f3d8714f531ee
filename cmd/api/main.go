package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ticketdesk",
		Short:         "ticketdesk - role-based support ticket service",
		Long:          `ticketdesk serves the ticket HTTP API and ships database migration and account administration tools.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newUserCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
