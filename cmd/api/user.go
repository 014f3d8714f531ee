package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticketdesk/internal/clock"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/service"
)

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Account administration",
	}

	var username, password, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account directly in the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.requireDatabase(); err != nil {
				return err
			}

			parsed, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			users := service.NewUserService(service.UserDependencies{
				UserRepo:   rt.users,
				Clock:      clock.Real(),
				BcryptCost: rt.cfg.Auth.BcryptCost,
				Logger:     rt.logger,
			})
			user, err := users.RegisterUser(cmd.Context(), "cli", service.CreateUserInput{
				Username: username,
				Password: password,
				Role:     parsed,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", user.Username, user.Role)
			return nil
		},
	}
	create.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	create.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	create.Flags().StringVarP(&role, "role", "r", string(domain.RoleRequester), "Role: Requester, Support or Administrator")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
