package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/auth"
)

func newUserCmd(b backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var email string
	grant := &cobra.Command{
		Use:   "grant-admin",
		Short: "Give the admin role to an existing user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" {
				return fmt.Errorf("--email is required")
			}
			dsn, err := resolveDSN(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()

			store, closeFn, err := b.openStore(ctx, dsn)
			if err != nil {
				return fmt.Errorf("open postgres store: %w", err)
			}
			defer func() {
				if err := closeFn(); err != nil {
					b.logger.WithError(err).Warn("failed to close store")
				}
			}()

			// Выдача роли не выпускает токенов, поэтому издатель не нужен.
			svc := auth.NewService(store, nil, b.logger)
			profile, err := svc.GrantRole(ctx, email, domain.RoleAdmin)
			if err != nil {
				return fmt.Errorf("grant admin: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user %d (%s) roles: %s\n", profile.ID, profile.Email, strings.Join(profile.Roles, ", "))
			return nil
		},
	}
	grant.Flags().StringVar(&email, "email", "", "email of the user")

	cmd.AddCommand(grant)
	return cmd
}
