package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newMigrateCmd(b backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	var upSteps, downSteps int

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations (all by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, b, func(ctx context.Context, m migrator) error {
				if err := m.MigrateUp(ctx, upSteps); err != nil {
					return fmt.Errorf("migrate up failed: %w", err)
				}
				return printState(ctx, cmd.OutOrStdout(), m, "migrate up ok")
			})
		},
	}
	up.Flags().IntVar(&upSteps, "steps", 0, "number of migrations to apply (0 = all)")

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (one by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, b, func(ctx context.Context, m migrator) error {
				if err := m.MigrateDown(ctx, downSteps); err != nil {
					return fmt.Errorf("migrate down failed: %w", err)
				}
				return printState(ctx, cmd.OutOrStdout(), m, "migrate down ok")
			})
		},
	}
	down.Flags().IntVar(&downSteps, "steps", 1, "number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, b, func(ctx context.Context, m migrator) error {
				return printState(ctx, cmd.OutOrStdout(), m, "migration status")
			})
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}

func withMigrator(cmd *cobra.Command, b backend, fn func(ctx context.Context, m migrator) error) error {
	dsn, err := resolveDSN(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
	defer cancel()

	m, err := b.openMigrator(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open postgres store: %w", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			b.logger.WithError(err).Warn("failed to close store")
		}
	}()

	return fn(ctx, m)
}

func printState(ctx context.Context, out io.Writer, m migrator, title string) error {
	state, err := m.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	_, _ = fmt.Fprintf(out, "%s: version=%d applied=%d pending=%d\n", title, state.Version, len(state.Applied), len(state.Pending))
	if len(state.Pending) > 0 {
		_, _ = fmt.Fprintf(out, "pending: %s\n", strings.Join(state.Pending, ", "))
	}
	return nil
}
