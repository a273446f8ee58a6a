// Command shopctl — административные операции: миграции схемы и выдача ролей.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/storage/postgres"
	"github.com/vladislavdragonenkov/shop/internal/version"
)

const (
	defaultTimeout = 30 * time.Second
	envPostgresDSN = "SHOP_POSTGRES_DSN"
)

// migrator — операции схемы, которые нужны CLI.
type migrator interface {
	MigrateUp(ctx context.Context, steps int) error
	MigrateDown(ctx context.Context, steps int) error
	MigrationStatus(ctx context.Context) (postgres.MigrationState, error)
	Close() error
}

// backend открывает хранилище по DSN; в тестах подменяется.
type backend struct {
	openMigrator func(ctx context.Context, dsn string) (migrator, error)
	openStore    func(ctx context.Context, dsn string) (domain.Store, func() error, error)
	logger       *log.Entry
}

func postgresBackend() backend {
	return backend{
		openMigrator: func(ctx context.Context, dsn string) (migrator, error) {
			return postgres.Open(ctx, dsn)
		},
		openStore: func(ctx context.Context, dsn string) (domain.Store, func() error, error) {
			store, err := postgres.Open(ctx, dsn)
			if err != nil {
				return nil, nil, err
			}
			return store, store.Close, nil
		},
		logger: log.WithField("component", "shopctl"),
	}
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := newRootCmd(postgresBackend()).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(b backend) *cobra.Command {
	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Shop administration CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("dsn", "", "PostgreSQL DSN (fallback: "+envPostgresDSN+")")

	root.AddCommand(newMigrateCmd(b))
	root.AddCommand(newUserCmd(b))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	})
	return root
}

// resolveDSN берёт --dsn, иначе SHOP_POSTGRES_DSN.
func resolveDSN(cmd *cobra.Command) (string, error) {
	dsn, err := cmd.Flags().GetString("dsn")
	if err != nil {
		return "", err
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv(envPostgresDSN))
	}
	if dsn == "" {
		return "", fmt.Errorf("%s (or --dsn) is required", envPostgresDSN)
	}
	return dsn, nil
}
