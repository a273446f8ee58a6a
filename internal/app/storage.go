package app

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/shop/internal/health"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
	"github.com/vladislavdragonenkov/shop/internal/storage/postgres"
)

// runtimeStorage — выбранное хранилище и всё, что нужно для его обслуживания.
type runtimeStorage struct {
	store          domain.Store
	storageChecker healthcheck.Checker
	closeFn        func() error
}

func (s runtimeStorage) close(logger *log.Entry) {
	if s.closeFn == nil {
		return
	}
	if err := s.closeFn(); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}

// initStorage открывает хранилище согласно cfg.StorageDriver.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (runtimeStorage, error) {
	switch driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver)); driver {
	case StorageDriverMemory, "":
		store := memory.NewStore()
		logger.WithField("driver", StorageDriverMemory).Info("storage initialized")
		return runtimeStorage{
			store:          store,
			storageChecker: healthcheck.NewStorageChecker(store),
		}, nil

	case StorageDriverPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return runtimeStorage{}, fmt.Errorf("postgres dsn is required for postgres storage driver")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return runtimeStorage{}, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return runtimeStorage{}, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}
		logger.WithField("driver", StorageDriverPostgres).Info("storage initialized")
		return runtimeStorage{
			store:          store,
			storageChecker: healthcheck.NewStorageChecker(store),
			closeFn:        store.Close,
		}, nil

	default:
		return runtimeStorage{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
