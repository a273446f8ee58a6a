package app

import (
	"context"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/shop/internal/health"
)

func TestInitStorage_Memory(t *testing.T) {
	t.Parallel()

	storage, err := initStorage(context.Background(), Config{
		StorageDriver: StorageDriverMemory,
	}, log.WithField("test", "memory-storage"))
	if err != nil {
		t.Fatalf("initStorage(memory) failed: %v", err)
	}
	if storage.store == nil {
		t.Fatal("store should not be nil for memory storage")
	}
	if storage.closeFn != nil {
		t.Fatal("memory storage has nothing to close")
	}
	if storage.storageChecker == nil {
		t.Fatal("storage checker should not be nil")
	}
	check := storage.storageChecker.Check(context.Background())
	if check.Status != healthcheck.StatusHealthy {
		t.Fatalf("expected healthy memory storage, got %+v", check)
	}
}

func TestInitStorage_PostgresRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := initStorage(context.Background(), Config{
		StorageDriver: StorageDriverPostgres,
	}, log.WithField("test", "postgres-missing-dsn"))
	if err == nil {
		t.Fatal("expected error when postgres driver is selected without DSN")
	}
}

func TestInitStorage_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := initStorage(context.Background(), Config{
		StorageDriver: "sqlite",
	}, log.WithField("test", "unsupported-driver"))
	if err == nil || !strings.Contains(err.Error(), "unsupported storage driver") {
		t.Fatalf("expected unsupported storage driver error, got %v", err)
	}
}

func TestRuntimeStorage_CloseIsNilSafe(t *testing.T) {
	closed := false
	runtimeStorage{closeFn: func() error { closed = true; return nil }}.close(log.WithField("test", "close"))
	if !closed {
		t.Fatal("expected closeFn to be called")
	}

	runtimeStorage{}.close(log.WithField("test", "close-nil"))
}
