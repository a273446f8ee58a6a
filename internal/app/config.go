package app

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// StorageDriverMemory хранит данные в памяти процесса (разработка, тесты).
	StorageDriverMemory = "memory"
	// StorageDriverPostgres использует PostgreSQL через pgx.
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool

	JWTSecret string
	JWTTTL    time.Duration

	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает базовые адреса и параметры хранилища.
// Секрет JWT по умолчанию пуст и должен быть задан явно.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		JWTTTL:              24 * time.Hour,
		ShutdownTimeout:     5 * time.Second,
	}
}

// Validate проверяет согласованность настроек и возвращает все нарушения сразу.
func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(strings.TrimSpace(c.StorageDriver)) {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("postgres dsn is required for postgres storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q", c.StorageDriver))
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("jwt secret is required"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("jwt ttl must be positive"))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http addr is required"))
	}

	return errors.Join(errs...)
}
