// Package backend opens the configured storage.Store and the attempt
// history log.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/learnhub/internal/domain"
	"github.com/felixgeelhaar/learnhub/internal/storage"
	"github.com/felixgeelhaar/learnhub/internal/storage/local"
	"github.com/felixgeelhaar/learnhub/internal/storage/memory"
	"github.com/felixgeelhaar/learnhub/internal/storage/postgres"
	"github.com/felixgeelhaar/learnhub/internal/storage/redis"
	"github.com/felixgeelhaar/learnhub/internal/storage/resilient"
	"github.com/felixgeelhaar/learnhub/internal/storage/sqlite"
)

// Supported drivers
const (
	DriverMemory   = "memory"
	DriverLocal    = "local"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Drivers lists every supported driver name
func Drivers() []string {
	return []string{DriverMemory, DriverLocal, DriverSQLite, DriverPostgres, DriverRedis}
}

// Config selects and configures a backend
type Config struct {
	Driver string

	// Path is the directory for local or the database file for sqlite
	Path string

	// DSN is the PostgreSQL connection string
	DSN string

	Redis redis.Options

	// HistoryPath is a SQLite file for the attempt history. Empty disables
	// history unless Driver is sqlite, which keeps it in the same database.
	HistoryPath string

	Resilience resilient.Config
	Logger     *slog.Logger
}

// Backend is an opened store plus the optional attempt history
type Backend struct {
	Store   storage.Store
	History *sqlite.AttemptLog
	Driver  string

	closers []func() error
}

// Open connects the configured driver. Remote drivers are wrapped with
// retry and a circuit breaker.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverLocal
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Resilience.Logger = logger

	b := &Backend{Driver: driver}
	var historyDB *sqlite.DB

	switch driver {
	case DriverMemory:
		b.Store = memory.NewStore()

	case DriverLocal:
		if cfg.Path == "" {
			return nil, fmt.Errorf("%w: local storage needs a path", domain.ErrConfiguration)
		}
		s, err := local.NewStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open local store: %w", err)
		}
		b.Store = s

	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("%w: sqlite storage needs a path", domain.ErrConfiguration)
		}
		db, err := sqlite.OpenMigrated(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		b.Store = sqlite.NewKVStore(db)
		b.closers = append(b.closers, db.Close)
		historyDB = db

	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("%w: postgres storage needs a dsn", domain.ErrConfiguration)
		}
		s, err := postgres.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		b.Store = resilient.Wrap(s, DriverPostgres, cfg.Resilience)
		b.closers = append(b.closers, s.Close)

	case DriverRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("%w: redis storage needs an address", domain.ErrConfiguration)
		}
		s, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		b.Store = resilient.Wrap(s, DriverRedis, cfg.Resilience)
		b.closers = append(b.closers, s.Close)

	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q (want one of %s)",
			domain.ErrConfiguration, cfg.Driver, strings.Join(Drivers(), ", "))
	}

	if historyDB == nil && cfg.HistoryPath != "" {
		db, err := sqlite.OpenMigrated(cfg.HistoryPath)
		if err != nil {
			// History is optional; play continues without it.
			logger.Warn("attempt history unavailable", "path", cfg.HistoryPath, "error", err)
		} else {
			historyDB = db
			b.closers = append(b.closers, db.Close)
		}
	}
	if historyDB != nil {
		b.History = sqlite.NewAttemptLog(historyDB)
	}

	logger.Debug("storage opened", "driver", driver, "history", b.History != nil)
	return b, nil
}

// Close releases every connection the backend holds
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
