package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/eventboard/internal/persistence"
	"github.com/example/eventboard/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

const schemaDir = "migrations"

// Storage bundles the SQLite repositories over one connection pool. It
// satisfies every repository interface in the persistence package.
type Storage struct {
	*UserRepository
	*EventRepository
	*SubscriptionRepository

	pool *ConnectionPool
}

var (
	_ persistence.UserRepository         = (*Storage)(nil)
	_ persistence.EventRepository        = (*Storage)(nil)
	_ persistence.SubscriptionRepository = (*Storage)(nil)
)

// Open connects to the database at path using the production settings.
func Open(path string) (*Storage, error) {
	return OpenWithConfig(migration.DefaultSQLiteConfig(path))
}

// OpenWithConfig connects using an explicit SQLite configuration.
func OpenWithConfig(config migration.SQLiteConfig) (*Storage, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}

	return &Storage{
		UserRepository:         NewUserRepository(pool),
		EventRepository:        NewEventRepository(pool),
		SubscriptionRepository: NewSubscriptionRepository(pool),
		pool:                   pool,
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context, logger *slog.Logger) error {
	manager := migration.NewMigrationManager(
		migration.NewFileScanner(),
		migration.NewSQLiteExecutor(s.pool.DB()),
		schemaFS,
		schemaDir,
		logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

func parseTimestamp(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse timestamp %q: %w", value, err)
	}
	return parsed, nil
}
