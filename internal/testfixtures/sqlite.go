package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/eventboard/internal/persistence"
	"github.com/example/eventboard/internal/persistence/sqlite"
)

// SQLiteHarness is a migrated eventboard database in a temporary file.
type SQLiteHarness struct {
	Users         persistence.UserRepository
	Events        persistence.EventRepository
	Subscriptions persistence.SubscriptionRepository
	Storage       *sqlite.Storage

	cleanup func()
}

// Close releases the storage. It is also registered with tb.Cleanup, so
// calling it is optional.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens eventboard.db under tb.TempDir and applies the
// embedded migrations.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	storage, err := sqlite.Open(filepath.Join(tb.TempDir(), "eventboard.db"))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := storage.Migrate(context.Background(), logger); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Users:         storage,
		Events:        storage,
		Subscriptions: storage,
		Storage:       storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedUser stores the fixture and returns the persisted row.
func (h *SQLiteHarness) SeedUser(tb testing.TB, fixture UserFixture) persistence.User {
	tb.Helper()

	user := fixture.Persistence()
	if err := h.Users.CreateUser(context.Background(), user); err != nil {
		tb.Fatalf("failed to seed user %s: %v", user.Email, err)
	}
	return user
}

// SeedEvents stores the fixtures in order and returns the persisted rows.
func (h *SQLiteHarness) SeedEvents(tb testing.TB, fixtures ...EventFixture) []persistence.Event {
	tb.Helper()

	events := make([]persistence.Event, 0, len(fixtures))
	for _, fixture := range fixtures {
		event := fixture.Persistence()
		if err := h.Events.CreateEvent(context.Background(), event); err != nil {
			tb.Fatalf("failed to seed event %s: %v", event.ID, err)
		}
		events = append(events, event)
	}
	return events
}
