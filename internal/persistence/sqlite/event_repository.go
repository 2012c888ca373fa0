package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/eventboard/internal/persistence"
)

const eventColumns = `id, name, date, place, image, price, description`

// EventRepository implements persistence.EventRepository using SQLite
type EventRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewEventRepository creates a new SQLite event repository
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		pool:   pool,
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateEvent inserts a new event
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `INSERT INTO events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	return r.retry.WithRetry(ctx, func() error {
		_, err := r.pool.DB().ExecContext(ctx, query, eventArgs(event)...)
		return err
	})
}

// InsertEventIfAbsent inserts the event unless a row with the same ID exists
func (r *EventRepository) InsertEventIfAbsent(ctx context.Context, event persistence.Event) (bool, error) {
	if event.ID == "" {
		return false, persistence.ErrConstraintViolation
	}

	query := `INSERT OR IGNORE INTO events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	var inserted bool
	err := r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, query, eventArgs(event)...)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted = affected > 0
		return nil
	})
	return inserted, err
}

// UpdateEvent applies the non-nil fields of patch to the event
func (r *EventRepository) UpdateEvent(ctx context.Context, id string, patch persistence.EventPatch) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	if patch.Empty() {
		return persistence.ErrConstraintViolation
	}

	var sets []string
	var args []any
	for _, field := range []struct {
		column string
		value  *string
	}{
		{"name", patch.Name},
		{"date", patch.Date},
		{"place", patch.Place},
		{"image", patch.Image},
		{"price", patch.Price},
		{"description", patch.Description},
	} {
		if field.value != nil {
			sets = append(sets, field.column+" = ?")
			args = append(args, *field.value)
		}
	}
	args = append(args, id)

	query := `UPDATE events SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	return r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
}

// GetEvent retrieves an event by ID
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	if id == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	event, err := scanEvent(row)
	if err != nil {
		return persistence.Event{}, r.mapper.MapError(err)
	}
	return event, nil
}

// ListEvents returns all events ordered by date, then ID
func (r *EventRepository) ListEvents(ctx context.Context) ([]persistence.Event, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	return collectEvents(rows, r.mapper)
}

// DeleteEvent removes an event; its subscriptions go with it
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
}

func eventArgs(event persistence.Event) []any {
	return []any{
		event.ID,
		event.Name,
		event.Date,
		event.Place,
		event.Image,
		event.Price,
		event.Description,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (persistence.Event, error) {
	var event persistence.Event
	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Date,
		&event.Place,
		&event.Image,
		&event.Price,
		&event.Description,
	)
	return event, err
}

func collectEvents(rows *sql.Rows, mapper *ErrorMapper) ([]persistence.Event, error) {
	defer rows.Close()

	events := []persistence.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, mapper.MapError(err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, mapper.MapError(err)
	}
	return events, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
