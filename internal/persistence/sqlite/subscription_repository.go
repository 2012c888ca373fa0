package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/eventboard/internal/persistence"
)

// SubscriptionRepository implements persistence.SubscriptionRepository using SQLite
type SubscriptionRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewSubscriptionRepository creates a new SQLite subscription repository
func NewSubscriptionRepository(pool *ConnectionPool) *SubscriptionRepository {
	return &SubscriptionRepository{
		pool:   pool,
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// AddSubscription stores the subscription. An unknown user or event yields
// persistence.ErrForeignKeyViolation.
func (r *SubscriptionRepository) AddSubscription(ctx context.Context, sub persistence.Subscription) (bool, error) {
	if sub.UserID == "" || sub.EventID == "" {
		return false, persistence.ErrConstraintViolation
	}

	const query = `
		INSERT INTO subscriptions (user_id, event_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`

	var created bool
	err := r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, query,
			sub.UserID,
			sub.EventID,
			sub.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		created = affected > 0
		return nil
	})
	return created, err
}

// RemoveSubscription deletes the subscription or returns persistence.ErrNotFound
func (r *SubscriptionRepository) RemoveSubscription(ctx context.Context, userID, eventID string) error {
	return r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx,
			`DELETE FROM subscriptions WHERE user_id = ? AND event_id = ?`, userID, eventID)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
}

// HasSubscription reports whether the user is subscribed to the event
func (r *SubscriptionRepository) HasSubscription(ctx context.Context, userID, eventID string) (bool, error) {
	var exists int
	err := r.pool.DB().QueryRowContext(ctx,
		`SELECT 1 FROM subscriptions WHERE user_id = ? AND event_id = ? LIMIT 1`, userID, eventID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, r.mapper.MapError(err)
	}
	return true, nil
}

// ListSubscribedEvents returns the user's subscribed events ordered by date
func (r *SubscriptionRepository) ListSubscribedEvents(ctx context.Context, userID string) ([]persistence.Event, error) {
	const query = `
		SELECT e.id, e.name, e.date, e.place, e.image, e.price, e.description
		FROM subscriptions s
		JOIN events e ON e.id = s.event_id
		WHERE s.user_id = ?
		ORDER BY e.date ASC, e.id ASC
	`

	rows, err := r.pool.DB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	return collectEvents(rows, r.mapper)
}
