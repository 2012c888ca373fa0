package sqlite

import (
	"context"
	"time"

	"github.com/example/eventboard/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite
type UserRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewUserRepository creates a new SQLite user repository
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:   pool,
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateUser inserts a new user. A second user with the same e-mail is
// rejected by the UNIQUE constraint with persistence.ErrDuplicate, which
// keeps concurrent registrations race free.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	const query = `
		INSERT INTO users (id, user_name, surname, email, password_hash, user_group, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	return r.retry.WithRetry(ctx, func() error {
		_, err := r.pool.DB().ExecContext(ctx, query,
			user.ID,
			user.DisplayName,
			user.Surname,
			user.Email,
			user.PasswordHash,
			user.Group,
			user.Phone,
			user.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		return err
	})
}

// GetUser retrieves a user by ID
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	return r.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a user by the exact stored e-mail address
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	if email == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	return r.getUser(ctx, "email", email)
}

func (r *UserRepository) getUser(ctx context.Context, column, value string) (persistence.User, error) {
	query := `
		SELECT id, user_name, surname, email, password_hash, user_group, phone, created_at
		FROM users
		WHERE ` + column + ` = ?
	`

	var user persistence.User
	var createdAt string

	err := r.pool.DB().QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.DisplayName,
		&user.Surname,
		&user.Email,
		&user.PasswordHash,
		&user.Group,
		&user.Phone,
		&createdAt,
	)
	if err != nil {
		return persistence.User{}, r.mapper.MapError(err)
	}

	if user.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.User{}, err
	}

	return user, nil
}
