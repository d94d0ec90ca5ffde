package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ae-portal/internal/database"
	"ae-portal/internal/models"
)

// UserRepository reads association members
type UserRepository struct {
	db database.Querier
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Querier) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, first_name, last_name, subscribed_until, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.SubscribedUntil,
		&user.CreatedAt,
	)
	return user, err
}

// Create inserts a user. Accounts are normally managed by the authentication
// system; this is used by the seed command and tests.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO users (username, email, first_name, last_name, subscribed_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.SubscribedUntil,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %d: %w", id, models.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, models.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateSubscription sets the end of the user's subscription
func (r *UserRepository) UpdateSubscription(ctx context.Context, id int, until *time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET subscribed_until = $1 WHERE id = $2`, until, id)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user with id %d: %w", id, models.ErrUserNotFound)
	}

	return nil
}
