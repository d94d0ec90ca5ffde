package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ae-portal/internal/database"
	"ae-portal/internal/models"
)

// ClubRepository handles club data operations
type ClubRepository struct {
	db database.Querier
}

// Create inserts a club
func (r *ClubRepository) Create(ctx context.Context, club *models.Club) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO clubs (name) VALUES ($1) RETURNING id`, club.Name,
	).Scan(&club.ID)
	if err != nil {
		return fmt.Errorf("failed to create club: %w", err)
	}
	return nil
}

// CounterRepository handles point of sale data operations
type CounterRepository struct {
	db database.Querier
}

// Create inserts a counter
func (r *CounterRepository) Create(ctx context.Context, counter *models.Counter) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO counters (name, type) VALUES ($1, $2) RETURNING id`,
		counter.Name, counter.Type,
	).Scan(&counter.ID)
	if err != nil {
		return fmt.Errorf("failed to create counter: %w", err)
	}
	return nil
}

// GetByType returns the first counter of the given type
func (r *CounterRepository) GetByType(ctx context.Context, counterType models.CounterType) (*models.Counter, error) {
	query := `SELECT id, name, type FROM counters WHERE type = $1 ORDER BY id LIMIT 1`

	counter := &models.Counter{}
	err := r.db.QueryRowContext(ctx, query, counterType).Scan(&counter.ID, &counter.Name, &counter.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("counter of type %s: %w", counterType, models.ErrCounterNotFound)
		}
		return nil, fmt.Errorf("failed to get counter: %w", err)
	}

	return counter, nil
}

// AddProduct makes a product available at the counter
func (r *CounterRepository) AddProduct(ctx context.Context, counterID, productID int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO counter_products (counter_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, counterID, productID)
	if err != nil {
		return fmt.Errorf("failed to add product to counter: %w", err)
	}
	return nil
}
