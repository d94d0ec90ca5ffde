package repositories

import (
	"context"
	"fmt"
	"time"

	"ae-portal/internal/database"
	"ae-portal/internal/models"
)

// SellingRepository records sales. Creating a selling paid from the internal
// account debits the customer in the same transaction.
type SellingRepository struct {
	db        database.Querier
	customers *CustomerRepository
}

// Create records a selling and debits the customer when it is paid from the
// internal account.
func (r *SellingRepository) Create(ctx context.Context, s *models.Selling) error {
	if !s.PaymentMethod.IsValid() {
		return fmt.Errorf("unknown payment method %q: %w", s.PaymentMethod, models.ErrInvalidInput)
	}
	if s.Quantity < 1 {
		return fmt.Errorf("selling %q: %w", s.Label, models.ErrInvalidQuantity)
	}

	if s.PaymentMethod == models.PaymentSithAccount {
		if _, err := r.customers.Debit(ctx, s.CustomerID, s.Total()); err != nil {
			return fmt.Errorf("failed to debit customer: %w", err)
		}
	}

	if s.Date.IsZero() {
		s.Date = time.Now()
	}

	query := `
		INSERT INTO sellings (label, counter_id, club_id, product_id, seller_id, customer_id, unit_price, quantity, payment_method, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		s.Label,
		s.CounterID,
		s.ClubID,
		s.ProductID,
		s.SellerID,
		s.CustomerID,
		s.UnitPrice,
		s.Quantity,
		s.PaymentMethod,
		s.Date,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to create selling: %w", err)
	}

	return nil
}

// ListByCustomer returns the sellings of a customer, newest first
func (r *SellingRepository) ListByCustomer(ctx context.Context, customerID int) ([]*models.Selling, error) {
	query := `
		SELECT id, label, counter_id, club_id, product_id, seller_id, customer_id, unit_price, quantity, payment_method, date
		FROM sellings
		WHERE customer_id = $1
		ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sellings: %w", err)
	}
	defer rows.Close()

	var sellings []*models.Selling
	for rows.Next() {
		s := &models.Selling{}
		err := rows.Scan(
			&s.ID,
			&s.Label,
			&s.CounterID,
			&s.ClubID,
			&s.ProductID,
			&s.SellerID,
			&s.CustomerID,
			&s.UnitPrice,
			&s.Quantity,
			&s.PaymentMethod,
			&s.Date,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan selling: %w", err)
		}
		sellings = append(sellings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sellings: %w", err)
	}

	return sellings, nil
}
