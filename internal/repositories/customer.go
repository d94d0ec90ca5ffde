package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"ae-portal/internal/database"
	"ae-portal/internal/models"
)

// CustomerRepository handles prepaid accounts. Balances are read and written
// whole so the arithmetic stays in exact decimal on every driver.
type CustomerRepository struct {
	db      database.Querier
	dialect database.Dialect
}

// AccountID derives the public account number of a user.
func AccountID(userID int) string {
	return fmt.Sprintf("%04d%c", userID, 'a'+rune(userID%26))
}

// Create opens an account for a user
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if customer.AccountID == "" {
		customer.AccountID = AccountID(customer.UserID)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (user_id, account_id, amount) VALUES ($1, $2, $3)`,
		customer.UserID, customer.AccountID, customer.Amount,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// GetByUserID retrieves the account of a user
func (r *CustomerRepository) GetByUserID(ctx context.Context, userID int) (*models.Customer, error) {
	return r.get(ctx, userID, "")
}

// GetByUserIDForUpdate retrieves the account of a user and locks the row
// until the surrounding transaction ends.
func (r *CustomerRepository) GetByUserIDForUpdate(ctx context.Context, userID int) (*models.Customer, error) {
	return r.get(ctx, userID, r.dialect.ForUpdate())
}

func (r *CustomerRepository) get(ctx context.Context, userID int, lock string) (*models.Customer, error) {
	query := `SELECT user_id, account_id, amount FROM customers WHERE user_id = $1` + lock

	customer := &models.Customer{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&customer.UserID, &customer.AccountID, &customer.Amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer for user %d: %w", userID, models.ErrCustomerNotFound)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// SetAmount overwrites the balance of an account
func (r *CustomerRepository) SetAmount(ctx context.Context, userID int, amount decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx, `UPDATE customers SET amount = $1 WHERE user_id = $2`, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to update customer amount: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("customer for user %d: %w", userID, models.ErrCustomerNotFound)
	}
	return nil
}

// Debit removes amount from the balance. It refuses to go below zero.
func (r *CustomerRepository) Debit(ctx context.Context, userID int, amount decimal.Decimal) (*models.Customer, error) {
	customer, err := r.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !customer.CanAfford(amount) {
		return nil, fmt.Errorf("customer %s owes %s with %s available: %w",
			customer.AccountID, amount, customer.Amount, models.ErrInsufficientFunds)
	}

	customer.Amount = customer.Amount.Sub(amount)
	if err := r.SetAmount(ctx, userID, customer.Amount); err != nil {
		return nil, err
	}
	return customer, nil
}

// Credit adds amount to the balance, opening the account when the user has none.
func (r *CustomerRepository) Credit(ctx context.Context, userID int, amount decimal.Decimal) (*models.Customer, error) {
	customer, err := r.GetByUserIDForUpdate(ctx, userID)
	if errors.Is(err, models.ErrCustomerNotFound) {
		customer = &models.Customer{UserID: userID, Amount: amount}
		if err := r.Create(ctx, customer); err != nil {
			return nil, err
		}
		return customer, nil
	}
	if err != nil {
		return nil, err
	}

	customer.Amount = customer.Amount.Add(amount)
	if err := r.SetAmount(ctx, userID, customer.Amount); err != nil {
		return nil, err
	}
	return customer, nil
}
