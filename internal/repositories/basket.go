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

// BasketRepository handles basket data operations
type BasketRepository struct {
	db      database.Querier
	dialect database.Dialect
}

// Create inserts an empty basket for a user
func (r *BasketRepository) Create(ctx context.Context, userID int) (*models.Basket, error) {
	basket := &models.Basket{UserID: userID, Date: time.Now(), Items: []models.BasketItem{}}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO baskets (user_id, date) VALUES ($1, $2) RETURNING id`,
		basket.UserID, basket.Date,
	).Scan(&basket.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create basket: %w", err)
	}
	return basket, nil
}

// GetByID retrieves a basket with its items
func (r *BasketRepository) GetByID(ctx context.Context, id int) (*models.Basket, error) {
	return r.get(ctx, id, "")
}

// GetByIDForUpdate retrieves a basket with its items and locks the basket row
// until the surrounding transaction ends.
func (r *BasketRepository) GetByIDForUpdate(ctx context.Context, id int) (*models.Basket, error) {
	return r.get(ctx, id, r.dialect.ForUpdate())
}

func (r *BasketRepository) get(ctx context.Context, id int, lock string) (*models.Basket, error) {
	query := `SELECT id, user_id, date FROM baskets WHERE id = $1` + lock

	basket := &models.Basket{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&basket.ID, &basket.UserID, &basket.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("basket with id %d: %w", id, models.ErrBasketNotFound)
		}
		return nil, fmt.Errorf("failed to get basket: %w", err)
	}

	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	basket.Items = items

	return basket, nil
}

func (r *BasketRepository) items(ctx context.Context, basketID int) ([]models.BasketItem, error) {
	query := `
		SELECT id, basket_id, product_id, product_name, type_id, product_unit_price, quantity
		FROM basket_items
		WHERE basket_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, basketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get basket items: %w", err)
	}
	defer rows.Close()

	items := []models.BasketItem{}
	for rows.Next() {
		var item models.BasketItem
		err := rows.Scan(
			&item.ID,
			&item.BasketID,
			&item.ProductID,
			&item.ProductName,
			&item.TypeID,
			&item.ProductUnitPrice,
			&item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan basket item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate basket items: %w", err)
	}

	return items, nil
}

// AddItem inserts a line or, when the product is already in the basket, adds
// quantity to the existing line. The snapshot of the first add is kept.
func (r *BasketRepository) AddItem(ctx context.Context, basketID int, product *models.Product, quantity int) error {
	if quantity < 1 {
		return models.ErrInvalidQuantity
	}

	query := `
		INSERT INTO basket_items (basket_id, product_id, product_name, type_id, product_unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (basket_id, product_id)
		DO UPDATE SET quantity = basket_items.quantity + excluded.quantity`

	_, err := r.db.ExecContext(ctx, query,
		basketID,
		product.ID,
		product.Name,
		product.TypeID(),
		product.SellingPrice,
		quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to add basket item: %w", err)
	}
	return nil
}

// RemoveItem takes quantity away from a line, deleting it when nothing is
// left. Removing a product that is not in the basket does nothing.
func (r *BasketRepository) RemoveItem(ctx context.Context, basketID, productID, quantity int) error {
	if quantity < 1 {
		return models.ErrInvalidQuantity
	}

	_, err := r.db.ExecContext(ctx, `
		DELETE FROM basket_items
		WHERE basket_id = $1 AND product_id = $2 AND quantity <= $3`,
		basketID, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to delete basket item: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE basket_items SET quantity = quantity - $1
		WHERE basket_id = $2 AND product_id = $3`,
		quantity, basketID, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to update basket item: %w", err)
	}
	return nil
}

// Clear deletes every line of a basket and keeps the basket itself
func (r *BasketRepository) Clear(ctx context.Context, basketID int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM basket_items WHERE basket_id = $1`, basketID); err != nil {
		return fmt.Errorf("failed to clear basket: %w", err)
	}
	return nil
}

// Delete removes a basket and its lines. It fails with ErrBasketNotFound
// unless exactly one basket row was deleted, so of two concurrent settlements
// only one can succeed.
func (r *BasketRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM baskets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete basket: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows != 1 {
		return fmt.Errorf("basket with id %d: %w", id, models.ErrBasketNotFound)
	}
	return nil
}
