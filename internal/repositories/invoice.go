package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ae-portal/internal/database"
	"ae-portal/internal/models"
)

// InvoiceRepository handles invoice data operations
type InvoiceRepository struct {
	db      database.Querier
	dialect database.Dialect
}

// Create inserts an unvalidated invoice and its items
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	if !inv.PaymentMethod.IsValid() {
		return fmt.Errorf("unknown payment method %q: %w", inv.PaymentMethod, models.ErrInvalidInput)
	}
	if inv.Date.IsZero() {
		inv.Date = time.Now()
	}
	inv.Validated = false

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO invoices (user_id, payment_method, date, validated)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		inv.UserID, inv.PaymentMethod, inv.Date, inv.Validated,
	).Scan(&inv.ID)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	query := `
		INSERT INTO invoice_items (invoice_id, product_id, product_name, type_id, product_unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	for i := range inv.Items {
		item := &inv.Items[i]
		item.InvoiceID = inv.ID
		err := r.db.QueryRowContext(ctx, query,
			item.InvoiceID,
			item.ProductID,
			item.ProductName,
			item.TypeID,
			item.ProductUnitPrice,
			item.Quantity,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to create invoice item: %w", err)
		}
	}

	return nil
}

// GetByID retrieves an invoice with its items
func (r *InvoiceRepository) GetByID(ctx context.Context, id int) (*models.Invoice, error) {
	return r.get(ctx, id, "")
}

// GetByIDForUpdate retrieves an invoice and locks its row
func (r *InvoiceRepository) GetByIDForUpdate(ctx context.Context, id int) (*models.Invoice, error) {
	return r.get(ctx, id, r.dialect.ForUpdate())
}

func (r *InvoiceRepository) get(ctx context.Context, id int, lock string) (*models.Invoice, error) {
	query := `SELECT id, user_id, payment_method, date, validated FROM invoices WHERE id = $1` + lock

	inv := &models.Invoice{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&inv.ID, &inv.UserID, &inv.PaymentMethod, &inv.Date, &inv.Validated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice with id %d: %w", id, models.ErrInvoiceNotFound)
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	items, err := r.items(ctx, []int{id})
	if err != nil {
		return nil, err
	}
	inv.Items = items[id]

	return inv, nil
}

// ListByUser returns the invoices of a user with their items, newest first
func (r *InvoiceRepository) ListByUser(ctx context.Context, userID int) ([]*models.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, payment_method, date, validated
		FROM invoices
		WHERE user_id = $1
		ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	var (
		invoices []*models.Invoice
		ids      []int
	)
	for rows.Next() {
		inv := &models.Invoice{}
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.PaymentMethod, &inv.Date, &inv.Validated); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
		ids = append(ids, inv.ID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	// Release the connection before querying items; SQLite runs on a single one.
	rows.Close()

	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		inv.Items = items[inv.ID]
	}

	return invoices, nil
}

// items loads the items of several invoices keyed by invoice id
func (r *InvoiceRepository) items(ctx context.Context, invoiceIDs []int) (map[int][]models.InvoiceItem, error) {
	result := make(map[int][]models.InvoiceItem, len(invoiceIDs))
	if len(invoiceIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(invoiceIDs))
	args := make([]any, len(invoiceIDs))
	for i, id := range invoiceIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
		result[id] = []models.InvoiceItem{}
	}

	query := `
		SELECT id, invoice_id, product_id, product_name, type_id, product_unit_price, quantity
		FROM invoice_items
		WHERE invoice_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.InvoiceItem
		err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.ProductID,
			&item.ProductName,
			&item.TypeID,
			&item.ProductUnitPrice,
			&item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		result[item.InvoiceID] = append(result[item.InvoiceID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoice items: %w", err)
	}

	return result, nil
}

// MarkValidated flips the validated flag. It fails with ErrInvoiceValidated
// when the invoice was already validated.
func (r *InvoiceRepository) MarkValidated(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET validated = $1 WHERE id = $2 AND validated = $3`,
		true, id, false,
	)
	if err != nil {
		return fmt.Errorf("failed to validate invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("invoice with id %d: %w", id, models.ErrInvoiceValidated)
	}
	return nil
}
