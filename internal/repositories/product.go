package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ae-portal/internal/database"
	"ae-portal/internal/models"
)

// ProductRepository reads the catalog
type ProductRepository struct {
	db database.Querier
}

const productSelect = `
	SELECT p.id, p.name, p.code, p.selling_price, p.club_id, p.archived,
		pt.id, pt.name, pt.requires_subscription
	FROM products p
	LEFT JOIN product_types pt ON pt.id = p.product_type_id`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	product := &models.Product{}
	var (
		typeID       sql.NullInt64
		typeName     sql.NullString
		requiresSubs sql.NullBool
	)

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Code,
		&product.SellingPrice,
		&product.ClubID,
		&product.Archived,
		&typeID,
		&typeName,
		&requiresSubs,
	)
	if err != nil {
		return nil, err
	}

	if typeID.Valid {
		product.ProductType = &models.ProductType{
			ID:                   int(typeID.Int64),
			Name:                 typeName.String,
			RequiresSubscription: requiresSubs.Bool,
		}
	}
	return product, nil
}

// CreateType inserts a product type
func (r *ProductRepository) CreateType(ctx context.Context, pt *models.ProductType) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO product_types (name, requires_subscription) VALUES ($1, $2) RETURNING id`,
		pt.Name, pt.RequiresSubscription,
	).Scan(&pt.ID)
	if err != nil {
		return fmt.Errorf("failed to create product type: %w", err)
	}
	return nil
}

// Create inserts a product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, code, selling_price, club_id, product_type_id, archived)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		product.Name,
		product.Code,
		product.SellingPrice,
		product.ClubID,
		product.TypeID(),
		product.Archived,
	).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	product, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product with id %d: %w", id, models.ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// GetInCounter retrieves a product only if the counter sells it
func (r *ProductRepository) GetInCounter(ctx context.Context, counterID, productID int) (*models.Product, error) {
	query := productSelect + `
	JOIN counter_products cp ON cp.product_id = p.id
	WHERE cp.counter_id = $1 AND p.id = $2 AND p.archived = $3`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, counterID, productID, false))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product with id %d in counter %d: %w", productID, counterID, models.ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// ListByCounter returns the typed, non archived products sold at a counter,
// ordered by type then name.
func (r *ProductRepository) ListByCounter(ctx context.Context, counterID int) ([]*models.Product, error) {
	query := productSelect + `
	JOIN counter_products cp ON cp.product_id = p.id
	WHERE cp.counter_id = $1 AND p.archived = $2 AND p.product_type_id IS NOT NULL
	ORDER BY pt.name, p.name`

	rows, err := r.db.QueryContext(ctx, query, counterID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}
