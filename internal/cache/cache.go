package cache

import (
	"context"
	"errors"

	"ae-portal/internal/models"
)

// CatalogCache stores the product listing of a counter.
type CatalogCache interface {
	GetProducts(ctx context.Context, counterID int) ([]*models.Product, error)
	SetProducts(ctx context.Context, counterID int, products []*models.Product) error
	Invalidate(ctx context.Context, counterID int) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop is used when no cache is configured; every lookup misses.
type Noop struct{}

func (Noop) GetProducts(context.Context, int) ([]*models.Product, error) {
	return nil, ErrCacheMiss
}

func (Noop) SetProducts(context.Context, int, []*models.Product) error { return nil }

func (Noop) Invalidate(context.Context, int) error { return nil }
