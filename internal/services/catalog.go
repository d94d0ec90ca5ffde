package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ae-portal/internal/cache"
	"ae-portal/internal/models"
	"ae-portal/internal/repositories"
)

// CatalogService resolves the products offered by the eboutic counter.
type CatalogService struct {
	store *repositories.Store
	cache cache.CatalogCache
	gate  *SalesGate
}

func NewCatalogService(store *repositories.Store, catalogCache cache.CatalogCache, gate *SalesGate) *CatalogService {
	if catalogCache == nil {
		catalogCache = cache.Noop{}
	}
	return &CatalogService{store: store, cache: catalogCache, gate: gate}
}

// Counter returns the active online sales counter
func (s *CatalogService) Counter(ctx context.Context) (*models.Counter, error) {
	return s.store.Counters.GetByType(ctx, models.CounterTypeEboutic)
}

// Product returns a product of the eboutic counter, whether or not the user
// may buy it.
func (s *CatalogService) Product(ctx context.Context, productID int) (*models.Product, error) {
	counter, err := s.Counter(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Products.GetInCounter(ctx, counter.ID, productID)
}

// SellableProduct returns a product of the eboutic counter the user is
// allowed to buy. It fails with ErrProductNotFound or ErrProductNotSellable.
func (s *CatalogService) SellableProduct(ctx context.Context, user *models.User, productID int) (*models.Product, error) {
	product, err := s.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !s.gate.CanBeSoldTo(product, user) {
		return nil, fmt.Errorf("product %d for user %d: %w", productID, user.ID, models.ErrProductNotSellable)
	}
	return product, nil
}

// ListForUser returns the typed products of the eboutic counter the user is
// allowed to buy. The listing is served from the cache when possible.
func (s *CatalogService) ListForUser(ctx context.Context, user *models.User) ([]*models.Product, error) {
	counter, err := s.Counter(ctx)
	if err != nil {
		return nil, err
	}

	products, err := s.cache.GetProducts(ctx, counter.ID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.WarnContext(ctx, "catalog cache unavailable", "counter_id", counter.ID, "error", err)
		}

		products, err = s.store.Products.ListByCounter(ctx, counter.ID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetProducts(ctx, counter.ID, products); err != nil {
			slog.WarnContext(ctx, "failed to cache catalog", "counter_id", counter.ID, "error", err)
		}
	}

	sellable := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if s.gate.CanBeSoldTo(p, user) {
			sellable = append(sellable, p)
		}
	}
	return sellable, nil
}
