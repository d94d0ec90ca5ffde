package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"ae-portal/internal/metrics"
	"ae-portal/internal/models"
	"ae-portal/internal/repositories"
)

// BasketService handles the session basket of a user
type BasketService struct {
	store   *repositories.Store
	metrics *metrics.Metrics
}

// NewBasketService creates a new basket service
func NewBasketService(store *repositories.Store, m *metrics.Metrics) *BasketService {
	return &BasketService{store: store, metrics: m}
}

// withStore returns a copy of the service running on store, typically one
// bound to a transaction.
func (s *BasketService) withStore(store *repositories.Store) *BasketService {
	return &BasketService{store: store, metrics: s.metrics}
}

// Current returns the basket referenced by the session when it still exists
// and belongs to user.
func (s *BasketService) Current(ctx context.Context, basketID *int, user *models.User) (*models.Basket, error) {
	if basketID == nil {
		return nil, models.ErrBasketNotFound
	}

	basket, err := s.store.Baskets.GetByID(ctx, *basketID)
	if err != nil {
		return nil, err
	}
	if basket.UserID != user.ID {
		return nil, fmt.Errorf("basket %d belongs to another user: %w", basket.ID, models.ErrBasketNotFound)
	}
	return basket, nil
}

// GetOrCreate returns the session basket, creating an empty one when the
// session has none or references a basket that is gone or not the user's.
func (s *BasketService) GetOrCreate(ctx context.Context, basketID *int, user *models.User) (*models.Basket, error) {
	basket, err := s.Current(ctx, basketID, user)
	if err == nil {
		return basket, nil
	}
	if !errors.Is(err, models.ErrBasketNotFound) {
		return nil, err
	}

	basket, err = s.store.Baskets.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.metrics.BasketOperation("create")
	return basket, nil
}

// AddProduct adds quantity units of product, snapshotting its name, price
// and type on the first add. It returns the updated basket.
func (s *BasketService) AddProduct(ctx context.Context, basket *models.Basket, product *models.Product, quantity int) (*models.Basket, error) {
	if quantity < 1 {
		return nil, models.ErrInvalidQuantity
	}
	if err := s.store.Baskets.AddItem(ctx, basket.ID, product, quantity); err != nil {
		return nil, err
	}
	s.metrics.BasketOperation("add")
	return s.store.Baskets.GetByID(ctx, basket.ID)
}

// RemoveProduct takes quantity units of product away, dropping the line when
// it reaches zero. It returns the updated basket.
func (s *BasketService) RemoveProduct(ctx context.Context, basket *models.Basket, product *models.Product, quantity int) (*models.Basket, error) {
	if quantity < 1 {
		return nil, models.ErrInvalidQuantity
	}
	if err := s.store.Baskets.RemoveItem(ctx, basket.ID, product.ID, quantity); err != nil {
		return nil, err
	}
	s.metrics.BasketOperation("remove")
	return s.store.Baskets.GetByID(ctx, basket.ID)
}

// Clear empties the basket but keeps it
func (s *BasketService) Clear(ctx context.Context, basket *models.Basket) error {
	if err := s.store.Baskets.Clear(ctx, basket.ID); err != nil {
		return err
	}
	basket.Items = []models.BasketItem{}
	s.metrics.BasketOperation("clear")
	return nil
}

// Total returns the exact sum of the basket lines
func (s *BasketService) Total(basket *models.Basket) decimal.Decimal {
	return basket.Total()
}
