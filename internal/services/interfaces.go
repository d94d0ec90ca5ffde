package services

import (
	"context"

	"ae-portal/internal/models"
)

// CatalogServiceInterface defines the catalog lookups used by the handlers
type CatalogServiceInterface interface {
	Product(ctx context.Context, productID int) (*models.Product, error)
	SellableProduct(ctx context.Context, user *models.User, productID int) (*models.Product, error)
	ListForUser(ctx context.Context, user *models.User) ([]*models.Product, error)
}

// BasketServiceInterface defines the session basket operations
type BasketServiceInterface interface {
	Current(ctx context.Context, basketID *int, user *models.User) (*models.Basket, error)
	GetOrCreate(ctx context.Context, basketID *int, user *models.User) (*models.Basket, error)
	AddProduct(ctx context.Context, basket *models.Basket, product *models.Product, quantity int) (*models.Basket, error)
	RemoveProduct(ctx context.Context, basket *models.Basket, product *models.Product, quantity int) (*models.Basket, error)
	Clear(ctx context.Context, basket *models.Basket) error
}

// CheckoutServiceInterface defines cart materialization and payment request signing
type CheckoutServiceInterface interface {
	Materialize(ctx context.Context, user *models.User, cookie string, sessionBasketID *int) (*models.Basket, error)
	BuildPaymentRequest(basket *models.Basket, user *models.User) (PaymentRequest, error)
}

// SettlementServiceInterface defines both payment paths
type SettlementServiceInterface interface {
	PayWithAccount(ctx context.Context, user *models.User, basketID *int) AccountResult
	ProcessCallback(ctx context.Context, rawQuery string) CallbackResult
}

// AccountServiceInterface exposes the customer account and purchase history
type AccountServiceInterface interface {
	Customer(ctx context.Context, userID int) (*models.Customer, error)
	Invoices(ctx context.Context, userID int) ([]*models.Invoice, error)
}
