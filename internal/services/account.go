package services

import (
	"context"

	"ae-portal/internal/models"
	"ae-portal/internal/repositories"
)

// AccountService reads a user's prepaid account and card invoices
type AccountService struct {
	store *repositories.Store
}

func NewAccountService(store *repositories.Store) *AccountService {
	return &AccountService{store: store}
}

// Customer returns the account of a user, or ErrCustomerNotFound
func (s *AccountService) Customer(ctx context.Context, userID int) (*models.Customer, error) {
	return s.store.Customers.GetByUserID(ctx, userID)
}

// Invoices returns the user's invoices, newest first
func (s *AccountService) Invoices(ctx context.Context, userID int) ([]*models.Invoice, error) {
	invoices, err := s.store.Invoices.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []*models.Invoice{}
	}
	return invoices, nil
}
