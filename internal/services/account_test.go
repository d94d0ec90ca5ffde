package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ae-portal/internal/models"
)

func TestAccountService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer, err := env.accounts.Customer(ctx, env.data.Subscriber.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", customer.Amount.String())

	_, err = env.accounts.Customer(ctx, env.data.Guest.ID)
	assert.ErrorIs(t, err, models.ErrCustomerNotFound)

	invoices, err := env.accounts.Invoices(ctx, env.data.Guest.ID)
	require.NoError(t, err)
	assert.NotNil(t, invoices)
	assert.Empty(t, invoices)

	invoice := &models.Invoice{
		UserID:        env.data.Guest.ID,
		PaymentMethod: models.PaymentCard,
		Items: []models.InvoiceItem{{
			ProductID:        env.data.Sweat.ID,
			ProductName:      env.data.Sweat.Name,
			ProductUnitPrice: env.data.Sweat.SellingPrice,
			Quantity:         1,
		}},
	}
	require.NoError(t, env.store.Invoices.Create(ctx, invoice))

	invoices, err = env.accounts.Invoices(ctx, env.data.Guest.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, invoice.ID, invoices[0].ID)
	require.Len(t, invoices[0].Items, 1)
	assert.Equal(t, env.data.Sweat.ID, invoices[0].Items[0].ProductID)
}
