package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ae-portal/internal/models"
	"ae-portal/internal/testutil"
)

func TestInvoiceRepository_CreateAndValidate(t *testing.T) {
	store, data := testutil.NewStore(t)
	ctx := context.Background()

	basket, err := store.Baskets.Create(ctx, data.Guest.ID)
	require.NoError(t, err)
	require.NoError(t, store.Baskets.AddItem(ctx, basket.ID, data.Sweat, 2))
	require.NoError(t, store.Baskets.AddItem(ctx, basket.ID, data.Refill, 1))
	basket, err = store.Baskets.GetByID(ctx, basket.ID)
	require.NoError(t, err)

	inv := &models.Invoice{
		UserID:        data.Guest.ID,
		PaymentMethod: models.PaymentCard,
		Items:         models.InvoiceItemsFromBasket(basket),
	}
	require.NoError(t, store.Invoices.Create(ctx, inv))
	assert.NotZero(t, inv.ID)

	got, err := store.Invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.False(t, got.Validated)
	require.Len(t, got.Items, 2)
	assert.True(t, basket.Total().Equal(got.Total()))

	require.NoError(t, store.Invoices.MarkValidated(ctx, inv.ID))
	assert.ErrorIs(t, store.Invoices.MarkValidated(ctx, inv.ID), models.ErrInvoiceValidated)

	invoices, err := store.Invoices.ListByUser(ctx, data.Guest.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.True(t, invoices[0].Validated)
	assert.Len(t, invoices[0].Items, 2)

	_, err = store.Invoices.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, models.ErrInvoiceNotFound)

	assert.ErrorIs(t, store.Invoices.Create(ctx, &models.Invoice{UserID: data.Guest.ID, PaymentMethod: "CASH"}), models.ErrInvalidInput)
}
