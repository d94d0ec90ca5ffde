package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ae-portal/internal/models"
	"ae-portal/internal/testutil"
)

func TestProductRepository_GetInCounter(t *testing.T) {
	store, data := testutil.NewStore(t)
	ctx := context.Background()

	product, err := store.Products.GetInCounter(ctx, data.Counter.ID, data.Beer.ID)
	require.NoError(t, err)
	assert.Equal(t, "BIERE", product.Code)
	assert.True(t, product.RequiresSubscription())
	assert.True(t, data.Beer.SellingPrice.Equal(product.SellingPrice))

	_, err = store.Products.GetInCounter(ctx, data.Counter.ID, data.BarOnly.ID)
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	_, err = store.Products.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestProductRepository_ListByCounter(t *testing.T) {
	store, data := testutil.NewStore(t)
	ctx := context.Background()

	products, err := store.Products.ListByCounter(ctx, data.Counter.ID)
	require.NoError(t, err)
	require.Len(t, products, 4)

	for _, p := range products {
		assert.NotNil(t, p.ProductType)
		assert.NotEqual(t, data.BarOnly.ID, p.ID)
	}
}

func TestCounterRepository_GetByType(t *testing.T) {
	store, data := testutil.NewStore(t)
	ctx := context.Background()

	counter, err := store.Counters.GetByType(ctx, models.CounterTypeEboutic)
	require.NoError(t, err)
	assert.Equal(t, data.Counter.ID, counter.ID)

	_, err = store.Counters.GetByType(ctx, models.CounterTypeOffice)
	assert.ErrorIs(t, err, models.ErrCounterNotFound)
}

func TestUserRepository_Get(t *testing.T) {
	store, data := testutil.NewStore(t)
	ctx := context.Background()

	user, err := store.Users.GetByID(ctx, data.Subscriber.ID)
	require.NoError(t, err)
	assert.Equal(t, "skia", user.Username)
	require.NotNil(t, user.SubscribedUntil)

	user, err = store.Users.GetByUsername(ctx, "public")
	require.NoError(t, err)
	assert.Nil(t, user.SubscribedUntil)

	_, err = store.Users.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	assert.ErrorIs(t, store.Users.UpdateSubscription(ctx, 9999, nil), models.ErrUserNotFound)
}
