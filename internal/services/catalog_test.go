package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ae-portal/internal/cache"
	"ae-portal/internal/models"
)

func productIDs(products []*models.Product) []int {
	ids := make([]int, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestCatalogService_SellableProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	product, err := env.catalog.SellableProduct(ctx, env.data.Subscriber, env.data.Beer.ID)
	require.NoError(t, err)
	assert.Equal(t, env.data.Beer.ID, product.ID)

	_, err = env.catalog.SellableProduct(ctx, env.data.Guest, env.data.Beer.ID)
	assert.ErrorIs(t, err, models.ErrProductNotSellable)

	_, err = env.catalog.SellableProduct(ctx, env.data.Subscriber, env.data.BarOnly.ID)
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	product, err = env.catalog.Product(ctx, env.data.Beer.ID)
	require.NoError(t, err, "lookup without gate")
	assert.True(t, product.RequiresSubscription())
}

func TestCatalogService_ListForUser(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	env := newTestEnv(t)
	catalog := NewCatalogService(env.store, cache.NewRedisCache(client, time.Minute), NewSalesGate())
	ctx := context.Background()

	guest, err := catalog.ListForUser(ctx, env.data.Guest)
	require.NoError(t, err)
	assert.NotContains(t, productIDs(guest), env.data.Beer.ID)
	assert.Contains(t, productIDs(guest), env.data.Sweat.ID)
	assert.NotContains(t, productIDs(guest), env.data.BarOnly.ID)

	key := fmt.Sprintf("eboutic:catalog:%d", env.data.Counter.ID)
	assert.True(t, mr.Exists(key), "listing is cached")

	subscriber, err := catalog.ListForUser(ctx, env.data.Subscriber)
	require.NoError(t, err)
	assert.Contains(t, productIDs(subscriber), env.data.Beer.ID)
	assert.Len(t, subscriber, 4)

	t.Run("falls back to the database when redis is down", func(t *testing.T) {
		mr.Close()
		products, err := catalog.ListForUser(ctx, env.data.Subscriber)
		require.NoError(t, err)
		assert.Len(t, products, 4)
	})
}
