package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ae-portal/internal/models"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, 30*time.Second), mr
}

func testProducts() []*models.Product {
	return []*models.Product{
		{
			ID:           1,
			Name:         "Sweat AE",
			Code:         "SWEAT",
			SellingPrice: decimal.RequireFromString("15.00"),
			ClubID:       1,
			ProductType:  &models.ProductType{ID: 4, Name: "Goodies"},
		},
		{
			ID:           2,
			Name:         "Bière blonde",
			Code:         "BIERE",
			SellingPrice: decimal.RequireFromString("1.70"),
			ClubID:       1,
			ProductType:  &models.ProductType{ID: 1, Name: "Barbar", RequiresSubscription: true},
		},
	}
}

func TestGetProducts_Miss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	products, err := cache.GetProducts(context.Background(), 1)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, products)
}

func TestSetProducts_RoundTrip(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.SetProducts(ctx, 3, testProducts()))
	assert.True(t, mr.Exists("eboutic:catalog:3"))
	assert.Equal(t, 30*time.Second, mr.TTL("eboutic:catalog:3"))

	products, err := cache.GetProducts(ctx, 3)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "BIERE", products[1].Code)
	assert.True(t, decimal.RequireFromString("1.7").Equal(products[1].SellingPrice))
	assert.True(t, products[1].RequiresSubscription())
}

func TestSetProducts_Expires(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.SetProducts(ctx, 3, testProducts()))
	mr.FastForward(31 * time.Second)

	_, err := cache.GetProducts(ctx, 3)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestInvalidate(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.SetProducts(ctx, 3, testProducts()))
	require.NoError(t, cache.Invalidate(ctx, 3))
	assert.False(t, mr.Exists("eboutic:catalog:3"))
}

func TestGetProducts_CorruptedEntry(t *testing.T) {
	cache, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("eboutic:catalog:3", "not json"))
	_, err := cache.GetProducts(context.Background(), 3)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestGetProducts_ServerDown(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()

	_, err := cache.GetProducts(context.Background(), 3)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestNoop(t *testing.T) {
	var c CatalogCache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.SetProducts(ctx, 1, testProducts()))
	_, err := c.GetProducts(ctx, 1)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Invalidate(ctx, 1))
}
