package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ae-portal/internal/models"
)

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (r RedisCache) GetProducts(ctx context.Context, counterID int) ([]*models.Product, error) {
	data, err := r.client.Get(ctx, catalogKey(counterID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var products []*models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal catalog failed: %w", err)
	}

	return products, nil
}

func (r RedisCache) SetProducts(ctx context.Context, counterID int, products []*models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal catalog failed: %w", err)
	}

	if err := r.client.Set(ctx, catalogKey(counterID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) Invalidate(ctx context.Context, counterID int) error {
	if err := r.client.Del(ctx, catalogKey(counterID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func catalogKey(counterID int) string {
	return fmt.Sprintf("eboutic:catalog:%d", counterID)
}
