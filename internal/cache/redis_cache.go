package cache

import (
	"context"
	"encoding/json"
	"time"

	"tillpoint/internal/dto"

	redis "github.com/redis/go-redis/v9"
)

const priceKeyPrefix = "price:"

type RedisPriceCache struct {
	client *redis.Client
}

func NewRedisPriceCache(client *redis.Client) *RedisPriceCache {
	return &RedisPriceCache{client: client}
}

func (c *RedisPriceCache) Get(ctx context.Context, code string) (*dto.PriceCheckResponse, bool, error) {
	val, err := c.client.Get(ctx, priceKeyPrefix+code).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var resp dto.PriceCheckResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, false, err
	}
	return &resp, true, nil
}

func (c *RedisPriceCache) Set(ctx context.Context, code string, value *dto.PriceCheckResponse, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, priceKeyPrefix+code, payload, ttl).Err()
}

func (c *RedisPriceCache) Invalidate(ctx context.Context, code string) error {
	return c.client.Del(ctx, priceKeyPrefix+code).Err()
}
