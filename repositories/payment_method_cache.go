package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pcb-shop/models"
)

var ErrCacheMiss = errors.New("cache miss")

const paymentMethodsKey = "payment_methods_list"

type PaymentMethodCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPaymentMethodCache(client *redis.Client, ttl time.Duration) *PaymentMethodCache {
	return &PaymentMethodCache{client: client, ttl: ttl}
}

func (c *PaymentMethodCache) Get(ctx context.Context) ([]models.PaymentMethod, error) {
	data, err := c.client.Get(ctx, paymentMethodsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var methods []models.PaymentMethod
	if err := json.Unmarshal(data, &methods); err != nil {
		return nil, fmt.Errorf("unmarshal payment methods failed: %w", err)
	}
	return methods, nil
}

func (c *PaymentMethodCache) Set(ctx context.Context, methods []models.PaymentMethod) error {
	data, err := json.Marshal(methods)
	if err != nil {
		return fmt.Errorf("marshal payment methods failed: %w", err)
	}
	if err := c.client.Set(ctx, paymentMethodsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *PaymentMethodCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, paymentMethodsKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
