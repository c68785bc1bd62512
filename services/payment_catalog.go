package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"pcb-shop/models"
	"pcb-shop/repositories"
)

type PaymentMethodSource interface {
	ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error)
}

type PaymentMethodCache interface {
	Get(ctx context.Context) ([]models.PaymentMethod, error)
	Set(ctx context.Context, methods []models.PaymentMethod) error
	Invalidate(ctx context.Context) error
}

// PaymentCatalog serves the payment method list from cache, collapsing concurrent misses
// into one remote call.
type PaymentCatalog struct {
	source PaymentMethodSource
	cache  PaymentMethodCache
	sfg    singleflight.Group
	logger zerolog.Logger
}

func NewPaymentCatalog(source PaymentMethodSource, cache PaymentMethodCache, logger zerolog.Logger) *PaymentCatalog {
	return &PaymentCatalog{
		source: source,
		cache:  cache,
		logger: logger.With().Str("component", "payment_catalog").Logger(),
	}
}

func (c *PaymentCatalog) ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	if c.cache != nil {
		methods, err := c.cache.Get(ctx)
		if err == nil {
			return methods, nil
		}
		if !errors.Is(err, repositories.ErrCacheMiss) {
			c.logger.Warn().Err(err).Msg("payment method cache read failed")
		}
	}

	v, err, _ := c.sfg.Do("payment_methods", func() (interface{}, error) {
		methods, err := c.source.ListPaymentMethods(ctx)
		if err != nil {
			return nil, err
		}
		if c.cache != nil && len(methods) > 0 {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := c.cache.Set(setCtx, methods); err != nil {
				c.logger.Warn().Err(err).Msg("payment method cache write failed")
			}
		}
		return methods, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.PaymentMethod), nil
}

// Refresh drops the cached list and loads it again from the source.
func (c *PaymentCatalog) Refresh(ctx context.Context) ([]models.PaymentMethod, error) {
	if c.cache != nil {
		if err := c.cache.Invalidate(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("payment method cache invalidate failed")
		}
	}
	return c.ListPaymentMethods(ctx)
}
