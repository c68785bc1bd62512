package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"pcb-shop/models"
)

var ErrItemRejected = errors.New("cart item rejected")

// CartRemote mirrors cart mutations to the storefront API.
type CartRemote interface {
	AddCartItem(ctx context.Context, item models.CartItem) error
	UpdateCartItem(ctx context.Context, itemID string, quantity int) error
	RemoveCartItem(ctx context.Context, itemID string) error
}

// SyncedCart applies every mutation to the local store first and rolls it back when the
// remote call fails. Without a remote it is a plain local cart.
type SyncedCart struct {
	*CartStore
	remote CartRemote
	logger zerolog.Logger
}

func NewSyncedCart(store *CartStore, remote CartRemote, logger zerolog.Logger) *SyncedCart {
	return &SyncedCart{
		CartStore: store,
		remote:    remote,
		logger:    logger.With().Str("component", "cart_sync").Logger(),
	}
}

func (c *SyncedCart) Add(ctx context.Context, in AddItemInput) (models.CartItem, error) {
	before := c.Snapshot()
	item, ok := c.AddItem(ctx, in)
	if !ok {
		return models.CartItem{}, ErrItemRejected
	}
	if c.remote == nil {
		return item, nil
	}

	added := item
	added.Quantity = in.Quantity
	if err := c.remote.AddCartItem(ctx, added); err != nil {
		c.rollback(ctx, before, err)
		return models.CartItem{}, fmt.Errorf("sync add: %w", err)
	}
	return item, nil
}

func (c *SyncedCart) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	before := c.Snapshot()
	if err := c.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return err
	}
	if c.remote == nil {
		return nil
	}

	var err error
	if quantity <= 0 {
		err = c.remote.RemoveCartItem(ctx, itemID)
	} else {
		err = c.remote.UpdateCartItem(ctx, itemID, quantity)
	}
	if err != nil {
		c.rollback(ctx, before, err)
		return fmt.Errorf("sync quantity: %w", err)
	}
	return nil
}

func (c *SyncedCart) Remove(ctx context.Context, itemID string) error {
	before := c.Snapshot()
	if err := c.RemoveItem(ctx, itemID); err != nil {
		return err
	}
	if c.remote == nil {
		return nil
	}
	if err := c.remote.RemoveCartItem(ctx, itemID); err != nil {
		c.rollback(ctx, before, err)
		return fmt.Errorf("sync remove: %w", err)
	}
	return nil
}

func (c *SyncedCart) rollback(ctx context.Context, before models.CartSnapshot, cause error) {
	c.logger.Warn().Err(cause).Msg("cart sync failed, restoring previous cart")
	c.Restore(ctx, before)
}
