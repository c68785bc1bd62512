package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcb-shop/models"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestCartSnapshot_SaveAndLoad(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewCartSnapshotRepository(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "user-1", []byte(`{"items":[]}`)))

	data, err := repo.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(data))
	assert.True(t, mr.Exists("cart:user-1"))
	assert.Equal(t, time.Hour, mr.TTL("cart:user-1"))
}

func TestCartSnapshot_NotFound(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewCartSnapshotRepository(client, time.Hour)

	_, err := repo.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestCartSnapshot_Expires(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewCartSnapshotRepository(client, time.Minute)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "user-1", []byte(`{}`)))

	mr.FastForward(2 * time.Minute)

	_, err := repo.Load(ctx, "user-1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestCartSnapshot_RedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewCartSnapshotRepository(client, time.Hour)
	mr.Close()

	_, err := repo.Load(context.Background(), "user-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSnapshotNotFound)
	assert.Error(t, repo.Save(context.Background(), "user-1", []byte(`{}`)))
}

func TestMemoryCartSnapshot(t *testing.T) {
	repo := NewMemoryCartSnapshotRepository()
	ctx := context.Background()

	_, err := repo.Load(ctx, "user-1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	payload := []byte(`{"items":[]}`)
	require.NoError(t, repo.Save(ctx, "user-1", payload))
	payload[0] = 'x'

	data, err := repo.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, string(data))
}

func TestPaymentMethodCache(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewPaymentMethodCache(client, 5*time.Minute)
	ctx := context.Background()

	_, err := cache.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)

	methods := []models.PaymentMethod{{ID: "1", Code: "cod", Name: "Cash on delivery"}}
	require.NoError(t, cache.Set(ctx, methods))
	assert.Equal(t, 5*time.Minute, mr.TTL(paymentMethodsKey))

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, methods, got)

	require.NoError(t, cache.Invalidate(ctx))
	_, err = cache.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestPaymentMethodCache_CorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewPaymentMethodCache(client, time.Minute)
	require.NoError(t, mr.Set(paymentMethodsKey, "not json"))

	_, err := cache.Get(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
