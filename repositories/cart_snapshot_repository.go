package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// CartSnapshotRepository keeps the serialized cart of each user in Redis.
type CartSnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartSnapshotRepository(client *redis.Client, ttl time.Duration) *CartSnapshotRepository {
	return &CartSnapshotRepository{client: client, ttl: ttl}
}

func (r *CartSnapshotRepository) Load(ctx context.Context, userID string) ([]byte, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *CartSnapshotRepository) Save(ctx context.Context, userID string, data []byte) error {
	if err := r.client.Set(ctx, cartKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

// MemoryCartSnapshotRepository is used when Redis is not available.
type MemoryCartSnapshotRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryCartSnapshotRepository() *MemoryCartSnapshotRepository {
	return &MemoryCartSnapshotRepository{data: make(map[string][]byte)}
}

func (r *MemoryCartSnapshotRepository) Load(_ context.Context, userID string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.data[userID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return append([]byte(nil), data...), nil
}

func (r *MemoryCartSnapshotRepository) Save(_ context.Context, userID string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[userID] = append([]byte(nil), data...)
	return nil
}
