package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = "snapshot:"

// SnapshotStore keeps last-known upstream payloads beyond the process lifetime
type SnapshotStore interface {
	Save(ctx context.Context, key string, value any, ttl time.Duration) error
	Load(ctx context.Context, key string, dst any) (bool, error)
}

// RedisSnapshotStore implements SnapshotStore with JSON values in Redis
type RedisSnapshotStore struct {
	client *redis.Client
}

// Ensure RedisSnapshotStore implements the SnapshotStore interface
var _ SnapshotStore = (*RedisSnapshotStore)(nil)

// NewRedisSnapshotStore creates a snapshot store; no connection is made until first use
func NewRedisSnapshotStore(addr, password string, db int) *RedisSnapshotStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisSnapshotStore{client: client}
}

// Ping checks connectivity
func (r *RedisSnapshotStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Save marshals value and stores it for ttl
func (r *RedisSnapshotStore) Save(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", key, err)
	}
	return r.client.Set(ctx, snapshotKeyPrefix+key, payload, ttl).Err()
}

// Load unmarshals the snapshot for key into dst; the bool is false when there is none
func (r *RedisSnapshotStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	payload, err := r.client.Get(ctx, snapshotKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal snapshot %s: %w", key, err)
	}
	return true, nil
}

// Close releases the connection pool
func (r *RedisSnapshotStore) Close() error {
	return r.client.Close()
}
