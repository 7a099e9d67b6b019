// internal/infrastructure/storage/redis/snapshot_store.go
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-checkout/internal/domain/cart"
)

// SnapshotStore persists cart snapshots as JSON values in Redis.
// A TTL of zero keeps carts until they are explicitly cleared.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotStore creates a Redis-backed cart snapshot store
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		ttl:    ttl,
	}
}

func snapshotKey(cartID string) string {
	return fmt.Sprintf("cart:session:%s", cartID)
}

// Load retrieves a cart snapshot, returning (nil, nil) when absent
func (s *SnapshotStore) Load(ctx context.Context, cartID string) (*cart.Snapshot, error) {
	data, err := s.client.Get(ctx, snapshotKey(cartID)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load cart snapshot: %w", err)
	}

	var snap cart.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode cart snapshot: %w", err)
	}

	return &snap, nil
}

// Save writes a cart snapshot
func (s *SnapshotStore) Save(ctx context.Context, cartID string, snap *cart.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}

	if err := s.client.Set(ctx, snapshotKey(cartID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart snapshot: %w", err)
	}

	return nil
}

// Delete removes a cart snapshot
func (s *SnapshotStore) Delete(ctx context.Context, cartID string) error {
	if err := s.client.Del(ctx, snapshotKey(cartID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	return nil
}
