package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iho/chequebook/internal/ledger"
)

// SnapshotStore implements ledger.SnapshotStore on a single Redis key, so
// several CLI hosts can share one local snapshot.
type SnapshotStore struct {
	client redis.Cmdable
	key    string
}

// NewSnapshotStore creates a SnapshotStore under namespace.
func NewSnapshotStore(client redis.Cmdable, namespace string) *SnapshotStore {
	if namespace == "" {
		namespace = "default"
	}
	return &SnapshotStore{
		client: client,
		key:    "chequebook:snapshot:" + namespace,
	}
}

// Load returns the stored snapshot, or an empty one when none was saved.
func (s *SnapshotStore) Load(ctx context.Context) (*ledger.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &ledger.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap ledger.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.key, err)
	}
	return &snap, nil
}

// Save replaces the stored snapshot. Snapshots do not expire.
func (s *SnapshotStore) Save(ctx context.Context, snap *ledger.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
