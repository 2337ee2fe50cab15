package repositories

import (
	"context"

	"documentum/internal/domain/models"
)

// SnapshotRepository defines data access for persisted store snapshots
type SnapshotRepository interface {
	// Get retrieves the snapshot stored under key for owner
	// Returns nil if no snapshot exists (store never persisted yet)
	Get(ctx context.Context, owner, key string) (*models.Snapshot, error)

	// Upsert creates or replaces the snapshot for (owner, key)
	Upsert(ctx context.Context, snapshot *models.Snapshot) error

	// Delete removes the snapshot for (owner, key); missing snapshots are not an error
	Delete(ctx context.Context, owner, key string) error
}
