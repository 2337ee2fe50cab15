// Package memory holds the in-process snapshot repository used by tests,
// the CLI and servers started without a persistent backend.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"documentum/internal/domain/models"
	"documentum/internal/domain/repositories"
)

type snapshotKey struct {
	owner string
	key   string
}

// SnapshotRepository keeps snapshots in a map guarded by an RWMutex
type SnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[snapshotKey]*models.Snapshot
	writes    int
}

// NewSnapshotRepository constructs an empty repository
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{
		snapshots: make(map[snapshotKey]*models.Snapshot),
	}
}

var _ repositories.SnapshotRepository = (*SnapshotRepository)(nil)

// Get returns a copy of the stored snapshot, nil if absent
func (r *SnapshotRepository) Get(_ context.Context, owner, key string) (*models.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.snapshots[snapshotKey{owner, key}]
	if !ok {
		return nil, nil
	}
	return copySnapshot(snap)
}

// Upsert stores a copy of snap so later caller mutations are not observed
func (r *SnapshotRepository) Upsert(_ context.Context, snap *models.Snapshot) error {
	stored, err := copySnapshot(snap)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := snapshotKey{snap.Owner, snap.Key}
	now := time.Now().UTC()
	if existing, ok := r.snapshots[k]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = now
	}
	r.snapshots[k] = stored
	r.writes++
	return nil
}

// Delete removes the snapshot for (owner, key)
func (r *SnapshotRepository) Delete(_ context.Context, owner, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snapshots, snapshotKey{owner, key})
	return nil
}

// Writes returns the number of successful upserts
func (r *SnapshotRepository) Writes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes
}

// PutRaw stores raw JSON under (owner, key) without validation.
// It lets tests seed malformed snapshots.
func (r *SnapshotRepository) PutRaw(owner, key string, raw []byte) error {
	var data models.JSONMap
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshotKey{owner, key}] = &models.Snapshot{Owner: owner, Key: key, Data: data}
	return nil
}

// copySnapshot deep-copies the data map through JSON
func copySnapshot(snap *models.Snapshot) (*models.Snapshot, error) {
	out := *snap
	if snap.Data == nil {
		return &out, nil
	}
	raw, err := json.Marshal(snap.Data)
	if err != nil {
		return nil, err
	}
	out.Data = nil
	if err := json.Unmarshal(raw, &out.Data); err != nil {
		return nil, err
	}
	return &out, nil
}
