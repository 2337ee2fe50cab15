// Package file persists store snapshots as one JSON file per key, the
// on-disk counterpart of the browser's local storage.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"documentum/internal/domain/models"
	"documentum/internal/domain/repositories"
)

// SnapshotRepository stores snapshots under <dir>/<owner>/<key>.json
type SnapshotRepository struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewSnapshotRepository creates the base directory if needed
func NewSnapshotRepository(dir string, logger *slog.Logger) (*SnapshotRepository, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &SnapshotRepository{dir: dir, logger: logger}, nil
}

var _ repositories.SnapshotRepository = (*SnapshotRepository)(nil)

// Get reads the snapshot file; a missing file returns nil.
// A file that cannot be decoded is reported as an error so callers can fall back.
func (r *SnapshotRepository) Get(_ context.Context, owner, key string) (*models.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path(owner, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot %s: %w", key, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return &snap, nil
}

// Upsert writes the snapshot through a temp file and rename
func (r *SnapshotRepository) Upsert(_ context.Context, snap *models.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target := r.path(snap.Owner, snap.Key)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create owner directory: %w", err)
	}

	now := time.Now().UTC()
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = now
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = now
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snap.Key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot %s: %w", snap.Key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot %s: %w", snap.Key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot %s: %w", snap.Key, err)
	}

	r.logger.Debug("snapshot written", "owner", snap.Owner, "key", snap.Key, "path", target)
	return nil
}

// Delete removes the snapshot file
func (r *SnapshotRepository) Delete(_ context.Context, owner, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path(owner, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	return nil
}

func (r *SnapshotRepository) path(owner, key string) string {
	return filepath.Join(r.dir, sanitize(owner), sanitize(key)+".json")
}

// sanitize keeps owner and key names inside the base directory
func sanitize(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
	if name == "" {
		return "_"
	}
	return name
}
