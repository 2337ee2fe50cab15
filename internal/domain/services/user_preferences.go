package services

import (
	"context"

	"documentum/internal/domain/models"
)

// PreferencesService reads and writes the persisted store snapshots of a user
type PreferencesService interface {
	// Read returns the stored data for key, nil if nothing is stored
	Read(ctx context.Context, owner, key string) (models.JSONMap, error)

	// ReadAll returns every stored snapshot of owner keyed by snapshot key
	ReadAll(ctx context.Context, owner string) (map[string]models.JSONMap, error)

	// Write stores v under key unless it equals the last written payload.
	// It reports whether a write happened.
	Write(ctx context.Context, owner, key string, v interface{}) (bool, error)

	// ResetAll deletes every snapshot of owner
	ResetAll(ctx context.Context, owner string) error
}
