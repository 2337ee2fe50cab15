package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"documentum/internal/domain/models"
	"documentum/internal/domain/repositories"
)

// PostgresSnapshotRepository implements the SnapshotRepository interface
type PostgresSnapshotRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSnapshotRepository creates a new PostgresSnapshotRepository
func NewSnapshotRepository(config *RepositoryConfig) repositories.SnapshotRepository {
	return &PostgresSnapshotRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Get retrieves the snapshot for (owner, key)
func (r *PostgresSnapshotRepository) Get(ctx context.Context, owner, key string) (*models.Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT owner, key, data, created_at, updated_at
		FROM %s
		WHERE owner = $1 AND key = $2
	`, r.tables.Snapshots)

	var snap models.Snapshot
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, owner, key).Scan(
		&snap.Owner,
		&snap.Key,
		&snap.Data,
		&snap.CreatedAt,
		&snap.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			// Never persisted - not an error
			return nil, nil
		}
		return nil, r.wrap("get", key, err)
	}

	return &snap, nil
}

// Upsert creates or replaces the snapshot for (owner, key)
func (r *PostgresSnapshotRepository) Upsert(ctx context.Context, snap *models.Snapshot) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner, key, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner, key) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`, r.tables.Snapshots)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		snap.Owner,
		snap.Key,
		snap.Data,
		snap.CreatedAt,
		snap.UpdatedAt,
	).Scan(
		&snap.CreatedAt,
		&snap.UpdatedAt,
	)

	if err != nil {
		return r.wrap("upsert", snap.Key, err)
	}

	r.logger.Debug("snapshot upserted", "owner", snap.Owner, "key", snap.Key)
	return nil
}

// Delete removes the snapshot for (owner, key)
func (r *PostgresSnapshotRepository) Delete(ctx context.Context, owner, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE owner = $1 AND key = $2`, r.tables.Snapshots)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, owner, key); err != nil {
		return r.wrap("delete", key, err)
	}
	return nil
}

func (r *PostgresSnapshotRepository) wrap(op, key string, err error) error {
	if IsPgUndefinedTableError(err) {
		return fmt.Errorf("%s snapshot %s: table %s missing, run cmd/seed: %w", op, key, r.tables.Snapshots, err)
	}
	return fmt.Errorf("%s snapshot %s: %w", op, key, err)
}
