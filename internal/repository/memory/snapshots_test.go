package memory

import (
	"context"
	"testing"

	"documentum/internal/domain/models"
)

func TestSnapshotRepository_IsolatesCopies(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()

	snap := &models.Snapshot{Owner: "u", Key: models.KeyFolders, Data: models.JSONMap{"expandedFolders": []interface{}{"a"}}}
	if err := repo.Upsert(ctx, snap); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	snap.Data["expandedFolders"] = []interface{}{"mutated"}

	got, err := repo.Get(ctx, "u", models.KeyFolders)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	var prefs models.FoldersPreferences
	if err := got.Decode(&prefs); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(prefs.ExpandedFolders) != 1 || prefs.ExpandedFolders[0] != "a" {
		t.Errorf("ExpandedFolders = %v, want [a]", prefs.ExpandedFolders)
	}
}

func TestSnapshotRepository_KeepsCreatedAt(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()

	if err := repo.Upsert(ctx, &models.Snapshot{Owner: "u", Key: models.KeyUI, Data: models.JSONMap{"theme": "dark"}}); err != nil {
		t.Fatal(err)
	}
	first, _ := repo.Get(ctx, "u", models.KeyUI)

	if err := repo.Upsert(ctx, &models.Snapshot{Owner: "u", Key: models.KeyUI, Data: models.JSONMap{"theme": "light"}}); err != nil {
		t.Fatal(err)
	}
	second, _ := repo.Get(ctx, "u", models.KeyUI)

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if repo.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", repo.Writes())
	}
}

func TestSnapshotRepository_MissingAndDelete(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()

	if got, err := repo.Get(ctx, "u", models.KeyShared); got != nil || err != nil {
		t.Fatalf("Get() missing = %+v, %v; want nil, nil", got, err)
	}
	if err := repo.PutRaw("u", models.KeyShared, []byte(`{"sortBy":42}`)); err != nil {
		t.Fatalf("PutRaw() error = %v", err)
	}
	if got, _ := repo.Get(ctx, "u", models.KeyShared); got == nil {
		t.Fatal("Get() after PutRaw = nil")
	}
	if err := repo.Delete(ctx, "u", models.KeyShared); err != nil {
		t.Fatal(err)
	}
	if got, _ := repo.Get(ctx, "u", models.KeyShared); got != nil {
		t.Errorf("Get() after Delete = %+v, want nil", got)
	}
}
