package file

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"documentum/internal/domain/models"
)

func newTestRepo(t *testing.T) (*SnapshotRepository, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := NewSnapshotRepository(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewSnapshotRepository() error = %v", err)
	}
	return repo, dir
}

func TestSnapshotRepository_GetMissing(t *testing.T) {
	repo, _ := newTestRepo(t)

	snap, err := repo.Get(context.Background(), "user-1", models.KeyUI)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if snap != nil {
		t.Errorf("Get() = %+v, want nil", snap)
	}
}

func TestSnapshotRepository_UpsertAndGet(t *testing.T) {
	repo, dir := newTestRepo(t)
	ctx := context.Background()

	snap := &models.Snapshot{Owner: "user-1", Key: models.KeyUI}
	if err := snap.Encode(models.UIPreferences{Theme: models.ThemeLight, SidebarCollapsed: true}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := repo.Upsert(ctx, snap); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "user-1", models.KeyUI+".json")); err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}

	got, err := repo.Get(ctx, "user-1", models.KeyUI)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	var prefs models.UIPreferences
	if err := got.Decode(&prefs); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if prefs.Theme != models.ThemeLight || !prefs.SidebarCollapsed {
		t.Errorf("decoded = %+v, want light/collapsed", prefs)
	}
}

func TestSnapshotRepository_CorruptFile(t *testing.T) {
	repo, dir := newTestRepo(t)

	path := filepath.Join(dir, "user-1", models.KeyRecent+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Get(context.Background(), "user-1", models.KeyRecent); err == nil {
		t.Error("Get() error = nil, want decode error")
	}
}

func TestSnapshotRepository_Delete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	snap := &models.Snapshot{Owner: "user-1", Key: models.KeyStarred, Data: models.JSONMap{"sortBy": "name"}}
	if err := repo.Upsert(ctx, snap); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := repo.Delete(ctx, "user-1", models.KeyStarred); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, "user-1", models.KeyStarred); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}

	got, err := repo.Get(ctx, "user-1", models.KeyStarred)
	if err != nil || got != nil {
		t.Errorf("Get() after delete = %+v, %v; want nil, nil", got, err)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user-1", "user-1"},
		{"../etc", "__etc"},
		{"a/b", "a_b"},
		{"", "_"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := sanitize(tt.in); got != tt.want {
				t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
