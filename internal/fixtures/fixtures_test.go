package fixtures

import (
	"testing"
	"time"

	"documentum/internal/domain/models/docsystem"
)

var now = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func TestLoad(t *testing.T) {
	set, err := Load(now)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(set.Tree) != 4 {
		t.Errorf("roots = %d, want 4", len(set.Tree))
	}
	if len(set.Documents) != 37 {
		t.Errorf("documents = %d, want 37", len(set.Documents))
	}
	if set.CurrentUser.ID != "user-1" {
		t.Errorf("current user = %s, want user-1", set.CurrentUser.ID)
	}
	if len(set.Recent) == 0 || len(set.Shared) == 0 || len(set.Starred) == 0 {
		t.Fatalf("empty view lists: recent=%d shared=%d starred=%d", len(set.Recent), len(set.Shared), len(set.Starred))
	}

	for _, doc := range set.Documents {
		if err := doc.Validate(); err != nil {
			t.Errorf("document %s invalid: %v", doc.ID, err)
		}
		if doc.CurrentVersion < 1 || doc.Size < 0 {
			t.Errorf("document %s violates version/size bounds", doc.ID)
		}
	}
}

func TestLoad_PathsFollowAncestors(t *testing.T) {
	set, err := Load(now)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var walk func(folders []*docsystem.TreeFolder, parent string)
	walk = func(folders []*docsystem.TreeFolder, parent string) {
		for _, f := range folders {
			if want := parent + "/" + f.Name; f.Path != want {
				t.Errorf("folder %s path = %q, want %q", f.ID, f.Path, want)
			}
			for _, d := range f.Documents {
				if d.FolderID != f.ID || d.FolderPath != f.Path {
					t.Errorf("document %s placed in %s (%s), want %s (%s)", d.ID, d.FolderID, d.FolderPath, f.ID, f.Path)
				}
			}
			walk(f.Children, f.Path)
		}
	}
	walk(set.Tree, "")
}

func TestLoad_ViewTimestamps(t *testing.T) {
	set, err := Load(now)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, doc := range set.Recent {
		if doc.AccessedAt == nil || doc.AccessedAt.After(now) {
			t.Errorf("recent %s accessedAt = %v", doc.ID, doc.AccessedAt)
		}
	}
	for _, doc := range set.Shared {
		if doc.Sharing == nil {
			t.Fatalf("shared %s has no sharing", doc.ID)
		}
		if doc.Sharing.SharedBy.ID == set.CurrentUser.ID {
			t.Errorf("shared %s shared by the current user", doc.ID)
		}
	}
	for _, doc := range set.Starred {
		if !doc.IsStarred || doc.StarredAt == nil {
			t.Errorf("starred %s not marked", doc.ID)
		}
	}
}

func TestLoad_FreshCopies(t *testing.T) {
	a, err := Load(now)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Load(now)
	if err != nil {
		t.Fatal(err)
	}

	a.Tree[0].Name = "changed"
	a.Recent[0].Metadata.Tags = append(a.Recent[0].Metadata.Tags, "x")
	if b.Tree[0].Name == "changed" {
		t.Error("Load() shares tree values between calls")
	}
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"pdf", "application/pdf"},
		{"ZIP", "application/zip"},
		{"bin", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := mimeType(tt.ext); got != tt.want {
				t.Errorf("mimeType(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}
