package models

import (
	"encoding/json"
	"time"

	"documentum/internal/domain/models/docsystem"
)

// Snapshot keys, one per store. No two stores write the same key.
const (
	KeyDocuments = "documentum-documents"
	KeyFolders   = "documentum-folders"
	KeyUI        = "documentum-ui"
	KeyRecent    = "recent-storage"
	KeyShared    = "shared-storage"
	KeyStarred   = "starred-storage"
)

// SnapshotKeys lists every snapshot key
var SnapshotKeys = []string{KeyDocuments, KeyFolders, KeyUI, KeyRecent, KeyShared, KeyStarred}

// JSONMap is a type alias for JSONB columns
type JSONMap map[string]interface{}

// Snapshot is the persisted preference blob of one store for one owner
type Snapshot struct {
	Owner     string    `json:"owner" db:"owner"`
	Key       string    `json:"key" db:"key"`
	Data      JSONMap   `json:"data" db:"data"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Theme is the console color scheme
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// DocumentsPreferences is the persisted subset of the all-documents store
type DocumentsPreferences struct {
	ViewMode  docsystem.ViewMode      `json:"viewMode"`
	SortBy    docsystem.SortKey       `json:"sortBy"`
	SortOrder docsystem.SortDirection `json:"sortOrder"`
	PageSize  int                     `json:"pageSize"`
}

// FoldersPreferences is the persisted subset of the folder store
type FoldersPreferences struct {
	ExpandedFolders []string `json:"expandedFolders"`
}

// UIPreferences is the persisted subset of the UI chrome store
type UIPreferences struct {
	Theme            Theme `json:"theme"`
	SidebarCollapsed bool  `json:"sidebarCollapsed"`
}

// RecentPreferences is the persisted subset of the recent store
type RecentPreferences struct {
	TimeFilter  docsystem.TimeFilter     `json:"timeFilter"`
	SortBy      docsystem.SortKey        `json:"sortBy"`
	TypeFilters []docsystem.DocumentType `json:"typeFilters"`
}

// PermissionFilter is the single-choice share permission menu ("all" = no restriction)
type PermissionFilter string

const PermissionAll PermissionFilter = "all"

// SharedPreferences is the persisted subset of the shared store
type SharedPreferences struct {
	SortBy           docsystem.SortKey `json:"sortBy"`
	PermissionFilter PermissionFilter  `json:"permissionFilter"`
	SharedByFilters  []string          `json:"sharedByFilters"`
}

// StarredPreferences is the persisted subset of the starred store
type StarredPreferences struct {
	SortBy   docsystem.SortKey  `json:"sortBy"`
	ViewMode docsystem.ViewMode `json:"viewMode"`
}

// Decode extracts the snapshot data into dest with type safety
func (s *Snapshot) Decode(dest interface{}) error {
	// Re-marshal to ensure type safety
	data, err := json.Marshal(s.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Encode replaces the snapshot data with the JSON form of v
func (s *Snapshot) Encode(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	s.Data = m
	return nil
}
