package store

import (
	"fmt"
	"slices"
	"time"

	"documentum/internal/domain"
	"documentum/internal/domain/models"
	"documentum/internal/domain/models/docsystem"
	docsysService "documentum/internal/service/docsystem"
)

// DocumentSortKeys are the orderings offered by the all-documents view
var DocumentSortKeys = []docsystem.SortKey{
	docsystem.SortByName, docsystem.SortByUpdatedAt, docsystem.SortByCreatedAt,
	docsystem.SortByAccessedAt, docsystem.SortBySize, docsystem.SortByType,
	docsystem.SortByStatus,
}

// DocumentStore is the "all documents" view
type DocumentStore struct {
	*CollectionStore
}

// NewDocumentStore creates the all-documents store with its defaults:
// grid layout, newest update first, 20 per page
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{newCollectionStore(Collection{
		View:       docsystem.ViewAll,
		ViewMode:   docsystem.ViewModeGrid,
		SortBy:     docsystem.SortByUpdatedAt,
		SortOrder:  docsystem.SortDesc,
		Pagination: docsystem.Pagination{Page: docsystem.DefaultPage, PageSize: docsystem.DefaultPageSize},
	}, DocumentSortKeys)}
}

// SetLoading toggles the loading indicator
func (s *DocumentStore) SetLoading(loading bool) {
	s.Update(func(c *Collection) { c.Activity.Loading = loading })
}

// SetUploading toggles the upload indicator; stopping resets progress
func (s *DocumentStore) SetUploading(uploading bool) {
	s.Update(func(c *Collection) {
		c.Activity.Uploading = uploading
		if !uploading {
			c.Activity.UploadProgress = 0
		}
	})
}

// SetUploadProgress records upload progress, clamped to 0..100
func (s *DocumentStore) SetUploadProgress(progress int) {
	s.Update(func(c *Collection) { c.Activity.UploadProgress = min(max(progress, 0), 100) })
}

// Preferences returns the persisted subset of the state
func (s *DocumentStore) Preferences() models.DocumentsPreferences {
	var p models.DocumentsPreferences
	s.Read(func(c *Collection) { p = documentsPreferences(*c) })
	return p
}

// ApplyPreferences restores a persisted subset
func (s *DocumentStore) ApplyPreferences(p models.DocumentsPreferences) {
	s.Update(func(c *Collection) {
		c.ViewMode = p.ViewMode
		c.SortBy = p.SortBy
		c.SortOrder = p.SortOrder
		c.Pagination.PageSize = p.PageSize
	})
}

// WatchPreferences calls fn with the persisted subset after every mutation
func (s *DocumentStore) WatchPreferences(fn func(models.DocumentsPreferences)) func() {
	return s.Subscribe(func(c Collection) { fn(documentsPreferences(c)) })
}

func documentsPreferences(c Collection) models.DocumentsPreferences {
	return models.DocumentsPreferences{
		ViewMode:  c.ViewMode,
		SortBy:    c.SortBy,
		SortOrder: c.SortOrder,
		PageSize:  c.Pagination.PageSize,
	}
}

// RecentStore is the recently accessed view
type RecentStore struct {
	*CollectionStore
}

// RecentSortKeys are the orderings offered by the recent view
var RecentSortKeys = []docsystem.SortKey{docsystem.SortByAccessedAt, docsystem.SortByModifiedAt, docsystem.SortByName}

// NewRecentStore creates the recent store: all time, last access first
func NewRecentStore() *RecentStore {
	return &RecentStore{newCollectionStore(Collection{
		View:       docsystem.ViewRecent,
		ViewMode:   docsystem.ViewModeList,
		SortBy:     docsystem.SortByAccessedAt,
		SortOrder:  docsystem.SortDesc,
		Filter:     docsystem.DocumentFilter{TimeWindow: docsystem.TimeAll},
		Pagination: docsystem.Pagination{Page: docsystem.DefaultPage, PageSize: docsystem.MaxPageSize},
	}, RecentSortKeys)}
}

// SetTimeFilter selects the recency window
func (s *RecentStore) SetTimeFilter(window docsystem.TimeFilter) error {
	return s.SetFilter(docsystem.FilterPatch{TimeWindow: &window})
}

// TimeFilter returns the active recency window
func (s *RecentStore) TimeFilter() docsystem.TimeFilter {
	var w docsystem.TimeFilter
	s.Read(func(c *Collection) { w = c.Filter.TimeWindow })
	return w
}

// SetTypeFilters replaces the type filter set
func (s *RecentStore) SetTypeFilters(types []docsystem.DocumentType) error {
	if types == nil {
		types = []docsystem.DocumentType{}
	}
	return s.SetFilter(docsystem.FilterPatch{Types: types})
}

// AddTypeFilter adds t to the type filter set if absent
func (s *RecentStore) AddTypeFilter(t docsystem.DocumentType) error {
	if !docsystem.ValidDocumentType(t) {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid document type: %q", t)}
	}
	s.Update(func(c *Collection) {
		if !slices.Contains(c.Filter.Types, t) {
			c.Filter.Types = append(c.Filter.Types, t)
		}
		c.Pagination.Page = docsystem.DefaultPage
	})
	return nil
}

// RemoveTypeFilter removes t from the type filter set
func (s *RecentStore) RemoveTypeFilter(t docsystem.DocumentType) {
	s.Update(func(c *Collection) {
		c.Filter.Types = slices.DeleteFunc(c.Filter.Types, func(x docsystem.DocumentType) bool { return x == t })
		c.Pagination.Page = docsystem.DefaultPage
	})
}

// Preferences returns the persisted subset of the state
func (s *RecentStore) Preferences() models.RecentPreferences {
	var p models.RecentPreferences
	s.Read(func(c *Collection) { p = recentPreferences(*c) })
	return p
}

// ApplyPreferences restores a persisted subset
func (s *RecentStore) ApplyPreferences(p models.RecentPreferences) {
	s.Update(func(c *Collection) {
		c.Filter.TimeWindow = p.TimeFilter
		c.Filter.Types = slices.Clone(p.TypeFilters)
		c.SortBy = p.SortBy
		c.SortOrder = docsysService.DefaultDirection(p.SortBy)
	})
}

// WatchPreferences calls fn with the persisted subset after every mutation
func (s *RecentStore) WatchPreferences(fn func(models.RecentPreferences)) func() {
	return s.Subscribe(func(c Collection) { fn(recentPreferences(c)) })
}

func recentPreferences(c Collection) models.RecentPreferences {
	types := slices.Clone(c.Filter.Types)
	if types == nil {
		types = []docsystem.DocumentType{}
	}
	window := c.Filter.TimeWindow
	if window == "" {
		window = docsystem.TimeAll
	}
	return models.RecentPreferences{TimeFilter: window, SortBy: c.SortBy, TypeFilters: types}
}

// SharedStore is the shared-with-me view
type SharedStore struct {
	*CollectionStore
}

// SharedSortKeys are the orderings offered by the shared view
var SharedSortKeys = []docsystem.SortKey{docsystem.SortBySharedAt, docsystem.SortByName, docsystem.SortBySharedBy}

// NewSharedStore creates the shared store: newest share first, no filters
func NewSharedStore() *SharedStore {
	c := newCollectionStore(Collection{
		View:       docsystem.ViewShared,
		ViewMode:   docsystem.ViewModeList,
		SortBy:     docsystem.SortBySharedAt,
		SortOrder:  docsystem.SortDesc,
		Pagination: docsystem.Pagination{Page: docsystem.DefaultPage, PageSize: docsystem.MaxPageSize},
	}, SharedSortKeys)
	c.singlePermission = true
	return &SharedStore{c}
}

// SetPermissionFilter restricts the view to one permission, or none for "all"
func (s *SharedStore) SetPermissionFilter(p models.PermissionFilter) error {
	if p == models.PermissionAll {
		return s.SetFilter(docsystem.FilterPatch{Permissions: []docsystem.SharePermission{}})
	}
	perm := docsystem.SharePermission(p)
	if !slices.Contains(docsystem.SharePermissions, perm) {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid permission filter: %q", p)}
	}
	return s.SetFilter(docsystem.FilterPatch{Permissions: []docsystem.SharePermission{perm}})
}

// PermissionFilter returns the active permission choice
func (s *SharedStore) PermissionFilter() models.PermissionFilter {
	var p models.PermissionFilter
	s.Read(func(c *Collection) { p = permissionFilter(*c) })
	return p
}

// SetSharedByFilters replaces the sharer id filter set
func (s *SharedStore) SetSharedByFilters(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return s.SetFilter(docsystem.FilterPatch{SharedBy: ids})
}

// AddSharedByFilter adds a sharer id if absent
func (s *SharedStore) AddSharedByFilter(id string) {
	s.Update(func(c *Collection) {
		if !slices.Contains(c.Filter.SharedBy, id) {
			c.Filter.SharedBy = append(c.Filter.SharedBy, id)
		}
		c.Pagination.Page = docsystem.DefaultPage
	})
}

// RemoveSharedByFilter removes a sharer id
func (s *SharedStore) RemoveSharedByFilter(id string) {
	s.Update(func(c *Collection) {
		c.Filter.SharedBy = slices.DeleteFunc(c.Filter.SharedBy, func(x string) bool { return x == id })
		c.Pagination.Page = docsystem.DefaultPage
	})
}

// Grouped reports whether the view is currently shown grouped by sharer
func (s *SharedStore) Grouped() bool {
	grouped := false
	s.Read(func(c *Collection) { grouped = docsysService.ShouldGroup(c.View, c.SortBy) })
	return grouped
}

// Groups returns the view partitioned by sharer, or nil when not grouped
func (s *SharedStore) Groups(now time.Time) []docsystem.DocumentGroup {
	if !s.Grouped() {
		return nil
	}
	return docsysService.GroupBySharer(s.View(now))
}

// Sharers lists the users who shared the listed documents
func (s *SharedStore) Sharers() []docsystem.User {
	var users []docsystem.User
	s.Read(func(c *Collection) { users = docsysService.DistinctSharers(c.Documents) })
	return users
}

// Preferences returns the persisted subset of the state
func (s *SharedStore) Preferences() models.SharedPreferences {
	var p models.SharedPreferences
	s.Read(func(c *Collection) { p = sharedPreferences(*c) })
	return p
}

// ApplyPreferences restores a persisted subset
func (s *SharedStore) ApplyPreferences(p models.SharedPreferences) {
	s.Update(func(c *Collection) {
		c.SortBy = p.SortBy
		c.SortOrder = docsysService.DefaultDirection(p.SortBy)
		c.Filter.Permissions = nil
		if p.PermissionFilter != "" && p.PermissionFilter != models.PermissionAll {
			c.Filter.Permissions = []docsystem.SharePermission{docsystem.SharePermission(p.PermissionFilter)}
		}
		c.Filter.SharedBy = slices.Clone(p.SharedByFilters)
	})
}

// WatchPreferences calls fn with the persisted subset after every mutation
func (s *SharedStore) WatchPreferences(fn func(models.SharedPreferences)) func() {
	return s.Subscribe(func(c Collection) { fn(sharedPreferences(c)) })
}

func permissionFilter(c Collection) models.PermissionFilter {
	if len(c.Filter.Permissions) == 0 {
		return models.PermissionAll
	}
	return models.PermissionFilter(c.Filter.Permissions[0])
}

func sharedPreferences(c Collection) models.SharedPreferences {
	ids := slices.Clone(c.Filter.SharedBy)
	if ids == nil {
		ids = []string{}
	}
	return models.SharedPreferences{SortBy: c.SortBy, PermissionFilter: permissionFilter(c), SharedByFilters: ids}
}

// StarredStore is the starred documents view
type StarredStore struct {
	*CollectionStore
}

// StarredSortKeys are the orderings offered by the starred view
var StarredSortKeys = []docsystem.SortKey{docsystem.SortByStarredAt, docsystem.SortByName, docsystem.SortByUpdatedAt, docsystem.SortBySize}

// NewStarredStore creates the starred store: grid layout, most recently starred first
func NewStarredStore() *StarredStore {
	return &StarredStore{newCollectionStore(Collection{
		View:       docsystem.ViewStarred,
		ViewMode:   docsystem.ViewModeGrid,
		SortBy:     docsystem.SortByStarredAt,
		SortOrder:  docsystem.SortDesc,
		Pagination: docsystem.Pagination{Page: docsystem.DefaultPage, PageSize: docsystem.MaxPageSize},
	}, StarredSortKeys)}
}

// Unstar removes the star from a document and drops it from the view
func (s *StarredStore) Unstar(id string) bool {
	starred := false
	found := s.UpdateDocument(id, docsystem.DocumentPatch{IsStarred: &starred})
	if found {
		s.RemoveDocument(id)
	}
	return found
}

// Preferences returns the persisted subset of the state
func (s *StarredStore) Preferences() models.StarredPreferences {
	var p models.StarredPreferences
	s.Read(func(c *Collection) { p = starredPreferences(*c) })
	return p
}

// ApplyPreferences restores a persisted subset
func (s *StarredStore) ApplyPreferences(p models.StarredPreferences) {
	s.Update(func(c *Collection) {
		c.SortBy = p.SortBy
		c.SortOrder = docsysService.DefaultDirection(p.SortBy)
		c.ViewMode = p.ViewMode
	})
}

// WatchPreferences calls fn with the persisted subset after every mutation
func (s *StarredStore) WatchPreferences(fn func(models.StarredPreferences)) func() {
	return s.Subscribe(func(c Collection) { fn(starredPreferences(c)) })
}

func starredPreferences(c Collection) models.StarredPreferences {
	return models.StarredPreferences{SortBy: c.SortBy, ViewMode: c.ViewMode}
}
