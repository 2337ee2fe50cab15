package store

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"documentum/internal/domain"
	"documentum/internal/domain/models/docsystem"
	docsysService "documentum/internal/service/docsystem"
)

// Activity tracks the loading and upload indicators of a collection
type Activity struct {
	Loading        bool `json:"is_loading"`
	Uploading      bool `json:"is_uploading"`
	UploadProgress int  `json:"upload_progress"`
}

// Collection is the state of one document view.
// Documents are values; their pointer fields are never modified in place.
type Collection struct {
	View       docsystem.View           `json:"view"`
	Documents  []docsystem.Document     `json:"documents"`
	Selected   map[string]struct{}      `json:"-"`
	Current    *docsystem.Document      `json:"current_document,omitempty"`
	ViewMode   docsystem.ViewMode       `json:"view_mode"`
	SortBy     docsystem.SortKey        `json:"sort_by"`
	SortOrder  docsystem.SortDirection  `json:"sort_order"`
	Filter     docsystem.DocumentFilter `json:"filter"`
	Pagination docsystem.Pagination     `json:"pagination"`
	Activity   Activity                 `json:"activity"`
}

// SelectedIDs returns the selected ids in sorted order
func (c Collection) SelectedIDs() []string {
	ids := slices.Sorted(maps.Keys(c.Selected))
	if ids == nil {
		ids = []string{}
	}
	return ids
}

func cloneCollection(c Collection) Collection {
	c.Documents = slices.Clone(c.Documents)
	c.Selected = cloneSet(c.Selected)
	if c.Current != nil {
		cur := *c.Current
		c.Current = &cur
	}
	c.Filter = c.Filter.Clone()
	return c
}

// CollectionStore implements the mutators and selectors shared by every
// document view. Sorting is applied when the view is read, never on write.
type CollectionStore struct {
	*Store[Collection]
	defaults Collection
	sortKeys []docsystem.SortKey

	// singlePermission limits the permission filter to one choice
	singlePermission bool
}

func newCollectionStore(defaults Collection, sortKeys []docsystem.SortKey) *CollectionStore {
	defaults.Selected = map[string]struct{}{}
	defaults.Pagination.ApplyDefaults()
	return &CollectionStore{
		Store:    New(cloneCollection(defaults), cloneCollection),
		defaults: defaults,
		sortKeys: sortKeys,
	}
}

// SetDocuments replaces the working list
func (s *CollectionStore) SetDocuments(docs []docsystem.Document) {
	s.Update(func(c *Collection) {
		c.Documents = slices.Clone(docs)
		c.Pagination.TotalCount = len(docs)
	})
}

// AddDocument prepends doc to the list
func (s *CollectionStore) AddDocument(doc docsystem.Document) {
	s.Update(func(c *Collection) {
		c.Documents = append([]docsystem.Document{doc}, c.Documents...)
		c.Pagination.TotalCount++
	})
}

// UpdateDocument applies patch to the document with id and to the current
// document if it is the same one. It reports whether the id was found.
func (s *CollectionStore) UpdateDocument(id string, patch docsystem.DocumentPatch) bool {
	found := false
	s.Update(func(c *Collection) {
		for i := range c.Documents {
			if c.Documents[i].ID == id {
				c.Documents[i] = patch.Apply(c.Documents[i])
				found = true
				break
			}
		}
		if c.Current != nil && c.Current.ID == id {
			updated := patch.Apply(*c.Current)
			c.Current = &updated
		}
	})
	return found
}

// RemoveDocument drops the document, its selection and the current pointer
func (s *CollectionStore) RemoveDocument(id string) {
	s.RemoveDocuments([]string{id})
}

// RemoveDocuments drops every listed document
func (s *CollectionStore) RemoveDocuments(ids []string) {
	s.Update(func(c *Collection) {
		c.Documents = slices.DeleteFunc(c.Documents, func(d docsystem.Document) bool {
			return slices.Contains(ids, d.ID)
		})
		for _, id := range ids {
			delete(c.Selected, id)
		}
		if c.Current != nil && slices.Contains(ids, c.Current.ID) {
			c.Current = nil
		}
		c.Pagination.TotalCount = len(c.Documents)
	})
}

// Select adds id to the selection
func (s *CollectionStore) Select(id string) {
	s.Update(func(c *Collection) { c.Selected[id] = struct{}{} })
}

// Deselect removes id from the selection
func (s *CollectionStore) Deselect(id string) {
	s.Update(func(c *Collection) { delete(c.Selected, id) })
}

// ToggleSelection flips membership of id
func (s *CollectionStore) ToggleSelection(id string) {
	s.Update(func(c *Collection) {
		if _, ok := c.Selected[id]; ok {
			delete(c.Selected, id)
		} else {
			c.Selected[id] = struct{}{}
		}
	})
}

// SelectAll adds every listed document to the selection
func (s *CollectionStore) SelectAll() {
	s.Update(func(c *Collection) {
		for _, d := range c.Documents {
			c.Selected[d.ID] = struct{}{}
		}
	})
}

// DeselectAll empties the selection
func (s *CollectionStore) DeselectAll() {
	s.Update(func(c *Collection) { c.Selected = map[string]struct{}{} })
}

// IsSelected reports whether id is selected
func (s *CollectionStore) IsSelected(id string) bool {
	selected := false
	s.Read(func(c *Collection) { _, selected = c.Selected[id] })
	return selected
}

// Selected returns the selected ids in sorted order
func (s *CollectionStore) Selected() []string {
	var ids []string
	s.Read(func(c *Collection) { ids = c.SelectedIDs() })
	return ids
}

// SetCurrentDocument sets the focused document; nil clears it
func (s *CollectionStore) SetCurrentDocument(doc *docsystem.Document) {
	s.Update(func(c *Collection) {
		if doc == nil {
			c.Current = nil
			return
		}
		cur := *doc
		c.Current = &cur
	})
}

// SetViewMode changes the layout
func (s *CollectionStore) SetViewMode(mode docsystem.ViewMode) error {
	if !docsystem.ValidViewMode(mode) {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid view mode: %q", mode)}
	}
	s.Update(func(c *Collection) { c.ViewMode = mode })
	return nil
}

// SetSorting records the sort key and direction
func (s *CollectionStore) SetSorting(key docsystem.SortKey, dir docsystem.SortDirection) error {
	if !slices.Contains(s.sortKeys, key) {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid sort key for %s view: %q", s.defaults.View, key)}
	}
	if !docsystem.ValidSortDirection(dir) {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid sort direction: %q", dir)}
	}
	s.Update(func(c *Collection) {
		c.SortBy = key
		c.SortOrder = dir
	})
	return nil
}

// SetSortBy sorts by key in its natural direction
func (s *CollectionStore) SetSortBy(key docsystem.SortKey) error {
	return s.SetSorting(key, docsysService.DefaultDirection(key))
}

// SortKeys lists the keys this view can be sorted by
func (s *CollectionStore) SortKeys() []docsystem.SortKey {
	return slices.Clone(s.sortKeys)
}

// SetFilter merges patch into the filter and returns to the first page
func (s *CollectionStore) SetFilter(patch docsystem.FilterPatch) error {
	if patch.TimeWindow != nil && !docsystem.ValidTimeFilter(*patch.TimeWindow) {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid time filter: %q", *patch.TimeWindow)}
	}
	for _, t := range patch.Types {
		if !docsystem.ValidDocumentType(t) {
			return &domain.ValidationError{Message: fmt.Sprintf("invalid document type: %q", t)}
		}
	}
	for _, p := range patch.Permissions {
		if !slices.Contains(docsystem.SharePermissions, p) {
			return &domain.ValidationError{Message: fmt.Sprintf("invalid share permission: %q", p)}
		}
	}
	if s.singlePermission && len(patch.Permissions) > 1 {
		return &domain.ValidationError{Message: fmt.Sprintf("the %s view filters by one permission at a time", s.defaults.View)}
	}
	s.Update(func(c *Collection) {
		c.Filter = c.Filter.Merge(patch)
		c.Pagination.Page = docsystem.DefaultPage
	})
	return nil
}

// ClearFilters restores the default filter and returns to the first page
func (s *CollectionStore) ClearFilters() {
	s.Update(func(c *Collection) {
		c.Filter = s.defaults.Filter.Clone()
		c.Pagination.Page = docsystem.DefaultPage
	})
}

// SetPagination merges the non-zero fields of p
func (s *CollectionStore) SetPagination(p docsystem.Pagination) error {
	if p.PageSize < 0 || p.PageSize > docsystem.MaxPageSize {
		return &domain.ValidationError{Message: fmt.Sprintf("page size must be between 1 and %d", docsystem.MaxPageSize)}
	}
	if p.Page < 0 {
		return &domain.ValidationError{Message: "page must be at least 1"}
	}
	s.Update(func(c *Collection) {
		if p.Page > 0 {
			c.Pagination.Page = p.Page
		}
		if p.PageSize > 0 {
			c.Pagination.PageSize = p.PageSize
		}
	})
	return nil
}

// SetTotalCount overrides the item count used to bound paging
func (s *CollectionStore) SetTotalCount(n int) {
	s.Update(func(c *Collection) { c.Pagination.TotalCount = max(n, 0) })
}

// NextPage advances unless on the last page
func (s *CollectionStore) NextPage() {
	s.Update(func(c *Collection) {
		if c.Pagination.Page < c.Pagination.TotalPages() {
			c.Pagination.Page++
		}
	})
}

// PrevPage steps back unless on the first page
func (s *CollectionStore) PrevPage() {
	s.Update(func(c *Collection) {
		if c.Pagination.Page > 1 {
			c.Pagination.Page--
		}
	})
}

// GoToPage jumps to page if it is within range; it reports whether it moved
func (s *CollectionStore) GoToPage(page int) bool {
	moved := false
	s.Update(func(c *Collection) {
		if page >= 1 && page <= c.Pagination.TotalPages() {
			c.Pagination.Page = page
			moved = true
		}
	})
	return moved
}

// View returns the filtered and sorted documents
func (s *CollectionStore) View(now time.Time) []docsystem.Document {
	var view []docsystem.Document
	s.Read(func(c *Collection) {
		view = docsysService.ComputeView(c.Documents, c.Filter, c.SortBy, c.SortOrder, now)
	})
	return view
}

// Page returns the current page of the view
func (s *CollectionStore) Page(now time.Time) docsystem.Page {
	var page docsystem.Page
	s.Read(func(c *Collection) {
		view := docsysService.ComputeView(c.Documents, c.Filter, c.SortBy, c.SortOrder, now)
		page = docsysService.Paginate(view, c.Pagination)
	})
	return page
}

// Reset restores the initial state; subscribers are kept
func (s *CollectionStore) Reset() {
	s.Update(func(c *Collection) { *c = cloneCollection(s.defaults) })
}
