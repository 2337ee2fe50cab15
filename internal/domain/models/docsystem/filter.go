package docsystem

import (
	"fmt"
	"time"
)

// ViewMode selects how a document collection is laid out
type ViewMode string

const (
	ViewModeGrid  ViewMode = "grid"
	ViewModeList  ViewMode = "list"
	ViewModeTable ViewMode = "table"
)

// View names one of the document collections of the console
type View string

const (
	ViewAll     View = "documents"
	ViewRecent  View = "recent"
	ViewShared  View = "shared"
	ViewStarred View = "starred"
)

// Views lists every collection view
var Views = []View{ViewAll, ViewRecent, ViewShared, ViewStarred}

// SortDirection orders a sorted collection
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortKey names the document field a collection is ordered by
type SortKey string

const (
	SortByName       SortKey = "name"
	SortByUpdatedAt  SortKey = "updatedAt"
	SortByModifiedAt SortKey = "modifiedAt" // alias of updatedAt used by the recent view
	SortByCreatedAt  SortKey = "createdAt"
	SortByAccessedAt SortKey = "accessedAt"
	SortBySize       SortKey = "size"
	SortByType       SortKey = "type"
	SortByStatus     SortKey = "status"
	SortBySharedAt   SortKey = "sharedAt"
	SortBySharedBy   SortKey = "sharedBy"
	SortByStarredAt  SortKey = "starredAt"
)

// IsTime reports whether the key orders by an instant
func (k SortKey) IsTime() bool {
	switch k {
	case SortByUpdatedAt, SortByModifiedAt, SortByCreatedAt, SortByAccessedAt, SortBySharedAt, SortByStarredAt:
		return true
	}
	return false
}

// TimeFilter is the recency window applied to a collection
type TimeFilter string

const (
	TimeToday TimeFilter = "today"
	TimeWeek  TimeFilter = "week"
	TimeMonth TimeFilter = "month"
	TimeAll   TimeFilter = "all"
)

// Label returns the menu label of the window
func (t TimeFilter) Label() string {
	switch t {
	case TimeToday:
		return "Today"
	case TimeWeek:
		return "Past 7 days"
	case TimeMonth:
		return "Past 30 days"
	default:
		return "All time"
	}
}

// DocumentFilter holds the active predicates of a collection.
// Empty slices mean "no restriction" for that field.
type DocumentFilter struct {
	TimeWindow    TimeFilter        `json:"time_window,omitempty"`
	Types         []DocumentType    `json:"types,omitempty"`
	Statuses      []DocumentStatus  `json:"statuses,omitempty"`
	Permissions   []SharePermission `json:"permissions,omitempty"`
	SharedBy      []string          `json:"shared_by,omitempty"` // sharer user ids
	Query         string            `json:"query,omitempty"`
	FolderID      string            `json:"folder_id,omitempty"`
	OwnerID       string            `json:"owner_id,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	CreatedAfter  *time.Time        `json:"created_after,omitempty"`
	CreatedBefore *time.Time        `json:"created_before,omitempty"`
	UpdatedAfter  *time.Time        `json:"updated_after,omitempty"`
	UpdatedBefore *time.Time        `json:"updated_before,omitempty"`
	MinSize       *int64            `json:"min_size,omitempty"`
	MaxSize       *int64            `json:"max_size,omitempty"`
}

// Clone returns a copy that shares no slices with the receiver
func (f DocumentFilter) Clone() DocumentFilter {
	f.Types = cloneSlice(f.Types)
	f.Statuses = cloneSlice(f.Statuses)
	f.Permissions = cloneSlice(f.Permissions)
	f.SharedBy = cloneSlice(f.SharedBy)
	f.Tags = cloneSlice(f.Tags)
	return f
}

// FilterPatch is a partial filter update.
// Nil pointers and nil slices leave the field unchanged; a non-nil empty slice clears it.
type FilterPatch struct {
	TimeWindow    *TimeFilter       `json:"time_window"`
	Types         []DocumentType    `json:"types"`
	Statuses      []DocumentStatus  `json:"statuses"`
	Permissions   []SharePermission `json:"permissions"`
	SharedBy      []string          `json:"shared_by"`
	Query         *string           `json:"query"`
	FolderID      *string           `json:"folder_id"`
	OwnerID       *string           `json:"owner_id"`
	Tags          []string          `json:"tags"`
	CreatedAfter  *time.Time        `json:"created_after"`
	CreatedBefore *time.Time        `json:"created_before"`
	UpdatedAfter  *time.Time        `json:"updated_after"`
	UpdatedBefore *time.Time        `json:"updated_before"`
	MinSize       *int64            `json:"min_size"`
	MaxSize       *int64            `json:"max_size"`
}

// Merge applies the patch on top of the filter
func (f DocumentFilter) Merge(p FilterPatch) DocumentFilter {
	out := f.Clone()
	if p.TimeWindow != nil {
		out.TimeWindow = *p.TimeWindow
	}
	if p.Types != nil {
		out.Types = cloneSlice(p.Types)
	}
	if p.Statuses != nil {
		out.Statuses = cloneSlice(p.Statuses)
	}
	if p.Permissions != nil {
		out.Permissions = cloneSlice(p.Permissions)
	}
	if p.SharedBy != nil {
		out.SharedBy = cloneSlice(p.SharedBy)
	}
	if p.Query != nil {
		out.Query = *p.Query
	}
	if p.FolderID != nil {
		out.FolderID = *p.FolderID
	}
	if p.OwnerID != nil {
		out.OwnerID = *p.OwnerID
	}
	if p.Tags != nil {
		out.Tags = cloneSlice(p.Tags)
	}
	if p.CreatedAfter != nil {
		out.CreatedAfter = p.CreatedAfter
	}
	if p.CreatedBefore != nil {
		out.CreatedBefore = p.CreatedBefore
	}
	if p.UpdatedAfter != nil {
		out.UpdatedAfter = p.UpdatedAfter
	}
	if p.UpdatedBefore != nil {
		out.UpdatedBefore = p.UpdatedBefore
	}
	if p.MinSize != nil {
		out.MinSize = p.MinSize
	}
	if p.MaxSize != nil {
		out.MaxSize = p.MaxSize
	}
	return out
}

// Default pagination values
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is the page cursor of a collection
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// ApplyDefaults fills in default values for unset fields
func (p *Pagination) ApplyDefaults() {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.TotalCount < 0 {
		p.TotalCount = 0
	}
}

// TotalPages returns the number of pages for TotalCount items
func (p Pagination) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// Validate checks that values are within range
func (p Pagination) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("page must be at least 1 (requested: %d)", p.Page)
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return fmt.Errorf("page size must be between 1 and %d (requested: %d)", MaxPageSize, p.PageSize)
	}
	return nil
}

// Page is one page of a derived view
type Page struct {
	Items       []Document `json:"items"`
	Total       int        `json:"total"`
	Page        int        `json:"page"`
	PageSize    int        `json:"page_size"`
	TotalPages  int        `json:"total_pages"`
	HasNext     bool       `json:"has_next_page"`
	HasPrevious bool       `json:"has_previous_page"`
}

// DocumentGroup is a named partition of a sorted view
type DocumentGroup struct {
	Key       string     `json:"key"`
	Documents []Document `json:"documents"`
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
