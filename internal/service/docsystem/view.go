package docsystem

import (
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	models "documentum/internal/domain/models/docsystem"
)

// UnknownSharer is the group key of documents without sharing metadata
const UnknownSharer = "Unknown"

// TimeCutoff returns the inclusive lower bound of window relative to now.
// ok is false for "all" and unknown windows, which do not restrict.
func TimeCutoff(window models.TimeFilter, now time.Time) (cutoff time.Time, ok bool) {
	switch window {
	case models.TimeToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case models.TimeWeek:
		return now.AddDate(0, 0, -7), true
	case models.TimeMonth:
		return now.AddDate(0, 0, -30), true
	}
	return time.Time{}, false
}

// ComputeView filters and orders docs for display. It applies, in order,
// the time window, the categorical filters, the query and range filters,
// then a stable sort by key and direction. The input slice is not modified.
func ComputeView(docs []models.Document, filter models.DocumentFilter, key models.SortKey, dir models.SortDirection, now time.Time) []models.Document {
	out := make([]models.Document, 0, len(docs))
	cutoff, windowed := TimeCutoff(filter.TimeWindow, now)
	query := strings.ToLower(filter.Query)

	for i := range docs {
		doc := &docs[i]
		if windowed && doc.LastActivity().Before(cutoff) {
			continue
		}
		if !matchesCategories(doc, filter) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(doc.Name), query) {
			continue
		}
		if !matchesRanges(doc, filter) {
			continue
		}
		out = append(out, *doc)
	}

	SortDocuments(out, key, dir)
	return out
}

func matchesCategories(doc *models.Document, f models.DocumentFilter) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, doc.Type) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, doc.Status) {
		return false
	}
	if len(f.Permissions) > 0 && (doc.Sharing == nil || !slices.Contains(f.Permissions, doc.Sharing.Permission)) {
		return false
	}
	if len(f.SharedBy) > 0 && (doc.Sharing == nil || !slices.Contains(f.SharedBy, doc.Sharing.SharedBy.ID)) {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(doc.Tags(), func(tag string) bool {
		return slices.Contains(f.Tags, tag)
	}) {
		return false
	}
	if f.FolderID != "" && doc.FolderID != f.FolderID {
		return false
	}
	if f.OwnerID != "" && doc.Owner.ID != f.OwnerID {
		return false
	}
	return true
}

func matchesRanges(doc *models.Document, f models.DocumentFilter) bool {
	if f.CreatedAfter != nil && doc.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && doc.CreatedAt.After(*f.CreatedBefore) {
		return false
	}
	if f.UpdatedAfter != nil && doc.UpdatedAt.Before(*f.UpdatedAfter) {
		return false
	}
	if f.UpdatedBefore != nil && doc.UpdatedAt.After(*f.UpdatedBefore) {
		return false
	}
	if f.MinSize != nil && doc.Size < *f.MinSize {
		return false
	}
	if f.MaxSize != nil && doc.Size > *f.MaxSize {
		return false
	}
	return true
}

// SortDocuments stable-sorts docs in place. Strings use English collation,
// instants compare chronologically and sizes numerically.
func SortDocuments(docs []models.Document, key models.SortKey, dir models.SortDirection) {
	// Collators keep internal buffers, so each sort gets its own
	col := collate.New(language.English)
	cmp := comparator(col, key)
	if cmp == nil {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		c := cmp(&docs[i], &docs[j])
		if dir == models.SortDesc {
			return c > 0
		}
		return c < 0
	})
}

type compareFunc func(a, b *models.Document) int

func comparator(col *collate.Collator, key models.SortKey) compareFunc {
	byString := func(get func(*models.Document) string) compareFunc {
		return func(a, b *models.Document) int { return col.CompareString(get(a), get(b)) }
	}
	byTime := func(get func(*models.Document) time.Time) compareFunc {
		return func(a, b *models.Document) int { return get(a).Compare(get(b)) }
	}

	switch key {
	case models.SortByName:
		return byString(func(d *models.Document) string { return d.Name })
	case models.SortByType:
		return byString(func(d *models.Document) string { return string(d.Type) })
	case models.SortByStatus:
		return byString(func(d *models.Document) string { return string(d.Status) })
	case models.SortBySharedBy:
		return byString(SharerName)
	case models.SortByUpdatedAt, models.SortByModifiedAt:
		return byTime(func(d *models.Document) time.Time { return d.UpdatedAt })
	case models.SortByCreatedAt:
		return byTime(func(d *models.Document) time.Time { return d.CreatedAt })
	case models.SortByAccessedAt:
		return byTime(func(d *models.Document) time.Time { return d.LastActivity() })
	case models.SortBySharedAt:
		return byTime(func(d *models.Document) time.Time {
			if d.Sharing == nil {
				return time.Time{}
			}
			return d.Sharing.SharedAt
		})
	case models.SortByStarredAt:
		return byTime(func(d *models.Document) time.Time {
			if d.StarredAt == nil {
				return time.Time{}
			}
			return *d.StarredAt
		})
	case models.SortBySize:
		return func(a, b *models.Document) int {
			switch {
			case a.Size < b.Size:
				return -1
			case a.Size > b.Size:
				return 1
			}
			return 0
		}
	}
	return nil
}

// DefaultDirection is descending for time keys and ascending otherwise
func DefaultDirection(key models.SortKey) models.SortDirection {
	if key.IsTime() {
		return models.SortDesc
	}
	return models.SortAsc
}

// SharerName returns the display name of the sharer, or UnknownSharer
func SharerName(doc *models.Document) string {
	if doc.Sharing == nil || doc.Sharing.SharedBy.Name == "" {
		return UnknownSharer
	}
	return doc.Sharing.SharedBy.Name
}

// ShouldGroup reports whether a view sorted by key is shown grouped by sharer
func ShouldGroup(view models.View, key models.SortKey) bool {
	return view == models.ViewShared && key == models.SortBySharedBy
}

// GroupBySharer partitions docs by sharer name. Groups appear in the order
// their first document appears and keep the relative order of docs.
func GroupBySharer(docs []models.Document) []models.DocumentGroup {
	groups := []models.DocumentGroup{}
	index := make(map[string]int)
	for _, doc := range docs {
		name := SharerName(&doc)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, models.DocumentGroup{Key: name})
		}
		groups[i].Documents = append(groups[i].Documents, doc)
	}
	return groups
}

// Paginate slices docs into the page described by p
func Paginate(docs []models.Document, p models.Pagination) models.Page {
	p.TotalCount = len(docs)
	p.ApplyDefaults()
	totalPages := p.TotalPages()

	start := (p.Page - 1) * p.PageSize
	if start > len(docs) {
		start = len(docs)
	}
	end := start + p.PageSize
	if end > len(docs) {
		end = len(docs)
	}

	return models.Page{
		Items:       append([]models.Document{}, docs[start:end]...),
		Total:       len(docs),
		Page:        p.Page,
		PageSize:    p.PageSize,
		TotalPages:  totalPages,
		HasNext:     p.Page < totalPages,
		HasPrevious: p.Page > 1,
	}
}

// DistinctTypes lists the document types present in docs, first-seen order
func DistinctTypes(docs []models.Document) []models.DocumentType {
	var out []models.DocumentType
	for _, doc := range docs {
		if !slices.Contains(out, doc.Type) {
			out = append(out, doc.Type)
		}
	}
	return out
}

// DistinctSharers lists the users who shared docs, first-seen order
func DistinctSharers(docs []models.Document) []models.User {
	var out []models.User
	seen := make(map[string]bool)
	for _, doc := range docs {
		if doc.Sharing == nil || seen[doc.Sharing.SharedBy.ID] {
			continue
		}
		seen[doc.Sharing.SharedBy.ID] = true
		out = append(out, doc.Sharing.SharedBy)
	}
	return out
}
