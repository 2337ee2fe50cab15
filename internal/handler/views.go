package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"documentum/internal/config"
	"documentum/internal/domain"
	"documentum/internal/domain/models/docsystem"
	"documentum/internal/httputil"
	"documentum/internal/service/console"
	"documentum/internal/store"
)

// ViewHandler handles the document views: all, recent, shared and starred
type ViewHandler struct {
	sessions Sessions
	logger   *slog.Logger
}

// NewViewHandler creates a new view handler
func NewViewHandler(sessions Sessions, logger *slog.Logger) *ViewHandler {
	return &ViewHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// ViewResponse is the derived state of one view
type ViewResponse struct {
	View      docsystem.View            `json:"view"`
	ViewMode  docsystem.ViewMode        `json:"view_mode"`
	SortBy    docsystem.SortKey         `json:"sort_by"`
	SortOrder docsystem.SortDirection   `json:"sort_order"`
	SortKeys  []docsystem.SortKey       `json:"sort_keys"`
	Filter    docsystem.DocumentFilter  `json:"filter"`
	Selected  []string                  `json:"selected_ids"`
	Page      docsystem.Page            `json:"page"`
	Groups    []docsystem.DocumentGroup `json:"groups,omitempty"`
	Sharers   []docsystem.User          `json:"sharers,omitempty"`
	Activity  store.Activity            `json:"activity"`
	Current   *docsystem.Document       `json:"current_document,omitempty"`
	TimeLabel string                    `json:"time_filter_label,omitempty"`
}

// viewFor resolves the session and the view named in the path
func (h *ViewHandler) viewFor(w http.ResponseWriter, r *http.Request) (*console.Session, *store.CollectionStore, bool) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return nil, nil, false
	}
	c, err := s.Collection(docsystem.View(r.PathValue("view")))
	if err != nil {
		handleError(w, err)
		return nil, nil, false
	}
	return s, c, true
}

func (h *ViewHandler) respondView(w http.ResponseWriter, s *console.Session, c *store.CollectionStore) {
	now := s.Now()
	st := c.Get()
	resp := ViewResponse{
		View:      st.View,
		ViewMode:  st.ViewMode,
		SortBy:    st.SortBy,
		SortOrder: st.SortOrder,
		SortKeys:  c.SortKeys(),
		Filter:    st.Filter,
		Selected:  st.SelectedIDs(),
		Page:      c.Page(now),
		Activity:  st.Activity,
		Current:   st.Current,
	}
	switch st.View {
	case docsystem.ViewRecent:
		resp.TimeLabel = s.Recent.TimeFilter().Label()
	case docsystem.ViewShared:
		if s.Shared.Grouped() {
			resp.Groups = s.Shared.Groups(now)
		}
		resp.Sharers = s.Shared.Sharers()
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// GetView returns the current page and settings of a view
// GET /api/views/{view}
func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	s, c, ok := h.viewFor(w, r)
	if !ok {
		return
	}
	h.respondView(w, s, c)
}

// UpdateFilter merges a partial filter
// PATCH /api/views/{view}/filter
func (h *ViewHandler) UpdateFilter(w http.ResponseWriter, r *http.Request) {
	s, c, ok := h.viewFor(w, r)
	if !ok {
		return
	}

	var patch docsystem.FilterPatch
	if err := httputil.ParseJSON(w, r, &patch); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if patch.Query != nil && len(*patch.Query) > config.MaxSearchQueryLength {
		httputil.RespondError(w, http.StatusBadRequest, "search query too long")
		return
	}
	if err := c.SetFilter(patch); err != nil {
		handleError(w, err)
		return
	}
	h.respondView(w, s, c)
}

// ClearFilter restores the default filter
// DELETE /api/views/{view}/filter
func (h *ViewHandler) ClearFilter(w http.ResponseWriter, r *http.Request) {
	s, c, ok := h.viewFor(w, r)
	if !ok {
		return
	}
	c.ClearFilters()
	h.respondView(w, s, c)
}

// SortRequest changes the ordering; an empty order uses the key's default
type SortRequest struct {
	SortBy    docsystem.SortKey       `json:"sort_by"`
	SortOrder docsystem.SortDirection `json:"sort_order"`
}

// SetSort changes the ordering of a view
// PUT /api/views/{view}/sort
func (h *ViewHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	s, c, ok := h.viewFor(w, r)
	if !ok {
		return
	}

	var req SortRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var err error
	if req.SortOrder == "" {
		err = c.SetSortBy(req.SortBy)
	} else {
		err = c.SetSorting(req.SortBy, req.SortOrder)
	}
	if err != nil {
		handleError(w, err)
		return
	}
	h.respondView(w, s, c)
}

// ModeRequest changes the layout
type ModeRequest struct {
	ViewMode docsystem.ViewMode `json:"view_mode"`
}

// SetMode changes the layout of a view
// PUT /api/views/{view}/mode
func (h *ViewHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	s, c, ok := h.viewFor(w, r)
	if !ok {
		return
	}

	var req ModeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := c.SetViewMode(req.ViewMode); err != nil {
		handleError(w, err)
		return
	}
	h.respondView(w, s, c)
}

// PageRequest moves through the pages. Action "next" or "prev" steps;
// otherwise Page jumps and PageSize resizes.
type PageRequest struct {
	Action   string `json:"action"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// SetPage changes the current page or page size
// PUT /api/views/{view}/page
func (h *ViewHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	s, c, ok := h.viewFor(w, r)
	if !ok {
		return
	}

	var req PageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// paging is bounded by the visible item count
	c.SetTotalCount(len(c.View(s.Now())))

	switch req.Action {
	case "next":
		c.NextPage()
	case "prev":
		c.PrevPage()
	case "":
		if req.PageSize > 0 {
			if err := c.SetPagination(docsystem.Pagination{PageSize: req.PageSize}); err != nil {
				handleError(w, err)
				return
			}
		}
		if req.Page > 0 && !c.GoToPage(req.Page) {
			handleError(w, &domain.ValidationError{Message: fmt.Sprintf("page %d is out of range", req.Page)})
			return
		}
	default:
		handleError(w, &domain.ValidationError{Message: fmt.Sprintf("unknown page action: %s", req.Action)})
		return
	}
	h.respondView(w, s, c)
}

// SelectionRequest changes the selection: select, deselect, toggle, all or none
type SelectionRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
}

// UpdateSelection changes the selected documents of a view
// POST /api/views/{view}/selection
func (h *ViewHandler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	s, c, ok := h.viewFor(w, r)
	if !ok {
		return
	}

	var req SelectionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.Action {
	case "select":
		for _, id := range req.IDs {
			c.Select(id)
		}
	case "deselect":
		for _, id := range req.IDs {
			c.Deselect(id)
		}
	case "toggle":
		for _, id := range req.IDs {
			c.ToggleSelection(id)
		}
	case "all":
		c.SelectAll()
	case "none":
		c.DeselectAll()
	default:
		handleError(w, &domain.ValidationError{Message: fmt.Sprintf("unknown selection action: %s", req.Action)})
		return
	}
	h.respondView(w, s, c)
}

// OpenDocument makes a document current and records the access
// POST /api/documents/{id}/open
func (h *ViewHandler) OpenDocument(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}

	doc, err := s.OpenDocument(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// ToggleStar stars or unstars a document
// POST /api/documents/{id}/star
func (h *ViewHandler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}

	starred, err := s.ToggleStar(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"is_starred": starred})
}
