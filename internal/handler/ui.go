package handler

import (
	"log/slog"
	"net/http"
	"time"

	"documentum/internal/domain"
	"documentum/internal/domain/models"
	"documentum/internal/httputil"
	"documentum/internal/store"
)

// UIHandler handles theme, panels and notifications
type UIHandler struct {
	sessions Sessions
	logger   *slog.Logger
}

// NewUIHandler creates a new UI handler
func NewUIHandler(sessions Sessions, logger *slog.Logger) *UIHandler {
	return &UIHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// GetUI returns the console chrome state
// GET /api/ui
func (h *UIHandler) GetUI(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, s.UI.Get())
}

// ThemeRequest selects a theme
type ThemeRequest struct {
	Theme models.Theme `json:"theme"`
}

// SetTheme selects light, dark or system
// PUT /api/ui/theme
func (h *UIHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}

	var req ThemeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.UI.SetTheme(req.Theme); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, ThemeRequest{Theme: s.UI.CurrentTheme()})
}

// ToggleTheme moves to the next theme in the cycle
// POST /api/ui/theme/toggle
func (h *UIHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, ThemeRequest{Theme: s.UI.ToggleTheme()})
}

// PanelsRequest opens or closes panels. Absent fields are left alone.
type PanelsRequest struct {
	SidebarOpen       *bool                   `json:"sidebar_open"`
	SidebarCollapsed  *bool                   `json:"sidebar_collapsed"`
	DetailsPanelOpen  *bool                   `json:"details_panel_open"`
	SearchPanelOpen   *bool                   `json:"search_panel_open"`
	CommandPalette    *bool                   `json:"command_palette_open"`
	GlobalSearchQuery httputil.OptionalString `json:"global_search_query"`
}

// UpdatePanels changes panel visibility and the global search query
// PATCH /api/ui/panels
func (h *UIHandler) UpdatePanels(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}

	var req PanelsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.SidebarOpen != nil {
		s.UI.SetSidebarOpen(*req.SidebarOpen)
	}
	if req.SidebarCollapsed != nil {
		s.UI.SetSidebarCollapsed(*req.SidebarCollapsed)
	}
	if req.DetailsPanelOpen != nil {
		s.UI.SetDetailsPanelOpen(*req.DetailsPanelOpen)
	}
	if req.SearchPanelOpen != nil {
		s.UI.SetSearchPanelOpen(*req.SearchPanelOpen)
	}
	if req.CommandPalette != nil {
		s.UI.SetCommandPaletteOpen(*req.CommandPalette)
	}
	req.GlobalSearchQuery.Apply(s.UI.SetGlobalSearchQuery)
	httputil.RespondJSON(w, http.StatusOK, s.UI.Get())
}

// NotificationBody is a notification to add. A missing duration_ms uses
// the default; zero keeps the notification until dismissed.
type NotificationBody struct {
	Type        store.NotificationKind `json:"type"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	DurationMS  *int64                 `json:"duration_ms"`
	Dismissible *bool                  `json:"dismissible"`
}

// AddNotification queues a notification
// POST /api/ui/notifications
func (h *UIHandler) AddNotification(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}

	var body NotificationBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	body.Title = httputil.StripHTML(body.Title)
	body.Message = httputil.StripHTML(body.Message)
	if body.Title == "" {
		handleError(w, &domain.ValidationError{Message: "title is required"})
		return
	}
	switch body.Type {
	case "", store.NotifySuccess, store.NotifyError, store.NotifyWarning, store.NotifyInfo:
	default:
		handleError(w, &domain.ValidationError{Message: "invalid notification type: " + string(body.Type)})
		return
	}

	req := store.NotificationRequest{
		Kind:        body.Type,
		Title:       body.Title,
		Message:     body.Message,
		Dismissible: true,
	}
	if body.DurationMS != nil {
		d := time.Duration(*body.DurationMS) * time.Millisecond
		req.Duration = &d
	}
	if body.Dismissible != nil {
		req.Dismissible = *body.Dismissible
	}

	id := s.UI.AddNotification(req)
	httputil.RespondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// DismissNotification removes a notification
// DELETE /api/ui/notifications/{id}
func (h *UIHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}
	s.UI.RemoveNotification(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}
