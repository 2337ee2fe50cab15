package handler

import (
	"log/slog"
	"net/http"

	"documentum/internal/domain/services"
	"documentum/internal/httputil"
)

// UserPreferencesHandler exposes the persisted console preferences
type UserPreferencesHandler struct {
	service  services.PreferencesService
	sessions Sessions
	logger   *slog.Logger
}

// NewUserPreferencesHandler creates a new user preferences handler
func NewUserPreferencesHandler(service services.PreferencesService, sessions Sessions, logger *slog.Logger) *UserPreferencesHandler {
	return &UserPreferencesHandler{
		service:  service,
		sessions: sessions,
		logger:   logger,
	}
}

// GetPreferences returns every stored snapshot of the caller, keyed by store
// GET /api/users/me/preferences
func (h *UserPreferencesHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "missing user")
		return
	}

	prefs, err := h.service.ReadAll(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prefs)
}

// ResetPreferences deletes the stored snapshots and ends the live session,
// so the next request starts from defaults
// DELETE /api/users/me/preferences
func (h *UserPreferencesHandler) ResetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "missing user")
		return
	}

	// end first so the closing session cannot write its state back
	h.sessions.End(userID)
	if err := h.service.ResetAll(r.Context(), userID); err != nil {
		h.logger.Error("failed to reset preferences", "user_id", userID, "error", err)
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
