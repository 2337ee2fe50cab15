package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"documentum/internal/config"
	"documentum/internal/domain/models/docsystem"
	"documentum/internal/httputil"
	"documentum/internal/service/console"
)

// TreeHandler handles HTTP requests for the folder tree
type TreeHandler struct {
	sessions Sessions
	logger   *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(sessions Sessions, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		sessions: sessions,
		logger:   logger,
	}
}

type folderStateResponse struct {
	CurrentID   string                  `json:"current_folder_id,omitempty"`
	CurrentPath []string                `json:"current_path"`
	Breadcrumb  []*docsystem.TreeFolder `json:"breadcrumb"`
	Expanded    []string                `json:"expanded_folders"`
	SelectedID  string                  `json:"selected_folder_id,omitempty"`
	SearchQuery string                  `json:"search_query"`
}

func folderState(s *console.Session) folderStateResponse {
	st := s.Folders.Get()
	breadcrumb := s.Folders.Breadcrumb()
	if breadcrumb == nil {
		breadcrumb = []*docsystem.TreeFolder{}
	}
	return folderStateResponse{
		CurrentID:   st.CurrentID,
		CurrentPath: st.CurrentPath,
		Breadcrumb:  breadcrumb,
		Expanded:    st.ExpandedIDs(),
		SelectedID:  st.SelectedID,
		SearchQuery: st.SearchQuery,
	}
}

// GetTree returns the folder tree, pruned by the optional q query
// GET /api/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}

	if q, present := r.URL.Query()["q"]; present {
		if len(q[0]) > config.MaxSearchQueryLength {
			httputil.RespondError(w, http.StatusBadRequest, "search query too long")
			return
		}
		s.Folders.SetSearchQuery(q[0])
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"folders": s.Folders.FilteredTree(),
		"state":   folderState(s),
	})
}

// GetFolder returns one folder with its subtree
// GET /api/folders/{id}
func (h *TreeHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}

	folder, err := s.Tree.Folder(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// GetBreadcrumb returns the path from the root to a folder
// GET /api/folders/{id}/breadcrumb
func (h *TreeHandler) GetBreadcrumb(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}

	path, err := s.Tree.Breadcrumb(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, path)
}

// GetFolderDocuments lists the documents of a folder
// GET /api/folders/{id}/documents?recursive=true
func (h *TreeHandler) GetFolderDocuments(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}

	recursive, _ := strconv.ParseBool(r.URL.Query().Get("recursive"))
	docs, err := s.Tree.Documents(r.Context(), r.PathValue("id"), recursive)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}

// NavigateRequest selects the current folder; an empty id returns to the root
type NavigateRequest struct {
	FolderID string `json:"folder_id"`
	Up       bool   `json:"up"`
}

// Navigate changes the current folder and expands its ancestors
// POST /api/folders/navigate
func (h *TreeHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}

	var req NavigateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Up {
		s.Folders.NavigateUp()
	} else {
		if err := s.Folders.NavigateToFolder(req.FolderID); err != nil {
			handleError(w, err)
			return
		}
		if req.FolderID != "" {
			if err := s.Folders.Reveal(req.FolderID); err != nil {
				handleError(w, err)
				return
			}
		}
	}

	httputil.RespondJSON(w, http.StatusOK, folderState(s))
}

// ToggleExpanded flips the expansion of a folder
// POST /api/folders/{id}/toggle
func (h *TreeHandler) ToggleExpanded(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if _, err := s.Tree.Folder(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	s.Folders.ToggleExpanded(id)
	httputil.RespondJSON(w, http.StatusOK, folderState(s))
}
