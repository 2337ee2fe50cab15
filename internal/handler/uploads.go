package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"documentum/internal/config"
	"documentum/internal/domain"
	"documentum/internal/httputil"
	"documentum/internal/service/upload"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files
const multipartMemory = 32 << 20

// UploadHandler handles the upload queue
type UploadHandler struct {
	sessions Sessions
	logger   *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(sessions Sessions, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// UploadsResponse is the queue with its aggregate progress
type UploadsResponse struct {
	Uploads []upload.Entry `json:"uploads"`
	Summary upload.Summary `json:"summary"`
}

// ListUploads returns the queue
// GET /api/uploads
func (h *UploadHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, UploadsResponse{
		Uploads: s.Uploads.Entries(),
		Summary: s.Uploads.Summary(),
	})
}

// CreateUploads enqueues the files of a multipart form field named "files"
// POST /api/uploads
func (h *UploadHandler) CreateUploads(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		handleError(w, &domain.ValidationError{Message: "no files provided"})
		return
	}
	if len(headers) > config.MaxUploadFilesPerRequest {
		handleError(w, &domain.ValidationError{Message: fmt.Sprintf("at most %d files per request", config.MaxUploadFilesPerRequest)})
		return
	}

	files := make([]upload.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readPart(fh)
		if err != nil {
			h.logger.Error("failed to read upload", "file", fh.Filename, "error", err)
			httputil.RespondError(w, http.StatusBadRequest, fmt.Sprintf("could not read %s", fh.Filename))
			return
		}
		files = append(files, f)
	}

	// transfers outlive the request, so they must not inherit its context
	ids := s.Upload(context.WithoutCancel(r.Context()), files...)
	entries := make([]upload.Entry, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.Uploads.Entry(id); ok {
			entries = append(entries, e)
		}
	}
	httputil.RespondJSON(w, http.StatusAccepted, UploadsResponse{
		Uploads: entries,
		Summary: s.Uploads.Summary(),
	})
}

// readPart buffers one file. Oversized files are passed on without a body
// so the queue records them as rejected.
func readPart(fh *multipart.FileHeader) (upload.File, error) {
	f := upload.File{
		Name:        httputil.StripHTML(fh.Filename),
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
	}
	if fh.Size > upload.MaxFileSize {
		return f, nil
	}

	part, err := fh.Open()
	if err != nil {
		return f, err
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return f, err
	}
	f.Body = bytes.NewReader(data)
	return f, nil
}

// RemoveUpload cancels and drops one upload
// DELETE /api/uploads/{id}
func (h *UploadHandler) RemoveUpload(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if _, ok := s.Uploads.Entry(id); !ok {
		handleError(w, &domain.NotFoundError{Resource: "upload", ID: id})
		return
	}
	s.Uploads.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

// ClearCompleted drops finished uploads
// POST /api/uploads/clear-completed
func (h *UploadHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r, h.sessions)
	if !ok {
		return
	}
	s.Uploads.ClearCompleted()
	httputil.RespondJSON(w, http.StatusOK, UploadsResponse{
		Uploads: s.Uploads.Entries(),
		Summary: s.Uploads.Summary(),
	})
}
