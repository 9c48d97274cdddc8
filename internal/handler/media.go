package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/config"
	"inkwell/internal/httputil"
	"inkwell/internal/service"
)

// MediaHandler handles file upload HTTP requests
type MediaHandler struct {
	media  *service.MediaService
	logger *slog.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(media *service.MediaService, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{media: media, logger: logger}
}

// Upload accepts a multipart file under the "file" field
// POST /api/media
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes+4096)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	media, err := h.media.Upload(r.Context(), header.Filename, header.Size, file, httputil.GetIdentity(r).UserID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, media)
}

// Delete removes an upload by its public URL
// DELETE /api/media?url=/uploads/...
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fileURL := r.URL.Query().Get("url")
	if fileURL == "" {
		httputil.RespondError(w, http.StatusBadRequest, "query parameter 'url' is required")
		return
	}

	if err := h.media.DeleteByFileURL(r.Context(), fileURL); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
