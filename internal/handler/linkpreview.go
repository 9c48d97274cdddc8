package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/httputil"
	"inkwell/internal/service"
)

// LinkPreviewHandler exposes the Open Graph scraper for frontend previews.
type LinkPreviewHandler struct {
	previews *service.LinkPreviewService
	logger   *slog.Logger
}

// NewLinkPreviewHandler creates a new link preview handler
func NewLinkPreviewHandler(previews *service.LinkPreviewService, logger *slog.Logger) *LinkPreviewHandler {
	return &LinkPreviewHandler{previews: previews, logger: logger}
}

// Get scrapes the URL and returns its preview
// GET /api/link-preview?url=...
func (h *LinkPreviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		httputil.RespondError(w, http.StatusBadRequest, "query parameter 'url' is required")
		return
	}

	preview, err := h.previews.Fetch(r.Context(), rawURL)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, preview)
}
