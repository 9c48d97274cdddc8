package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/httputil"
	"inkwell/internal/service"
)

// TagHandler handles tag HTTP requests
type TagHandler struct {
	tags   *service.TagService
	logger *slog.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tags *service.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{tags: tags, logger: logger}
}

// Create creates a tag
// POST /api/tags
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTagRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tag, err := h.tags.Create(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func() (*models.Tag, error) {
			var conflictErr *domain.ConflictError
			if errors.As(err, &conflictErr) {
				return h.tags.GetByID(r.Context(), conflictErr.ResourceID)
			}
			return nil, err
		})
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, tag)
}

// List returns every tag
// GET /api/tags
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.GetAll(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tags)
}

// Get retrieves a tag
// GET /api/tags/{id}
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	tag, err := h.tags.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tag)
}

// Delete removes a tag
// DELETE /api/tags/{id}
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.tags.Delete(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
