package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"inkwell/internal/domain/models"
	"inkwell/internal/httputil"
	"inkwell/internal/service"
)

// PostHandler handles blog post HTTP requests
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a new post handler
func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// Create creates a post
// POST /api/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreatePostRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.posts.Create(r.Context(), &req, httputil.GetIdentity(r).UserID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, post)
}

// List returns a page of published posts
// GET /api/posts
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePage(r)

	// Admins may filter by any status
	if status := r.URL.Query().Get("status"); status != "" {
		if !httputil.GetIdentity(r).IsAdmin() {
			httputil.RespondError(w, http.StatusForbidden, "admin role required for status filter")
			return
		}
		result, err := h.posts.ListByStatus(r.Context(), status, page)
		if err != nil {
			handleError(w, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, result)
		return
	}

	result, err := h.posts.ListPublished(r.Context(), page)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// Featured returns featured published posts
// GET /api/posts/featured
func (h *PostHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	posts, err := h.posts.ListFeatured(r.Context(), limit)
	if err != nil {
		handleError(w, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	httputil.RespondJSON(w, http.StatusOK, posts)
}

// Search returns published posts matching the query
// GET /api/posts/search?q=...
func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.RespondError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	result, err := h.posts.Search(r.Context(), query, httputil.ParsePage(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// Get retrieves a post by ID without counting a view
// GET /api/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, post)
}

// GetBySlug retrieves a post by slug and counts the view
// GET /api/posts/slug/{slug}
func (h *PostHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, post)
}

// ByCategory returns published posts in the category
// GET /api/categories/{id}/posts
func (h *PostHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	result, err := h.posts.ListByCategory(r.Context(), r.PathValue("id"), httputil.ParsePage(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// ByTag returns published posts carrying the tag
// GET /api/tags/{id}/posts
func (h *PostHandler) ByTag(w http.ResponseWriter, r *http.Request) {
	result, err := h.posts.ListByTag(r.Context(), r.PathValue("id"), httputil.ParsePage(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// Update edits a post
// PATCH /api/posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdatePostRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.posts.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, post)
}

// Delete archives a post
// DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
