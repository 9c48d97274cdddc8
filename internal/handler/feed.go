package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/httputil"
	"inkwell/internal/service"
)

// FeedHandler handles social feed HTTP requests
type FeedHandler struct {
	feeds    *service.FeedService
	comments *service.FeedCommentService
	logger   *slog.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feeds *service.FeedService, comments *service.FeedCommentService, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{feeds: feeds, comments: comments, logger: logger}
}

// Create creates a feed entry
// POST /api/feeds
func (h *FeedHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateFeedRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	feed, err := h.feeds.Create(r.Context(), &req, httputil.GetIdentity(r).UserID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, feed)
}

// List returns a page of feed entries
// GET /api/feeds
func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.feeds.List(r.Context(), httputil.GetIdentity(r), httputil.ParsePage(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// Get retrieves a feed entry and counts the view
// GET /api/feeds/{id}
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	feed, err := h.feeds.GetByID(r.Context(), r.PathValue("id"), httputil.GetIdentity(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, feed)
}

// updateFeedBody distinguishes an absent linkUrl (leave the preview alone)
// from an explicit null or empty string (clear it).
type updateFeedBody struct {
	Content    *string                 `json:"content"`
	Images     *[]string               `json:"images"`
	Visibility *string                 `json:"visibility"`
	LinkURL    httputil.OptionalString `json:"linkUrl"`
}

// Update edits a feed entry
// PATCH /api/feeds/{id}
func (h *FeedHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body updateFeedBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := service.UpdateFeedRequest{
		Content:    body.Content,
		Images:     body.Images,
		Visibility: body.Visibility,
	}
	if body.LinkURL.Present {
		if body.LinkURL.Value == nil {
			empty := ""
			req.LinkURL = &empty
		} else {
			req.LinkURL = body.LinkURL.Value
		}
	}

	feed, err := h.feeds.Update(r.Context(), r.PathValue("id"), &req, httputil.GetIdentity(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, feed)
}

// Delete removes a feed entry and its comments
// DELETE /api/feeds/{id}
func (h *FeedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.feeds.Delete(r.Context(), r.PathValue("id"), httputil.GetIdentity(r)); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike likes or unlikes the feed for the caller
// POST /api/feeds/{id}/like
func (h *FeedHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	feed, liked, err := h.feeds.ToggleLike(r.Context(), r.PathValue("id"), httputil.GetIdentity(r).UserID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"liked":      liked,
		"likesCount": feed.LikesCount,
	})
}

// CreateComment adds a comment to the feed
// POST /api/feeds/{id}/comments
func (h *FeedHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCommentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.comments.Create(r.Context(), r.PathValue("id"), &req, httputil.GetIdentity(r).UserID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, comment)
}

// ListComments returns the feed's comments
// GET /api/feeds/{id}/comments
func (h *FeedHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByFeed(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, comments)
}

// DeleteComment removes a comment
// DELETE /api/feeds/comments/{id}
func (h *FeedHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), r.PathValue("id"), httputil.GetIdentity(r)); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
