package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/httputil"
	"inkwell/internal/service"
)

// VaultNoteHandler handles vault note HTTP requests, the backlink queries
// and the graph endpoint included.
type VaultNoteHandler struct {
	notes    *service.VaultNoteService
	comments *service.VaultNoteCommentService
	logger   *slog.Logger
}

// NewVaultNoteHandler creates a new vault note handler
func NewVaultNoteHandler(notes *service.VaultNoteService, comments *service.VaultNoteCommentService, logger *slog.Logger) *VaultNoteHandler {
	return &VaultNoteHandler{notes: notes, comments: comments, logger: logger}
}

// Create creates a note
// POST /api/vault/notes
func (h *VaultNoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.notes.Create(r.Context(), &req, httputil.GetIdentity(r).UserID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, note)
}

// List returns a page of notes; ?folder= filters to one folder
// GET /api/vault/notes
func (h *VaultNoteHandler) List(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePage(r)

	if folderID := r.URL.Query().Get("folder"); folderID != "" {
		result, err := h.notes.ListByFolder(r.Context(), folderID, page)
		if err != nil {
			handleError(w, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, result)
		return
	}

	result, err := h.notes.List(r.Context(), page)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// Search returns notes matching the query
// GET /api/vault/notes/search?q=...
func (h *VaultNoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.RespondError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	result, err := h.notes.Search(r.Context(), query, httputil.ParsePage(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// Graph returns the whole-vault reference graph
// GET /api/vault/graph
func (h *VaultNoteHandler) Graph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.notes.GetGraphData(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, graph)
}

// Get retrieves a note and counts the view
// GET /api/vault/notes/{id}
func (h *VaultNoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, note)
}

// GetBySlug retrieves a note by slug and counts the view
// GET /api/vault/notes/slug/{slug}
func (h *VaultNoteHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, note)
}

// Backreferences returns every note linking to this one
// GET /api/vault/notes/{id}/backrefs
func (h *VaultNoteHandler) Backreferences(w http.ResponseWriter, r *http.Request) {
	refs, err := h.notes.GetBackreferences(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, refs)
}

// Update edits a note; a present content re-parses its links
// PATCH /api/vault/notes/{id}
func (h *VaultNoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.notes.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, note)
}

// Delete removes a note and its comments
// DELETE /api/vault/notes/{id}
func (h *VaultNoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateComment adds a comment to the note
// POST /api/vault/notes/{id}/comments
func (h *VaultNoteHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
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

// ListComments returns the note's comments
// GET /api/vault/notes/{id}/comments
func (h *VaultNoteHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByNote(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, comments)
}

// DeleteComment removes a comment
// DELETE /api/vault/comments/{id}
func (h *VaultNoteHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), r.PathValue("id"), httputil.GetIdentity(r)); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
