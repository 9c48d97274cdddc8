package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/httputil"
	"inkwell/internal/service"
)

// VaultFolderHandler handles vault folder HTTP requests
type VaultFolderHandler struct {
	folders *service.VaultFolderService
	logger  *slog.Logger
}

// NewVaultFolderHandler creates a new vault folder handler
func NewVaultFolderHandler(folders *service.VaultFolderService, logger *slog.Logger) *VaultFolderHandler {
	return &VaultFolderHandler{folders: folders, logger: logger}
}

// Create creates a folder
// POST /api/vault/folders
func (h *VaultFolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folders.Create(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// Tree returns the nested folder forest
// GET /api/vault/folders/tree
func (h *VaultFolderHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.folders.GetTree(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tree)
}

// List returns every folder as a flat list
// GET /api/vault/folders
func (h *VaultFolderHandler) List(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folders.GetAll(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folders)
}

// Get retrieves a folder
// GET /api/vault/folders/{id}
func (h *VaultFolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	folder, err := h.folders.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// Update edits local fields
// PATCH /api/vault/folders/{id}
func (h *VaultFolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folders.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// Move re-parents a folder
// PUT /api/vault/folders/{id}/move
func (h *VaultFolderHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentID *string `json:"parentId"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folders.Move(r.Context(), r.PathValue("id"), req.ParentID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// Delete removes an empty folder
// DELETE /api/vault/folders/{id}
func (h *VaultFolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.folders.Delete(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
