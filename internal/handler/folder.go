package handler

import (
	"log/slog"
	"net/http"

	"filevault/internal/domain/services"
	"filevault/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folders services.FolderStore
	logger  *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folders services.FolderStore, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folders: folders,
		logger:  logger,
	}
}

// CreateFolder creates a new folder
// POST /folders (form: name, parent_id)
// Returns 201 if created, 409 if a sibling already has the name
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	parentID, err := httputil.OptionalInt64(r, "parent_id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := &services.CreateFolderRequest{
		Name:     r.FormValue("name"),
		ParentID: parentID,
	}

	folder, err := h.folders.CreateFolder(r.Context(), req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// ListFolders returns the folder hierarchy
// GET /folders (tree) or GET /folders?flat=true
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	if httputil.QueryBool(r, "flat", false) {
		folders, err := h.folders.ListFolders(r.Context())
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, folders)
		return
	}

	tree, err := h.folders.FolderTree(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
