package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"filevault/internal/domain"
	"filevault/internal/httputil"
)

// retryAfterSeconds is sent with every 503
const retryAfterSeconds = 1

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var conflictErr *domain.ConflictError

	switch {
	// Storage first: a StorageError may wrap a not-found from the blob store
	case errors.Is(err, domain.ErrStorageUnavailable):
		logger.Error("storage unavailable", "error", err)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		httputil.RespondError(w, http.StatusServiceUnavailable, "storage temporarily unavailable, retry the request")
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidParent):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrFolderNotFound),
		errors.Is(err, domain.ErrFileNotFound),
		errors.Is(err, domain.ErrVersionNotFound),
		errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrFileDeletedAtVersion):
		httputil.RespondError(w, http.StatusGone, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrConflictingOperation),
		errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// PathParam reads a required path value, writing a 400 when it is empty
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	return value, true
}

// folderIDParam reads the optional folder_id query or form value
func folderIDParam(w http.ResponseWriter, r *http.Request) (*int64, bool) {
	folderID, err := httputil.OptionalInt64(r, "folder_id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return folderID, true
}
