package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
	"filevault/internal/httputil"
)

const (
	// multipartMemory is how much of a multipart body is kept in memory
	// before spilling to temp files
	multipartMemory = 32 << 20

	// multipartOverhead allows for form fields and boundaries on top of the file
	multipartOverhead = 1 << 20
)

// FileHandler handles file HTTP requests
type FileHandler struct {
	files          services.FileService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(files services.FileService, maxUploadBytes int64, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		files:          files,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// ListFilesResponse is the response for GET /files
type ListFilesResponse struct {
	Files []models.FileCatalogEntry `json:"files"`
}

// ListVersionsResponse is the response for GET /files/{filename}/versions
type ListVersionsResponse struct {
	Filename string               `json:"filename"`
	FolderID *int64               `json:"folder_id,omitempty"`
	Versions []models.FileVersion `json:"versions"`
}

// Upload stores a new version of a file
// POST /files/upload (multipart: file, memo, folder_id)
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes))
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "expected a multipart form with a file field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	folderID, ok := folderIDParam(w, r)
	if !ok {
		return
	}

	mimeType := detectMimeType(header.Header.Get("Content-Type"), header.Filename, content)

	result, err := h.files.Upload(r.Context(), &services.UploadRequest{
		Filename: header.Filename,
		Content:  content,
		Memo:     httputil.OptionalString(r, "memo"),
		FolderID: folderID,
		MimeType: &mimeType,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Delete records a delete marker for a file
// DELETE /files/{filename}?memo=&folder_id=
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	filename, ok := PathParam(w, r, "filename", "Filename")
	if !ok {
		return
	}
	folderID, ok := folderIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.files.Delete(r.Context(), &services.DeleteRequest{
		Filename: filename,
		Memo:     httputil.OptionalString(r, "memo"),
		FolderID: folderID,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// ListFiles returns the live files
// GET /files?folder_id=
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	folderID, ok := folderIDParam(w, r)
	if !ok {
		return
	}

	files, err := h.files.ListFiles(r.Context(), folderID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ListFilesResponse{Files: files})
}

// ListVersions returns a file's full history
// GET /files/{filename}/versions?folder_id=
func (h *FileHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	filename, ok := PathParam(w, r, "filename", "Filename")
	if !ok {
		return
	}
	folderID, ok := folderIDParam(w, r)
	if !ok {
		return
	}

	versions, err := h.files.ListVersions(r.Context(), filename, folderID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ListVersionsResponse{
		Filename: filename,
		FolderID: folderID,
		Versions: versions,
	})
}

// Download streams the content of a version
// GET /files/{filename}/download?version=&folder_id=
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename, ok := PathParam(w, r, "filename", "Filename")
	if !ok {
		return
	}
	folderID, ok := folderIDParam(w, r)
	if !ok {
		return
	}
	version, err := httputil.OptionalInt(r, "version")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	download, err := h.files.Download(r.Context(), &services.DownloadRequest{
		Filename: filename,
		Version:  version,
		FolderID: folderID,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", download.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": download.Filename,
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(download.Content)))
	w.Header().Set("X-File-Version", strconv.Itoa(download.Version))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(download.Content); err != nil {
		h.logger.Warn("download write failed",
			"filename", download.Filename,
			"version", download.Version,
			"error", err,
		)
	}
}

// detectMimeType prefers the part's declared type, then the extension,
// then content sniffing
func detectMimeType(declared, filename string, content []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(content)
}
