package services

import (
	"context"

	"filevault/internal/domain/models"
)

// VersionLedger owns the per-key append-only sequence of version records
type VersionLedger interface {
	// AppendVersion validates op against the latest record, persists content
	// (create/update) and appends the next version
	AppendVersion(ctx context.Context, req *AppendRequest) (*models.FileVersion, error)

	// Put appends create or update, whichever is legal for key, in one
	// serialized step
	Put(ctx context.Context, req *AppendRequest) (*models.FileVersion, error)

	// GetVersions returns the full history of key, ascending by version
	GetVersions(ctx context.Context, key models.FileKey) ([]models.FileVersion, error)

	// GetVersion returns an exact version, or the latest record when version is nil
	GetVersion(ctx context.Context, key models.FileKey, version *int) (*models.FileVersion, error)

	// Records returns every record in key, version order (catalog replay)
	Records(ctx context.Context) ([]models.FileVersion, error)
}

// AppendRequest describes one ledger append. Operation is ignored by Put.
type AppendRequest struct {
	Key       models.FileKey
	Operation models.Operation
	Memo      *string
	Content   []byte
	MimeType  *string
}

// FileCatalog is the derived "latest version per key" view
type FileCatalog interface {
	// OnAppend folds a freshly appended record into the view
	OnAppend(record *models.FileVersion)

	// List returns live entries ordered by filename. A nil folderID lists every folder.
	List(folderID *int64) []models.FileCatalogEntry

	// Rebuild replaces the view by replaying records
	Rebuild(records []models.FileVersion)
}

// FileService is the request coordinator behind the public file operations
type FileService interface {
	Upload(ctx context.Context, req *UploadRequest) (*OperationResult, error)
	Delete(ctx context.Context, req *DeleteRequest) (*OperationResult, error)
	ListFiles(ctx context.Context, folderID *int64) ([]models.FileCatalogEntry, error)
	ListVersions(ctx context.Context, filename string, folderID *int64) ([]models.FileVersion, error)
	Download(ctx context.Context, req *DownloadRequest) (*Download, error)
}

// UploadRequest represents a file upload (create or update)
type UploadRequest struct {
	Filename string  `json:"filename"`
	Content  []byte  `json:"-"`
	Memo     *string `json:"memo,omitempty"`
	FolderID *int64  `json:"folder_id,omitempty"`
	MimeType *string `json:"mime_type,omitempty"`
}

// DeleteRequest represents a logical file delete
type DeleteRequest struct {
	Filename string  `json:"filename"`
	Memo     *string `json:"memo,omitempty"`
	FolderID *int64  `json:"folder_id,omitempty"`
}

// DownloadRequest selects a file version; nil Version means latest
type DownloadRequest struct {
	Filename string `json:"filename"`
	Version  *int   `json:"version,omitempty"`
	FolderID *int64 `json:"folder_id,omitempty"`
}

// OperationResult is the response shape shared by upload and delete
type OperationResult struct {
	Message   string           `json:"message"`
	Filename  string           `json:"filename"`
	Version   int              `json:"version"`
	Memo      *string          `json:"memo,omitempty"`
	Operation models.Operation `json:"operation"`
	FolderID  *int64           `json:"folder_id,omitempty"`
}

// Download carries resolved content with its metadata
type Download struct {
	Filename string
	Version  int
	Content  []byte
	MimeType string
	FileSize int64
}
