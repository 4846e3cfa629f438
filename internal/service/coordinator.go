package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
)

const defaultMimeType = "application/octet-stream"

// fileService implements the FileService interface. It holds no state of
// its own: folders, ledger, catalog and blobs do the work.
type fileService struct {
	folders   services.FolderStore
	ledger    services.VersionLedger
	catalog   services.FileCatalog
	blobs     services.BlobStore
	validator *ResourceValidator
	opts      Options
	logger    *slog.Logger
}

// NewFileService creates the request coordinator
func NewFileService(
	folders services.FolderStore,
	ledger services.VersionLedger,
	catalog services.FileCatalog,
	blobs services.BlobStore,
	validator *ResourceValidator,
	opts Options,
	logger *slog.Logger,
) services.FileService {
	return &fileService{
		folders:   folders,
		ledger:    ledger,
		catalog:   catalog,
		blobs:     blobs,
		validator: validator,
		opts:      opts.withDefaults(),
		logger:    logger,
	}
}

// Upload stores a new version of a file, as create or update
func (s *fileService) Upload(ctx context.Context, req *services.UploadRequest) (*services.OperationResult, error) {
	if err := validateUploadRequest(req); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateFolder(ctx, req.FolderID); err != nil {
		return nil, err
	}

	record, err := s.ledger.Put(ctx, &services.AppendRequest{
		Key:      models.NewFileKey(req.FolderID, req.Filename),
		Memo:     req.Memo,
		Content:  req.Content,
		MimeType: req.MimeType,
	})
	if err != nil {
		return nil, err
	}

	return newOperationResult(record), nil
}

// Delete records a delete marker for a live file
func (s *fileService) Delete(ctx context.Context, req *services.DeleteRequest) (*services.OperationResult, error) {
	if err := validateDeleteRequest(req); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateFolder(ctx, req.FolderID); err != nil {
		return nil, err
	}

	record, err := s.ledger.AppendVersion(ctx, &services.AppendRequest{
		Key:       models.NewFileKey(req.FolderID, req.Filename),
		Operation: models.OperationDelete,
		Memo:      req.Memo,
	})
	if err != nil {
		// Only a missing or already-deleted file can make delete illegal
		if errors.Is(err, domain.ErrConflictingOperation) {
			return nil, fmt.Errorf("%q: %w", req.Filename, domain.ErrFileNotFound)
		}
		return nil, err
	}

	return newOperationResult(record), nil
}

// ListFiles returns the live files, optionally limited to one folder
func (s *fileService) ListFiles(ctx context.Context, folderID *int64) ([]models.FileCatalogEntry, error) {
	if err := s.validator.ValidateFolder(ctx, folderID); err != nil {
		return nil, err
	}

	entries := s.catalog.List(folderID)
	if len(entries) == 0 {
		return entries, nil
	}

	folders, err := s.folders.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(folders))
	for _, f := range folders {
		names[f.ID] = f.Name
	}

	for i := range entries {
		if entries[i].FolderID == nil {
			continue
		}
		if name, ok := names[*entries[i].FolderID]; ok {
			entries[i].FolderName = &name
		}
	}

	return entries, nil
}

// ListVersions returns the full history of a file, delete markers included
func (s *fileService) ListVersions(ctx context.Context, filename string, folderID *int64) ([]models.FileVersion, error) {
	if err := validateFilename(filename); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateFolder(ctx, folderID); err != nil {
		return nil, err
	}

	versions, err := s.ledger.GetVersions(ctx, models.NewFileKey(folderID, filename))
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%q: %w", filename, domain.ErrFileNotFound)
	}

	return versions, nil
}

// Download resolves a version and fetches its content
func (s *fileService) Download(ctx context.Context, req *services.DownloadRequest) (*services.Download, error) {
	if err := validateFilename(req.Filename); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateFolder(ctx, req.FolderID); err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version < 1 {
		return nil, fmt.Errorf("%q version %d: %w", req.Filename, *req.Version, domain.ErrVersionNotFound)
	}

	record, err := s.ledger.GetVersion(ctx, models.NewFileKey(req.FolderID, req.Filename), req.Version)
	if err != nil {
		return nil, err
	}
	if record.IsDeleted() {
		return nil, fmt.Errorf("%q version %d: %w", req.Filename, record.Version, domain.ErrFileDeletedAtVersion)
	}
	if record.BlobRef == nil {
		return nil, domain.NewStorageError("download", fmt.Errorf("version %d of %q has no blob reference", record.Version, req.Filename))
	}

	blobCtx, cancel := context.WithTimeout(ctx, s.opts.BlobTimeout)
	defer cancel()

	content, err := s.blobs.Get(blobCtx, *record.BlobRef)
	if err != nil {
		// A committed record whose blob is gone is an infrastructure fault
		return nil, domain.NewStorageError("get blob", err)
	}

	mimeType := defaultMimeType
	if record.MimeType != nil && *record.MimeType != "" {
		mimeType = *record.MimeType
	}

	s.logger.Debug("file downloaded",
		"folder_id", req.FolderID,
		"filename", req.Filename,
		"version", record.Version,
		"file_size", record.FileSize,
	)

	return &services.Download{
		Filename: record.Filename,
		Version:  record.Version,
		Content:  content,
		MimeType: mimeType,
		FileSize: record.FileSize,
	}, nil
}

func newOperationResult(record *models.FileVersion) *services.OperationResult {
	return &services.OperationResult{
		Message:   fmt.Sprintf("file '%s' %s successfully", record.Filename, pastTense(record.Operation)),
		Filename:  record.Filename,
		Version:   record.Version,
		Memo:      record.Memo,
		Operation: record.Operation,
		FolderID:  record.FolderID,
	}
}

func pastTense(op models.Operation) string {
	switch op {
	case models.OperationCreate:
		return "created"
	case models.OperationUpdate:
		return "updated"
	case models.OperationDelete:
		return "deleted"
	}
	return string(op)
}
