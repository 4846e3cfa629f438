package metrics

import (
	"context"
	"errors"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
)

// instrumentedFiles records ledger metrics around a FileService
type instrumentedFiles struct {
	services.FileService
	collector *Collector
}

// InstrumentFiles wraps files so every committed upload, delete and
// download is counted on c
func InstrumentFiles(files services.FileService, c *Collector) services.FileService {
	return &instrumentedFiles{FileService: files, collector: c}
}

func (f *instrumentedFiles) Upload(ctx context.Context, req *services.UploadRequest) (*services.OperationResult, error) {
	result, err := f.FileService.Upload(ctx, req)
	if err != nil {
		f.collector.ObserveRejected("upload", reason(err))
		return nil, err
	}
	f.collector.ObserveVersion(result.Operation, int64(len(req.Content)))
	return result, nil
}

func (f *instrumentedFiles) Delete(ctx context.Context, req *services.DeleteRequest) (*services.OperationResult, error) {
	result, err := f.FileService.Delete(ctx, req)
	if err != nil {
		f.collector.ObserveRejected("delete", reason(err))
		return nil, err
	}
	f.collector.ObserveVersion(models.OperationDelete, 0)
	return result, nil
}

func (f *instrumentedFiles) Download(ctx context.Context, req *services.DownloadRequest) (*services.Download, error) {
	dl, err := f.FileService.Download(ctx, req)
	if err != nil {
		return nil, err
	}
	f.collector.ObserveDownload(dl.FileSize)
	return dl, nil
}

// reason buckets an error into a low-cardinality label value
func reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrFolderNotFound), errors.Is(err, domain.ErrFileNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflictingOperation):
		return "conflicting_operation"
	default:
		return "other"
	}
}
