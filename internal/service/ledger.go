package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"
)

// versionLedger implements the VersionLedger interface.
//
// Every append for a key runs under that key's lock: read latest, check the
// transition, write the blob, insert the record, update the catalog. The
// lock spans the blob write so a version number is never handed out twice
// and a record never points at a blob that failed to land.
type versionLedger struct {
	versionRepo repositories.VersionRepository
	blobs       services.BlobStore
	txManager   repositories.TransactionManager
	catalog     services.FileCatalog
	locks       *KeyedMutex
	opts        Options
	now         func() time.Time
	logger      *slog.Logger
}

// NewVersionLedger creates a new version ledger. catalog may be nil.
func NewVersionLedger(
	versionRepo repositories.VersionRepository,
	blobs services.BlobStore,
	txManager repositories.TransactionManager,
	catalog services.FileCatalog,
	opts Options,
	logger *slog.Logger,
) services.VersionLedger {
	return &versionLedger{
		versionRepo: versionRepo,
		blobs:       blobs,
		txManager:   txManager,
		catalog:     catalog,
		locks:       NewKeyedMutex(),
		opts:        opts.withDefaults(),
		now:         time.Now,
		logger:      logger,
	}
}

// AppendVersion appends req.Operation for req.Key if it is legal against
// the latest record
func (l *versionLedger) AppendVersion(ctx context.Context, req *services.AppendRequest) (*models.FileVersion, error) {
	if !req.Operation.Valid() {
		return nil, fmt.Errorf("%w: unknown operation %q", domain.ErrValidation, req.Operation)
	}

	unlock, err := acquire(ctx, l.locks, req.Key.String(), l.opts.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	latest, err := l.versionRepo.Latest(ctx, req.Key)
	if err != nil {
		return nil, storageErr("get latest version", err)
	}

	return l.appendLocked(ctx, req, req.Operation, latest)
}

// Put appends create when the key is absent or deleted, update otherwise.
// The choice is made under the key lock so concurrent uploads of a new
// file all succeed instead of racing on create.
func (l *versionLedger) Put(ctx context.Context, req *services.AppendRequest) (*models.FileVersion, error) {
	unlock, err := acquire(ctx, l.locks, req.Key.String(), l.opts.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	latest, err := l.versionRepo.Latest(ctx, req.Key)
	if err != nil {
		return nil, storageErr("get latest version", err)
	}

	op := models.OperationUpdate
	if latest == nil || latest.IsDeleted() {
		op = models.OperationCreate
	}

	return l.appendLocked(ctx, req, op, latest)
}

// appendLocked does the actual append. Caller holds the key lock.
func (l *versionLedger) appendLocked(ctx context.Context, req *services.AppendRequest, op models.Operation, latest *models.FileVersion) (*models.FileVersion, error) {
	if err := checkTransition(req.Key, op, latest); err != nil {
		return nil, err
	}

	next := 1
	if latest != nil {
		next = latest.Version + 1
	}

	record := &models.FileVersion{
		FolderID:  req.Key.FolderID,
		Filename:  req.Key.Filename,
		Version:   next,
		Operation: op,
		Memo:      req.Memo,
		CreatedAt: l.now().UTC(),
	}

	// Once the blob write starts the append runs to completion: a client
	// disconnect must not strand a blob or half a record. Only the blob
	// timeout bounds it.
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.opts.BlobTimeout)
	defer cancel()

	var blobRef string
	err := l.txManager.ExecTx(commitCtx, func(txCtx context.Context) error {
		if op != models.OperationDelete {
			ref, err := l.blobs.Put(txCtx, req.Content)
			if err != nil {
				return domain.NewStorageError("put blob", err)
			}
			blobRef = ref
			record.BlobRef = &ref
			record.FileSize = int64(len(req.Content))
			record.MimeType = req.MimeType
		}

		if err := l.versionRepo.Append(txCtx, record); err != nil {
			return domain.NewStorageError("append version", err)
		}
		return nil
	})
	if err != nil {
		if blobRef != "" {
			l.discardBlob(ctx, blobRef)
		}
		l.logger.Warn("version append failed",
			"folder_id", req.Key.FolderID,
			"filename", req.Key.Filename,
			"version", next,
			"operation", op,
			"error", err,
		)
		return nil, storageErr("append version", err)
	}

	if l.catalog != nil {
		l.catalog.OnAppend(record)
	}

	l.logger.Info("version appended",
		"folder_id", record.FolderID,
		"filename", record.Filename,
		"version", record.Version,
		"operation", record.Operation,
		"file_size", record.FileSize,
	)

	return record, nil
}

// discardBlob removes a blob whose record never committed. Best effort:
// failure leaves an unreferenced blob, which is harmless.
func (l *versionLedger) discardBlob(ctx context.Context, ref string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.opts.BlobTimeout)
	defer cancel()

	if err := l.blobs.Delete(cleanupCtx, ref); err != nil {
		l.logger.Warn("failed to delete orphaned blob", "blob_ref", ref, "error", err)
	}
}

// GetVersions returns the full history of key, ascending by version
func (l *versionLedger) GetVersions(ctx context.Context, key models.FileKey) ([]models.FileVersion, error) {
	versions, err := l.versionRepo.ListByKey(ctx, key)
	if err != nil {
		return nil, storageErr("list versions", err)
	}
	if versions == nil {
		versions = []models.FileVersion{}
	}
	return versions, nil
}

// GetVersion returns the exact record when version is set, otherwise the
// latest record, which may be a delete marker
func (l *versionLedger) GetVersion(ctx context.Context, key models.FileKey, version *int) (*models.FileVersion, error) {
	if version == nil {
		latest, err := l.versionRepo.Latest(ctx, key)
		if err != nil {
			return nil, storageErr("get latest version", err)
		}
		if latest == nil {
			return nil, fmt.Errorf("%q: %w", key.Filename, domain.ErrFileNotFound)
		}
		return latest, nil
	}

	record, err := l.versionRepo.Get(ctx, key, *version)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, storageErr("get version", err)
	}

	// Distinguish "no such file" from "no such version of a real file"
	latest, err := l.versionRepo.Latest(ctx, key)
	if err != nil {
		return nil, storageErr("get latest version", err)
	}
	if latest == nil {
		return nil, fmt.Errorf("%q: %w", key.Filename, domain.ErrFileNotFound)
	}
	return nil, fmt.Errorf("%q version %d (latest is %d): %w", key.Filename, *version, latest.Version, domain.ErrVersionNotFound)
}

// Records returns every ledger record in key, version order
func (l *versionLedger) Records(ctx context.Context) ([]models.FileVersion, error) {
	records, err := l.versionRepo.ListAll(ctx)
	if err != nil {
		return nil, storageErr("list all versions", err)
	}
	return records, nil
}

// checkTransition enforces the operation grammar of a version chain:
// create only on an absent or deleted key, update and delete only on a live one.
func checkTransition(key models.FileKey, op models.Operation, latest *models.FileVersion) error {
	live := latest != nil && !latest.IsDeleted()

	switch op {
	case models.OperationCreate:
		if live {
			return fmt.Errorf("%w: cannot create %q, it already exists at version %d",
				domain.ErrConflictingOperation, key.Filename, latest.Version)
		}
	case models.OperationUpdate, models.OperationDelete:
		if latest == nil {
			return fmt.Errorf("%w: cannot %s %q, it was never created",
				domain.ErrConflictingOperation, op, key.Filename)
		}
		if !live {
			return fmt.Errorf("%w: cannot %s %q, it was deleted at version %d",
				domain.ErrConflictingOperation, op, key.Filename, latest.Version)
		}
	default:
		return fmt.Errorf("%w: unknown operation %q", domain.ErrValidation, op)
	}
	return nil
}
