package service

import (
	"context"
	"fmt"
	"log/slog"

	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"
)

// Services bundles the wired core
type Services struct {
	Folders services.FolderStore
	Ledger  services.VersionLedger
	Catalog services.FileCatalog
	Files   services.FileService
}

// SetupServices wires the folder store, ledger, catalog and coordinator,
// then replays the ledger so the catalog reflects what is already stored.
func SetupServices(
	ctx context.Context,
	folderRepo repositories.FolderRepository,
	versionRepo repositories.VersionRepository,
	txManager repositories.TransactionManager,
	blobs services.BlobStore,
	opts Options,
	logger *slog.Logger,
) (*Services, error) {
	folders := NewFolderStore(folderRepo, opts, logger)
	catalog := NewFileCatalog(logger)
	ledger := NewVersionLedger(versionRepo, blobs, txManager, catalog, opts, logger)

	records, err := ledger.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	catalog.Rebuild(records)

	validator := NewResourceValidator(folderRepo)
	files := NewFileService(folders, ledger, catalog, blobs, validator, opts, logger)

	return &Services{
		Folders: folders,
		Ledger:  ledger,
		Catalog: catalog,
		Files:   files,
	}, nil
}
