package repositories

import (
	"context"

	"filevault/internal/domain/models"
)

// VersionRepository persists ledger records. It never mutates or removes
// a record once appended.
type VersionRepository interface {
	// Append inserts a record and assigns its ID. The caller owns version
	// numbering; a duplicate (key, version) is a storage error.
	Append(ctx context.Context, v *models.FileVersion) error

	// Latest returns the highest-version record for key, or nil, nil if none
	Latest(ctx context.Context, key models.FileKey) (*models.FileVersion, error)

	// Get returns one exact record (domain.ErrNotFound if absent)
	Get(ctx context.Context, key models.FileKey, version int) (*models.FileVersion, error)

	// ListByKey returns the full chain ordered by version ascending
	ListByKey(ctx context.Context, key models.FileKey) ([]models.FileVersion, error)

	// ListAll returns every record ordered by key, then version ascending.
	// Used to replay the ledger into the catalog.
	ListAll(ctx context.Context) ([]models.FileVersion, error)
}
