package repositories

import (
	"context"

	"filevault/internal/domain/models"
)

// FolderRepository defines data access operations for folders.
// Folders are append-only: there is no update or delete.
type FolderRepository interface {
	// Create inserts a folder and assigns its ID and CreatedAt.
	// Returns a *domain.ConflictError if a sibling already has the name.
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID (domain.ErrNotFound if absent)
	GetByID(ctx context.Context, id int64) (*models.Folder, error)

	// FindChild finds a child of parentID by name. Returns nil, nil if absent.
	FindChild(ctx context.Context, parentID *int64, name string) (*models.Folder, error)

	// GetAll retrieves every folder ordered by ID (flat list)
	GetAll(ctx context.Context) ([]models.Folder, error)
}
