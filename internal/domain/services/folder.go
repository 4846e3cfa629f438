package services

import (
	"context"

	"filevault/internal/domain/models"
)

// FolderStore maintains the folder hierarchy used to scope files
type FolderStore interface {
	// CreateFolder creates a folder under an optional parent
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder retrieves a folder (domain.ErrFolderNotFound if absent)
	GetFolder(ctx context.Context, id int64) (*models.Folder, error)

	// ListFolders returns all folders as a flat list ordered by ID
	ListFolders(ctx context.Context) ([]models.Folder, error)

	// FolderTree returns root folders with children nested
	FolderTree(ctx context.Context) ([]*models.FolderTreeNode, error)

	// Exists reports whether a folder with id exists
	Exists(ctx context.Context, id int64) (bool, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"` // NULL = root
}
