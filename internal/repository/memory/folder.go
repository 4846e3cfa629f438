package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
)

// FolderRepository keeps folders in an arena indexed by ID
type FolderRepository struct {
	mu      sync.RWMutex
	folders []models.Folder // folders[i].ID == i+1
	now     func() time.Time
}

// NewFolderRepository creates an empty in-memory folder repository
func NewFolderRepository() repositories.FolderRepository {
	return &FolderRepository{now: time.Now}
}

// Create appends a folder, enforcing sibling-name uniqueness
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if folder.ParentID != nil && !r.existsLocked(*folder.ParentID) {
		return fmt.Errorf("parent folder %d: %w", *folder.ParentID, domain.ErrNotFound)
	}
	if existing := r.findChildLocked(folder.ParentID, folder.Name); existing != nil {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
			ResourceType: "folder",
			ResourceID:   strconv.FormatInt(existing.ID, 10),
		}
	}

	folder.ID = int64(len(r.folders) + 1)
	folder.CreatedAt = r.now().UTC()
	folder.ParentID = copyID(folder.ParentID)
	r.folders = append(r.folders, *folder)
	return nil
}

// GetByID retrieves a folder by ID
func (r *FolderRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.existsLocked(id) {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	folder := r.folders[id-1]
	folder.ParentID = copyID(folder.ParentID)
	return &folder, nil
}

// FindChild finds a child of parentID by name
func (r *FolderRepository) FindChild(ctx context.Context, parentID *int64, name string) (*models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing := r.findChildLocked(parentID, name)
	if existing == nil {
		return nil, nil
	}
	folder := *existing
	folder.ParentID = copyID(folder.ParentID)
	return &folder, nil
}

// GetAll retrieves every folder ordered by ID
func (r *FolderRepository) GetAll(ctx context.Context) ([]models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	folders := make([]models.Folder, len(r.folders))
	for i, f := range r.folders {
		f.ParentID = copyID(f.ParentID)
		folders[i] = f
	}
	return folders, nil
}

func (r *FolderRepository) existsLocked(id int64) bool {
	return id >= 1 && id <= int64(len(r.folders))
}

func (r *FolderRepository) findChildLocked(parentID *int64, name string) *models.Folder {
	for i := range r.folders {
		f := &r.folders[i]
		if f.Name == name && sameFolder(f.ParentID, parentID) {
			return f
		}
	}
	return nil
}

func sameFolder(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
