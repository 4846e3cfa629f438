package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"
)

// folderStore implements the FolderStore interface
type folderStore struct {
	folderRepo repositories.FolderRepository
	locks      *KeyedMutex
	opts       Options
	logger     *slog.Logger
}

// NewFolderStore creates a new folder store
func NewFolderStore(
	folderRepo repositories.FolderRepository,
	opts Options,
	logger *slog.Logger,
) services.FolderStore {
	return &folderStore{
		folderRepo: folderRepo,
		locks:      NewKeyedMutex(),
		opts:       opts.withDefaults(),
		logger:     logger,
	}
}

// CreateFolder creates a new folder. Creations under the same parent
// serialize so the sibling-name check and the insert cannot interleave;
// other parents proceed in parallel.
func (s *folderStore) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := validateCreateFolderRequest(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)

	unlock, err := acquire(ctx, s.locks, siblingLockKey(req.ParentID), s.opts.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// The parent must already exist. Folders are never moved or deleted,
	// so this alone keeps the graph acyclic.
	if req.ParentID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.ParentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("parent folder %d: %w", *req.ParentID, domain.ErrInvalidParent)
			}
			return nil, storageErr("get parent folder", err)
		}
	}

	sibling, err := s.folderRepo.FindChild(ctx, req.ParentID, name)
	if err != nil {
		return nil, storageErr("check for duplicate names", err)
	}
	if sibling != nil {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
			ResourceType: "folder",
			ResourceID:   strconv.FormatInt(sibling.ID, 10),
		}
	}

	folder := &models.Folder{
		Name:     name,
		ParentID: req.ParentID,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, storageErr("create folder", err)
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder by ID
func (s *folderStore) GetFolder(ctx context.Context, id int64) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("folder %d: %w", id, domain.ErrFolderNotFound)
		}
		return nil, storageErr("get folder", err)
	}
	return folder, nil
}

// ListFolders returns every folder as a flat list
func (s *folderStore) ListFolders(ctx context.Context) ([]models.Folder, error) {
	folders, err := s.folderRepo.GetAll(ctx)
	if err != nil {
		return nil, storageErr("list folders", err)
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	return folders, nil
}

// Exists reports whether a folder with id exists
func (s *folderStore) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.folderRepo.GetByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, storageErr("get folder", err)
	}
}

// FolderTree builds the nested folder tree
func (s *folderStore) FolderTree(ctx context.Context) ([]*models.FolderTreeNode, error) {
	allFolders, err := s.ListFolders(ctx)
	if err != nil {
		return nil, err
	}

	tree := BuildFolderTree(allFolders)

	s.logger.Debug("folder tree built", "folder_count", len(allFolders))

	return tree, nil
}

// BuildFolderTree nests a flat folder list by parent ID. Sibling order
// follows the input order. Parent links always point at existing folders,
// so every folder lands exactly once.
func BuildFolderTree(folders []models.Folder) []*models.FolderTreeNode {
	nodes := make(map[int64]*models.FolderTreeNode, len(folders))

	// First pass: create all folder nodes
	for _, folder := range folders {
		nodes[folder.ID] = &models.FolderTreeNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			CreatedAt: folder.CreatedAt,
			Children:  []*models.FolderTreeNode{},
		}
	}

	// Second pass: attach children to parents
	roots := make([]*models.FolderTreeNode, 0)
	for _, folder := range folders {
		node := nodes[folder.ID]
		if folder.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*folder.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	return roots
}

func siblingLockKey(parentID *int64) string {
	if parentID == nil {
		return "parent:root"
	}
	return "parent:" + strconv.FormatInt(*parentID, 10)
}
