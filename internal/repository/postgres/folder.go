package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, parent_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, folder.Name, folder.ParentID).
		Scan(&folder.ID, &folder.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			// Another process won the race; report the sibling that exists
			existing, queryErr := r.FindChild(ctx, folder.ParentID, folder.Name)
			if queryErr != nil || existing == nil {
				return fmt.Errorf("folder '%s' already exists in this location: %w", folder.Name, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
				ResourceType: "folder",
				ResourceID:   strconv.FormatInt(existing.ID, 10),
			}
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, name, parent_id, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// FindChild finds a folder by name within a parent folder
func (r *PostgresFolderRepository) FindChild(ctx context.Context, parentID *int64, name string) (*models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT id, name, parent_id, created_at
			FROM %s
			WHERE name = $1 AND parent_id IS NULL
		`, r.tables.Folders)
		args = []interface{}{name}
	} else {
		query = fmt.Sprintf(`
			SELECT id, name, parent_id, created_at
			FROM %s
			WHERE name = $1 AND parent_id = $2
		`, r.tables.Folders)
		args = []interface{}{name, *parentID}
	}

	executor := GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil // Not found, not an error
		}
		return nil, fmt.Errorf("find folder by name: %w", err)
	}

	return folder, nil
}

// GetAll retrieves every folder (flat list)
func (r *PostgresFolderRepository) GetAll(ctx context.Context) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, name, parent_id, created_at
		FROM %s
		ORDER BY id ASC
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all folders: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.ParentID,
		&folder.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}
