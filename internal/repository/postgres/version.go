package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const versionColumns = `id, folder_id, filename, version, operation, memo, created_at, file_size, mime_type, blob_ref`

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *RepositoryConfig) repositories.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Append inserts a ledger record. The unique (folder, filename, version)
// index backs up the in-process key lock when several servers share a database.
func (r *PostgresVersionRepository) Append(ctx context.Context, v *models.FileVersion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (folder_id, filename, version, operation, memo, created_at, file_size, mime_type, blob_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, r.tables.FileVersions)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		v.FolderID,
		v.Filename,
		v.Version,
		string(v.Operation),
		v.Memo,
		v.CreatedAt,
		v.FileSize,
		v.MimeType,
		v.BlobRef,
	).Scan(&v.ID)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("version %d of %q was written concurrently: %w", v.Version, v.Filename, err)
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %v: %w", v.FolderID, domain.ErrNotFound)
		}
		if IsPgCheckViolation(err) {
			return fmt.Errorf("%w: version record rejected: %v", domain.ErrValidation, err)
		}
		return fmt.Errorf("append version: %w", err)
	}

	return nil
}

// Latest returns the highest-version record for key, nil if none
func (r *PostgresVersionRepository) Latest(ctx context.Context, key models.FileKey) (*models.FileVersion, error) {
	where, args := keyFilter(key)
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY version DESC
		LIMIT 1
	`, versionColumns, r.tables.FileVersions, where)

	executor := GetExecutor(ctx, r.pool)
	v, err := scanVersion(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest version: %w", err)
	}

	return v, nil
}

// Get returns one exact record
func (r *PostgresVersionRepository) Get(ctx context.Context, key models.FileKey, version int) (*models.FileVersion, error) {
	where, args := keyFilter(key)
	args = append(args, version)
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s AND version = $%d
	`, versionColumns, r.tables.FileVersions, where, len(args))

	executor := GetExecutor(ctx, r.pool)
	v, err := scanVersion(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("%s version %d: %w", key, version, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}

	return v, nil
}

// ListByKey returns the chain ordered by version ascending
func (r *PostgresVersionRepository) ListByKey(ctx context.Context, key models.FileKey) ([]models.FileVersion, error) {
	where, args := keyFilter(key)
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY version ASC
	`, versionColumns, r.tables.FileVersions, where)

	return r.queryVersions(ctx, query, args...)
}

// ListAll returns every record ordered by key, then version
func (r *PostgresVersionRepository) ListAll(ctx context.Context) ([]models.FileVersion, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY COALESCE(folder_id, 0), filename, version ASC
	`, versionColumns, r.tables.FileVersions)

	return r.queryVersions(ctx, query)
}

func (r *PostgresVersionRepository) queryVersions(ctx context.Context, query string, args ...interface{}) ([]models.FileVersion, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	versions := []models.FileVersion{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, *v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	return versions, nil
}

// keyFilter builds the WHERE clause for a key. Root files have a NULL folder.
func keyFilter(key models.FileKey) (string, []interface{}) {
	if key.FolderID == nil {
		return "folder_id IS NULL AND filename = $1", []interface{}{key.Filename}
	}
	return "folder_id = $1 AND filename = $2", []interface{}{*key.FolderID, key.Filename}
}

func scanVersion(row pgx.Row) (*models.FileVersion, error) {
	var v models.FileVersion
	var op string
	err := row.Scan(
		&v.ID,
		&v.FolderID,
		&v.Filename,
		&v.Version,
		&op,
		&v.Memo,
		&v.CreatedAt,
		&v.FileSize,
		&v.MimeType,
		&v.BlobRef,
	)
	if err != nil {
		return nil, err
	}
	v.Operation = models.Operation(op)
	return &v, nil
}
