// Package postgres stores blobs in a bytea table next to the ledger
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"filevault/internal/domain"
	"filevault/internal/domain/services"
	pgrepo "filevault/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store writes blobs through the context executor, so a Put inside the
// ledger's transaction rolls back with the record that references it.
type Store struct {
	pool   *pgxpool.Pool
	table  string
	logger *slog.Logger
}

// NewStore creates a blob store backed by the configured blobs table
func NewStore(config *pgrepo.RepositoryConfig) *Store {
	return &Store{
		pool:   config.Pool,
		table:  config.Tables.Blobs,
		logger: config.Logger,
	}
}

var _ services.BlobStore = (*Store)(nil)

func (s *Store) Put(ctx context.Context, data []byte) (string, error) {
	ref := uuid.New()
	query := fmt.Sprintf(`INSERT INTO %s (ref, content, size) VALUES ($1, $2, $3)`, s.table)

	executor := pgrepo.GetExecutor(ctx, s.pool)
	if _, err := executor.Exec(ctx, query, ref, data, len(data)); err != nil {
		return "", fmt.Errorf("insert blob: %w", err)
	}
	return ref.String(), nil
}

func (s *Store) Get(ctx context.Context, ref string) ([]byte, error) {
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("blob %q: %w", ref, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`SELECT content FROM %s WHERE ref = $1`, s.table)

	var content []byte
	executor := pgrepo.GetExecutor(ctx, s.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&content); err != nil {
		if pgrepo.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("blob %s: %w", ref, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get blob: %w", err)
	}
	return content, nil
}

func (s *Store) Delete(ctx context.Context, ref string) error {
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE ref = $1`, s.table)
	executor := pgrepo.GetExecutor(ctx, s.pool)
	if _, err := executor.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
