// Package storage opens the repositories and blob store selected by config
package storage

import (
	"context"
	"fmt"
	"log/slog"

	blobLocal "filevault/internal/blob/local"
	blobMemory "filevault/internal/blob/memory"
	blobPostgres "filevault/internal/blob/postgres"
	"filevault/internal/config"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"
	"filevault/internal/repository/memory"
	"filevault/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Backend names accepted by STORE and BLOB_BACKEND
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendLocal    = "local"
)

// Stores bundles everything the core services persist through
type Stores struct {
	Folders   repositories.FolderRepository
	Versions  repositories.VersionRepository
	TxManager repositories.TransactionManager
	Blobs     services.BlobStore

	// Pool is nil for the memory store
	Pool   *pgxpool.Pool
	Tables *postgres.TableNames
}

// Close releases the database pool, if any
func (s *Stores) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// Open builds the stores named by cfg.Store and cfg.BlobBackend. The
// Postgres store creates its tables when they are missing.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	stores := &Stores{}

	switch cfg.Store {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STORE=postgres requires DATABASE_URL")
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.EnsureSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
			pool.Close()
			return nil, err
		}

		logger.Info("database connected",
			"max_conns", postgres.MaxConns,
			"min_conns", postgres.MinConns,
			"table_prefix", cfg.TablePrefix,
		)

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		}
		stores.Pool = pool
		stores.Tables = tables
		stores.Folders = postgres.NewFolderRepository(repoConfig)
		stores.Versions = postgres.NewVersionRepository(repoConfig)
		stores.TxManager = postgres.NewTransactionManager(pool, logger)

	case BackendMemory:
		logger.Warn("using in-memory store; folders and versions are lost on restart")
		stores.Folders = memory.NewFolderRepository()
		stores.Versions = memory.NewVersionRepository()
		stores.TxManager = memory.NewTransactionManager()

	default:
		return nil, fmt.Errorf("unknown STORE %q (want %s or %s)", cfg.Store, BackendPostgres, BackendMemory)
	}

	blobs, err := openBlobs(cfg, stores, logger)
	if err != nil {
		stores.Close()
		return nil, err
	}
	stores.Blobs = blobs

	logger.Info("storage ready", "store", cfg.Store, "blob_backend", cfg.BlobBackend)
	return stores, nil
}

func openBlobs(cfg *config.Config, stores *Stores, logger *slog.Logger) (services.BlobStore, error) {
	switch cfg.BlobBackend {
	case BackendLocal:
		store, err := blobLocal.NewStore(cfg.BlobDir, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendMemory:
		return blobMemory.NewStore(), nil
	case BackendPostgres:
		if stores.Pool == nil {
			return nil, fmt.Errorf("BLOB_BACKEND=postgres requires STORE=postgres")
		}
		return blobPostgres.NewStore(&postgres.RepositoryConfig{
			Pool:   stores.Pool,
			Tables: stores.Tables,
			Logger: logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown BLOB_BACKEND %q", cfg.BlobBackend)
	}
}
