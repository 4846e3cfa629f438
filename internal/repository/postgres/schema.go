package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaStatements returns the idempotent DDL for the folder tree, the
// version ledger and the optional blob table.
//
// Folders and versions reference folders with ON DELETE RESTRICT: the core
// never deletes folders, and anything that does must first decide what
// happens to the files scoped to them.
func SchemaStatements(tables *TableNames, tablePrefix string) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			parent_id BIGINT REFERENCES ` + tables.Folders + `(id) ON DELETE RESTRICT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (parent_id IS NULL OR parent_id <> id)
		)`,
		// COALESCE folds NULL parents together so root names are unique too
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_sibling_name
			ON ` + tables.Folders + ` (COALESCE(parent_id, 0), name)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.FileVersions + ` (
			id BIGSERIAL PRIMARY KEY,
			folder_id BIGINT REFERENCES ` + tables.Folders + `(id) ON DELETE RESTRICT,
			filename TEXT NOT NULL,
			version INTEGER NOT NULL CHECK (version >= 1),
			operation TEXT NOT NULL CHECK (operation IN ('create', 'update', 'delete')),
			memo TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			file_size BIGINT NOT NULL DEFAULT 0 CHECK (file_size >= 0),
			mime_type TEXT,
			blob_ref TEXT,
			CHECK (operation <> 'delete' OR (blob_ref IS NULL AND file_size = 0))
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `file_versions_key_version
			ON ` + tables.FileVersions + ` (COALESCE(folder_id, 0), filename, version)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `file_versions_folder
			ON ` + tables.FileVersions + ` (folder_id)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Blobs + ` (
			ref UUID PRIMARY KEY,
			content BYTEA NOT NULL,
			size BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
}

// EnsureSchema creates any missing tables and indexes
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, tablePrefix string) error {
	for _, stmt := range SchemaStatements(tables, tablePrefix) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run schema: %w", err)
		}
	}
	return nil
}

// DropTables drops every filevault table for the prefix. Dev and test only.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{tables.FileVersions, tables.Blobs, tables.Folders} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
