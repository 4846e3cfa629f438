package models

import "time"

// FileCatalogEntry is the derived "latest state" of one key, used for listings
type FileCatalogEntry struct {
	FolderID        *int64    `json:"folder_id"`
	FolderName      *string   `json:"folder_name"` // Decoration, filled by the coordinator
	Filename        string    `json:"filename"`
	LatestVersion   int       `json:"latest_version"`
	LatestOperation Operation `json:"latest_operation"`
	LatestUpdate    time.Time `json:"latest_update"`
	FileSize        int64     `json:"file_size"`
	MimeType        *string   `json:"mime_type"`
}

// NewCatalogEntry derives a catalog entry from a ledger record
func NewCatalogEntry(v *FileVersion) FileCatalogEntry {
	return FileCatalogEntry{
		FolderID:        v.FolderID,
		Filename:        v.Filename,
		LatestVersion:   v.Version,
		LatestOperation: v.Operation,
		LatestUpdate:    v.CreatedAt,
		FileSize:        v.FileSize,
		MimeType:        v.MimeType,
	}
}
