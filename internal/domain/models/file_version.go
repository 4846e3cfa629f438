package models

import (
	"fmt"
	"time"
)

// Operation tags each ledger record. The log is a tagged variant, never a
// "deleted" flag, so deleted files keep their full history.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Valid reports whether op is one of the known operations
func (op Operation) Valid() bool {
	switch op {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// FileKey identifies one version chain: a filename scoped to a folder.
// A nil FolderID means the root.
type FileKey struct {
	FolderID *int64
	Filename string
}

// NewFileKey builds a key, copying folderID so callers can't mutate it later
func NewFileKey(folderID *int64, filename string) FileKey {
	if folderID != nil {
		id := *folderID
		folderID = &id
	}
	return FileKey{FolderID: folderID, Filename: filename}
}

// String returns a stable map/lock key. The root never shares a key with
// any numeric folder id.
func (k FileKey) String() string {
	if k.FolderID == nil {
		return "root/" + k.Filename
	}
	return fmt.Sprintf("%d/%s", *k.FolderID, k.Filename)
}

// FileVersion is one immutable ledger record
type FileVersion struct {
	ID        int64     `json:"-" db:"id"`
	FolderID  *int64    `json:"folder_id" db:"folder_id"` // NULL = root level
	Filename  string    `json:"filename" db:"filename"`
	Version   int       `json:"version" db:"version"`
	Operation Operation `json:"operation" db:"operation"`
	Memo      *string   `json:"memo" db:"memo"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	FileSize  int64     `json:"file_size" db:"file_size"`
	MimeType  *string   `json:"mime_type" db:"mime_type"`
	BlobRef   *string   `json:"-" db:"blob_ref"` // Opaque, never exposed to clients
}

// Key returns the version chain this record belongs to
func (v *FileVersion) Key() FileKey {
	return NewFileKey(v.FolderID, v.Filename)
}

// IsDeleted reports whether this record marks the file as absent
func (v *FileVersion) IsDeleted() bool {
	return v.Operation == OperationDelete
}
