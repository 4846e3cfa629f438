package models

import (
	"time"
)

type Folder struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ParentID  *int64    `json:"parent_id" db:"parent_id"` // NULL = root level
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	ParentID  *int64            `json:"parent_id"`
	CreatedAt time.Time         `json:"created_at"`
	Children  []*FolderTreeNode `json:"children"` // Pointers for proper nesting
}
