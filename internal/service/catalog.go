package service

import (
	"log/slog"
	"sort"
	"sync"

	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
)

// fileCatalog implements the FileCatalog interface.
//
// It keeps the latest record of every key, deleted ones included, and hides
// delete markers at list time. Keeping the marker means a late, lower
// version can never resurrect an entry.
type fileCatalog struct {
	mu      sync.RWMutex
	entries map[string]models.FileCatalogEntry
	logger  *slog.Logger
}

// NewFileCatalog creates an empty file catalog
func NewFileCatalog(logger *slog.Logger) services.FileCatalog {
	return &fileCatalog{
		entries: make(map[string]models.FileCatalogEntry),
		logger:  logger,
	}
}

// OnAppend folds record into the view if it is newer than what is cached
func (c *fileCatalog) OnAppend(record *models.FileVersion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(record)
}

func (c *fileCatalog) applyLocked(record *models.FileVersion) {
	key := record.Key().String()
	if current, ok := c.entries[key]; ok && current.LatestVersion >= record.Version {
		return
	}
	c.entries[key] = models.NewCatalogEntry(record)
}

// List returns live entries ordered by filename, then folder (root first).
// A nil folderID lists every folder.
func (c *fileCatalog) List(folderID *int64) []models.FileCatalogEntry {
	c.mu.RLock()
	result := make([]models.FileCatalogEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		if entry.LatestOperation == models.OperationDelete {
			continue
		}
		if folderID != nil && (entry.FolderID == nil || *entry.FolderID != *folderID) {
			continue
		}
		result = append(result, entry)
	}
	c.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Filename != result[j].Filename {
			return result[i].Filename < result[j].Filename
		}
		return folderOrder(result[i].FolderID) < folderOrder(result[j].FolderID)
	})

	return result
}

// Rebuild replaces the view by replaying records
func (c *fileCatalog) Rebuild(records []models.FileVersion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]models.FileCatalogEntry, len(records))
	for i := range records {
		c.applyLocked(&records[i])
	}

	c.logger.Info("file catalog rebuilt",
		"record_count", len(records),
		"key_count", len(c.entries),
	)
}

func folderOrder(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
