package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
)

// VersionRepository keeps each version chain as a slice indexed by version-1
type VersionRepository struct {
	mu     sync.RWMutex
	chains map[string][]models.FileVersion
	nextID int64
}

// NewVersionRepository creates an empty in-memory version repository
func NewVersionRepository() repositories.VersionRepository {
	return &VersionRepository{chains: make(map[string][]models.FileVersion)}
}

// Append adds a record. The version must extend the chain by exactly one.
func (r *VersionRepository) Append(ctx context.Context, v *models.FileVersion) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := v.Key().String()
	chain := r.chains[key]
	if v.Version != len(chain)+1 {
		return fmt.Errorf("append %s version %d: chain is at version %d", key, v.Version, len(chain))
	}

	r.nextID++
	v.ID = r.nextID
	r.chains[key] = append(chain, cloneVersion(*v))
	return nil
}

// Latest returns the highest-version record for key, nil if none
func (r *VersionRepository) Latest(ctx context.Context, key models.FileKey) (*models.FileVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain := r.chains[key.String()]
	if len(chain) == 0 {
		return nil, nil
	}
	latest := cloneVersion(chain[len(chain)-1])
	return &latest, nil
}

// Get returns one exact record
func (r *VersionRepository) Get(ctx context.Context, key models.FileKey, version int) (*models.FileVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain := r.chains[key.String()]
	if version < 1 || version > len(chain) {
		return nil, fmt.Errorf("%s version %d: %w", key, version, domain.ErrNotFound)
	}
	record := cloneVersion(chain[version-1])
	return &record, nil
}

// ListByKey returns the chain ordered by version ascending
func (r *VersionRepository) ListByKey(ctx context.Context, key models.FileKey) ([]models.FileVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain := r.chains[key.String()]
	result := make([]models.FileVersion, len(chain))
	for i, v := range chain {
		result[i] = cloneVersion(v)
	}
	return result, nil
}

// ListAll returns every record ordered by key, then version
func (r *VersionRepository) ListAll(ctx context.Context) ([]models.FileVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.chains))
	for k := range r.chains {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var result []models.FileVersion
	for _, k := range keys {
		for _, v := range r.chains[k] {
			result = append(result, cloneVersion(v))
		}
	}
	return result, nil
}

// cloneVersion copies pointer fields so callers never share state with the store
func cloneVersion(v models.FileVersion) models.FileVersion {
	v.FolderID = copyID(v.FolderID)
	v.Memo = copyString(v.Memo)
	v.MimeType = copyString(v.MimeType)
	v.BlobRef = copyString(v.BlobRef)
	return v
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
