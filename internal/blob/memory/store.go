// Package memory is an in-process blob store for tests and ephemeral runs
package memory

import (
	"context"
	"fmt"
	"sync"

	"filevault/internal/domain"
	"filevault/internal/domain/services"

	"github.com/google/uuid"
)

// Store keeps blobs in a map. Stored and returned slices are copies.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

var _ services.BlobStore = (*Store)(nil)

func (s *Store) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := uuid.NewString()

	s.mu.Lock()
	s.blobs[ref] = append([]byte(nil), data...)
	s.mu.Unlock()

	return ref, nil
}

func (s *Store) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.blobs[ref]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("blob %s: %w", ref, domain.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (s *Store) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.blobs, ref)
	s.mu.Unlock()

	return nil
}

// Len reports how many blobs are stored
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
