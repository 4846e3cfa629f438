// Package local stores blobs as files on disk
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"filevault/internal/domain"
	"filevault/internal/domain/services"

	"github.com/google/uuid"
)

// Store keeps each blob in its own file under root, sharded by the first
// two characters of its reference: <root>/ab/abcdef01-....
//
// Refs are random UUIDs, so concurrent writers never collide and a blob is
// never rewritten once it lands.
type Store struct {
	root   string
	logger *slog.Logger

	// beforeCommit runs between the temp write and the rename; tests only
	beforeCommit func()
}

// NewStore creates a disk store rooted at dir, creating it if needed
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("blob directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &Store{root: dir, logger: logger}, nil
}

var _ services.BlobStore = (*Store)(nil)

// Put writes data to a temp file and renames it into place. The write runs
// on its own goroutine so ctx can abandon a stuck disk; an abandoned write
// that still lands is removed by whichever side finishes last.
func (s *Store) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := uuid.NewString()
	w := &pendingWrite{done: make(chan struct{})}

	go func() {
		err := s.write(ref, data)

		w.mu.Lock()
		w.finished, w.err = true, err
		abandoned := w.abandoned
		w.mu.Unlock()

		if abandoned && err == nil {
			s.discard(ref)
		}
		close(w.done)
	}()

	select {
	case <-w.done:
		if w.err != nil {
			return "", w.err
		}
	case <-ctx.Done():
		w.mu.Lock()
		w.abandoned = true
		landed := w.finished && w.err == nil
		w.mu.Unlock()

		if landed {
			s.discard(ref)
		}
		return "", fmt.Errorf("write blob %s: %w", ref, ctx.Err())
	}

	s.logger.Debug("blob stored", "blob_ref", ref, "size", len(data))
	return ref, nil
}

// pendingWrite tracks a Put whose caller may stop waiting
type pendingWrite struct {
	mu        sync.Mutex
	finished  bool
	abandoned bool
	err       error
	done      chan struct{}
}

func (s *Store) write(ref string, data []byte) error {
	path := s.path(ref)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create shard directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+ref+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close blob: %w", err)
	}
	if s.beforeCommit != nil {
		s.beforeCommit()
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit blob: %w", err)
	}
	return nil
}

func (s *Store) discard(ref string) {
	if err := os.Remove(s.path(ref)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove abandoned blob", "blob_ref", ref, "error", err)
	}
}

// Get reads the blob for ref
func (s *Store) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateRef(ref); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(ref))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("blob %s: %w", ref, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// Delete removes the blob for ref. A missing blob is not an error.
func (s *Store) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateRef(ref); err != nil {
		return err
	}

	if err := os.Remove(s.path(ref)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func (s *Store) path(ref string) string {
	return filepath.Join(s.root, ref[:2], ref)
}

// validateRef keeps refs from escaping the root directory
func validateRef(ref string) error {
	if _, err := uuid.Parse(ref); err != nil {
		return fmt.Errorf("blob %q: %w", ref, domain.ErrNotFound)
	}
	return nil
}
