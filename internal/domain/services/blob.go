package services

import "context"

// BlobStore is the byte storage the ledger writes through. References are
// opaque to the core; implementations must be safe for concurrent use.
type BlobStore interface {
	// Put stores data and returns a reference to it
	Put(ctx context.Context, data []byte) (string, error)

	// Get returns the bytes for ref (domain.ErrNotFound if absent)
	Get(ctx context.Context, ref string) ([]byte, error)

	// Delete removes ref. Deleting a missing ref is not an error.
	Delete(ctx context.Context, ref string) error
}
