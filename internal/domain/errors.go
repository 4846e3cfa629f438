package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Generic sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
)

// Folder and ledger error kinds
var (
	ErrInvalidParent        = errors.New("invalid parent folder")
	ErrDuplicateName        = errors.New("duplicate name")
	ErrFolderNotFound       = errors.New("folder not found")
	ErrFileNotFound         = errors.New("file not found")
	ErrVersionNotFound      = errors.New("version not found")
	ErrConflictingOperation = errors.New("conflicting operation")
	ErrFileDeletedAtVersion = errors.New("file deleted at version")
	ErrStorageUnavailable   = errors.New("storage unavailable")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (folder, file)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict and ErrDuplicateName
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict || target == ErrDuplicateName
}

// StorageError wraps an infrastructure failure (blob I/O, lock timeout,
// database outage). It is retryable and matches ErrStorageUnavailable.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err as a retryable storage failure for op
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: storage unavailable", e.Op)
	}
	return fmt.Sprintf("%s: storage unavailable: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) StatusCode() int { return http.StatusServiceUnavailable }

// Is allows errors.Is() to match against ErrStorageUnavailable
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// Retryable reports whether the caller may retry the request unchanged.
func (e *StorageError) Retryable() bool { return true }

// IsRetryable reports whether err is an infrastructure failure worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
