package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"filevault/internal/config"
	"filevault/internal/domain"
)

// Options bounds how long the core waits on locks and blob I/O
type Options struct {
	LockTimeout time.Duration
	BlobTimeout time.Duration
}

// OptionsFromConfig copies the timeouts out of the process config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		LockTimeout: cfg.LockTimeout,
		BlobTimeout: cfg.BlobTimeout,
	}
}

func (o Options) withDefaults() Options {
	if o.LockTimeout <= 0 {
		o.LockTimeout = 5 * time.Second
	}
	if o.BlobTimeout <= 0 {
		o.BlobTimeout = 30 * time.Second
	}
	return o
}

// acquire takes key on locks, bounded by timeout. A timeout or cancelled
// request surfaces as a retryable storage error.
func acquire(ctx context.Context, locks *KeyedMutex, key string, timeout time.Duration) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	unlock, err := locks.Lock(lockCtx, key)
	if err != nil {
		return nil, domain.NewStorageError("acquire lock", fmt.Errorf("%s: %w", key, err))
	}
	return unlock, nil
}

// storageErr wraps repository failures as storage errors, leaving domain
// errors (not found, conflicts) untouched so callers can still match them.
func storageErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrStorageUnavailable):
		return err
	default:
		return domain.NewStorageError(op, err)
	}
}
