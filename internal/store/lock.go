package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/multierr"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

const (
	// LockFileName is the writer lock kept next to the index
	LockFileName = "pushlog.lock"

	// DefaultLockTimeout bounds how long a writer waits for another process
	DefaultLockTimeout = 10 * time.Second

	lockRetryDelay = 50 * time.Millisecond
)

// Lock is an exclusive, cross-process writer lock
type Lock struct {
	path    string
	timeout time.Duration
}

// NewLock creates a lock on path
func NewLock(path string) *Lock {
	return &Lock{path: path, timeout: DefaultLockTimeout}
}

// LockPath returns the lock file used for the repository at gitDir
func LockPath(gitDir string) string {
	return filepath.Join(gitDir, LockFileName)
}

// WithTimeout returns a copy of the lock waiting at most timeout
func (l *Lock) WithTimeout(timeout time.Duration) *Lock {
	return &Lock{path: l.path, timeout: timeout}
}

// Do runs fn while holding the lock
func (l *Lock) Do(ctx context.Context, fn func() error) (err error) {
	lock := flock.New(l.path)

	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	locked, err := lock.TryLockContext(waitCtx, lockRetryDelay)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("acquiring %s: %w", l.path, err)
	}
	if !locked {
		return fmt.Errorf("%w: %s is held by another process", pushlogerrors.ErrLocked, l.path)
	}
	defer func() {
		err = multierr.Append(err, lock.Unlock())
	}()

	return fn()
}
