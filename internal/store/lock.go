package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
)

// DirLock is an exclusive cross-process lock over an index data directory.
// It keeps two writers from cascading into the same index at once.
type DirLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewDirLock creates a lock for dir. The lock file is <dir>/.index.lock.
func NewDirLock(dir string) *DirLock {
	lockPath := filepath.Join(dir, ".index.lock")
	return &DirLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// TryLock attempts to acquire the lock without blocking.
// A lock held by another process returns an ERR_203_INDEX_LOCKED error.
func (l *DirLock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return cerrors.New(cerrors.ErrCodeIndexLocked,
			fmt.Sprintf("index at %s is in use by another process", filepath.Dir(l.path)), nil).
			WithSuggestion("wait for the other credcascade process to finish")
	}

	l.locked = true
	return nil
}

// Unlock releases the lock. Safe to call on an unlocked DirLock.
func (l *DirLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *DirLock) Path() string {
	return l.path
}
