// Package workspace serializes installs that target the same workspace directory.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danjacques/gofslock/fslock"
)

const (
	// LockFileName is created inside the workspace directory and held for the duration of an install.
	LockFileName = ".depfetch.lock"

	workspaceLockedMessageConstant     = "workspace is locked by another install"
	lockedTemplateConstant             = "%w: %s"
	lockDirectoryTemplateConstant      = "failed to prepare lock directory %s: %w"
	lockAcquireFailureTemplateConstant = "failed to lock %s: %w"
)

// ErrWorkspaceLocked indicates that another process holds the workspace lock.
var ErrWorkspaceLocked = errors.New(workspaceLockedMessageConstant)

// LockPath returns the lock file used for workspaceDirectory.
func LockPath(workspaceDirectory string) string {
	return filepath.Join(workspaceDirectory, LockFileName)
}

// WithLock runs fn while holding an exclusive, non-blocking lock on lockPath. The directory holding
// lockPath is created when missing. Errors returned by fn are passed through unchanged.
func WithLock(lockPath string, fn func() error) error {
	if mkdirError := os.MkdirAll(filepath.Dir(lockPath), 0o755); mkdirError != nil {
		return fmt.Errorf(lockDirectoryTemplateConstant, filepath.Dir(lockPath), mkdirError)
	}

	callbackRan := false
	lockError := fslock.With(lockPath, func() error {
		callbackRan = true
		return fn()
	})
	if callbackRan {
		return lockError
	}

	switch {
	case lockError == nil:
		return nil
	case errors.Is(lockError, fslock.ErrLockHeld):
		return fmt.Errorf(lockedTemplateConstant, ErrWorkspaceLocked, lockPath)
	default:
		return fmt.Errorf(lockAcquireFailureTemplateConstant, lockPath, lockError)
	}
}
