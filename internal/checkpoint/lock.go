package checkpoint

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/temirov/coursesync/internal/shared"
)

const (
	lockFileNameConstant          = "lock"
	lockHeldMessageConstant       = "another coursesync run holds the repository lock"
	lockAcquireErrorTemplate      = "failed to acquire repository lock %s: %w"
	lockHeldErrorTemplateConstant = "%w (%s)"
)

// ErrLockHeld indicates that another process currently holds the repository lock.
var ErrLockHeld = errors.New(lockHeldMessageConstant)

// RunLock is an exclusive, process-scoped lock on a repository's coursesync state directory.
type RunLock struct {
	fileLock *flock.Flock
}

// AcquireRunLock creates directory through fileSystem and takes the lock without waiting.
// ErrLockHeld is returned when another process owns it.
func AcquireRunLock(fileSystem shared.FileSystem, directory string) (*RunLock, error) {
	if len(directory) == 0 {
		return nil, ErrDirectoryRequired
	}
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	lockPath := filepath.Join(directory, lockFileNameConstant)
	if mkdirError := fileSystem.MkdirAll(directory, stateDirectoryPermissionsConstant); mkdirError != nil {
		return nil, fmt.Errorf(lockAcquireErrorTemplate, lockPath, mkdirError)
	}

	fileLock := flock.New(lockPath)
	locked, lockError := fileLock.TryLock()
	if lockError != nil {
		return nil, fmt.Errorf(lockAcquireErrorTemplate, lockPath, lockError)
	}
	if !locked {
		return nil, fmt.Errorf(lockHeldErrorTemplateConstant, ErrLockHeld, lockPath)
	}
	return &RunLock{fileLock: fileLock}, nil
}

// Release unlocks the repository.
func (lock *RunLock) Release() error {
	if lock == nil || lock.fileLock == nil {
		return nil
	}
	return lock.fileLock.Unlock()
}
