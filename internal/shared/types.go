package shared

import (
	"context"
	"io/fs"
	"time"

	"github.com/temirov/coursesync/internal/execshell"
)

const (
	// OriginRemoteNameConstant identifies the default remote lesson branches are pushed to.
	OriginRemoteNameConstant = "origin"
	// MainBranchNameConstant identifies the default branch the latest solution is rebased onto.
	MainBranchNameConstant = "main"
)

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FileSystem exposes filesystem operations required by repository services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	Rename(oldPath string, newPath string) error
	Remove(path string) error
}

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}
