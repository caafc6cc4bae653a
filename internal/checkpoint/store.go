package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/temirov/coursesync/internal/shared"
)

const (
	stateDirectoryNameConstant        = "coursesync"
	checkpointFileNameConstant        = "checkpoint.yaml"
	temporaryFileSuffixConstant       = ".tmp"
	stateDirectoryPermissionsConstant = fs.FileMode(0o755)
	checkpointPermissionsConstant     = fs.FileMode(0o644)
	directoryRequiredMessageConstant  = "checkpoint directory must be provided"
	fileSystemMissingMessageConstant  = "checkpoint file system not configured"
	clockMissingMessageConstant       = "checkpoint clock not configured"
	unsupportedVersionTemplate        = "unsupported checkpoint version %d in %s"
	readErrorTemplateConstant         = "failed to read checkpoint %s: %w"
	decodeErrorTemplateConstant       = "failed to decode checkpoint %s: %w"
	encodeErrorTemplateConstant       = "failed to encode checkpoint: %w"
	writeErrorTemplateConstant        = "failed to write checkpoint %s: %w"
	deleteErrorTemplateConstant       = "failed to delete checkpoint %s: %w"
)

// ErrDirectoryRequired indicates that the store was created without a directory.
var ErrDirectoryRequired = errors.New(directoryRequiredMessageConstant)

// ErrFileSystemNotConfigured indicates that the store was created without a filesystem.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrClockNotConfigured indicates that the store was created without a clock.
var ErrClockNotConfigured = errors.New(clockMissingMessageConstant)

// StateDirectory returns the directory holding coursesync state inside a git directory.
func StateDirectory(gitDirectory string) string {
	return filepath.Join(gitDirectory, stateDirectoryNameConstant)
}

// Store persists a single checkpoint as YAML.
type Store struct {
	directory  string
	fileSystem shared.FileSystem
	clock      shared.Clock
}

// NewStore constructs a Store writing into directory.
func NewStore(directory string, fileSystem shared.FileSystem, clock shared.Clock) (*Store, error) {
	if len(directory) == 0 {
		return nil, ErrDirectoryRequired
	}
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if clock == nil {
		return nil, ErrClockNotConfigured
	}
	return &Store{directory: directory, fileSystem: fileSystem, clock: clock}, nil
}

// Directory returns the state directory holding the checkpoint.
func (store *Store) Directory() string {
	return store.directory
}

// Path returns the checkpoint file location.
func (store *Store) Path() string {
	return filepath.Join(store.directory, checkpointFileNameConstant)
}

// Load reads the checkpoint. The boolean is false when no checkpoint exists.
func (store *Store) Load() (Checkpoint, bool, error) {
	checkpointPath := store.Path()
	contents, readError := store.fileSystem.ReadFile(checkpointPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf(readErrorTemplateConstant, checkpointPath, readError)
	}

	var loaded Checkpoint
	if decodeError := yaml.Unmarshal(contents, &loaded); decodeError != nil {
		return Checkpoint{}, false, fmt.Errorf(decodeErrorTemplateConstant, checkpointPath, decodeError)
	}
	if loaded.Version != FormatVersion {
		return Checkpoint{}, false, fmt.Errorf(unsupportedVersionTemplate, loaded.Version, checkpointPath)
	}
	return loaded, true, nil
}

// Save stamps and writes the checkpoint, replacing any previous file atomically.
func (store *Store) Save(checkpoint *Checkpoint) error {
	now := store.clock.Now().UTC()
	checkpoint.Version = FormatVersion
	if checkpoint.StartedAt.IsZero() {
		checkpoint.StartedAt = now
	}
	checkpoint.UpdatedAt = now

	contents, encodeError := yaml.Marshal(checkpoint)
	if encodeError != nil {
		return fmt.Errorf(encodeErrorTemplateConstant, encodeError)
	}

	checkpointPath := store.Path()
	if mkdirError := store.fileSystem.MkdirAll(store.directory, stateDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(writeErrorTemplateConstant, checkpointPath, mkdirError)
	}
	temporaryPath := checkpointPath + temporaryFileSuffixConstant
	if writeError := store.fileSystem.WriteFile(temporaryPath, contents, checkpointPermissionsConstant); writeError != nil {
		return fmt.Errorf(writeErrorTemplateConstant, checkpointPath, writeError)
	}
	if renameError := store.fileSystem.Rename(temporaryPath, checkpointPath); renameError != nil {
		return fmt.Errorf(writeErrorTemplateConstant, checkpointPath, renameError)
	}
	return nil
}

// Delete removes the checkpoint if present.
func (store *Store) Delete() error {
	checkpointPath := store.Path()
	if removeError := store.fileSystem.Remove(checkpointPath); removeError != nil {
		return fmt.Errorf(deleteErrorTemplateConstant, checkpointPath, removeError)
	}
	return nil
}
