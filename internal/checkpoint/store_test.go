package checkpoint_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/coursesync/internal/checkpoint"
	"github.com/temirov/coursesync/internal/shared"
)

type fixedClock struct {
	instant time.Time
}

func (clock *fixedClock) Now() time.Time {
	return clock.instant
}

type failingWriteFileSystem struct {
	shared.OSFileSystem
}

func (failingWriteFileSystem) WriteFile(string, []byte, fs.FileMode) error {
	return errors.New("disk full")
}

func TestNewStoreValidatesDependencies(testInstance *testing.T) {
	testCases := []struct {
		name          string
		directory     string
		fileSystem    shared.FileSystem
		clock         shared.Clock
		expectedError error
	}{
		{name: "missing_directory", fileSystem: shared.OSFileSystem{}, clock: shared.SystemClock{}, expectedError: checkpoint.ErrDirectoryRequired},
		{name: "missing_file_system", directory: "state", clock: shared.SystemClock{}, expectedError: checkpoint.ErrFileSystemNotConfigured},
		{name: "missing_clock", directory: "state", fileSystem: shared.OSFileSystem{}, expectedError: checkpoint.ErrClockNotConfigured},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			store, creationError := checkpoint.NewStore(testCase.directory, testCase.fileSystem, testCase.clock)
			require.ErrorIs(subTest, creationError, testCase.expectedError)
			require.Nil(subTest, store)
		})
	}
}

func TestStoreRoundTripsCheckpoint(testInstance *testing.T) {
	gitDirectory := testInstance.TempDir()
	clock := &fixedClock{instant: time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)}
	store, creationError := checkpoint.NewStore(checkpoint.StateDirectory(gitDirectory), shared.OSFileSystem{}, clock)
	require.NoError(testInstance, creationError)

	_, exists, loadError := store.Load()
	require.NoError(testInstance, loadError)
	require.False(testInstance, exists)

	original := checkpoint.Checkpoint{
		Repository:     "/work/course",
		Remote:         "origin",
		MainBranch:     "main",
		LatestSolution: "02-loops-solution",
		Branches:       []string{"01-intro", "01-intro-solution", "02-loops", "02-loops-solution"},
		RebaseStage:    checkpoint.RebaseStageRebased,
		Regenerations: []checkpoint.BranchRegeneration{
			{Exercise: "01-intro", Solution: "01-intro-solution", Stage: checkpoint.RegenerationStageReplayed, RecordedCommit: "aaa111"},
			{Exercise: "02-loops", Solution: "02-loops-solution", Stage: checkpoint.RegenerationStageRecorded, RecordedCommit: "bbb222"},
		},
		Cursor:          "02-loops-solution",
		PausedOperation: checkpoint.PausedOperationCherryPick,
	}
	require.NoError(testInstance, store.Save(&original))
	require.Equal(testInstance, clock.instant, original.StartedAt)
	require.Equal(testInstance, clock.instant, original.UpdatedAt)

	clock.instant = clock.instant.Add(time.Minute)
	require.NoError(testInstance, store.Save(&original))
	require.Equal(testInstance, clock.instant.Add(-time.Minute), original.StartedAt)
	require.Equal(testInstance, clock.instant, original.UpdatedAt)

	loaded, exists, loadError := store.Load()
	require.NoError(testInstance, loadError)
	require.True(testInstance, exists)
	require.Equal(testInstance, original, loaded)
	require.Equal(testInstance, checkpoint.PhaseRegenerate, loaded.Phase())

	_, statError := os.Stat(store.Path() + ".tmp")
	require.True(testInstance, os.IsNotExist(statError))

	require.NoError(testInstance, store.Delete())
	_, exists, loadError = store.Load()
	require.NoError(testInstance, loadError)
	require.False(testInstance, exists)
	require.NoError(testInstance, store.Delete())
}

func TestStoreRejectsUnknownVersion(testInstance *testing.T) {
	directory := testInstance.TempDir()
	store, creationError := checkpoint.NewStore(directory, shared.OSFileSystem{}, shared.SystemClock{})
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, os.WriteFile(filepath.Join(directory, "checkpoint.yaml"), []byte("version: 7\n"), 0o644))

	_, exists, loadError := store.Load()
	require.Error(testInstance, loadError)
	require.False(testInstance, exists)
	require.Contains(testInstance, loadError.Error(), "unsupported checkpoint version 7")
}

func TestStoreReportsDecodeFailures(testInstance *testing.T) {
	directory := testInstance.TempDir()
	store, creationError := checkpoint.NewStore(directory, shared.OSFileSystem{}, shared.SystemClock{})
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, os.WriteFile(store.Path(), []byte("branches: [unterminated\n"), 0o644))

	_, _, loadError := store.Load()
	require.ErrorContains(testInstance, loadError, "failed to decode checkpoint")
}

func TestStoreReportsWriteFailures(testInstance *testing.T) {
	store, creationError := checkpoint.NewStore(testInstance.TempDir(), failingWriteFileSystem{}, shared.SystemClock{})
	require.NoError(testInstance, creationError)

	saveError := store.Save(&checkpoint.Checkpoint{})
	require.ErrorContains(testInstance, saveError, "disk full")
}
