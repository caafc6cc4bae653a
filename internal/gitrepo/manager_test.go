package gitrepo_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/coursesync/internal/execshell"
	"github.com/temirov/coursesync/internal/gitrepo"
)

const (
	testRepositoryPathConstant = "/workspace/course"
	testGitDirectoryConstant   = "/workspace/course/.git"
)

type stubGitExecutor struct {
	outputs          map[string]string
	failures         map[string]error
	recordedCommands []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	key := strings.Join(details.Arguments, " ")
	if failure, exists := executor.failures[key]; exists {
		return execshell.ExecutionResult{}, failure
	}
	return execshell.ExecutionResult{StandardOutput: executor.outputs[key]}, nil
}

type stubFileInfo struct {
	name string
}

func (info stubFileInfo) Name() string       { return info.name }
func (info stubFileInfo) Size() int64        { return 0 }
func (info stubFileInfo) Mode() fs.FileMode  { return fs.ModeDir }
func (info stubFileInfo) ModTime() time.Time { return time.Time{} }
func (info stubFileInfo) IsDir() bool        { return true }
func (info stubFileInfo) Sys() any           { return nil }

type stubFileSystem struct {
	existingPaths map[string]struct{}
}

func (fileSystem stubFileSystem) Stat(path string) (fs.FileInfo, error) {
	if _, exists := fileSystem.existingPaths[path]; exists {
		return stubFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

func (fileSystem stubFileSystem) MkdirAll(string, fs.FileMode) error          { return nil }
func (fileSystem stubFileSystem) ReadFile(string) ([]byte, error)             { return nil, fs.ErrNotExist }
func (fileSystem stubFileSystem) WriteFile(string, []byte, fs.FileMode) error { return nil }
func (fileSystem stubFileSystem) Rename(string, string) error                 { return nil }
func (fileSystem stubFileSystem) Remove(string) error                         { return nil }

func TestNewRepositoryManagerValidatesDependencies(testInstance *testing.T) {
	_, creationError := gitrepo.NewRepositoryManager(nil, stubFileSystem{})
	require.ErrorIs(testInstance, creationError, gitrepo.ErrGitExecutorNotConfigured)

	_, creationError = gitrepo.NewRepositoryManager(&stubGitExecutor{}, nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrFileSystemNotConfigured)
}

func TestRepositoryManagerCurrentBranch(testInstance *testing.T) {
	testCases := []struct {
		name           string
		output         string
		expectedBranch string
		expectedError  error
	}{
		{name: "named_branch", output: "02-loops-solution\n", expectedBranch: "02-loops-solution"},
		{name: "detached_head", output: "HEAD\n", expectedError: gitrepo.ErrDetachedHead},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{outputs: map[string]string{"rev-parse --abbrev-ref HEAD": testCase.output}}
			manager, creationError := gitrepo.NewRepositoryManager(executor, stubFileSystem{})
			require.NoError(testInstance, creationError)

			branch, branchError := manager.CurrentBranch(context.Background(), testRepositoryPathConstant)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, branchError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, branchError)
			require.Equal(testInstance, testCase.expectedBranch, branch)
			require.Equal(testInstance, testRepositoryPathConstant, executor.recordedCommands[0].WorkingDirectory)
		})
	}
}

func TestRepositoryManagerCheckCleanWorktree(testInstance *testing.T) {
	testCases := []struct {
		name          string
		output        string
		expectedClean bool
	}{
		{name: "clean", output: "", expectedClean: true},
		{name: "dirty", output: " M src/main.rs\n", expectedClean: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{outputs: map[string]string{"status --porcelain": testCase.output}}
			manager, creationError := gitrepo.NewRepositoryManager(executor, stubFileSystem{})
			require.NoError(testInstance, creationError)

			clean, cleanError := manager.CheckCleanWorktree(context.Background(), testRepositoryPathConstant)
			require.NoError(testInstance, cleanError)
			require.Equal(testInstance, testCase.expectedClean, clean)
		})
	}
}

func TestRepositoryManagerOperationInProgress(testInstance *testing.T) {
	testCases := []struct {
		name              string
		existingPaths     []string
		expectedOperation gitrepo.InProgressOperation
	}{
		{name: "idle", expectedOperation: gitrepo.OperationNone},
		{name: "interactive_rebase", existingPaths: []string{testGitDirectoryConstant + "/rebase-merge"}, expectedOperation: gitrepo.OperationRebase},
		{name: "apply_rebase", existingPaths: []string{testGitDirectoryConstant + "/rebase-apply"}, expectedOperation: gitrepo.OperationRebase},
		{name: "cherry_pick", existingPaths: []string{testGitDirectoryConstant + "/CHERRY_PICK_HEAD"}, expectedOperation: gitrepo.OperationCherryPick},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{outputs: map[string]string{"rev-parse --absolute-git-dir": testGitDirectoryConstant + "\n"}}
			existingPaths := map[string]struct{}{}
			for _, path := range testCase.existingPaths {
				existingPaths[path] = struct{}{}
			}
			manager, creationError := gitrepo.NewRepositoryManager(executor, stubFileSystem{existingPaths: existingPaths})
			require.NoError(testInstance, creationError)

			operation, operationError := manager.OperationInProgress(context.Background(), testRepositoryPathConstant)
			require.NoError(testInstance, operationError)
			require.Equal(testInstance, testCase.expectedOperation, operation)
		})
	}
}

func TestRepositoryManagerPropagatesGitFailures(testInstance *testing.T) {
	gitFailure := execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 2}}
	executor := &stubGitExecutor{failures: map[string]error{"remote get-url origin": gitFailure}}
	manager, creationError := gitrepo.NewRepositoryManager(executor, stubFileSystem{})
	require.NoError(testInstance, creationError)

	_, remoteError := manager.RemoteURL(context.Background(), testRepositoryPathConstant, "origin")
	require.Error(testInstance, remoteError)
	var commandFailure execshell.CommandFailedError
	require.True(testInstance, errors.As(remoteError, &commandFailure))

	_, pathError := manager.RemoteURL(context.Background(), "  ", "origin")
	require.ErrorIs(testInstance, pathError, gitrepo.ErrRepositoryPathRequired)
}
