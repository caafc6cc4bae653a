package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/temirov/coursesync/internal/execshell"
	"github.com/temirov/coursesync/internal/shared"
)

const (
	gitRevParseSubcommandConstant         = "rev-parse"
	gitAbsoluteGitDirectoryFlagConstant   = "--absolute-git-dir"
	gitAbbrevRefFlagConstant              = "--abbrev-ref"
	gitHeadReferenceConstant              = "HEAD"
	gitStatusSubcommandConstant           = "status"
	gitPorcelainFlagConstant              = "--porcelain"
	gitRemoteSubcommandConstant           = "remote"
	gitGetURLSubcommandConstant           = "get-url"
	rebaseMergeDirectoryNameConstant      = "rebase-merge"
	rebaseApplyDirectoryNameConstant      = "rebase-apply"
	cherryPickHeadFileNameConstant        = "CHERRY_PICK_HEAD"
	repositoryPathRequiredMessageConstant = "repository path must be provided"
	gitExecutorMissingMessageConstant     = "git executor not configured"
	fileSystemMissingMessageConstant      = "file system not configured"
	detachedHeadMessageConstant           = "repository is in a detached HEAD state"
	gitDirectoryErrorTemplateConstant     = "failed to locate git directory: %w"
	currentBranchErrorTemplateConstant    = "failed to identify current branch: %w"
	worktreeStatusErrorTemplateConstant   = "failed to check working tree status: %w"
	remoteURLErrorTemplateConstant        = "failed to read remote %q: %w"
	operationProbeErrorTemplateConstant   = "failed to inspect %s: %w"
)

// InProgressOperation names a multi-step git operation left unfinished in a repository.
type InProgressOperation string

// Operations detected by OperationInProgress.
const (
	OperationNone       InProgressOperation = ""
	OperationRebase     InProgressOperation = "rebase"
	OperationCherryPick InProgressOperation = "cherry-pick"
)

// ErrRepositoryPathRequired indicates that no repository path was supplied.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrDetachedHead indicates HEAD does not point at a branch.
var ErrDetachedHead = errors.New(detachedHeadMessageConstant)

// RepositoryManager answers read-only questions about a working copy.
type RepositoryManager struct {
	executor   shared.GitExecutor
	fileSystem shared.FileSystem
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor shared.GitExecutor, fileSystem shared.FileSystem) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &RepositoryManager{executor: executor, fileSystem: fileSystem}, nil
}

// GitDirectory returns the absolute path of the repository's git directory.
func (manager *RepositoryManager) GitDirectory(executionContext context.Context, repositoryPath string) (string, error) {
	output, executionError := manager.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitAbsoluteGitDirectoryFlagConstant)
	if executionError != nil {
		return "", fmt.Errorf(gitDirectoryErrorTemplateConstant, executionError)
	}
	return output, nil
}

// CurrentBranch returns the checked-out branch name.
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	output, executionError := manager.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", fmt.Errorf(currentBranchErrorTemplateConstant, executionError)
	}
	if output == gitHeadReferenceConstant || len(output) == 0 {
		return "", ErrDetachedHead
	}
	return output, nil
}

// CheckCleanWorktree reports whether the working tree has no staged, unstaged or untracked changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	output, executionError := manager.run(executionContext, repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if executionError != nil {
		return false, fmt.Errorf(worktreeStatusErrorTemplateConstant, executionError)
	}
	return len(output) == 0, nil
}

// RemoteURL returns the fetch URL configured for the remote.
func (manager *RepositoryManager) RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	output, executionError := manager.run(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitGetURLSubcommandConstant, remoteName)
	if executionError != nil {
		return "", fmt.Errorf(remoteURLErrorTemplateConstant, remoteName, executionError)
	}
	return output, nil
}

// OperationInProgress reports whether git is in the middle of a rebase or a cherry-pick.
func (manager *RepositoryManager) OperationInProgress(executionContext context.Context, repositoryPath string) (InProgressOperation, error) {
	gitDirectory, gitDirectoryError := manager.GitDirectory(executionContext, repositoryPath)
	if gitDirectoryError != nil {
		return OperationNone, gitDirectoryError
	}

	probes := []struct {
		name      string
		operation InProgressOperation
	}{
		{name: rebaseMergeDirectoryNameConstant, operation: OperationRebase},
		{name: rebaseApplyDirectoryNameConstant, operation: OperationRebase},
		{name: cherryPickHeadFileNameConstant, operation: OperationCherryPick},
	}
	for _, probe := range probes {
		_, statError := manager.fileSystem.Stat(filepath.Join(gitDirectory, probe.name))
		if statError == nil {
			return probe.operation, nil
		}
		if !errors.Is(statError, fs.ErrNotExist) {
			return OperationNone, fmt.Errorf(operationProbeErrorTemplateConstant, probe.name, statError)
		}
	}
	return OperationNone, nil
}

func (manager *RepositoryManager) run(executionContext context.Context, repositoryPath string, arguments ...string) (string, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return "", ErrRepositoryPathRequired
	}
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: trimmedRepositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}
