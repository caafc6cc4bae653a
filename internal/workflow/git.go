package workflow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/coursesync/internal/execshell"
	"github.com/temirov/coursesync/internal/gitrepo"
)

const (
	dryRunPlanTemplateConstant  = "PLAN: git %s\n"
	commandArgumentSeparator    = " "
	cursorVerifyErrorTemplate   = "failed to verify checked-out branch: %w"
	cursorCheckoutSubcommand    = "checkout"
	cursorVerifiedLogMessage    = "checked-out branch differs from checkpoint; restoring"
	cursorExpectedLogField      = "expected"
	cursorActualLogField        = "actual"
	dryRunMutationLogMessage    = "dry run; command not executed"
	dryRunArgumentsLogField     = "arguments"
	operationStoppedTemplate    = "git %s stopped before finishing; complete it and run \"coursesync resume\""
	operationCheckErrorTemplate = "failed to confirm git operation finished: %w"
)

// OperationStoppedError reports a git command that exited successfully but left its operation unfinished,
// as an interactive rebase does when it reaches an edit or break instruction.
type OperationStoppedError struct {
	Operation gitrepo.InProgressOperation
}

// Error describes the unfinished operation.
func (stoppedError OperationStoppedError) Error() string {
	return fmt.Sprintf(operationStoppedTemplate, stoppedError.Operation)
}

// Query runs a read-only git command and returns its trimmed standard output. Queries run during dry runs.
func (environment *Environment) Query(executionContext context.Context, arguments ...string) (string, error) {
	executionResult, executionError := environment.GitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: environment.RepositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// Mutate runs a git command that changes the repository. Dry runs print the command instead.
func (environment *Environment) Mutate(executionContext context.Context, details execshell.CommandDetails) error {
	if len(details.WorkingDirectory) == 0 {
		details.WorkingDirectory = environment.RepositoryPath
	}
	if environment.DryRun {
		if environment.Logger != nil {
			environment.Logger.Debug(dryRunMutationLogMessage, zap.Strings(dryRunArgumentsLogField, details.Arguments))
		}
		if environment.Output != nil {
			fmt.Fprintf(environment.Output, dryRunPlanTemplateConstant, strings.Join(details.Arguments, commandArgumentSeparator))
		}
		return nil
	}
	_, executionError := environment.GitExecutor.ExecuteGit(executionContext, details)
	return executionError
}

// Checkout switches branches and moves the cursor. A checkout settles the cursor of a resumed run.
func (environment *Environment) Checkout(executionContext context.Context, state *State, branch string) error {
	if checkoutError := environment.Mutate(executionContext, execshell.CommandDetails{Arguments: []string{cursorCheckoutSubcommand, branch}}); checkoutError != nil {
		return checkoutError
	}
	state.MoveCursor(branch)
	state.Resumed = false
	return nil
}

// EnsureCursor restores the expected branch when a resumed run finds another one checked out.
// Fresh runs trust the cursor.
func (environment *Environment) EnsureCursor(executionContext context.Context, state *State, expected string) error {
	if !state.Resumed {
		return nil
	}
	state.Resumed = false
	if environment.RepositoryManager == nil {
		if state.Cursor() == expected {
			return nil
		}
		return environment.Checkout(executionContext, state, expected)
	}

	actual, branchError := environment.RepositoryManager.CurrentBranch(executionContext, environment.RepositoryPath)
	if branchError != nil {
		return fmt.Errorf(cursorVerifyErrorTemplate, branchError)
	}
	if actual == expected {
		state.MoveCursor(expected)
		return nil
	}
	if environment.Logger != nil {
		environment.Logger.Info(cursorVerifiedLogMessage, zap.String(cursorExpectedLogField, expected), zap.String(cursorActualLogField, actual))
	}
	return environment.Checkout(executionContext, state, expected)
}

// EnsureFinished fails with OperationStoppedError when git still has a rebase or cherry-pick in progress.
// Dry runs and environments without a repository manager skip the check.
func (environment *Environment) EnsureFinished(executionContext context.Context) error {
	if environment.DryRun || environment.RepositoryManager == nil {
		return nil
	}
	inProgress, inProgressError := environment.RepositoryManager.OperationInProgress(executionContext, environment.RepositoryPath)
	if inProgressError != nil {
		return fmt.Errorf(operationCheckErrorTemplate, inProgressError)
	}
	if inProgress != gitrepo.OperationNone {
		return OperationStoppedError{Operation: inProgress}
	}
	return nil
}
