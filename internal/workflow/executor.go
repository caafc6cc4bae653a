package workflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/coursesync/internal/checkpoint"
	"github.com/temirov/coursesync/internal/execshell"
)

const (
	workflowExecutionErrorTemplateConstant = "workflow operation %s failed: %w"
	workflowPersistErrorTemplateConstant   = "failed to record checkpoint after %s: %w"
	workflowExecutorDependenciesMessage    = "workflow executor requires git executor and repository path"
	workflowStateMissingMessage            = "workflow state not provided"
	rebaseSubcommandConstant               = "rebase"
	cherryPickSubcommandConstant           = "cherry-pick"
	operationSkippedLogMessage             = "operation already completed"
	operationStartedLogMessage             = "operation started"
	operationCompletedLogMessage           = "operation completed"
	operationPausedLogMessage              = "operation paused for conflict resolution"
	operationFailedLogMessage              = "operation failed"
	operationLogFieldName                  = "operation"
	pausedOperationLogFieldName            = "paused_operation"
)

// ErrDependenciesNotConfigured indicates that the environment lacks required collaborators.
var ErrDependenciesNotConfigured = errors.New(workflowExecutorDependenciesMessage)

// ErrStateNotProvided indicates that Execute was called without state.
var ErrStateNotProvided = errors.New(workflowStateMissingMessage)

// Executor runs operations in order, skipping those the checkpoint records as done.
type Executor struct {
	operations  []Operation
	environment *Environment
}

// NewExecutor constructs an Executor instance.
func NewExecutor(operations []Operation, environment *Environment) (*Executor, error) {
	if environment == nil || environment.GitExecutor == nil || len(environment.RepositoryPath) == 0 {
		return nil, ErrDependenciesNotConfigured
	}
	if environment.Logger == nil {
		environment.Logger = zap.NewNop()
	}
	return &Executor{operations: append([]Operation{}, operations...), environment: environment}, nil
}

// Execute runs every unfinished operation. A failure is recorded in the checkpoint before it is returned;
// a failing rebase or cherry-pick marks the run as paused on that operation.
func (executor *Executor) Execute(executionContext context.Context, state *State) error {
	if state == nil || state.Checkpoint == nil {
		return ErrStateNotProvided
	}

	for operationIndex := range executor.operations {
		operation := executor.operations[operationIndex]
		if operation == nil {
			continue
		}
		operationField := zap.String(operationLogFieldName, operation.Name())
		if operation.Completed(state) {
			executor.environment.Logger.Debug(operationSkippedLogMessage, operationField)
			continue
		}

		executor.environment.Logger.Debug(operationStartedLogMessage, operationField)
		if executeError := operation.Execute(executionContext, executor.environment, state); executeError != nil {
			return executor.recordFailure(state, operation.Name(), executeError)
		}
		if persistError := executor.environment.Persist(state); persistError != nil {
			return fmt.Errorf(workflowPersistErrorTemplateConstant, operation.Name(), persistError)
		}
		executor.environment.Logger.Debug(operationCompletedLogMessage, operationField)
	}

	return nil
}

func (executor *Executor) recordFailure(state *State, operationName string, failure error) error {
	failedStep := operationName
	var stepFailure StepError
	if errors.As(failure, &stepFailure) {
		failedStep = stepFailure.Step
	}

	pausedOperation := PausedOperationFor(failure)
	state.Checkpoint.PausedOperation = pausedOperation
	state.Checkpoint.FailedStep = failedStep
	state.Checkpoint.FailureMessage = failure.Error()

	if pausedOperation != checkpoint.PausedOperationNone {
		executor.environment.Logger.Warn(operationPausedLogMessage, zap.String(operationLogFieldName, failedStep), zap.String(pausedOperationLogFieldName, string(pausedOperation)))
	} else {
		executor.environment.Logger.Error(operationFailedLogMessage, zap.String(operationLogFieldName, failedStep), zap.Error(failure))
	}

	wrappedFailure := fmt.Errorf(workflowExecutionErrorTemplateConstant, failedStep, failure)
	if persistError := executor.environment.Persist(state); persistError != nil {
		return errors.Join(wrappedFailure, persistError)
	}
	return wrappedFailure
}

// PausedOperationFor reports which git operation, if any, left the repository waiting for the operator.
func PausedOperationFor(failure error) checkpoint.PausedOperation {
	var subcommand string
	var stoppedOperation OperationStoppedError
	var commandFailure execshell.CommandFailedError
	switch {
	case errors.As(failure, &stoppedOperation):
		subcommand = string(stoppedOperation.Operation)
	case errors.As(failure, &commandFailure):
		subcommand = commandFailure.Subcommand()
	default:
		return checkpoint.PausedOperationNone
	}
	switch subcommand {
	case rebaseSubcommandConstant:
		return checkpoint.PausedOperationRebase
	case cherryPickSubcommandConstant:
		return checkpoint.PausedOperationCherryPick
	default:
		return checkpoint.PausedOperationNone
	}
}

// StepError names the step inside an operation that failed.
type StepError struct {
	Step  string
	Cause error
}

// Error describes the failure.
func (stepError StepError) Error() string {
	return stepError.Cause.Error()
}

// Unwrap exposes the underlying cause.
func (stepError StepError) Unwrap() error {
	return stepError.Cause
}
