package coursesync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/coursesync/internal/checkpoint"
	"github.com/temirov/coursesync/internal/execshell"
	"github.com/temirov/coursesync/internal/workflow"
)

const (
	selectOperationNameConstant      = "select-latest-solution"
	rebaseOperationNameConstant      = "rebase-solution"
	regenerateOperationNameConstant  = "regenerate"
	regenerateStepTemplateConstant   = "regenerate:%s"
	finalizeOperationNameConstant    = "checkout-main"
	gitRevParseSubcommandConstant    = "rev-parse"
	gitBranchSubcommandConstant      = "branch"
	gitForceDeleteFlagConstant       = "-D"
	gitCheckoutSubcommandConstant    = "checkout"
	gitCreateBranchFlagConstant      = "-b"
	gitCherryPickSubcommandConstant  = "cherry-pick"
	gitRebaseSubcommandConstant      = "rebase"
	gitInteractiveFlagConstant       = "--interactive"
	gitUpdateRefsFlagConstant        = "--update-refs"
	recordCommitErrorTemplate        = "failed to record commit of %s: %w"
	emptyCommitErrorTemplateConstant = "git reported no commit for %s"
	selectedLogMessageConstant       = "latest solution selected"
	regeneratedLogMessageConstant    = "exercise branch regenerated"
	rebasedLogMessageConstant        = "solution branch rebased"
	branchLogFieldConstant           = "branch"
	solutionLogFieldConstant         = "solution"
	commitLogFieldConstant           = "commit"
	mainBranchLogFieldConstant       = "main_branch"
)

// DefaultOperations returns the rebase-and-regenerate steps in execution order.
func DefaultOperations() []workflow.Operation {
	return []workflow.Operation{
		&SelectLatestSolutionOperation{},
		&RebaseSolutionOperation{},
		&RegenerateExercisesOperation{},
		&CheckoutMainOperation{},
	}
}

// SelectLatestSolutionOperation picks the rebase target and pairs every exercise with its solution.
type SelectLatestSolutionOperation struct{}

// Name identifies the operation.
func (operation *SelectLatestSolutionOperation) Name() string {
	return selectOperationNameConstant
}

// Completed reports whether a target was already selected.
func (operation *SelectLatestSolutionOperation) Completed(state *workflow.State) bool {
	return state.Started()
}

// Execute fills the checkpoint plan from the discovered branches without touching the repository.
func (operation *SelectLatestSolutionOperation) Execute(_ context.Context, environment *workflow.Environment, state *workflow.State) error {
	branchSet := NewBranchSet(state.Checkpoint.Branches)
	latestSolution, found := branchSet.LatestSolution()
	if !found {
		return ErrNoSolutionBranches
	}
	pairs, pairError := branchSet.Pairs()
	if pairError != nil {
		return pairError
	}

	regenerations := make([]checkpoint.BranchRegeneration, 0, len(pairs))
	for _, pair := range pairs {
		regenerations = append(regenerations, checkpoint.BranchRegeneration{
			Exercise: pair.Exercise,
			Solution: pair.Solution,
			Stage:    checkpoint.RegenerationStagePending,
		})
	}

	state.Checkpoint.Branches = branchSet.Names()
	state.Checkpoint.LatestSolution = latestSolution
	state.Checkpoint.RebaseStage = checkpoint.RebaseStagePending
	state.Checkpoint.Regenerations = regenerations

	environment.Logger.Info(selectedLogMessageConstant, zap.String(solutionLogFieldConstant, latestSolution))
	return nil
}

// RebaseSolutionOperation rebases the latest solution onto main, moving every lesson ref along the chain.
type RebaseSolutionOperation struct{}

// Name identifies the operation.
func (operation *RebaseSolutionOperation) Name() string {
	return rebaseOperationNameConstant
}

// Completed reports whether the rebase already finished.
func (operation *RebaseSolutionOperation) Completed(state *workflow.State) bool {
	return state.Checkpoint.RebaseStage == checkpoint.RebaseStageRebased
}

// Execute checks out the latest solution and rebases it with --update-refs.
func (operation *RebaseSolutionOperation) Execute(executionContext context.Context, environment *workflow.Environment, state *workflow.State) error {
	runCheckpoint := state.Checkpoint
	latestSolution := runCheckpoint.LatestSolution

	for runCheckpoint.RebaseStage != checkpoint.RebaseStageRebased {
		switch runCheckpoint.RebaseStage {
		case checkpoint.RebaseStageCheckedOut:
			if cursorError := environment.EnsureCursor(executionContext, state, latestSolution); cursorError != nil {
				return cursorError
			}
			if rebaseError := environment.Mutate(executionContext, execshell.CommandDetails{
				Arguments:   rebaseArguments(runCheckpoint.Interactive, runCheckpoint.MainBranch),
				Interactive: runCheckpoint.Interactive,
			}); rebaseError != nil {
				return rebaseError
			}
			if finishedError := environment.EnsureFinished(executionContext); finishedError != nil {
				return finishedError
			}
			state.MoveCursor(latestSolution)
			runCheckpoint.RebaseStage = checkpoint.RebaseStageRebased
			environment.Logger.Info(rebasedLogMessageConstant, zap.String(solutionLogFieldConstant, latestSolution), zap.String(mainBranchLogFieldConstant, runCheckpoint.MainBranch))
		default:
			if checkoutError := environment.Checkout(executionContext, state, latestSolution); checkoutError != nil {
				return checkoutError
			}
			runCheckpoint.RebaseStage = checkpoint.RebaseStageCheckedOut
		}
		if persistError := environment.Persist(state); persistError != nil {
			return persistError
		}
	}
	return nil
}

func rebaseArguments(interactive bool, mainBranch string) []string {
	arguments := []string{gitRebaseSubcommandConstant}
	if interactive {
		arguments = append(arguments, gitInteractiveFlagConstant)
	}
	return append(arguments, gitUpdateRefsFlagConstant, mainBranch)
}

// RegenerateExercisesOperation rebuilds every exercise branch from its rebased solution.
type RegenerateExercisesOperation struct{}

// Name identifies the operation.
func (operation *RegenerateExercisesOperation) Name() string {
	return regenerateOperationNameConstant
}

// Completed reports whether every exercise was replayed.
func (operation *RegenerateExercisesOperation) Completed(state *workflow.State) bool {
	for _, regeneration := range state.Checkpoint.Regenerations {
		if regeneration.Stage != checkpoint.RegenerationStageReplayed {
			return false
		}
	}
	return true
}

// Execute records, deletes, recreates and replays each exercise branch in order.
func (operation *RegenerateExercisesOperation) Execute(executionContext context.Context, environment *workflow.Environment, state *workflow.State) error {
	for index := range state.Checkpoint.Regenerations {
		regeneration := &state.Checkpoint.Regenerations[index]
		if regenerationError := regenerateExercise(executionContext, environment, state, regeneration); regenerationError != nil {
			return workflow.StepError{Step: RegenerationStepName(regeneration.Exercise), Cause: regenerationError}
		}
	}
	return nil
}

// RegenerationStepName names the step that regenerates an exercise branch.
func RegenerationStepName(exercise string) string {
	return fmt.Sprintf(regenerateStepTemplateConstant, exercise)
}

func regenerateExercise(executionContext context.Context, environment *workflow.Environment, state *workflow.State, regeneration *checkpoint.BranchRegeneration) error {
	for regeneration.Stage != checkpoint.RegenerationStageReplayed {
		switch regeneration.Stage {
		case checkpoint.RegenerationStageRecorded:
			if checkoutError := environment.Checkout(executionContext, state, regeneration.Solution); checkoutError != nil {
				return checkoutError
			}
			regeneration.Stage = checkpoint.RegenerationStageSolutionCheckedOut
		case checkpoint.RegenerationStageSolutionCheckedOut:
			if cursorError := environment.EnsureCursor(executionContext, state, regeneration.Solution); cursorError != nil {
				return cursorError
			}
			if deleteError := environment.Mutate(executionContext, execshell.CommandDetails{
				Arguments: []string{gitBranchSubcommandConstant, gitForceDeleteFlagConstant, regeneration.Exercise},
			}); deleteError != nil {
				return deleteError
			}
			regeneration.Stage = checkpoint.RegenerationStageDeleted
		case checkpoint.RegenerationStageDeleted:
			if cursorError := environment.EnsureCursor(executionContext, state, regeneration.Solution); cursorError != nil {
				return cursorError
			}
			if createError := environment.Mutate(executionContext, execshell.CommandDetails{
				Arguments: []string{gitCheckoutSubcommandConstant, gitCreateBranchFlagConstant, regeneration.Exercise},
			}); createError != nil {
				return createError
			}
			state.MoveCursor(regeneration.Exercise)
			regeneration.Stage = checkpoint.RegenerationStageRecreated
		case checkpoint.RegenerationStageRecreated:
			if cursorError := environment.EnsureCursor(executionContext, state, regeneration.Exercise); cursorError != nil {
				return cursorError
			}
			if replayError := environment.Mutate(executionContext, execshell.CommandDetails{
				Arguments: []string{gitCherryPickSubcommandConstant, regeneration.RecordedCommit},
			}); replayError != nil {
				return replayError
			}
			regeneration.Stage = checkpoint.RegenerationStageReplayed
			environment.Logger.Info(regeneratedLogMessageConstant, zap.String(branchLogFieldConstant, regeneration.Exercise), zap.String(commitLogFieldConstant, regeneration.RecordedCommit))
		default:
			commit, queryError := environment.Query(executionContext, gitRevParseSubcommandConstant, regeneration.Exercise)
			if queryError != nil {
				return fmt.Errorf(recordCommitErrorTemplate, regeneration.Exercise, queryError)
			}
			if len(commit) == 0 {
				return fmt.Errorf(emptyCommitErrorTemplateConstant, regeneration.Exercise)
			}
			regeneration.RecordedCommit = commit
			regeneration.Stage = checkpoint.RegenerationStageRecorded
		}
		if persistError := environment.Persist(state); persistError != nil {
			return persistError
		}
	}
	return nil
}

// CheckoutMainOperation leaves the repository on the main branch.
type CheckoutMainOperation struct{}

// Name identifies the operation.
func (operation *CheckoutMainOperation) Name() string {
	return finalizeOperationNameConstant
}

// Completed reports whether main was checked out.
func (operation *CheckoutMainOperation) Completed(state *workflow.State) bool {
	return state.Checkpoint.Finalized
}

// Execute checks out main.
func (operation *CheckoutMainOperation) Execute(executionContext context.Context, environment *workflow.Environment, state *workflow.State) error {
	if checkoutError := environment.Checkout(executionContext, state, state.Checkpoint.MainBranch); checkoutError != nil {
		return checkoutError
	}
	state.Checkpoint.Finalized = true
	return nil
}
