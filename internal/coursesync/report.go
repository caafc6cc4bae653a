package coursesync

import (
	"fmt"

	"github.com/temirov/coursesync/internal/checkpoint"
	"github.com/temirov/coursesync/internal/ui"
	"github.com/temirov/coursesync/internal/workflow"
)

const (
	runHeadingConstant               = "Lesson branches regenerated"
	runPlannedHeadingConstant        = "Planned regeneration (dry run)"
	runPausedHeadingConstant         = "Run paused"
	runFailedHeadingConstant         = "Run stopped"
	forcePushHeadingConstant         = "Lesson branches force-pushed"
	forcePushPlannedHeadingConstant  = "Planned force pushes (dry run)"
	statusHeadingConstant            = "Unfinished run"
	statusIdleHeadingConstant        = "No unfinished run"
	resetHeadingConstant             = "Checkpoint discarded"
	resetPlannedHeadingConstant      = "Checkpoint would be discarded (dry run)"
	summaryRepositoryLabelConstant   = "Repository"
	summaryRemoteLabelConstant       = "Remote"
	summaryMainBranchLabelConstant   = "Main branch"
	summaryLatestSolutionLabel       = "Latest solution"
	summaryPhaseLabelConstant        = "Phase"
	summaryCursorLabelConstant       = "Checked out"
	summaryPausedLabelConstant       = "Paused on"
	summaryFailedStepLabelConstant   = "Failed step"
	summaryStartedLabelConstant      = "Started"
	summaryUpdatedLabelConstant      = "Updated"
	summaryGitOperationLabelConstant = "Git operation in progress"
	summaryCheckpointLabelConstant   = "Checkpoint"
	rebasedDetailTemplateConstant    = "rebased onto %s"
	replayedDetailTemplateConstant   = "replayed %s"
	pausedRebaseDetailConstant       = "rebase stopped for conflict resolution"
	pausedCherryPickDetailTemplate   = "cherry-pick of %s stopped for conflict resolution"
	exitCodeDetailTemplateConstant   = "exit code %d"
	pausedFooterTemplateConstant     = "Resolve the conflict, run \"git %s --continue\", then \"coursesync resume\"."
	failedFooterConstant             = "Fix the problem, then run \"coursesync resume\" or \"coursesync reset\"."
	shortCommitLengthConstant        = 12
	summaryTimestampLayoutConstant   = checkpointTimestampLayoutConstant
	summaryUnknownValuePlaceholder   = "-"
)

func runHeading(dryRun bool, executionError error) string {
	switch {
	case executionError != nil && workflow.PausedOperationFor(executionError) != checkpoint.PausedOperationNone:
		return runPausedHeadingConstant
	case executionError != nil:
		return runFailedHeadingConstant
	case dryRun:
		return runPlannedHeadingConstant
	default:
		return runHeadingConstant
	}
}

func forcePushHeading(dryRun bool) string {
	if dryRun {
		return forcePushPlannedHeadingConstant
	}
	return forcePushHeadingConstant
}

// BuildCheckpointSummary renders a checkpoint as a run summary. Dry runs report completed stages as planned.
func BuildCheckpointSummary(heading string, runCheckpoint checkpoint.Checkpoint, dryRun bool) ui.RunSummary {
	fields := []ui.SummaryField{
		{Label: summaryRepositoryLabelConstant, Value: valueOrPlaceholder(runCheckpoint.Repository)},
		{Label: summaryMainBranchLabelConstant, Value: valueOrPlaceholder(runCheckpoint.MainBranch)},
		{Label: summaryLatestSolutionLabel, Value: valueOrPlaceholder(runCheckpoint.LatestSolution)},
		{Label: summaryPhaseLabelConstant, Value: string(runCheckpoint.Phase())},
		{Label: summaryCursorLabelConstant, Value: valueOrPlaceholder(runCheckpoint.Cursor)},
	}
	if runCheckpoint.PausedOperation != checkpoint.PausedOperationNone {
		fields = append(fields, ui.SummaryField{Label: summaryPausedLabelConstant, Value: string(runCheckpoint.PausedOperation)})
	}
	if len(runCheckpoint.FailedStep) > 0 {
		fields = append(fields, ui.SummaryField{Label: summaryFailedStepLabelConstant, Value: runCheckpoint.FailedStep})
	}
	if !runCheckpoint.StartedAt.IsZero() {
		fields = append(fields,
			ui.SummaryField{Label: summaryStartedLabelConstant, Value: runCheckpoint.StartedAt.Local().Format(summaryTimestampLayoutConstant)},
			ui.SummaryField{Label: summaryUpdatedLabelConstant, Value: runCheckpoint.UpdatedAt.Local().Format(summaryTimestampLayoutConstant)},
		)
	}

	outcomes := make([]ui.BranchOutcome, 0, len(runCheckpoint.Regenerations)+1)
	outcomes = append(outcomes, rebaseOutcome(runCheckpoint, dryRun))
	for _, regeneration := range runCheckpoint.Regenerations {
		outcomes = append(outcomes, regenerationOutcome(runCheckpoint, regeneration, dryRun))
	}

	return ui.RunSummary{
		Heading:  heading,
		Fields:   fields,
		Outcomes: outcomes,
		Footer:   summaryFooter(runCheckpoint),
	}
}

func rebaseOutcome(runCheckpoint checkpoint.Checkpoint, dryRun bool) ui.BranchOutcome {
	outcome := ui.BranchOutcome{Branch: runCheckpoint.LatestSolution}
	switch {
	case runCheckpoint.RebaseStage == checkpoint.RebaseStageRebased:
		outcome.Outcome = completedOutcome(dryRun)
		outcome.Detail = fmt.Sprintf(rebasedDetailTemplateConstant, runCheckpoint.MainBranch)
	case runCheckpoint.PausedOperation == checkpoint.PausedOperationRebase:
		outcome.Outcome = ui.OutcomePaused
		outcome.Detail = pausedRebaseDetailConstant
	case runCheckpoint.FailedStep == rebaseOperationNameConstant:
		outcome.Outcome = ui.OutcomeFailed
		outcome.Detail = runCheckpoint.FailureMessage
	default:
		outcome.Outcome = ui.OutcomePending
		outcome.Detail = stageDetail(string(runCheckpoint.RebaseStage), string(checkpoint.RebaseStagePending))
	}
	return outcome
}

func regenerationOutcome(runCheckpoint checkpoint.Checkpoint, regeneration checkpoint.BranchRegeneration, dryRun bool) ui.BranchOutcome {
	outcome := ui.BranchOutcome{Branch: regeneration.Exercise}
	failedHere := runCheckpoint.FailedStep == RegenerationStepName(regeneration.Exercise)
	switch {
	case regeneration.Stage == checkpoint.RegenerationStageReplayed:
		outcome.Outcome = completedOutcome(dryRun)
		outcome.Detail = fmt.Sprintf(replayedDetailTemplateConstant, ShortCommit(regeneration.RecordedCommit))
	case failedHere && runCheckpoint.PausedOperation == checkpoint.PausedOperationCherryPick:
		outcome.Outcome = ui.OutcomePaused
		outcome.Detail = fmt.Sprintf(pausedCherryPickDetailTemplate, ShortCommit(regeneration.RecordedCommit))
	case failedHere:
		outcome.Outcome = ui.OutcomeFailed
		outcome.Detail = runCheckpoint.FailureMessage
	default:
		outcome.Outcome = ui.OutcomePending
		outcome.Detail = stageDetail(string(regeneration.Stage), string(checkpoint.RegenerationStagePending))
	}
	return outcome
}

func summaryFooter(runCheckpoint checkpoint.Checkpoint) string {
	if runCheckpoint.PausedOperation != checkpoint.PausedOperationNone {
		return fmt.Sprintf(pausedFooterTemplateConstant, runCheckpoint.PausedOperation)
	}
	if len(runCheckpoint.FailedStep) > 0 {
		return failedFooterConstant
	}
	return ""
}

func completedOutcome(dryRun bool) ui.Outcome {
	if dryRun {
		return ui.OutcomePlanned
	}
	return ui.OutcomeCompleted
}

func stageDetail(stage string, pendingStage string) string {
	if stage == pendingStage || len(stage) == 0 {
		return ""
	}
	return stage
}

// ShortCommit abbreviates a commit id for display.
func ShortCommit(commit string) string {
	if len(commit) <= shortCommitLengthConstant {
		return commit
	}
	return commit[:shortCommitLengthConstant]
}

func valueOrPlaceholder(value string) string {
	if len(value) == 0 {
		return summaryUnknownValuePlaceholder
	}
	return value
}
