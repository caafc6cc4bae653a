package coursesync_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/coursesync/internal/checkpoint"
	"github.com/temirov/coursesync/internal/coursesync"
	"github.com/temirov/coursesync/internal/ui"
)

func TestBuildCheckpointSummaryOutcomes(testInstance *testing.T) {
	testCases := []struct {
		name             string
		checkpoint       checkpoint.Checkpoint
		dryRun           bool
		expectedOutcomes []ui.BranchOutcome
		expectedFooter   string
	}{
		{
			name: "rebase paused",
			checkpoint: checkpoint.Checkpoint{
				MainBranch:      "main",
				LatestSolution:  "02-loops-solution",
				RebaseStage:     checkpoint.RebaseStageCheckedOut,
				PausedOperation: checkpoint.PausedOperationRebase,
				FailedStep:      "rebase-solution",
				Regenerations: []checkpoint.BranchRegeneration{
					{Exercise: "01-intro", Stage: checkpoint.RegenerationStagePending},
				},
			},
			expectedOutcomes: []ui.BranchOutcome{
				{Branch: "02-loops-solution", Outcome: ui.OutcomePaused, Detail: "rebase stopped for conflict resolution"},
				{Branch: "01-intro", Outcome: ui.OutcomePending},
			},
			expectedFooter: "Resolve the conflict, run \"git rebase --continue\", then \"coursesync resume\".",
		},
		{
			name: "regeneration failed midway",
			checkpoint: checkpoint.Checkpoint{
				MainBranch:     "main",
				LatestSolution: "02-loops-solution",
				RebaseStage:    checkpoint.RebaseStageRebased,
				FailedStep:     "regenerate:02-loops",
				FailureMessage: "git branch -D 02-loops failed with exit code 1",
				Regenerations: []checkpoint.BranchRegeneration{
					{Exercise: "01-intro", Stage: checkpoint.RegenerationStageReplayed, RecordedCommit: introCommit},
					{Exercise: "02-loops", Stage: checkpoint.RegenerationStageSolutionCheckedOut, RecordedCommit: loopsCommit},
				},
			},
			expectedOutcomes: []ui.BranchOutcome{
				{Branch: "02-loops-solution", Outcome: ui.OutcomeCompleted, Detail: "rebased onto main"},
				{Branch: "01-intro", Outcome: ui.OutcomeCompleted, Detail: "replayed aaaaaaaaaaaa"},
				{Branch: "02-loops", Outcome: ui.OutcomeFailed, Detail: "git branch -D 02-loops failed with exit code 1"},
			},
			expectedFooter: "Fix the problem, then run \"coursesync resume\" or \"coursesync reset\".",
		},
		{
			name: "dry run plans every stage",
			checkpoint: checkpoint.Checkpoint{
				MainBranch:     "main",
				LatestSolution: "01-intro-solution",
				RebaseStage:    checkpoint.RebaseStageRebased,
				Finalized:      true,
				Regenerations: []checkpoint.BranchRegeneration{
					{Exercise: "01-intro", Stage: checkpoint.RegenerationStageReplayed, RecordedCommit: "abc"},
				},
			},
			dryRun: true,
			expectedOutcomes: []ui.BranchOutcome{
				{Branch: "01-intro-solution", Outcome: ui.OutcomePlanned, Detail: "rebased onto main"},
				{Branch: "01-intro", Outcome: ui.OutcomePlanned, Detail: "replayed abc"},
			},
		},
		{
			name: "interrupted between stages",
			checkpoint: checkpoint.Checkpoint{
				MainBranch:     "main",
				LatestSolution: "01-intro-solution",
				RebaseStage:    checkpoint.RebaseStageRebased,
				Regenerations: []checkpoint.BranchRegeneration{
					{Exercise: "01-intro", Stage: checkpoint.RegenerationStageDeleted},
				},
			},
			expectedOutcomes: []ui.BranchOutcome{
				{Branch: "01-intro-solution", Outcome: ui.OutcomeCompleted, Detail: "rebased onto main"},
				{Branch: "01-intro", Outcome: ui.OutcomePending, Detail: "deleted"},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			summary := coursesync.BuildCheckpointSummary("heading", testCase.checkpoint, testCase.dryRun)
			require.Equal(testInstance, "heading", summary.Heading)
			require.Equal(testInstance, testCase.expectedOutcomes, summary.Outcomes)
			require.Equal(testInstance, testCase.expectedFooter, summary.Footer)
		})
	}
}

func TestBuildCheckpointSummaryFields(testInstance *testing.T) {
	summary := coursesync.BuildCheckpointSummary("heading", checkpoint.Checkpoint{
		Repository:      testRepositoryPath,
		LatestSolution:  "02-loops-solution",
		PausedOperation: checkpoint.PausedOperationCherryPick,
		FailedStep:      "regenerate:01-intro",
	}, false)

	labels := make(map[string]string, len(summary.Fields))
	for _, field := range summary.Fields {
		labels[field.Label] = field.Value
	}
	require.Equal(testInstance, testRepositoryPath, labels["Repository"])
	require.Equal(testInstance, "-", labels["Main branch"])
	require.Equal(testInstance, "rebase", labels["Phase"])
	require.Equal(testInstance, "-", labels["Checked out"])
	require.Equal(testInstance, "cherry-pick", labels["Paused on"])
	require.Equal(testInstance, "regenerate:01-intro", labels["Failed step"])
	require.NotContains(testInstance, labels, "Started")
}

func TestShortCommit(testInstance *testing.T) {
	require.Equal(testInstance, "aaaaaaaaaaaa", coursesync.ShortCommit(introCommit))
	require.Equal(testInstance, "abc", coursesync.ShortCommit("abc"))
	require.Empty(testInstance, coursesync.ShortCommit(""))
}
