package checkpoint

import "time"

// FormatVersion identifies the checkpoint file layout.
const FormatVersion = 1

// RebaseStage tracks progress through rebasing the latest solution branch.
type RebaseStage string

// Rebase stages in execution order.
const (
	RebaseStagePending    RebaseStage = "pending"
	RebaseStageCheckedOut RebaseStage = "checked-out"
	RebaseStageRebased    RebaseStage = "rebased"
)

// RegenerationStage tracks progress through regenerating one exercise branch.
type RegenerationStage string

// Regeneration stages in execution order.
const (
	RegenerationStagePending            RegenerationStage = "pending"
	RegenerationStageRecorded           RegenerationStage = "recorded"
	RegenerationStageSolutionCheckedOut RegenerationStage = "solution-checked-out"
	RegenerationStageDeleted            RegenerationStage = "deleted"
	RegenerationStageRecreated          RegenerationStage = "recreated"
	RegenerationStageReplayed           RegenerationStage = "replayed"
)

// PausedOperation names the git operation a run stopped inside of.
type PausedOperation string

// Operations that leave the repository waiting for the operator.
const (
	PausedOperationNone       PausedOperation = ""
	PausedOperationRebase     PausedOperation = "rebase"
	PausedOperationCherryPick PausedOperation = "cherry-pick"
)

// Phase summarizes where a run stands.
type Phase string

// Phases reported by Checkpoint.Phase.
const (
	PhaseRebase     Phase = "rebase"
	PhaseRegenerate Phase = "regenerate"
	PhaseFinalize   Phase = "finalize"
	PhaseCompleted  Phase = "completed"
)

// BranchRegeneration records the regeneration state of one exercise branch.
type BranchRegeneration struct {
	Exercise       string            `yaml:"exercise"`
	Solution       string            `yaml:"solution"`
	Stage          RegenerationStage `yaml:"stage"`
	RecordedCommit string            `yaml:"recorded_commit,omitempty"`
}

// Checkpoint is the persisted state of a rebase-and-regenerate run.
type Checkpoint struct {
	Version         int                  `yaml:"version"`
	Repository      string               `yaml:"repository"`
	Remote          string               `yaml:"remote"`
	MainBranch      string               `yaml:"main_branch"`
	LatestSolution  string               `yaml:"latest_solution"`
	Interactive     bool                 `yaml:"interactive"`
	Branches        []string             `yaml:"branches"`
	RebaseStage     RebaseStage          `yaml:"rebase_stage"`
	Regenerations   []BranchRegeneration `yaml:"regenerations"`
	Finalized       bool                 `yaml:"finalized"`
	Cursor          string               `yaml:"cursor"`
	PausedOperation PausedOperation      `yaml:"paused_operation,omitempty"`
	FailedStep      string               `yaml:"failed_step,omitempty"`
	FailureMessage  string               `yaml:"failure_message,omitempty"`
	StartedAt       time.Time            `yaml:"started_at"`
	UpdatedAt       time.Time            `yaml:"updated_at"`
}

// Phase derives the current phase from the recorded stages.
func (checkpoint Checkpoint) Phase() Phase {
	if checkpoint.RebaseStage != RebaseStageRebased {
		return PhaseRebase
	}
	for _, regeneration := range checkpoint.Regenerations {
		if regeneration.Stage != RegenerationStageReplayed {
			return PhaseRegenerate
		}
	}
	if !checkpoint.Finalized {
		return PhaseFinalize
	}
	return PhaseCompleted
}

// Regeneration returns the regeneration record for the exercise branch.
func (checkpoint *Checkpoint) Regeneration(exercise string) (*BranchRegeneration, bool) {
	for index := range checkpoint.Regenerations {
		if checkpoint.Regenerations[index].Exercise == exercise {
			return &checkpoint.Regenerations[index], true
		}
	}
	return nil, false
}

// ClearFailure removes the recorded failure and pause markers.
func (checkpoint *Checkpoint) ClearFailure() {
	checkpoint.PausedOperation = PausedOperationNone
	checkpoint.FailedStep = ""
	checkpoint.FailureMessage = ""
}
