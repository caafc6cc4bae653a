package workflow

import "github.com/temirov/coursesync/internal/checkpoint"

// State carries the checkpoint a run advances.
type State struct {
	Checkpoint *checkpoint.Checkpoint
	// Resumed marks a run continuing from a stored checkpoint. The checked-out
	// branch is verified against the cursor before the first mutation.
	Resumed bool
}

// NewState wraps a checkpoint for a fresh run.
func NewState(runCheckpoint *checkpoint.Checkpoint) *State {
	if runCheckpoint == nil {
		runCheckpoint = &checkpoint.Checkpoint{}
	}
	return &State{Checkpoint: runCheckpoint}
}

// ResumeState wraps a loaded checkpoint for a resumed run.
func ResumeState(runCheckpoint *checkpoint.Checkpoint) *State {
	state := NewState(runCheckpoint)
	state.Resumed = true
	return state
}

// Started reports whether the run has selected its target branch.
func (state *State) Started() bool {
	return len(state.Checkpoint.LatestSolution) > 0
}

// Cursor returns the branch the run last checked out.
func (state *State) Cursor() string {
	return state.Checkpoint.Cursor
}

// MoveCursor records a checkout.
func (state *State) MoveCursor(branch string) {
	state.Checkpoint.Cursor = branch
}
