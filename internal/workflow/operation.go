package workflow

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/coursesync/internal/checkpoint"
	"github.com/temirov/coursesync/internal/gitrepo"
	"github.com/temirov/coursesync/internal/shared"
)

// Operation is a single resumable step of a run.
type Operation interface {
	Name() string
	// Completed reports whether the checkpoint already records this step as done.
	Completed(state *State) bool
	Execute(executionContext context.Context, environment *Environment, state *State) error
}

// CheckpointPersister stores the checkpoint after every completed stage.
type CheckpointPersister interface {
	Save(checkpoint *checkpoint.Checkpoint) error
}

// Environment exposes shared dependencies for workflow operations.
type Environment struct {
	GitExecutor       shared.GitExecutor
	RepositoryManager *gitrepo.RepositoryManager
	Checkpoints       CheckpointPersister
	Logger            *zap.Logger
	Output            io.Writer
	RepositoryPath    string
	DryRun            bool
}

// Persist saves the checkpoint once the run has selected its target. Dry runs never persist.
func (environment *Environment) Persist(state *State) error {
	if environment.DryRun || environment.Checkpoints == nil || state == nil || !state.Started() {
		return nil
	}
	return environment.Checkpoints.Save(state.Checkpoint)
}
