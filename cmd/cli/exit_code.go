package cli

import (
	"context"
	"errors"

	"github.com/temirov/coursesync/internal/execshell"
)

const (
	exitCodeSuccessConstant     = 0
	exitCodeFailureConstant     = 1
	exitCodeInterruptedConstant = 130
)

// ExitCode maps an execution error to a process exit status. A failing git command passes its own
// exit code through.
func ExitCode(executionError error) int {
	if executionError == nil {
		return exitCodeSuccessConstant
	}
	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) && commandFailure.ExitCode() > 0 {
		return commandFailure.ExitCode()
	}
	if errors.Is(executionError, context.Canceled) {
		return exitCodeInterruptedConstant
	}
	return exitCodeFailureConstant
}
