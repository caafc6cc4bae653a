// Package flags provides helpers for binding standardized flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Print mutating git commands instead of running them"
	// RequireCleanFlagName exposes the clean worktree requirement flag name.
	RequireCleanFlagName = "require-clean"
	// RequireCleanFlagUsage describes the clean worktree requirement flag purpose.
	RequireCleanFlagUsage = "Refuse to run when the working tree has uncommitted changes"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	DryRun       bool
	RequireClean bool
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	DryRun       ExecutionFlagDefinition
	RequireClean ExecutionFlagDefinition
}

// ExecutionFlagValues stores execution flag values.
type ExecutionFlagValues struct {
	DryRun       bool
	RequireClean bool
}

// DefaultExecutionFlagDefinitions enables the dry-run and require-clean toggles under their shared names.
func DefaultExecutionFlagDefinitions() ExecutionFlagDefinitions {
	return ExecutionFlagDefinitions{
		DryRun:       ExecutionFlagDefinition{Name: DryRunFlagName, Usage: DryRunFlagUsage, Enabled: true},
		RequireClean: ExecutionFlagDefinition{Name: RequireCleanFlagName, Usage: RequireCleanFlagUsage, Enabled: true},
	}
}

// BindExecutionFlags attaches execution toggles to the provided command using persistent scope.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) *ExecutionFlagValues {
	values := &ExecutionFlagValues{DryRun: defaults.DryRun, RequireClean: defaults.RequireClean}
	if command == nil {
		return values
	}

	persistentFlagSet := command.PersistentFlags()
	if definitions.DryRun.Enabled {
		AddToggleFlag(persistentFlagSet, &values.DryRun, definitions.DryRun.Name, definitions.DryRun.Shorthand, defaults.DryRun, definitions.DryRun.Usage)
	}
	if definitions.RequireClean.Enabled {
		AddToggleFlag(persistentFlagSet, &values.RequireClean, definitions.RequireClean.Name, definitions.RequireClean.Shorthand, defaults.RequireClean, definitions.RequireClean.Usage)
	}
	return values
}
