package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestBindRepositoryFlagsUsesDefaultsAndParsesValues(t *testing.T) {
	command := &cobra.Command{}

	values := BindRepositoryFlags(command, RepositoryFlagValues{Repository: ".", Remote: "origin", MainBranch: "main"})

	require.NotNil(t, values)
	require.Equal(t, ".", values.Repository)
	require.Equal(t, "origin", values.Remote)
	require.Equal(t, "main", values.MainBranch)

	parseError := command.ParseFlags([]string{"-C", "/workspace/course", "--remote", "upstream", "--main-branch", "trunk"})
	require.NoError(t, parseError)
	require.Equal(t, "/workspace/course", values.Repository)
	require.Equal(t, "upstream", values.Remote)
	require.Equal(t, "trunk", values.MainBranch)
}

func TestBindExecutionFlagsRegistersToggles(t *testing.T) {
	command := &cobra.Command{}

	values := BindExecutionFlags(command, ExecutionDefaults{RequireClean: true}, DefaultExecutionFlagDefinitions())

	parseError := command.ParseFlags(NormalizeToggleArguments([]string{"--dry-run", "--require-clean", "no"}))
	require.NoError(t, parseError)
	require.True(t, values.DryRun)
	require.False(t, values.RequireClean)
}
