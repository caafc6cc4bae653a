package flags

import "github.com/spf13/cobra"

const (
	// RepositoryFlagName exposes the repository path flag name.
	RepositoryFlagName = "repository"
	// RepositoryFlagShorthand provides the shorthand for the repository path flag.
	RepositoryFlagShorthand = "C"
	// RepositoryFlagUsage describes the repository path flag purpose.
	RepositoryFlagUsage = "Path to the course repository"
	// RemoteFlagName exposes the shared remote flag name.
	RemoteFlagName = "remote"
	// RemoteFlagUsage describes the shared remote flag purpose.
	RemoteFlagUsage = "Remote that lesson branches are pushed to"
	// MainBranchFlagName exposes the main branch flag name.
	MainBranchFlagName = "main-branch"
	// MainBranchFlagUsage describes the main branch flag purpose.
	MainBranchFlagUsage = "Branch the latest solution is rebased onto"
)

// RepositoryFlagValues stores repository context flag values.
type RepositoryFlagValues struct {
	Repository string
	Remote     string
	MainBranch string
}

// BindRepositoryFlags attaches the repository, remote and main branch flags as persistent flags.
func BindRepositoryFlags(command *cobra.Command, defaults RepositoryFlagValues) *RepositoryFlagValues {
	values := defaults
	if command == nil {
		return &values
	}

	persistentFlagSet := command.PersistentFlags()
	if persistentFlagSet.Lookup(RepositoryFlagName) == nil {
		persistentFlagSet.StringVarP(&values.Repository, RepositoryFlagName, RepositoryFlagShorthand, defaults.Repository, RepositoryFlagUsage)
	}
	if persistentFlagSet.Lookup(RemoteFlagName) == nil {
		persistentFlagSet.StringVar(&values.Remote, RemoteFlagName, defaults.Remote, RemoteFlagUsage)
	}
	if persistentFlagSet.Lookup(MainBranchFlagName) == nil {
		persistentFlagSet.StringVar(&values.MainBranch, MainBranchFlagName, defaults.MainBranch, MainBranchFlagUsage)
	}
	return &values
}
