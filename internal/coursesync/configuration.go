package coursesync

import (
	"strings"

	"github.com/temirov/coursesync/internal/shared"
)

const (
	defaultRepositoryPathConstant = "."
	defaultGitHubBaseURLConstant  = ""
	syncConfigurationKeyConstant  = "sync"
	rebaseConfigurationKey        = "rebase"
	githubConfigurationKey        = "github"
)

// Configuration captures the persisted settings of a synchronization run.
type Configuration struct {
	Sync   SyncConfiguration   `mapstructure:"sync"`
	Rebase RebaseConfiguration `mapstructure:"rebase"`
	GitHub GitHubConfiguration `mapstructure:"github"`
}

// SyncConfiguration describes the repository and branches a run operates on.
type SyncConfiguration struct {
	Repository   string `mapstructure:"repository"`
	Remote       string `mapstructure:"remote"`
	MainBranch   string `mapstructure:"main_branch"`
	DryRun       bool   `mapstructure:"dry_run"`
	RequireClean bool   `mapstructure:"require_clean"`
}

// RebaseConfiguration controls how the latest solution branch is rebased.
type RebaseConfiguration struct {
	Interactive bool `mapstructure:"interactive"`
}

// GitHubConfiguration controls the branch protection preflight before force pushes.
type GitHubConfiguration struct {
	CheckProtection bool   `mapstructure:"check_protection"`
	Token           string `mapstructure:"token"`
	BaseURL         string `mapstructure:"base_url"`
}

// DefaultConfiguration returns the baseline settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		Sync: SyncConfiguration{
			Repository: defaultRepositoryPathConstant,
			Remote:     shared.OriginRemoteNameConstant,
			MainBranch: shared.MainBranchNameConstant,
		},
		Rebase: RebaseConfiguration{Interactive: true},
		GitHub: GitHubConfiguration{BaseURL: defaultGitHubBaseURLConstant},
	}
}

// DefaultConfigurationValues flattens the defaults into viper keys.
func DefaultConfigurationValues() map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		syncConfigurationKeyConstant + ".repository":    defaults.Sync.Repository,
		syncConfigurationKeyConstant + ".remote":        defaults.Sync.Remote,
		syncConfigurationKeyConstant + ".main_branch":   defaults.Sync.MainBranch,
		syncConfigurationKeyConstant + ".dry_run":       defaults.Sync.DryRun,
		syncConfigurationKeyConstant + ".require_clean": defaults.Sync.RequireClean,
		rebaseConfigurationKey + ".interactive":         defaults.Rebase.Interactive,
		githubConfigurationKey + ".check_protection":    defaults.GitHub.CheckProtection,
		githubConfigurationKey + ".token":               defaults.GitHub.Token,
		githubConfigurationKey + ".base_url":            defaults.GitHub.BaseURL,
	}
}

// Sanitize trims values and restores defaults for blank names.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.Sync.Repository = strings.TrimSpace(configuration.Sync.Repository)
	if len(sanitized.Sync.Repository) == 0 {
		sanitized.Sync.Repository = defaults.Sync.Repository
	}
	sanitized.Sync.Remote = strings.TrimSpace(configuration.Sync.Remote)
	if len(sanitized.Sync.Remote) == 0 {
		sanitized.Sync.Remote = defaults.Sync.Remote
	}
	sanitized.Sync.MainBranch = strings.TrimSpace(configuration.Sync.MainBranch)
	if len(sanitized.Sync.MainBranch) == 0 {
		sanitized.Sync.MainBranch = defaults.Sync.MainBranch
	}
	sanitized.GitHub.Token = strings.TrimSpace(configuration.GitHub.Token)
	sanitized.GitHub.BaseURL = strings.TrimSpace(configuration.GitHub.BaseURL)

	return sanitized
}
