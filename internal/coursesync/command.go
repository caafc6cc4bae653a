package coursesync

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/coursesync/internal/execshell"
	"github.com/temirov/coursesync/internal/githubapi"
	"github.com/temirov/coursesync/internal/shared"
	"github.com/temirov/coursesync/internal/ui"
	"github.com/temirov/coursesync/internal/utils"
	pathutils "github.com/temirov/coursesync/internal/utils/path"
)

const (
	discoverCommandUseConstant        = "discover"
	discoverCommandShortConstant      = "List lesson branches"
	discoverCommandLongConstant       = "discover lists local and remote-tracking branches whose ref path contains a two-digit lesson prefix, stripped of remote prefixes, deduplicated and sorted."
	statusCommandUseConstant          = "status"
	statusCommandShortConstant        = "Show the unfinished run, if any"
	statusCommandLongConstant         = "status prints the checkpoint of an unfinished rebase-and-regenerate run: its phase, the checked-out branch and the stage of every exercise branch."
	resumeCommandUseConstant          = "resume"
	resumeCommandShortConstant        = "Continue an unfinished run"
	resumeCommandLongConstant         = "resume continues a rebase-and-regenerate run after a conflict. Finish the paused rebase or cherry-pick with git first; resume treats it as done and runs the remaining steps."
	resetCommandUseConstant           = "reset"
	resetCommandShortConstant         = "Discard the unfinished run"
	resetCommandLongConstant          = "reset deletes the checkpoint of an unfinished run. Branches are left exactly as they are."
	protectionCheckerErrorLogMessage  = "branch protection checker unavailable"
	protectionTokenMissingLogMessage  = "branch protection check requested without a GitHub token"
	syncStartedLogMessageConstant     = "lesson branch synchronization started"
	modeLogFieldConstant              = "mode"
	repositoryLogFieldConstant        = "repository"
	dryRunLogFieldConstant            = "dry_run"
	protectionCheckerErrorLogFieldKey = "error"
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the synchronization commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  shared.GitExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() Configuration
	ProtectionChecker            ProtectionChecker
	EnvironmentLookup            githubapi.EnvironmentLookup
}

// Build constructs the discover, status, resume and reset subcommands.
func (builder *CommandBuilder) Build() ([]*cobra.Command, error) {
	discoverCommand := &cobra.Command{
		Use:   discoverCommandUseConstant,
		Short: discoverCommandShortConstant,
		Long:  discoverCommandLongConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return builder.withService(command, func(executionContext context.Context, service *Service, options Options) error {
				return service.PrintBranches(executionContext, options)
			})
		},
	}
	statusCommand := &cobra.Command{
		Use:   statusCommandUseConstant,
		Short: statusCommandShortConstant,
		Long:  statusCommandLongConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return builder.withService(command, func(executionContext context.Context, service *Service, options Options) error {
				return service.Status(executionContext, options)
			})
		},
	}
	resumeCommand := &cobra.Command{
		Use:   resumeCommandUseConstant,
		Short: resumeCommandShortConstant,
		Long:  resumeCommandLongConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return builder.withService(command, func(executionContext context.Context, service *Service, options Options) error {
				return service.Resume(executionContext, options)
			})
		},
	}
	resetCommand := &cobra.Command{
		Use:   resetCommandUseConstant,
		Short: resetCommandShortConstant,
		Long:  resetCommandLongConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return builder.withService(command, func(executionContext context.Context, service *Service, options Options) error {
				return service.Reset(executionContext, options)
			})
		},
	}
	return []*cobra.Command{discoverCommand, statusCommand, resumeCommand, resetCommand}, nil
}

// RunSync executes the mode selected by the first positional argument.
func (builder *CommandBuilder) RunSync(command *cobra.Command, arguments []string) error {
	mode := ResolveMode(arguments)
	return builder.withService(command, func(executionContext context.Context, service *Service, options Options) error {
		builder.resolveLogger().Info(
			syncStartedLogMessageConstant,
			zap.String(modeLogFieldConstant, string(mode)),
			zap.String(repositoryLogFieldConstant, options.RepositoryPath),
			zap.Bool(dryRunLogFieldConstant, options.DryRun),
		)
		return service.Run(executionContext, mode, options)
	})
}

func (builder *CommandBuilder) withService(command *cobra.Command, action func(context.Context, *Service, Options) error) error {
	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	configuration := builder.resolveConfiguration()
	options, optionsError := builder.resolveOptions(executionContext, configuration)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := builder.resolveGitExecutor(logger)
	if executorError != nil {
		return executorError
	}

	output := command.OutOrStdout()
	colorEnabled := false
	if outputFile, isFile := output.(*os.File); isFile {
		colorEnabled = ui.IsTerminal(outputFile)
	}

	service, serviceError := NewService(ServiceDependencies{
		GitExecutor:       gitExecutor,
		ProtectionChecker: builder.resolveProtectionChecker(executionContext, configuration, logger),
		Logger:            logger,
		Output:            output,
		ColorEnabled:      colorEnabled,
	})
	if serviceError != nil {
		return serviceError
	}
	return action(executionContext, service, options)
}

func (builder *CommandBuilder) resolveOptions(executionContext context.Context, configuration Configuration) (Options, error) {
	repositoryPath, pathError := pathutils.NewHomeExpander().ResolveAbsolute(configuration.Sync.Repository)
	if pathError != nil {
		return Options{}, pathError
	}

	options := Options{
		RepositoryPath:  repositoryPath,
		Remote:          configuration.Sync.Remote,
		MainBranch:      configuration.Sync.MainBranch,
		Interactive:     configuration.Rebase.Interactive,
		DryRun:          configuration.Sync.DryRun,
		RequireClean:    configuration.Sync.RequireClean,
		CheckProtection: configuration.GitHub.CheckProtection,
	}

	if executionFlags, available := utils.NewCommandContextAccessor().ExecutionFlags(executionContext); available {
		options.DryRun = executionFlags.DryRun
		options.RequireClean = executionFlags.RequireClean
	}
	return options, nil
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger) (shared.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	executorOptions := make([]execshell.ShellExecutorOption, 0, 1)
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(logger)))
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), executorOptions...)
}

func (builder *CommandBuilder) resolveProtectionChecker(executionContext context.Context, configuration Configuration, logger *zap.Logger) ProtectionChecker {
	if builder.ProtectionChecker != nil {
		return builder.ProtectionChecker
	}
	if !configuration.GitHub.CheckProtection {
		return nil
	}

	token, found := githubapi.ResolveToken(configuration.GitHub.Token, builder.EnvironmentLookup)
	if !found {
		logger.Warn(protectionTokenMissingLogMessage)
		return nil
	}
	checker, checkerError := githubapi.NewProtectionChecker(executionContext, githubapi.ClientOptions{
		Token:   token,
		BaseURL: configuration.GitHub.BaseURL,
		Logger:  logger,
	})
	if checkerError != nil {
		logger.Warn(protectionCheckerErrorLogMessage, zap.String(protectionCheckerErrorLogFieldKey, checkerError.Error()))
		return nil
	}
	return checker
}
