package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/coursesync/internal/coursesync"
	"github.com/temirov/coursesync/internal/shared"
	"github.com/temirov/coursesync/internal/utils"
	flagutils "github.com/temirov/coursesync/internal/utils/flags"
)

const (
	applicationNameConstant                 = "coursesync"
	applicationUseConstant                  = "coursesync [force]"
	applicationShortDescriptionConstant     = "Keep lesson branches of a course repository in sync"
	applicationLongDescriptionConstant      = "coursesync rebases the chain of NN-topic-solution branches onto main and regenerates every NN-topic exercise branch from its solution. Pass \"force\" (or -f) to force-push every lesson branch with a lease instead."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	interactiveFlagNameConstant             = "interactive"
	interactiveFlagUsageConstant            = "Run the solution rebase as an interactive rebase"
	checkProtectionFlagNameConstant         = "check-protection"
	checkProtectionFlagUsageConstant        = "Refuse to force-push branches GitHub reports as protected"
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "COURSESYNC"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	subcommandBuildErrorTemplateConstant    = "unable to build subcommands: %w"
)

// Version is reported by --version. Release builds override it with -ldflags.
var Version = "dev"

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common                   ApplicationCommonConfiguration `mapstructure:"common"`
	coursesync.Configuration `mapstructure:",squash"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	interactiveFlagValue   bool
	checkProtectionValue   bool
	repositoryFlags        *flagutils.RepositoryFlagValues
	executionFlags         *flagutils.ExecutionFlagValues
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	return newApplication(nil)
}

func newApplication(gitExecutor shared.GitExecutor) *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		utils.DefaultConfigurationSearchPaths(applicationNameConstant),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	builder := &coursesync.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		GitExecutor:                  gitExecutor,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() coursesync.Configuration {
			return application.configuration.Configuration
		},
		EnvironmentLookup: os.LookupEnv,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationUseConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: builder.RunSync,
	}

	cobraCommand.SetContext(context.Background())
	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	flagutils.AddChoiceFlag(persistentFlags, &application.logLevelFlagValue, logLevelFlagNameConstant, string(utils.LogLevelInfo), []string{
		string(utils.LogLevelDebug),
		string(utils.LogLevelInfo),
		string(utils.LogLevelWarn),
		string(utils.LogLevelError),
	}, logLevelFlagUsageConstant)
	flagutils.AddChoiceFlag(persistentFlags, &application.logFormatFlagValue, logFormatFlagNameConstant, string(utils.LogFormatConsole), []string{
		string(utils.LogFormatStructured),
		string(utils.LogFormatConsole),
	}, logFormatFlagUsageConstant)

	defaults := coursesync.DefaultConfiguration()
	application.repositoryFlags = flagutils.BindRepositoryFlags(cobraCommand, flagutils.RepositoryFlagValues{
		Repository: defaults.Sync.Repository,
		Remote:     defaults.Sync.Remote,
		MainBranch: defaults.Sync.MainBranch,
	})
	application.executionFlags = flagutils.BindExecutionFlags(cobraCommand, flagutils.ExecutionDefaults{}, flagutils.DefaultExecutionFlagDefinitions())
	flagutils.AddToggleFlag(persistentFlags, &application.interactiveFlagValue, interactiveFlagNameConstant, "", defaults.Rebase.Interactive, interactiveFlagUsageConstant)
	flagutils.AddToggleFlag(persistentFlags, &application.checkProtectionValue, checkProtectionFlagNameConstant, "", defaults.GitHub.CheckProtection, checkProtectionFlagUsageConstant)

	subcommands, buildError := builder.Build()
	if buildError == nil {
		cobraCommand.AddCommand(subcommands...)
	} else {
		cobraCommand.RunE = func(*cobra.Command, []string) error {
			return fmt.Errorf(subcommandBuildErrorTemplateConstant, buildError)
		}
	}

	application.rootCommand = cobraCommand
	return application
}

// Execute runs the command hierarchy with the supplied arguments through fang and flushes the logger.
// Interrupts cancel the running git command.
func (application *Application) Execute(arguments []string) error {
	executionContext, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application.rootCommand.SetArgs(prepareArguments(arguments))
	executionError := fang.Execute(executionContext, application.rootCommand, fang.WithVersion(Version))
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes it with the process arguments.
func Execute() error {
	return NewApplication().Execute(os.Args[1:])
}

// prepareArguments joins toggle values onto their flags and turns a leading force token into the force mode argument.
func prepareArguments(arguments []string) []string {
	return coursesync.NormalizeModeArguments(flagutils.NormalizeToggleArguments(arguments))
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range coursesync.DefaultConfigurationValues() {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration
	application.applyFlagOverrides(command)
	application.configuration.Configuration = application.configuration.Configuration.Sanitize()

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(command.Context(), application.configurationMetadata.ConfigFileUsed)
		updatedContext = application.commandContextAccessor.WithExecutionFlags(updatedContext, utils.ExecutionFlags{
			DryRun:       application.configuration.Sync.DryRun,
			RequireClean: application.configuration.Sync.RequireClean,
		})
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// applyFlagOverrides lets explicitly set flags win over configuration files and environment variables.
func (application *Application) applyFlagOverrides(command *cobra.Command) {
	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if application.persistentFlagChanged(command, flagutils.RepositoryFlagName) {
		application.configuration.Sync.Repository = application.repositoryFlags.Repository
	}
	if application.persistentFlagChanged(command, flagutils.RemoteFlagName) {
		application.configuration.Sync.Remote = application.repositoryFlags.Remote
	}
	if application.persistentFlagChanged(command, flagutils.MainBranchFlagName) {
		application.configuration.Sync.MainBranch = application.repositoryFlags.MainBranch
	}
	if application.persistentFlagChanged(command, flagutils.DryRunFlagName) {
		application.configuration.Sync.DryRun = application.executionFlags.DryRun
	}
	if application.persistentFlagChanged(command, flagutils.RequireCleanFlagName) {
		application.configuration.Sync.RequireClean = application.executionFlags.RequireClean
	}
	if application.persistentFlagChanged(command, interactiveFlagNameConstant) {
		application.configuration.Rebase.Interactive = application.interactiveFlagValue
	}
	if application.persistentFlagChanged(command, checkProtectionFlagNameConstant) {
		application.configuration.GitHub.CheckProtection = application.checkProtectionValue
	}
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}
