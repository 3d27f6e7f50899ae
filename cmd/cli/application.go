package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gitfleet/cmd/cli/repos"
	"github.com/temirov/gitfleet/internal/utils"
	flagutils "github.com/temirov/gitfleet/internal/utils/flags"
	"github.com/temirov/gitfleet/internal/vcs"
)

const (
	applicationNameConstant                 = "gitfleet"
	applicationShortDescriptionConstant     = "Run git actions across a project and its libraries"
	applicationLongDescriptionConstant      = "gitfleet clones a project repository and every library listed in its manifest, then applies git actions to one repository by name or to all of them."
	versionTemplateConstant                 = "gitfleet version: {{.Version}}\n"
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	projectFlagNameConstant                 = "project"
	projectFlagUsageConstant                = "Project repository name (overrides project.name)."
	workspaceFlagNameConstant               = "workspace"
	workspaceFlagUsageConstant              = "Workspace root directory (overrides workspace.root)."
	backendFlagNameConstant                 = "backend"
	backendFlagDescriptionConstant          = "version control backend (overrides vcs.backend)"
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "GITFLEET"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationProjectFieldConstant       = "project"
	configurationBackendFieldConstant       = "backend"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build commands: %w"
	rootCommandInfoMessageConstant          = "gitfleet CLI executed"
	rootCommandDebugMessageConstant         = "gitfleet CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationDirectoryConstant      = "gitfleet"
)

// Version is reported by --version and is set at build time.
var Version = "dev"

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common              ApplicationCommonConfiguration `mapstructure:"common"`
	repos.Configuration `mapstructure:",squash"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  utils.LogLevel  `mapstructure:"log_level"`
	LogFormat utils.LogFormat `mapstructure:"log_format"`
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
	projectFlagValue       string
	workspaceFlagValue     string
	backendFlagValue       string
	commandContextAccessor utils.CommandContextAccessor
	clientFactory          repos.ClientFactory
	prompterFactory        repos.PrompterFactory
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())
	configurationLoader.AddDecodeHooks(append(repos.DecodeHooks(), loggingDecodeHooks()...)...)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command, arguments)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetVersionTemplate(versionTemplateConstant)
	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.projectFlagValue, projectFlagNameConstant, "", projectFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.workspaceFlagValue, workspaceFlagNameConstant, "", workspaceFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.backendFlagValue,
		backendFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(repos.BackendGoGit), repos.SupportedBackends, backendFlagDescriptionConstant),
	)

	repositoryCommands, buildError := repos.BuildCommands(repos.CommandDependencies{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() repos.Configuration {
			return application.configuration.Configuration
		},
		ClientFactory: func(configuration repos.Configuration, logger *zap.Logger, humanReadableLogging bool) (vcs.Client, error) {
			if application.clientFactory != nil {
				return application.clientFactory(configuration, logger, humanReadableLogging)
			}
			return repos.NewClient(configuration, logger, humanReadableLogging)
		},
		PrompterFactory: func(command *cobra.Command) repos.Prompter {
			if application.prompterFactory != nil {
				return application.prompterFactory(command)
			}
			return nil
		},
	})
	if buildError == nil {
		cobraCommand.AddCommand(repositoryCommands...)
	} else {
		cobraCommand.RunE = func(*cobra.Command, []string) error {
			return fmt.Errorf(commandBuildErrorTemplateConstant, buildError)
		}
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command, arguments []string) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range repos.DefaultConfigurationValues() {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if overrideError := application.applyFlagOverrides(command); overrideError != nil {
		return overrideError
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(application.configuration.Common.LogLevel, application.configuration.Common.LogFormat)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, string(application.configuration.Common.LogLevel)),
		zap.String(configurationLogFormatFieldConstant, string(application.configuration.Common.LogFormat)),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationProjectFieldConstant, application.configuration.Project.Name),
		zap.String(configurationBackendFieldConstant, string(application.configuration.VCS.Backend)),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		if len(arguments) > 0 {
			updatedContext = application.commandContextAccessor.WithTargetRepository(updatedContext, arguments[0])
		}
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) applyFlagOverrides(command *cobra.Command) error {
	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		logLevel, parseError := utils.ParseLogLevel(application.logLevelFlagValue)
		if parseError != nil {
			return parseError
		}
		application.configuration.Common.LogLevel = logLevel
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		logFormat, parseError := utils.ParseLogFormat(application.logFormatFlagValue)
		if parseError != nil {
			return parseError
		}
		application.configuration.Common.LogFormat = logFormat
	}

	if application.persistentFlagChanged(command, projectFlagNameConstant) {
		application.configuration.Project.Name = application.projectFlagValue
	}

	if application.persistentFlagChanged(command, workspaceFlagNameConstant) {
		application.configuration.Workspace.Root = application.workspaceFlagValue
	}

	if application.persistentFlagChanged(command, backendFlagNameConstant) {
		normalizedBackend, choiceError := flagutils.NormalizeChoice(backendFlagNameConstant, application.backendFlagValue, repos.SupportedBackends)
		if choiceError != nil {
			return choiceError
		}
		application.configuration.VCS.Backend = repos.Backend(normalizedBackend)
	}

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	return application.configuration.Common.LogFormat == utils.LogFormatConsole
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
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

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, userConfigurationDirectoryConstant))
	}
	return searchPaths
}

func loggingDecodeHooks() []mapstructure.DecodeHookFunc {
	return []mapstructure.DecodeHookFunc{
		mapstructure.DecodeHookFuncType(func(sourceType reflect.Type, destinationType reflect.Type, data any) (any, error) {
			if sourceType.Kind() != reflect.String {
				return data, nil
			}
			rawValue := strings.TrimSpace(reflect.ValueOf(data).String())
			switch destinationType {
			case reflect.TypeOf(utils.LogLevel("")):
				return utils.ParseLogLevel(rawValue)
			case reflect.TypeOf(utils.LogFormat("")):
				return utils.ParseLogFormat(rawValue)
			default:
				return data, nil
			}
		}),
	}
}
