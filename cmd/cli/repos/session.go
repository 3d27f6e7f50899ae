package repos

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/temirov/gitfleet/internal/execshell"
	"github.com/temirov/gitfleet/internal/manifest"
	"github.com/temirov/gitfleet/internal/registry"
	"github.com/temirov/gitfleet/internal/ui"
	"github.com/temirov/gitfleet/internal/utils"
	pathutils "github.com/temirov/gitfleet/internal/utils/path"
	"github.com/temirov/gitfleet/internal/vcs"
	"github.com/temirov/gitfleet/internal/vcs/gitcli"
	"github.com/temirov/gitfleet/internal/vcs/gogit"
)

const (
	missingProjectMessageConstant        = "no project configured; pass --project or set project.name"
	invalidConfigurationTemplateConstant = "invalid configuration: %w"
	workspaceRootTemplateConstant        = "resolve workspace root %s: %w"
	shellExecutorTemplateConstant        = "create git executor: %w"
	sessionStartedLogMessageConstant     = "loading repositories"
	logFieldBackendConstant              = "backend"
	logFieldWorkspaceConstant            = "workspace"
	logFieldConfigurationFileConstant    = "config_file"
	logFieldTargetConstant               = "target"
)

// ErrProjectNotConfigured indicates neither the flag nor the configuration names a project.
var ErrProjectNotConfigured = errors.New(missingProjectMessageConstant)

var (
	workspaceHomeDirectoryExpander = pathutils.NewHomeExpander()
	configurationValidator         = validator.New()
	commandContextAccessor         = utils.NewCommandContextAccessor()
)

// ClientFactory constructs the version-control collaborator for a configuration.
type ClientFactory func(configuration Configuration, logger *zap.Logger, humanReadableLogging bool) (vcs.Client, error)

// CommandDependencies are shared by every repository command builder.
type CommandDependencies struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() Configuration
	ClientFactory                ClientFactory
	PrompterFactory              PrompterFactory
}

// NewClient selects the go-git or git CLI backend.
func NewClient(configuration Configuration, logger *zap.Logger, humanReadableLogging bool) (vcs.Client, error) {
	switch configuration.VCS.Backend {
	case BackendGitCLI:
		var observers []execshell.CommandEventObserver
		if humanReadableLogging {
			observers = append(observers, ui.NewConsoleCommandEventLogger(logger))
		}
		executor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), observers...)
		if executorError != nil {
			return nil, fmt.Errorf(shellExecutorTemplateConstant, executorError)
		}
		return gitcli.NewClient(executor, gitcli.AuthorIdentity{Name: configuration.VCS.AuthorName, Email: configuration.VCS.AuthorEmail}), nil
	default:
		return gogit.NewClient(gogit.ClientOptions{
			Logger:      logger,
			Author:      gogit.AuthorIdentity{Name: configuration.VCS.AuthorName, Email: configuration.VCS.AuthorEmail},
			Credentials: gogit.NewCredentialSource(nil),
		}), nil
	}
}

func (dependencies CommandDependencies) configuration() Configuration {
	if dependencies.ConfigurationProvider == nil {
		return DefaultConfiguration().sanitize()
	}
	return dependencies.ConfigurationProvider().sanitize()
}

// loadRegistry validates the configuration and clones or reopens every repository.
func (dependencies CommandDependencies) loadRegistry(executionContext context.Context, configuration Configuration, output io.Writer) (*registry.Registry, error) {
	if len(configuration.Project.Name) == 0 {
		return nil, ErrProjectNotConfigured
	}
	if validationError := configurationValidator.Struct(configuration); validationError != nil {
		return nil, fmt.Errorf(invalidConfigurationTemplateConstant, validationError)
	}

	workspaceRoot, workspaceError := workspaceHomeDirectoryExpander.ExpandAbsolute(configuration.Workspace.Root)
	if workspaceError != nil {
		return nil, fmt.Errorf(workspaceRootTemplateConstant, configuration.Workspace.Root, workspaceError)
	}

	logger := resolveLogger(dependencies.LoggerProvider)
	humanReadableLogging := resolveHumanReadableLogging(dependencies.HumanReadableLoggingProvider)
	clientFactory := dependencies.ClientFactory
	if clientFactory == nil {
		clientFactory = NewClient
	}
	client, clientError := clientFactory(configuration, logger, humanReadableLogging)
	if clientError != nil {
		return nil, clientError
	}

	configurationFilePath, _ := commandContextAccessor.ConfigurationFilePath(executionContext)
	target, _ := commandContextAccessor.TargetRepository(executionContext)
	logger.Debug(
		sessionStartedLogMessageConstant,
		zap.String(logFieldBackendConstant, string(configuration.VCS.Backend)),
		zap.String(logFieldWorkspaceConstant, workspaceRoot),
		zap.String(logFieldConfigurationFileConstant, configurationFilePath),
		zap.String(logFieldTargetConstant, target),
	)

	initializer := registry.NewInitializer(registry.InitializerDependencies{
		Client: client,
		Naming: registry.RemoteNaming{
			BaseURL:       configuration.Remotes.BaseURL,
			ProjectSuffix: configuration.Remotes.ProjectSuffix,
			LibraryPrefix: configuration.Remotes.LibraryPrefix,
			LibrarySuffix: configuration.Remotes.LibrarySuffix,
		},
		Layout: registry.WorkspaceLayout{
			Root:               workspaceRoot,
			ProjectDirectory:   configuration.Workspace.ProjectDirectory,
			LibrariesDirectory: configuration.Workspace.LibrariesDirectory,
		},
		Locator: manifest.Locator{FileName: configuration.Manifest.FileName, Marker: configuration.Manifest.Marker},
		Policy:  configuration.Initialization.ClonePolicy,
		Output:  utils.NewFlushingWriter(output),
		Logger:  logger,
	})
	return initializer.Initialize(executionContext, configuration.Project.Name)
}
