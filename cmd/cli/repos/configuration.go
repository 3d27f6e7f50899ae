package repos

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/temirov/gitfleet/internal/dispatch"
	"github.com/temirov/gitfleet/internal/manifest"
	"github.com/temirov/gitfleet/internal/registry"
)

const (
	projectConfigurationKeyConstant        = "project"
	remotesConfigurationKeyConstant        = "remotes"
	workspaceConfigurationKeyConstant      = "workspace"
	manifestConfigurationKeyConstant       = "manifest"
	initializationConfigurationKeyConstant = "initialization"
	vcsConfigurationKeyConstant            = "vcs"
	guardConfigurationKeyConstant          = "guard"
	configurationKeySeparatorConstant      = "."

	defaultBaseURLConstant            = "https://github.com/DigicoUK/"
	defaultLibraryPrefixConstant      = "firmware_library_"
	defaultLibrarySuffixConstant      = ".git"
	defaultWorkspaceRootConstant      = "~/gitfleet"
	defaultProjectDirectoryConstant   = "project"
	defaultLibrariesDirectoryConstant = "Libs"

	unsupportedBackendTemplateConstant = "unsupported version control backend: %s"
)

// Backend selects the version-control collaborator implementation.
type Backend string

// Supported backends.
const (
	BackendGoGit  Backend = "go-git"
	BackendGitCLI Backend = "git"
)

// SupportedBackends lists the accepted vcs.backend values.
var SupportedBackends = []string{string(BackendGoGit), string(BackendGitCLI)}

// ParseBackend validates a configured backend name. An empty value selects BackendGoGit.
func ParseBackend(rawValue string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(rawValue))) {
	case "", BackendGoGit:
		return BackendGoGit, nil
	case BackendGitCLI:
		return BackendGitCLI, nil
	default:
		return "", fmt.Errorf(unsupportedBackendTemplateConstant, rawValue)
	}
}

// Configuration captures every setting the repository commands read.
type Configuration struct {
	Project        ProjectConfiguration        `mapstructure:"project"`
	Remotes        RemotesConfiguration        `mapstructure:"remotes"`
	Workspace      WorkspaceConfiguration      `mapstructure:"workspace"`
	Manifest       ManifestConfiguration       `mapstructure:"manifest"`
	Initialization InitializationConfiguration `mapstructure:"initialization"`
	VCS            VCSConfiguration            `mapstructure:"vcs"`
	Guard          GuardConfiguration          `mapstructure:"guard"`
}

// ProjectConfiguration names the project repository.
type ProjectConfiguration struct {
	Name string `mapstructure:"name" validate:"required"`
}

// RemotesConfiguration describes how clone URLs are derived from names.
type RemotesConfiguration struct {
	BaseURL       string `mapstructure:"base_url"       validate:"required"`
	ProjectSuffix string `mapstructure:"project_suffix"`
	LibraryPrefix string `mapstructure:"library_prefix"`
	LibrarySuffix string `mapstructure:"library_suffix"`
}

// WorkspaceConfiguration describes where working copies live.
type WorkspaceConfiguration struct {
	Root               string `mapstructure:"root"                validate:"required"`
	ProjectDirectory   string `mapstructure:"project_directory"   validate:"required,excludesall=/\\"`
	LibrariesDirectory string `mapstructure:"libraries_directory" validate:"required,excludesall=/\\"`
}

// ManifestConfiguration selects the manifest file inside the project.
type ManifestConfiguration struct {
	FileName string `mapstructure:"file_name" validate:"omitempty,excludesall=/\\"`
	Marker   string `mapstructure:"marker"`
}

// InitializationConfiguration controls library clone failures.
type InitializationConfiguration struct {
	ClonePolicy registry.ClonePolicy `mapstructure:"clone_failure_policy" validate:"oneof=abort collect"`
}

// VCSConfiguration selects the backend and an optional committer identity.
type VCSConfiguration struct {
	Backend     Backend `mapstructure:"backend"      validate:"oneof=go-git git"`
	AuthorName  string  `mapstructure:"author_name"  validate:"required_with=AuthorEmail"`
	AuthorEmail string  `mapstructure:"author_email" validate:"required_with=AuthorName,omitempty,email"`
}

// GuardConfiguration controls the main-branch guard.
type GuardConfiguration struct {
	ProtectedBranches []string `mapstructure:"protected_branches"`
	FailOnGuard       bool     `mapstructure:"fail_on_guard"`
}

// DefaultConfiguration returns baseline configuration values for repository commands.
func DefaultConfiguration() Configuration {
	return Configuration{
		Remotes: RemotesConfiguration{
			BaseURL:       defaultBaseURLConstant,
			LibraryPrefix: defaultLibraryPrefixConstant,
			LibrarySuffix: defaultLibrarySuffixConstant,
		},
		Workspace: WorkspaceConfiguration{
			Root:               defaultWorkspaceRootConstant,
			ProjectDirectory:   defaultProjectDirectoryConstant,
			LibrariesDirectory: defaultLibrariesDirectoryConstant,
		},
		Manifest:       ManifestConfiguration{Marker: manifest.DefaultMarker},
		Initialization: InitializationConfiguration{ClonePolicy: registry.ClonePolicyAbort},
		VCS:            VCSConfiguration{Backend: BackendGoGit},
		Guard:          GuardConfiguration{ProtectedBranches: append([]string{}, dispatch.DefaultProtectedBranches...)},
	}
}

// DefaultConfigurationValues produces Viper defaults for repository commands.
func DefaultConfigurationValues() map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		configurationKey(projectConfigurationKeyConstant, "name"):                        defaults.Project.Name,
		configurationKey(remotesConfigurationKeyConstant, "base_url"):                    defaults.Remotes.BaseURL,
		configurationKey(remotesConfigurationKeyConstant, "project_suffix"):              defaults.Remotes.ProjectSuffix,
		configurationKey(remotesConfigurationKeyConstant, "library_prefix"):              defaults.Remotes.LibraryPrefix,
		configurationKey(remotesConfigurationKeyConstant, "library_suffix"):              defaults.Remotes.LibrarySuffix,
		configurationKey(workspaceConfigurationKeyConstant, "root"):                      defaults.Workspace.Root,
		configurationKey(workspaceConfigurationKeyConstant, "project_directory"):         defaults.Workspace.ProjectDirectory,
		configurationKey(workspaceConfigurationKeyConstant, "libraries_directory"):       defaults.Workspace.LibrariesDirectory,
		configurationKey(manifestConfigurationKeyConstant, "file_name"):                  defaults.Manifest.FileName,
		configurationKey(manifestConfigurationKeyConstant, "marker"):                     defaults.Manifest.Marker,
		configurationKey(initializationConfigurationKeyConstant, "clone_failure_policy"): string(defaults.Initialization.ClonePolicy),
		configurationKey(vcsConfigurationKeyConstant, "backend"):                         string(defaults.VCS.Backend),
		configurationKey(vcsConfigurationKeyConstant, "author_name"):                     defaults.VCS.AuthorName,
		configurationKey(vcsConfigurationKeyConstant, "author_email"):                    defaults.VCS.AuthorEmail,
		configurationKey(guardConfigurationKeyConstant, "protected_branches"):            defaults.Guard.ProtectedBranches,
		configurationKey(guardConfigurationKeyConstant, "fail_on_guard"):                 defaults.Guard.FailOnGuard,
	}
}

// DecodeHooks converts configured strings into the typed backend and clone policy values.
func DecodeHooks() []mapstructure.DecodeHookFunc {
	return []mapstructure.DecodeHookFunc{
		typedStringHook(reflect.TypeOf(Backend("")), func(rawValue string) (any, error) {
			return ParseBackend(rawValue)
		}),
		typedStringHook(reflect.TypeOf(registry.ClonePolicy("")), func(rawValue string) (any, error) {
			return registry.ParseClonePolicy(strings.ToLower(strings.TrimSpace(rawValue)))
		}),
	}
}

// sanitize trims free-form values.
func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.Project.Name = strings.TrimSpace(configuration.Project.Name)
	sanitized.Remotes.BaseURL = strings.TrimSpace(configuration.Remotes.BaseURL)
	sanitized.Workspace.Root = strings.TrimSpace(configuration.Workspace.Root)
	sanitized.Workspace.ProjectDirectory = strings.TrimSpace(configuration.Workspace.ProjectDirectory)
	sanitized.Workspace.LibrariesDirectory = strings.TrimSpace(configuration.Workspace.LibrariesDirectory)
	sanitized.Manifest.FileName = strings.TrimSpace(configuration.Manifest.FileName)
	sanitized.Manifest.Marker = strings.TrimSpace(configuration.Manifest.Marker)
	sanitized.VCS.AuthorName = strings.TrimSpace(configuration.VCS.AuthorName)
	sanitized.VCS.AuthorEmail = strings.TrimSpace(configuration.VCS.AuthorEmail)
	if len(sanitized.Initialization.ClonePolicy) == 0 {
		sanitized.Initialization.ClonePolicy = registry.ClonePolicyAbort
	}
	if len(sanitized.VCS.Backend) == 0 {
		sanitized.VCS.Backend = BackendGoGit
	}
	sanitized.Guard.ProtectedBranches = append([]string{}, configuration.Guard.ProtectedBranches...)
	return sanitized
}

func configurationKey(section string, key string) string {
	return section + configurationKeySeparatorConstant + key
}

func typedStringHook(targetType reflect.Type, parse func(string) (any, error)) mapstructure.DecodeHookFuncType {
	return func(sourceType reflect.Type, destinationType reflect.Type, data any) (any, error) {
		if destinationType != targetType || sourceType.Kind() != reflect.String {
			return data, nil
		}
		return parse(reflect.ValueOf(data).String())
	}
}
