package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/temirov/gitfleet/internal/gitrepo"
	"github.com/temirov/gitfleet/internal/manifest"
	"github.com/temirov/gitfleet/internal/vcs"
)

const (
	cloningProjectMessageConstant     = "Cloning project...\n"
	cloningLibrariesMessageConstant   = "Cloning libraries...\n"
	cloningRepositoryTemplateConstant = "Cloning %s from %s\n"
	reusingRepositoryTemplateConstant = "Reusing %s at %s\n"
	unsupportedPolicyTemplateConstant = "unsupported clone failure policy: %s"
	inspectPathTemplateConstant       = "inspect %s: %w"
	initializationStartedLogMessage   = "initializing registry"
	repositoryReadyLogMessage         = "repository ready"
	libraryCloneFailedLogMessage      = "library clone failed"
	manifestLoadedLogMessage          = "manifest loaded"
	logFieldProjectConstant           = "project"
	logFieldRepositoryConstant        = "repository"
	logFieldPathConstant              = "path"
	logFieldRemoteURLConstant         = "remote_url"
	logFieldReusedConstant            = "reused"
	logFieldManifestConstant          = "manifest"
	logFieldLibrariesConstant         = "libraries"
)

// ClonePolicy decides what happens when a library cannot be cloned.
type ClonePolicy string

// Clone failure policies.
const (
	// ClonePolicyAbort stops at the first failing library.
	ClonePolicyAbort ClonePolicy = "abort"
	// ClonePolicyCollect attempts every library and reports all failures together.
	ClonePolicyCollect ClonePolicy = "collect"
)

// ParseClonePolicy validates a configured policy name. An empty value selects ClonePolicyAbort.
func ParseClonePolicy(rawValue string) (ClonePolicy, error) {
	switch ClonePolicy(rawValue) {
	case "", ClonePolicyAbort:
		return ClonePolicyAbort, nil
	case ClonePolicyCollect:
		return ClonePolicyCollect, nil
	default:
		return "", fmt.Errorf(unsupportedPolicyTemplateConstant, rawValue)
	}
}

// InitializerDependencies wires an Initializer.
type InitializerDependencies struct {
	Client  vcs.Client
	Naming  RemoteNaming
	Layout  WorkspaceLayout
	Locator manifest.Locator
	Policy  ClonePolicy
	Output  io.Writer
	Logger  *zap.Logger
}

// Initializer builds a Registry from a project name.
type Initializer struct {
	client  vcs.Client
	naming  RemoteNaming
	layout  WorkspaceLayout
	locator manifest.Locator
	policy  ClonePolicy
	output  io.Writer
	logger  *zap.Logger
}

// NewInitializer constructs an Initializer.
func NewInitializer(dependencies InitializerDependencies) *Initializer {
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := dependencies.Policy
	if len(policy) == 0 {
		policy = ClonePolicyAbort
	}
	return &Initializer{
		client:  dependencies.Client,
		naming:  dependencies.Naming,
		layout:  dependencies.Layout,
		locator: dependencies.Locator,
		policy:  policy,
		output:  output,
		logger:  logger,
	}
}

// Initialize clones the project, reads its manifest, clones every library in
// manifest order and registers the project last.
func (initializer *Initializer) Initialize(executionContext context.Context, projectName string) (*Registry, error) {
	if validationError := ValidateName(projectName); validationError != nil {
		return nil, validationError
	}
	initializer.logger.Info(initializationStartedLogMessage, zap.String(logFieldProjectConstant, projectName))

	fmt.Fprint(initializer.output, cloningProjectMessageConstant)
	projectRecord, projectError := initializer.cloneOrReuse(executionContext, projectName, KindProject, initializer.naming.ProjectURL(projectName), initializer.layout.ProjectPath(projectName))
	if projectError != nil {
		return nil, projectError
	}

	manifestPath, locateError := initializer.locator.Locate(projectRecord.Path)
	if locateError != nil {
		return nil, locateError
	}
	libraryNames, loadError := manifest.Load(manifestPath)
	if loadError != nil {
		return nil, loadError
	}
	initializer.logger.Debug(manifestLoadedLogMessage, zap.String(logFieldManifestConstant, manifestPath), zap.Strings(logFieldLibrariesConstant, libraryNames))

	for _, libraryName := range libraryNames {
		if validationError := ValidateName(libraryName); validationError != nil {
			return nil, validationError
		}
		if libraryName == projectName {
			return nil, DuplicateRepositoryError{Name: libraryName}
		}
	}

	fmt.Fprint(initializer.output, cloningLibrariesMessageConstant)
	records := make([]Record, 0, len(libraryNames)+1)
	var collectedErrors error
	for _, libraryName := range libraryNames {
		libraryRecord, libraryError := initializer.cloneOrReuse(executionContext, libraryName, KindLibrary, initializer.naming.LibraryURL(libraryName), initializer.layout.LibraryPath(libraryName))
		if libraryError == nil {
			records = append(records, libraryRecord)
			continue
		}
		if initializer.policy == ClonePolicyAbort {
			return nil, libraryError
		}
		initializer.logger.Warn(libraryCloneFailedLogMessage, zap.String(logFieldRepositoryConstant, libraryName), zap.Error(libraryError))
		collectedErrors = multierr.Append(collectedErrors, libraryError)
	}
	if collectedErrors != nil {
		return nil, collectedErrors
	}

	return New(append(records, projectRecord))
}

// cloneOrReuse clones into an absent or empty path and reopens an existing clone of the same remote.
func (initializer *Initializer) cloneOrReuse(executionContext context.Context, name string, kind Kind, remoteURL string, path string) (Record, error) {
	record := Record{Name: name, Kind: kind, Path: path, RemoteURL: remoteURL}
	wrap := func(cause error) error {
		return CloneError{Name: name, RemoteURL: remoteURL, Path: path, Cause: cause}
	}

	occupied, inspectionError := pathOccupied(path)
	if inspectionError != nil {
		return Record{}, wrap(inspectionError)
	}

	if !occupied {
		fmt.Fprintf(initializer.output, cloningRepositoryTemplateConstant, name, remoteURL)
		handle, cloneError := initializer.client.Clone(executionContext, remoteURL, path)
		if cloneError != nil {
			return Record{}, wrap(cloneError)
		}
		record.Handle = handle
		initializer.logReady(record, false)
		return record, nil
	}

	handle, openError := initializer.client.Open(executionContext, path)
	if openError != nil {
		if errors.Is(openError, vcs.ErrNotRepository) {
			return Record{}, wrap(multierr.Combine(ErrPathConflict, openError))
		}
		return Record{}, wrap(openError)
	}
	existingRemoteURL, remoteError := handle.RemoteURL(executionContext, vcs.DefaultRemoteName)
	if remoteError != nil {
		return Record{}, wrap(multierr.Combine(ErrPathConflict, remoteError))
	}
	if !gitrepo.SameRepository(remoteURL, existingRemoteURL) {
		return Record{}, wrap(ErrPathConflict)
	}

	fmt.Fprintf(initializer.output, reusingRepositoryTemplateConstant, name, path)
	record.Handle = handle
	initializer.logReady(record, true)
	return record, nil
}

func (initializer *Initializer) logReady(record Record, reused bool) {
	initializer.logger.Debug(
		repositoryReadyLogMessage,
		zap.String(logFieldRepositoryConstant, record.Name),
		zap.String(logFieldPathConstant, record.Path),
		zap.String(logFieldRemoteURLConstant, record.RemoteURL),
		zap.Bool(logFieldReusedConstant, reused),
	)
}

func pathOccupied(path string) (bool, error) {
	entries, readError := os.ReadDir(path)
	switch {
	case readError == nil:
		return len(entries) > 0, nil
	case errors.Is(readError, os.ErrNotExist):
		return false, nil
	default:
		if _, statError := os.Stat(path); statError == nil {
			return true, nil
		}
		return false, fmt.Errorf(inspectPathTemplateConstant, path, readError)
	}
}
