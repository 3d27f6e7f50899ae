package gitcli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/gitfleet/internal/execshell"
	"github.com/temirov/gitfleet/internal/vcs"
)

const (
	gitCloneArgumentConstant            = "clone"
	gitRevParseArgumentConstant         = "rev-parse"
	gitShowTopLevelArgumentConstant     = "--show-toplevel"
	notRepositoryTemplateConstant       = "%w: %s"
	nestedRepositoryTemplateConstant    = "%w: %s belongs to %s"
	cloneParentCreationTemplateConstant = "create parent directory for %s: %w"
	directoryInspectionTemplateConstant = "inspect %s: %w"
	directoryPermissionsConstant        = 0o755
	authorNameVariableConstant          = "GIT_AUTHOR_NAME"
	authorEmailVariableConstant         = "GIT_AUTHOR_EMAIL"
	committerNameVariableConstant       = "GIT_COMMITTER_NAME"
	committerEmailVariableConstant      = "GIT_COMMITTER_EMAIL"
)

// GitExecutor runs git invocations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// AuthorIdentity overrides the identity git would read from its configuration.
type AuthorIdentity struct {
	Name  string
	Email string
}

func (identity AuthorIdentity) environment() map[string]string {
	if len(strings.TrimSpace(identity.Name)) == 0 || len(strings.TrimSpace(identity.Email)) == 0 {
		return nil
	}
	return map[string]string{
		authorNameVariableConstant:     identity.Name,
		authorEmailVariableConstant:    identity.Email,
		committerNameVariableConstant:  identity.Name,
		committerEmailVariableConstant: identity.Email,
	}
}

// Client implements vcs.Client with the git executable.
type Client struct {
	executor GitExecutor
	author   AuthorIdentity
}

// NewClient constructs a git CLI backed client.
func NewClient(executor GitExecutor, author AuthorIdentity) *Client {
	return &Client{executor: executor, author: author}
}

// Clone runs git clone into path.
func (client *Client) Clone(executionContext context.Context, remoteURL string, path string) (vcs.Repository, error) {
	if mkdirError := os.MkdirAll(filepath.Dir(path), directoryPermissionsConstant); mkdirError != nil {
		return nil, fmt.Errorf(cloneParentCreationTemplateConstant, path, mkdirError)
	}
	_, cloneError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{gitCloneArgumentConstant, remoteURL, path},
	})
	if cloneError != nil {
		return nil, cloneError
	}
	return client.newRepository(path), nil
}

// Open confirms path is the top level of a working copy and returns its handle.
func (client *Client) Open(executionContext context.Context, path string) (vcs.Repository, error) {
	pathInfo, statError := os.Stat(path)
	if statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return nil, fmt.Errorf(notRepositoryTemplateConstant, vcs.ErrNotRepository, path)
		}
		return nil, fmt.Errorf(directoryInspectionTemplateConstant, path, statError)
	}
	if !pathInfo.IsDir() {
		return nil, fmt.Errorf(notRepositoryTemplateConstant, vcs.ErrNotRepository, path)
	}

	result, revParseError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseArgumentConstant, gitShowTopLevelArgumentConstant},
		WorkingDirectory: path,
	})
	if revParseError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(revParseError, &failedError) {
			return nil, fmt.Errorf(notRepositoryTemplateConstant, vcs.ErrNotRepository, path)
		}
		return nil, revParseError
	}

	topLevel := strings.TrimSpace(result.StandardOutput)
	if !samePath(topLevel, path) {
		return nil, fmt.Errorf(nestedRepositoryTemplateConstant, vcs.ErrNotRepository, path, topLevel)
	}
	return client.newRepository(path), nil
}

func (client *Client) newRepository(path string) *Repository {
	return &Repository{path: path, executor: client.executor, environment: client.author.environment()}
}

func samePath(firstPath string, secondPath string) bool {
	return resolvePath(firstPath) == resolvePath(secondPath)
}

func resolvePath(path string) string {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return filepath.Clean(path)
	}
	if resolvedPath, resolveError := filepath.EvalSymlinks(absolutePath); resolveError == nil {
		return resolvedPath
	}
	return absolutePath
}
