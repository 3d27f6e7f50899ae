package gogit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/temirov/gitfleet/internal/vcs"
)

const (
	clonePathIsFileTemplateConstant     = "clone path %s is a file: %w"
	clonePathNotEmptyTemplateConstant   = "clone path %s is not empty: %w"
	clonePathInspectionTemplateConstant = "inspect clone path %s: %w"
	cloneParentCreationTemplateConstant = "create parent directory for %s: %w"
	cloneFailureTemplateConstant        = "clone %s: %w"
	openFailureTemplateConstant         = "open %s: %w"
	notRepositoryTemplateConstant       = "%w: %s"
	directoryPermissionsConstant        = 0o755
	cloneStartedLogMessageConstant      = "cloning repository"
	cloneCompletedLogMessageConstant    = "cloned repository"
	openedLogMessageConstant            = "opened repository"
	logFieldRemoteURLConstant           = "remote_url"
	logFieldPathConstant                = "path"
)

// AuthorIdentity overrides the committer identity otherwise read from git configuration.
type AuthorIdentity struct {
	Name  string
	Email string
}

func (identity AuthorIdentity) signature() *object.Signature {
	if len(strings.TrimSpace(identity.Name)) == 0 || len(strings.TrimSpace(identity.Email)) == 0 {
		return nil
	}
	return &object.Signature{Name: identity.Name, Email: identity.Email, When: time.Now()}
}

// ClientOptions configures a Client.
type ClientOptions struct {
	Logger      *zap.Logger
	Author      AuthorIdentity
	Credentials CredentialSource
}

// Client implements vcs.Client with go-git.
type Client struct {
	logger      *zap.Logger
	author      AuthorIdentity
	credentials CredentialSource
}

// NewClient constructs a go-git backed client.
func NewClient(options ClientOptions) *Client {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	credentials := options.Credentials
	if credentials.lookup == nil {
		credentials = NewCredentialSource(nil)
	}
	return &Client{logger: logger, author: options.Author, credentials: credentials}
}

// Clone clones remoteURL into path. The path must be absent or an empty directory.
func (client *Client) Clone(executionContext context.Context, remoteURL string, path string) (vcs.Repository, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}
	if pathError := ensureClonePath(path); pathError != nil {
		return nil, pathError
	}

	authMethod, authError := client.credentials.AuthForURL(remoteURL)
	if authError != nil {
		return nil, authError
	}

	client.logger.Debug(cloneStartedLogMessageConstant, zap.String(logFieldRemoteURLConstant, remoteURL), zap.String(logFieldPathConstant, path))
	repository, cloneError := git.PlainCloneContext(executionContext, path, false, &git.CloneOptions{
		URL:        remoteURL,
		RemoteName: vcs.DefaultRemoteName,
		Auth:       authMethod,
	})
	if cloneError != nil {
		return nil, fmt.Errorf(cloneFailureTemplateConstant, remoteURL, cloneError)
	}
	client.logger.Debug(cloneCompletedLogMessageConstant, zap.String(logFieldRemoteURLConstant, remoteURL), zap.String(logFieldPathConstant, path))

	return client.newRepository(path, repository), nil
}

// Open returns a handle to the working copy at path.
func (client *Client) Open(executionContext context.Context, path string) (vcs.Repository, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	repository, openError := git.PlainOpen(path)
	if openError != nil {
		if errors.Is(openError, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf(notRepositoryTemplateConstant, vcs.ErrNotRepository, path)
		}
		return nil, fmt.Errorf(openFailureTemplateConstant, path, openError)
	}
	client.logger.Debug(openedLogMessageConstant, zap.String(logFieldPathConstant, path))

	return client.newRepository(path, repository), nil
}

func (client *Client) newRepository(path string, repository *git.Repository) *Repository {
	return &Repository{
		path:        path,
		repository:  repository,
		author:      client.author,
		credentials: client.credentials,
		logger:      client.logger,
	}
}

func ensureClonePath(path string) error {
	pathInfo, statError := os.Stat(path)
	switch {
	case statError == nil && !pathInfo.IsDir():
		return fmt.Errorf(clonePathIsFileTemplateConstant, path, os.ErrExist)
	case statError == nil:
		entries, readError := os.ReadDir(path)
		if readError != nil {
			return fmt.Errorf(clonePathInspectionTemplateConstant, path, readError)
		}
		if len(entries) > 0 {
			return fmt.Errorf(clonePathNotEmptyTemplateConstant, path, os.ErrExist)
		}
		return nil
	case !errors.Is(statError, os.ErrNotExist):
		return fmt.Errorf(clonePathInspectionTemplateConstant, path, statError)
	}

	if mkdirError := os.MkdirAll(filepath.Dir(path), directoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(cloneParentCreationTemplateConstant, path, mkdirError)
	}
	return nil
}
