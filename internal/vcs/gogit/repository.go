package gogit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"

	"github.com/temirov/gitfleet/internal/vcs"
)

const (
	statusBranchHeaderTemplateConstant  = "On branch %s\n"
	statusCleanMessageConstant          = "nothing to commit, working tree clean\n"
	remoteNotFoundTemplateConstant      = "%w: %s"
	branchExistsTemplateConstant        = "%w: %s"
	noUpstreamTemplateConstant          = "%w: %s"
	remoteBranchMissingTemplateConstant = "%w: %s/%s"
	branchRefSpecTemplateConstant       = "refs/heads/%s:refs/heads/%s"
	pushRefSpecTemplateConstant         = "refs/heads/%s:%s"
	fetchRefSpecTemplateConstant        = "+refs/heads/%s:refs/remotes/%s/%s"
	readHeadTemplateConstant            = "read HEAD: %w"
	openWorktreeTemplateConstant        = "open worktree: %w"
	readConfigurationTemplateConstant   = "read repository configuration: %w"
	writeConfigurationTemplateConstant  = "write repository configuration: %w"
	statusFailureTemplateConstant       = "read working tree status: %w"
	createBranchFailureTemplateConstant = "create branch %s: %w"
	checkoutFailureTemplateConstant     = "checkout %s: %w"
	fetchFailureTemplateConstant        = "fetch %s from %s: %w"
	stageFailureTemplateConstant        = "stage changes: %w"
	commitFailureTemplateConstant       = "commit: %w"
	pushFailureTemplateConstant         = "push %s to %s: %w"
	tagFailureTemplateConstant          = "create tag %s: %w"
	remoteHasNoURLMessageConstant       = "remote has no URL"
	branchExistsMessageConstant         = "branch already exists"
	noUpstreamMessageConstant           = "current branch has no upstream branch"
	remoteBranchMissingMessageConstant  = "remote branch not found"
	pushCompletedLogMessageConstant     = "pushed branch"
	pushUpToDateLogMessageConstant      = "remote already up to date"
	commitCreatedLogMessageConstant     = "created commit"
	logFieldBranchConstant              = "branch"
	logFieldRemoteConstant              = "remote"
	logFieldCommitConstant              = "commit"
)

// ErrBranchExists indicates CreateBranch was asked for a branch that already exists locally.
var ErrBranchExists = errors.New(branchExistsMessageConstant)

// ErrNoUpstream indicates Push was called on a branch without tracking configuration.
var ErrNoUpstream = errors.New(noUpstreamMessageConstant)

// ErrRemoteBranchMissing indicates CheckoutTracking could not find the branch on the remote.
var ErrRemoteBranchMissing = errors.New(remoteBranchMissingMessageConstant)

// Repository implements vcs.Repository for one go-git working copy.
type Repository struct {
	path        string
	repository  *git.Repository
	author      AuthorIdentity
	credentials CredentialSource
	logger      *zap.Logger
}

// Path returns the working copy directory.
func (handle *Repository) Path() string {
	return handle.path
}

// RemoteURL returns the first URL configured for remoteName.
func (handle *Repository) RemoteURL(executionContext context.Context, remoteName string) (string, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return "", contextError
	}
	remote, remoteError := handle.repository.Remote(remoteName)
	if remoteError != nil {
		if errors.Is(remoteError, git.ErrRemoteNotFound) {
			return "", fmt.Errorf(remoteNotFoundTemplateConstant, vcs.ErrRemoteNotFound, remoteName)
		}
		return "", remoteError
	}
	remoteConfiguration := remote.Config()
	if remoteConfiguration == nil || len(remoteConfiguration.URLs) == 0 {
		return "", fmt.Errorf(remoteNotFoundTemplateConstant, vcs.ErrRemoteNotFound, remoteHasNoURLMessageConstant)
	}
	return remoteConfiguration.URLs[0], nil
}

// CurrentBranch returns the short branch name HEAD points at, including unborn branches.
func (handle *Repository) CurrentBranch(executionContext context.Context) (string, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return "", contextError
	}
	headReference, referenceError := handle.repository.Storer.Reference(plumbing.HEAD)
	if referenceError != nil {
		return "", fmt.Errorf(readHeadTemplateConstant, referenceError)
	}
	if headReference.Type() != plumbing.SymbolicReference || !headReference.Target().IsBranch() {
		return "", vcs.ErrDetachedHead
	}
	return headReference.Target().Short(), nil
}

// Status renders the branch and the porcelain-style change list.
func (handle *Repository) Status(executionContext context.Context) (string, error) {
	branchName, branchError := handle.CurrentBranch(executionContext)
	if branchError != nil {
		return "", branchError
	}
	worktree, worktreeError := handle.worktree()
	if worktreeError != nil {
		return "", worktreeError
	}
	worktreeStatus, statusError := worktree.Status()
	if statusError != nil {
		return "", fmt.Errorf(statusFailureTemplateConstant, statusError)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(statusBranchHeaderTemplateConstant, branchName))
	if worktreeStatus.IsClean() {
		builder.WriteString(statusCleanMessageConstant)
	} else {
		builder.WriteString(worktreeStatus.String())
	}
	return builder.String(), nil
}

// CreateBranch creates branchName at HEAD without switching to it.
func (handle *Repository) CreateBranch(executionContext context.Context, branchName string) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	headReference, headError := handle.repository.Head()
	if headError != nil {
		return fmt.Errorf(readHeadTemplateConstant, headError)
	}

	branchReferenceName := plumbing.NewBranchReferenceName(branchName)
	if _, lookupError := handle.repository.Reference(branchReferenceName, false); lookupError == nil {
		return fmt.Errorf(branchExistsTemplateConstant, ErrBranchExists, branchName)
	}

	if storeError := handle.repository.Storer.SetReference(plumbing.NewHashReference(branchReferenceName, headReference.Hash())); storeError != nil {
		return fmt.Errorf(createBranchFailureTemplateConstant, branchName, storeError)
	}
	return nil
}

// Checkout switches the working copy to an existing local branch.
// Uncommitted changes are carried over when the branch points at the current commit.
func (handle *Repository) Checkout(executionContext context.Context, branchName string) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	worktree, worktreeError := handle.worktree()
	if worktreeError != nil {
		return worktreeError
	}

	branchReferenceName := plumbing.NewBranchReferenceName(branchName)
	checkoutOptions := &git.CheckoutOptions{Branch: branchReferenceName}
	targetReference, targetError := handle.repository.Reference(branchReferenceName, true)
	if targetError != nil {
		return fmt.Errorf(checkoutFailureTemplateConstant, branchName, targetError)
	}
	if headReference, headError := handle.repository.Head(); headError == nil && headReference.Hash() == targetReference.Hash() {
		checkoutOptions.Keep = true
	}

	if checkoutError := worktree.Checkout(checkoutOptions); checkoutError != nil {
		return fmt.Errorf(checkoutFailureTemplateConstant, branchName, checkoutError)
	}
	return nil
}

// CheckoutTracking creates branchName from remoteName/branchName, fetching it first when unknown locally, and sets its upstream.
func (handle *Repository) CheckoutTracking(executionContext context.Context, branchName string, remoteName string) error {
	remoteReference, lookupError := handle.remoteBranchReference(executionContext, branchName, remoteName)
	if lookupError != nil {
		return lookupError
	}

	worktree, worktreeError := handle.worktree()
	if worktreeError != nil {
		return worktreeError
	}
	checkoutError := worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branchName),
		Hash:   remoteReference.Hash(),
		Create: true,
	})
	if checkoutError != nil {
		return fmt.Errorf(checkoutFailureTemplateConstant, branchName, checkoutError)
	}
	return handle.setUpstream(branchName, remoteName)
}

// AddAll stages every change in the working tree, including deletions.
func (handle *Repository) AddAll(executionContext context.Context) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	worktree, worktreeError := handle.worktree()
	if worktreeError != nil {
		return worktreeError
	}
	if addError := worktree.AddWithOptions(&git.AddOptions{All: true}); addError != nil {
		return fmt.Errorf(stageFailureTemplateConstant, addError)
	}
	return nil
}

// Commit records the staged changes. An empty index yields git.ErrEmptyCommit.
func (handle *Repository) Commit(executionContext context.Context, message string) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	worktree, worktreeError := handle.worktree()
	if worktreeError != nil {
		return worktreeError
	}
	commitHash, commitError := worktree.Commit(message, &git.CommitOptions{Author: handle.author.signature()})
	if commitError != nil {
		return fmt.Errorf(commitFailureTemplateConstant, commitError)
	}
	handle.logger.Debug(commitCreatedLogMessageConstant, zap.String(logFieldPathConstant, handle.path), zap.String(logFieldCommitConstant, commitHash.String()))
	return nil
}

// Push sends the current branch to its configured upstream.
func (handle *Repository) Push(executionContext context.Context) error {
	branchName, branchError := handle.CurrentBranch(executionContext)
	if branchError != nil {
		return branchError
	}
	repositoryConfiguration, configurationError := handle.repository.Config()
	if configurationError != nil {
		return fmt.Errorf(readConfigurationTemplateConstant, configurationError)
	}
	branchConfiguration, tracked := repositoryConfiguration.Branches[branchName]
	if !tracked || len(branchConfiguration.Remote) == 0 || len(branchConfiguration.Merge) == 0 {
		return fmt.Errorf(noUpstreamTemplateConstant, ErrNoUpstream, branchName)
	}

	refSpec := config.RefSpec(fmt.Sprintf(pushRefSpecTemplateConstant, branchName, branchConfiguration.Merge))
	return handle.push(executionContext, branchConfiguration.Remote, branchName, refSpec)
}

// PushWithUpstream pushes branchName to remoteName and records the remote branch as its upstream.
func (handle *Repository) PushWithUpstream(executionContext context.Context, remoteName string, branchName string) error {
	refSpec := config.RefSpec(fmt.Sprintf(branchRefSpecTemplateConstant, branchName, branchName))
	if pushError := handle.push(executionContext, remoteName, branchName, refSpec); pushError != nil {
		return pushError
	}
	return handle.setUpstream(branchName, remoteName)
}

// CreateAnnotatedTag tags HEAD with an annotated tag.
func (handle *Repository) CreateAnnotatedTag(executionContext context.Context, tagName string, message string) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	headReference, headError := handle.repository.Head()
	if headError != nil {
		return fmt.Errorf(readHeadTemplateConstant, headError)
	}
	_, tagError := handle.repository.CreateTag(tagName, headReference.Hash(), &git.CreateTagOptions{
		Message: message,
		Tagger:  handle.author.signature(),
	})
	if tagError != nil {
		return fmt.Errorf(tagFailureTemplateConstant, tagName, tagError)
	}
	return nil
}

func (handle *Repository) push(executionContext context.Context, remoteName string, branchName string, refSpec config.RefSpec) error {
	remoteURL, remoteError := handle.RemoteURL(executionContext, remoteName)
	if remoteError != nil {
		return remoteError
	}
	authMethod, authError := handle.credentials.AuthForURL(remoteURL)
	if authError != nil {
		return authError
	}

	pushError := handle.repository.PushContext(executionContext, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       authMethod,
	})
	logFields := []zap.Field{zap.String(logFieldPathConstant, handle.path), zap.String(logFieldBranchConstant, branchName), zap.String(logFieldRemoteConstant, remoteName)}
	switch {
	case pushError == nil:
		handle.logger.Debug(pushCompletedLogMessageConstant, logFields...)
		return nil
	case errors.Is(pushError, git.NoErrAlreadyUpToDate):
		handle.logger.Debug(pushUpToDateLogMessageConstant, logFields...)
		return nil
	default:
		return fmt.Errorf(pushFailureTemplateConstant, branchName, remoteName, pushError)
	}
}

func (handle *Repository) remoteBranchReference(executionContext context.Context, branchName string, remoteName string) (*plumbing.Reference, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}
	remoteReferenceName := plumbing.NewRemoteReferenceName(remoteName, branchName)
	if remoteReference, lookupError := handle.repository.Reference(remoteReferenceName, true); lookupError == nil {
		return remoteReference, nil
	}

	remoteURL, remoteError := handle.RemoteURL(executionContext, remoteName)
	if remoteError != nil {
		return nil, remoteError
	}
	authMethod, authError := handle.credentials.AuthForURL(remoteURL)
	if authError != nil {
		return nil, authError
	}
	fetchError := handle.repository.FetchContext(executionContext, &git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{config.RefSpec(fmt.Sprintf(fetchRefSpecTemplateConstant, branchName, remoteName, branchName))},
		Auth:       authMethod,
	})
	if fetchError != nil && !errors.Is(fetchError, git.NoErrAlreadyUpToDate) {
		if isMissingRemoteReference(fetchError) {
			return nil, fmt.Errorf(remoteBranchMissingTemplateConstant, ErrRemoteBranchMissing, remoteName, branchName)
		}
		return nil, fmt.Errorf(fetchFailureTemplateConstant, branchName, remoteName, fetchError)
	}

	remoteReference, lookupError := handle.repository.Reference(remoteReferenceName, true)
	if lookupError != nil {
		return nil, fmt.Errorf(remoteBranchMissingTemplateConstant, ErrRemoteBranchMissing, remoteName, branchName)
	}
	return remoteReference, nil
}

func (handle *Repository) setUpstream(branchName string, remoteName string) error {
	repositoryConfiguration, configurationError := handle.repository.Config()
	if configurationError != nil {
		return fmt.Errorf(readConfigurationTemplateConstant, configurationError)
	}
	repositoryConfiguration.Branches[branchName] = &config.Branch{
		Name:   branchName,
		Remote: remoteName,
		Merge:  plumbing.NewBranchReferenceName(branchName),
	}
	if writeError := handle.repository.SetConfig(repositoryConfiguration); writeError != nil {
		return fmt.Errorf(writeConfigurationTemplateConstant, writeError)
	}
	return nil
}

func (handle *Repository) worktree() (*git.Worktree, error) {
	worktree, worktreeError := handle.repository.Worktree()
	if worktreeError != nil {
		return nil, fmt.Errorf(openWorktreeTemplateConstant, worktreeError)
	}
	return worktree, nil
}

func isMissingRemoteReference(fetchError error) bool {
	var noMatchingRefSpec git.NoMatchingRefSpecError
	return errors.As(fetchError, &noMatchingRefSpec) || errors.Is(fetchError, plumbing.ErrReferenceNotFound)
}
