package gitcli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gitfleet/internal/execshell"
	"github.com/temirov/gitfleet/internal/vcs"
)

const (
	gitAbbrevRefArgumentConstant   = "--abbrev-ref"
	gitHeadArgumentConstant        = "HEAD"
	gitRemoteArgumentConstant      = "remote"
	gitGetURLArgumentConstant      = "get-url"
	gitStatusArgumentConstant      = "status"
	gitBranchArgumentConstant      = "branch"
	gitCheckoutArgumentConstant    = "checkout"
	gitCreateBranchFlagConstant    = "-b"
	gitTrackFlagConstant           = "--track"
	gitFetchArgumentConstant       = "fetch"
	gitAddArgumentConstant         = "add"
	gitAllFlagConstant             = "--all"
	gitCommitArgumentConstant      = "commit"
	gitMessageFlagConstant         = "-m"
	gitPushArgumentConstant        = "push"
	gitSetUpstreamFlagConstant     = "--set-upstream"
	gitTagArgumentConstant         = "tag"
	gitAnnotateFlagConstant        = "-a"
	remoteBranchTemplateConstant   = "%s/%s"
	remoteNotFoundTemplateConstant = "%w: %s"
)

// Repository implements vcs.Repository by running git inside the working copy.
type Repository struct {
	path        string
	executor    GitExecutor
	environment map[string]string
}

// Path returns the working copy directory.
func (handle *Repository) Path() string {
	return handle.path
}

// RemoteURL returns the URL git reports for remoteName.
func (handle *Repository) RemoteURL(executionContext context.Context, remoteName string) (string, error) {
	result, remoteError := handle.run(executionContext, gitRemoteArgumentConstant, gitGetURLArgumentConstant, remoteName)
	if remoteError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(remoteError, &failedError) {
			return "", fmt.Errorf(remoteNotFoundTemplateConstant, vcs.ErrRemoteNotFound, remoteName)
		}
		return "", remoteError
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

// CurrentBranch returns the abbreviated name of HEAD.
func (handle *Repository) CurrentBranch(executionContext context.Context) (string, error) {
	result, revParseError := handle.run(executionContext, gitRevParseArgumentConstant, gitAbbrevRefArgumentConstant, gitHeadArgumentConstant)
	if revParseError != nil {
		return "", revParseError
	}
	branchName := strings.TrimSpace(result.StandardOutput)
	if branchName == gitHeadArgumentConstant || len(branchName) == 0 {
		return "", vcs.ErrDetachedHead
	}
	return branchName, nil
}

// Status returns git status output verbatim.
func (handle *Repository) Status(executionContext context.Context) (string, error) {
	result, statusError := handle.run(executionContext, gitStatusArgumentConstant)
	if statusError != nil {
		return "", statusError
	}
	return result.StandardOutput, nil
}

// CreateBranch runs git branch.
func (handle *Repository) CreateBranch(executionContext context.Context, branchName string) error {
	_, branchError := handle.run(executionContext, gitBranchArgumentConstant, branchName)
	return branchError
}

// Checkout runs git checkout.
func (handle *Repository) Checkout(executionContext context.Context, branchName string) error {
	_, checkoutError := handle.run(executionContext, gitCheckoutArgumentConstant, branchName)
	return checkoutError
}

// CheckoutTracking fetches the remote branch and creates a local tracking branch from it.
func (handle *Repository) CheckoutTracking(executionContext context.Context, branchName string, remoteName string) error {
	if _, fetchError := handle.run(executionContext, gitFetchArgumentConstant, remoteName, branchName); fetchError != nil {
		return fetchError
	}
	remoteBranch := fmt.Sprintf(remoteBranchTemplateConstant, remoteName, branchName)
	_, checkoutError := handle.run(executionContext, gitCheckoutArgumentConstant, gitCreateBranchFlagConstant, branchName, gitTrackFlagConstant, remoteBranch)
	return checkoutError
}

// AddAll runs git add --all.
func (handle *Repository) AddAll(executionContext context.Context) error {
	_, addError := handle.run(executionContext, gitAddArgumentConstant, gitAllFlagConstant)
	return addError
}

// Commit runs git commit -m.
func (handle *Repository) Commit(executionContext context.Context, message string) error {
	_, commitError := handle.run(executionContext, gitCommitArgumentConstant, gitMessageFlagConstant, message)
	return commitError
}

// Push runs git push.
func (handle *Repository) Push(executionContext context.Context) error {
	_, pushError := handle.run(executionContext, gitPushArgumentConstant)
	return pushError
}

// PushWithUpstream runs git push --set-upstream.
func (handle *Repository) PushWithUpstream(executionContext context.Context, remoteName string, branchName string) error {
	_, pushError := handle.run(executionContext, gitPushArgumentConstant, gitSetUpstreamFlagConstant, remoteName, branchName)
	return pushError
}

// CreateAnnotatedTag runs git tag -a.
func (handle *Repository) CreateAnnotatedTag(executionContext context.Context, tagName string, message string) error {
	_, tagError := handle.run(executionContext, gitTagArgumentConstant, gitAnnotateFlagConstant, tagName, gitMessageFlagConstant, message)
	return tagError
}

func (handle *Repository) run(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return handle.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     handle.path,
		EnvironmentVariables: handle.environment,
	})
}
