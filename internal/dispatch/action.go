package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/temirov/gitfleet/internal/registry"
	"github.com/temirov/gitfleet/internal/vcs"
)

// ActionName identifies a repository action.
type ActionName string

// Supported actions.
const (
	ActionStatus                 ActionName = "status"
	ActionCreateAndTrackBranch   ActionName = "create_and_track_branch"
	ActionCheckoutExistingBranch ActionName = "checkout_existing_branch"
	ActionStageAllChanges        ActionName = "stage_all_changes"
	ActionCommit                 ActionName = "commit"
	ActionPush                   ActionName = "push"
	ActionTag                    ActionName = "tag"
	ActionCommitAndPush          ActionName = "commit_and_push"
	ActionStageCommitAndPush     ActionName = "stage_commit_and_push"
)

const (
	branchCreatedTemplateConstant  = "Created branch %s tracking %s/%s"
	branchSwitchedTemplateConstant = "Switched to branch %s tracking %s/%s"
	changesStagedMessageConstant   = "Staged all changes"
	commitCreatedTemplateConstant  = "Committed %q"
	pushCompletedMessageConstant   = "Pushed to upstream"
	tagCreatedTemplateConstant     = "Created tag %s"
	commitPushedTemplateConstant   = "Committed %q and pushed to upstream"
	stagedPushedTemplateConstant   = "Staged all changes, committed %q and pushed to upstream"
)

// Action is one repository operation together with its inputs.
type Action interface {
	Name() ActionName
	// Validate rejects missing inputs before any repository is touched.
	Validate() error
	Execute(executionContext context.Context, guard Guard, record registry.Record) (Result, error)
}

// StatusAction reports the working tree state. Protected branches yield a notice instead.
type StatusAction struct{}

// Name implements Action.
func (StatusAction) Name() ActionName { return ActionStatus }

// Validate implements Action.
func (StatusAction) Validate() error { return nil }

// Execute implements Action.
func (action StatusAction) Execute(executionContext context.Context, guard Guard, record registry.Record) (Result, error) {
	guardError, evaluationError := guard.Evaluate(executionContext, record, action.Name())
	if evaluationError != nil {
		return Result{}, evaluationError
	}
	if guardError != nil {
		return guardedResult(guardError), nil
	}
	statusOutput, statusError := record.Handle.Status(executionContext)
	if statusError != nil {
		return Result{}, statusError
	}
	return newResult(record, action.Name(), statusOutput), nil
}

// CreateAndTrackBranchAction creates a local branch, switches to it and publishes it to origin.
type CreateAndTrackBranchAction struct {
	BranchName string
}

// Name implements Action.
func (CreateAndTrackBranchAction) Name() ActionName { return ActionCreateAndTrackBranch }

// Validate implements Action.
func (action CreateAndTrackBranchAction) Validate() error {
	return requireInput(action.Name(), action.BranchName, branchNameInputDescription)
}

// Execute implements Action.
func (action CreateAndTrackBranchAction) Execute(executionContext context.Context, _ Guard, record registry.Record) (Result, error) {
	if createError := record.Handle.CreateBranch(executionContext, action.BranchName); createError != nil {
		return Result{}, createError
	}
	if checkoutError := record.Handle.Checkout(executionContext, action.BranchName); checkoutError != nil {
		return Result{}, checkoutError
	}
	if pushError := record.Handle.PushWithUpstream(executionContext, vcs.DefaultRemoteName, action.BranchName); pushError != nil {
		return Result{}, pushError
	}
	return newResult(record, action.Name(), fmt.Sprintf(branchCreatedTemplateConstant, action.BranchName, vcs.DefaultRemoteName, action.BranchName)), nil
}

// CheckoutExistingBranchAction creates a local branch tracking origin/<branch> and switches to it.
type CheckoutExistingBranchAction struct {
	BranchName string
}

// Name implements Action.
func (CheckoutExistingBranchAction) Name() ActionName { return ActionCheckoutExistingBranch }

// Validate implements Action.
func (action CheckoutExistingBranchAction) Validate() error {
	return requireInput(action.Name(), action.BranchName, branchNameInputDescription)
}

// Execute implements Action.
func (action CheckoutExistingBranchAction) Execute(executionContext context.Context, _ Guard, record registry.Record) (Result, error) {
	if checkoutError := record.Handle.CheckoutTracking(executionContext, action.BranchName, vcs.DefaultRemoteName); checkoutError != nil {
		return Result{}, checkoutError
	}
	return newResult(record, action.Name(), fmt.Sprintf(branchSwitchedTemplateConstant, action.BranchName, vcs.DefaultRemoteName, action.BranchName)), nil
}

// StageAllChangesAction stages every modification, addition and deletion.
type StageAllChangesAction struct{}

// Name implements Action.
func (StageAllChangesAction) Name() ActionName { return ActionStageAllChanges }

// Validate implements Action.
func (StageAllChangesAction) Validate() error { return nil }

// Execute implements Action.
func (action StageAllChangesAction) Execute(executionContext context.Context, _ Guard, record registry.Record) (Result, error) {
	if addError := record.Handle.AddAll(executionContext); addError != nil {
		return Result{}, addError
	}
	return newResult(record, action.Name(), changesStagedMessageConstant), nil
}

// CommitAction records the staged changes.
type CommitAction struct {
	Message string
}

// Name implements Action.
func (CommitAction) Name() ActionName { return ActionCommit }

// Validate implements Action.
func (action CommitAction) Validate() error {
	return requireInput(action.Name(), action.Message, commitMessageInputDescription)
}

// Execute implements Action.
func (action CommitAction) Execute(executionContext context.Context, _ Guard, record registry.Record) (Result, error) {
	if commitError := record.Handle.Commit(executionContext, action.Message); commitError != nil {
		return Result{}, commitError
	}
	return newResult(record, action.Name(), fmt.Sprintf(commitCreatedTemplateConstant, action.Message)), nil
}

// PushAction pushes the current branch to its upstream.
type PushAction struct{}

// Name implements Action.
func (PushAction) Name() ActionName { return ActionPush }

// Validate implements Action.
func (PushAction) Validate() error { return nil }

// Execute implements Action.
func (action PushAction) Execute(executionContext context.Context, _ Guard, record registry.Record) (Result, error) {
	if pushError := record.Handle.Push(executionContext); pushError != nil {
		return Result{}, pushError
	}
	return newResult(record, action.Name(), pushCompletedMessageConstant), nil
}

// TagAction creates an annotated tag at HEAD. The tag is not pushed.
type TagAction struct {
	TagName string
	Message string
}

// Name implements Action.
func (TagAction) Name() ActionName { return ActionTag }

// Validate implements Action.
func (action TagAction) Validate() error {
	if nameError := requireInput(action.Name(), action.TagName, tagNameInputDescription); nameError != nil {
		return nameError
	}
	return requireInput(action.Name(), action.Message, tagMessageInputDescription)
}

// Execute implements Action.
func (action TagAction) Execute(executionContext context.Context, _ Guard, record registry.Record) (Result, error) {
	if tagError := record.Handle.CreateAnnotatedTag(executionContext, action.TagName, action.Message); tagError != nil {
		return Result{}, tagError
	}
	return newResult(record, action.Name(), fmt.Sprintf(tagCreatedTemplateConstant, action.TagName)), nil
}

// CommitAndPushAction commits the staged changes and pushes them unless the branch is protected.
type CommitAndPushAction struct {
	Message string
}

// Name implements Action.
func (CommitAndPushAction) Name() ActionName { return ActionCommitAndPush }

// Validate implements Action.
func (action CommitAndPushAction) Validate() error {
	return requireInput(action.Name(), action.Message, commitMessageInputDescription)
}

// Execute implements Action.
func (action CommitAndPushAction) Execute(executionContext context.Context, guard Guard, record registry.Record) (Result, error) {
	guardError, evaluationError := guard.Evaluate(executionContext, record, action.Name())
	if evaluationError != nil {
		return Result{}, evaluationError
	}
	if guardError != nil {
		return guardedResult(guardError), nil
	}
	if commitError := record.Handle.Commit(executionContext, action.Message); commitError != nil {
		return Result{}, commitError
	}
	if pushError := record.Handle.Push(executionContext); pushError != nil {
		return Result{}, pushError
	}
	return newResult(record, action.Name(), fmt.Sprintf(commitPushedTemplateConstant, action.Message)), nil
}

// StageCommitAndPushAction stages everything, commits and pushes unless the branch is protected.
// A failing push leaves the staged changes and the commit in place.
type StageCommitAndPushAction struct {
	Message string
}

// Name implements Action.
func (StageCommitAndPushAction) Name() ActionName { return ActionStageCommitAndPush }

// Validate implements Action.
func (action StageCommitAndPushAction) Validate() error {
	return requireInput(action.Name(), action.Message, commitMessageInputDescription)
}

// Execute implements Action.
func (action StageCommitAndPushAction) Execute(executionContext context.Context, guard Guard, record registry.Record) (Result, error) {
	guardError, evaluationError := guard.Evaluate(executionContext, record, action.Name())
	if evaluationError != nil {
		return Result{}, evaluationError
	}
	if guardError != nil {
		return guardedResult(guardError), nil
	}
	if addError := record.Handle.AddAll(executionContext); addError != nil {
		return Result{}, addError
	}
	if commitError := record.Handle.Commit(executionContext, action.Message); commitError != nil {
		return Result{}, commitError
	}
	if pushError := record.Handle.Push(executionContext); pushError != nil {
		return Result{}, pushError
	}
	return newResult(record, action.Name(), fmt.Sprintf(stagedPushedTemplateConstant, action.Message)), nil
}

func newResult(record registry.Record, action ActionName, output string) Result {
	return Result{Repository: record.Name, Action: action, Output: output}
}

func requireInput(action ActionName, value string, description string) error {
	if len(strings.TrimSpace(value)) == 0 {
		return MissingInputError{Action: action, Input: description}
	}
	return nil
}
