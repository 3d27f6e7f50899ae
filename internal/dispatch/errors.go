package dispatch

import (
	"fmt"
)

const (
	guardNoticeTemplateConstant      = "Action on %s branch forbidden. Use branch-checkout to change."
	guardErrorTemplateConstant       = "%s in %s: %s"
	missingInputTemplateConstant     = "%s requires a %s"
	allStatusNoticeConstant          = "Status is not reported for all repositories; name a single repository."
	allTargetProgressMessageConstant = "This may take a moment..."
	guardedRepositoryLogMessage      = "repository action guarded"
	actionStartedLogMessage          = "repository action started"
	actionCompletedLogMessage        = "repository action completed"
	actionFailedLogMessage           = "repository action failed"
	statusAllSkippedLogMessage       = "status skipped for all repositories"
	logFieldActionConstant           = "action"
	logFieldRepositoryConstant       = "repository"
	logFieldBranchConstant           = "branch"
	logFieldTargetConstant           = "target"
	branchNameInputDescription       = "branch name"
	commitMessageInputDescription    = "commit message"
	tagNameInputDescription          = "tag name"
	tagMessageInputDescription       = "tag message"
)

// MainBranchGuardError reports an action refused because the repository is on a protected branch.
type MainBranchGuardError struct {
	Repository string
	Branch     string
	Action     ActionName
}

// Notice is the user-facing refusal message.
func (guardError MainBranchGuardError) Notice() string {
	return fmt.Sprintf(guardNoticeTemplateConstant, guardError.Branch)
}

// Error names the action and repository alongside the notice.
func (guardError MainBranchGuardError) Error() string {
	return fmt.Sprintf(guardErrorTemplateConstant, guardError.Action, guardError.Repository, guardError.Notice())
}

// MissingInputError reports an action constructed without a required value.
type MissingInputError struct {
	Action ActionName
	Input  string
}

// Error names the missing value.
func (missingError MissingInputError) Error() string {
	return fmt.Sprintf(missingInputTemplateConstant, missingError.Action, missingError.Input)
}
