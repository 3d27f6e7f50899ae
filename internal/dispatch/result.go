package dispatch

// Result is the outcome of one action in one repository.
type Result struct {
	Repository string
	Action     ActionName
	Output     string
	Notice     string
	Guard      *MainBranchGuardError
}

// Guarded reports whether the main-branch guard refused the action.
func (result Result) Guarded() bool {
	return result.Guard != nil
}

func guardedResult(guardError *MainBranchGuardError) Result {
	return Result{
		Repository: guardError.Repository,
		Action:     guardError.Action,
		Notice:     guardError.Notice(),
		Guard:      guardError,
	}
}
