package dispatch

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/temirov/gitfleet/internal/registry"
	"github.com/temirov/gitfleet/internal/vcs"
)

// DefaultProtectedBranches are guarded when no branches are configured.
var DefaultProtectedBranches = []string{"master", "main"}

// Guard refuses committing actions on protected branches.
type Guard struct {
	protectedBranches map[string]struct{}
}

// NewGuard constructs a Guard. Blank entries are ignored and an empty list selects DefaultProtectedBranches.
func NewGuard(protectedBranches []string) Guard {
	trimmed := lo.Uniq(lo.FilterMap(protectedBranches, func(branch string, _ int) (string, bool) {
		candidate := strings.TrimSpace(branch)
		return candidate, len(candidate) > 0
	}))
	if len(trimmed) == 0 {
		trimmed = DefaultProtectedBranches
	}
	return Guard{protectedBranches: lo.Associate(trimmed, func(branch string) (string, struct{}) {
		return branch, struct{}{}
	})}
}

// ProtectedBranches returns the guarded branch names, sorted.
func (guard Guard) ProtectedBranches() []string {
	branches := lo.Keys(guard.protectedBranches)
	sort.Strings(branches)
	return branches
}

// Evaluate reads the current branch of record and returns a MainBranchGuardError when it is protected.
// A detached HEAD is not protected.
func (guard Guard) Evaluate(executionContext context.Context, record registry.Record, action ActionName) (*MainBranchGuardError, error) {
	branch, branchError := record.Handle.CurrentBranch(executionContext)
	if branchError != nil {
		if errors.Is(branchError, vcs.ErrDetachedHead) {
			return nil, nil
		}
		return nil, branchError
	}
	if _, protected := guard.protectedBranches[branch]; !protected {
		return nil, nil
	}
	return &MainBranchGuardError{Repository: record.Name, Branch: branch, Action: action}, nil
}
