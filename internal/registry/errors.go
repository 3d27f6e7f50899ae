package registry

import (
	"errors"
	"fmt"
	"strings"
)

const (
	cloneErrorTemplateConstant          = "clone %s from %s into %s: %v"
	unknownRepositoryTemplateConstant   = "unknown repository %q (known: %s)"
	duplicateRepositoryTemplateConstant = "repository %q registered twice"
	reservedRepositoryTemplateConstant  = "repository name %q is reserved"
	invalidRepositoryTemplateConstant   = "repository name %q is invalid: %s"
	pathConflictMessageConstant         = "path exists and is not a clone of the expected remote"
	knownRepositoriesSeparatorConstant  = ", "
)

// ErrPathConflict is the cause of a CloneError when the target path is occupied by something else.
var ErrPathConflict = errors.New(pathConflictMessageConstant)

// CloneError reports a repository that could not be cloned or reused.
type CloneError struct {
	Name      string
	RemoteURL string
	Path      string
	Cause     error
}

// Error includes the underlying cause.
func (cloneError CloneError) Error() string {
	return fmt.Sprintf(cloneErrorTemplateConstant, cloneError.Name, cloneError.RemoteURL, cloneError.Path, cloneError.Cause)
}

// Unwrap exposes the collaborator error.
func (cloneError CloneError) Unwrap() error {
	return cloneError.Cause
}

// UnknownRepositoryError reports a target that matches no registered name.
type UnknownRepositoryError struct {
	Name  string
	Known []string
}

// Error lists the registered names.
func (unknownError UnknownRepositoryError) Error() string {
	return fmt.Sprintf(unknownRepositoryTemplateConstant, unknownError.Name, strings.Join(unknownError.Known, knownRepositoriesSeparatorConstant))
}

// DuplicateRepositoryError reports a name registered more than once.
type DuplicateRepositoryError struct {
	Name string
}

// Error names the duplicate.
func (duplicateError DuplicateRepositoryError) Error() string {
	return fmt.Sprintf(duplicateRepositoryTemplateConstant, duplicateError.Name)
}

// ReservedRepositoryNameError reports a repository named like the fan-out target.
type ReservedRepositoryNameError struct {
	Name string
}

// Error names the reserved word.
func (reservedError ReservedRepositoryNameError) Error() string {
	return fmt.Sprintf(reservedRepositoryTemplateConstant, reservedError.Name)
}

// InvalidRepositoryNameError reports a name that cannot be used as a directory name.
type InvalidRepositoryNameError struct {
	Name   string
	Reason string
}

// Error includes the reason.
func (invalidError InvalidRepositoryNameError) Error() string {
	return fmt.Sprintf(invalidRepositoryTemplateConstant, invalidError.Name, invalidError.Reason)
}
