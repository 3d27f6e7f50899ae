// Package vcs declares the version-control collaborator gitfleet drives.
//
// Client clones or reopens working copies; Repository is the per-clone handle
// every dispatched action calls into. Two implementations exist: gogit, built
// on go-git, and gitcli, which shells out to the git executable.
package vcs

import (
	"context"
	"errors"
)

const (
	notRepositoryMessageConstant  = "path is not a git working copy"
	remoteNotFoundMessageConstant = "remote not found"
	detachedHeadMessageConstant   = "repository is in a detached HEAD state"

	// DefaultRemoteName is the remote every clone is created with.
	DefaultRemoteName = "origin"
)

// ErrNotRepository indicates Open was pointed at a directory that is not a working copy.
var ErrNotRepository = errors.New(notRepositoryMessageConstant)

// ErrRemoteNotFound indicates the requested remote is not configured.
var ErrRemoteNotFound = errors.New(remoteNotFoundMessageConstant)

// ErrDetachedHead indicates HEAD does not point at a branch.
var ErrDetachedHead = errors.New(detachedHeadMessageConstant)

// Client creates repository handles.
type Client interface {
	// Clone clones remoteURL into path and returns a handle to the new working copy.
	Clone(executionContext context.Context, remoteURL string, path string) (Repository, error)
	// Open returns a handle to an existing working copy.
	Open(executionContext context.Context, path string) (Repository, error)
}

// Repository is the handle to one local working copy.
type Repository interface {
	Path() string
	RemoteURL(executionContext context.Context, remoteName string) (string, error)
	CurrentBranch(executionContext context.Context) (string, error)
	Status(executionContext context.Context) (string, error)
	CreateBranch(executionContext context.Context, branchName string) error
	Checkout(executionContext context.Context, branchName string) error
	// CheckoutTracking creates a local branch from remoteName/branchName and switches to it.
	CheckoutTracking(executionContext context.Context, branchName string, remoteName string) error
	AddAll(executionContext context.Context) error
	Commit(executionContext context.Context, message string) error
	Push(executionContext context.Context) error
	PushWithUpstream(executionContext context.Context, remoteName string, branchName string) error
	CreateAnnotatedTag(executionContext context.Context, tagName string, message string) error
}
