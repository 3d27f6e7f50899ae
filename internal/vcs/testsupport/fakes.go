// Package testsupport provides in-memory vcs collaborators for package tests.
package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/temirov/gitfleet/internal/vcs"
)

// Operation names recorded by FakeRepository.
const (
	OperationRemoteURL          = "RemoteURL"
	OperationCurrentBranch      = "CurrentBranch"
	OperationStatus             = "Status"
	OperationCreateBranch       = "CreateBranch"
	OperationCheckout           = "Checkout"
	OperationCheckoutTracking   = "CheckoutTracking"
	OperationAddAll             = "AddAll"
	OperationCommit             = "Commit"
	OperationPush               = "Push"
	OperationPushWithUpstream   = "PushWithUpstream"
	OperationCreateAnnotatedTag = "CreateAnnotatedTag"

	defaultBranchConstant      = "master"
	statusTemplateConstant     = "On branch %s\n"
	seededFilePermissions      = 0o644
	seededDirectoryPermissions = 0o755
)

var mutatingOperations = map[string]struct{}{
	OperationCreateBranch:       {},
	OperationCheckout:           {},
	OperationCheckoutTracking:   {},
	OperationAddAll:             {},
	OperationCommit:             {},
	OperationPush:               {},
	OperationPushWithUpstream:   {},
	OperationCreateAnnotatedTag: {},
}

// Call is one recorded collaborator invocation.
type Call struct {
	Operation string
	Arguments []string
}

// FakeRepository records calls and keeps just enough state to answer queries.
type FakeRepository struct {
	mutex          sync.Mutex
	path           string
	remoteURL      string
	branch         string
	calls          []Call
	failures       map[string]error
	pendingChanges map[string]struct{}
	stagedChanges  map[string]struct{}
	commitMessages []string
	tags           map[string]string
}

// NewFakeRepository constructs a repository on branch with the given origin URL.
func NewFakeRepository(path string, remoteURL string, branch string) *FakeRepository {
	return &FakeRepository{
		path:           path,
		remoteURL:      remoteURL,
		branch:         branch,
		failures:       map[string]error{},
		pendingChanges: map[string]struct{}{},
		stagedChanges:  map[string]struct{}{},
		tags:           map[string]string{},
	}
}

// FailOn makes every later call to operation return failure.
func (repository *FakeRepository) FailOn(operation string, failure error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	repository.failures[operation] = failure
}

// ModifyFile marks a file as changed in the working tree.
func (repository *FakeRepository) ModifyFile(fileName string) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	repository.pendingChanges[fileName] = struct{}{}
}

// SetBranch moves HEAD without recording a call.
func (repository *FakeRepository) SetBranch(branch string) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	repository.branch = branch
}

// Calls returns every recorded call in order.
func (repository *FakeRepository) Calls() []Call {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return append([]Call{}, repository.calls...)
}

// Operations returns the recorded operation names in order.
func (repository *FakeRepository) Operations() []string {
	return lo.Map(repository.Calls(), func(call Call, _ int) string {
		return call.Operation
	})
}

// MutatingOperations returns the recorded operations that change repository state.
func (repository *FakeRepository) MutatingOperations() []string {
	return lo.Filter(repository.Operations(), func(operation string, _ int) bool {
		_, mutating := mutatingOperations[operation]
		return mutating
	})
}

// StagedChanges returns the staged file names, sorted.
func (repository *FakeRepository) StagedChanges() []string {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	staged := lo.Keys(repository.stagedChanges)
	sort.Strings(staged)
	return staged
}

// CommitMessages returns the messages of recorded commits.
func (repository *FakeRepository) CommitMessages() []string {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return append([]string{}, repository.commitMessages...)
}

// Tags returns the annotated tags with their messages.
func (repository *FakeRepository) Tags() map[string]string {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return lo.Assign(repository.tags)
}

// Path implements vcs.Repository.
func (repository *FakeRepository) Path() string {
	return repository.path
}

// RemoteURL implements vcs.Repository.
func (repository *FakeRepository) RemoteURL(_ context.Context, remoteName string) (string, error) {
	if failure := repository.record(OperationRemoteURL, remoteName); failure != nil {
		return "", failure
	}
	if remoteName != vcs.DefaultRemoteName {
		return "", vcs.ErrRemoteNotFound
	}
	return repository.remoteURL, nil
}

// CurrentBranch implements vcs.Repository.
func (repository *FakeRepository) CurrentBranch(_ context.Context) (string, error) {
	if failure := repository.record(OperationCurrentBranch); failure != nil {
		return "", failure
	}
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return repository.branch, nil
}

// Status implements vcs.Repository.
func (repository *FakeRepository) Status(_ context.Context) (string, error) {
	if failure := repository.record(OperationStatus); failure != nil {
		return "", failure
	}
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return fmt.Sprintf(statusTemplateConstant, repository.branch), nil
}

// CreateBranch implements vcs.Repository.
func (repository *FakeRepository) CreateBranch(_ context.Context, branchName string) error {
	return repository.record(OperationCreateBranch, branchName)
}

// Checkout implements vcs.Repository.
func (repository *FakeRepository) Checkout(_ context.Context, branchName string) error {
	if failure := repository.record(OperationCheckout, branchName); failure != nil {
		return failure
	}
	repository.SetBranch(branchName)
	return nil
}

// CheckoutTracking implements vcs.Repository.
func (repository *FakeRepository) CheckoutTracking(_ context.Context, branchName string, remoteName string) error {
	if failure := repository.record(OperationCheckoutTracking, branchName, remoteName); failure != nil {
		return failure
	}
	repository.SetBranch(branchName)
	return nil
}

// AddAll implements vcs.Repository.
func (repository *FakeRepository) AddAll(_ context.Context) error {
	if failure := repository.record(OperationAddAll); failure != nil {
		return failure
	}
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	for fileName := range repository.pendingChanges {
		repository.stagedChanges[fileName] = struct{}{}
	}
	repository.pendingChanges = map[string]struct{}{}
	return nil
}

// Commit implements vcs.Repository.
func (repository *FakeRepository) Commit(_ context.Context, message string) error {
	if failure := repository.record(OperationCommit, message); failure != nil {
		return failure
	}
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	repository.commitMessages = append(repository.commitMessages, message)
	repository.stagedChanges = map[string]struct{}{}
	return nil
}

// Push implements vcs.Repository.
func (repository *FakeRepository) Push(_ context.Context) error {
	return repository.record(OperationPush)
}

// PushWithUpstream implements vcs.Repository.
func (repository *FakeRepository) PushWithUpstream(_ context.Context, remoteName string, branchName string) error {
	return repository.record(OperationPushWithUpstream, remoteName, branchName)
}

// CreateAnnotatedTag implements vcs.Repository.
func (repository *FakeRepository) CreateAnnotatedTag(_ context.Context, tagName string, message string) error {
	if failure := repository.record(OperationCreateAnnotatedTag, tagName, message); failure != nil {
		return failure
	}
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	repository.tags[tagName] = message
	return nil
}

func (repository *FakeRepository) record(operation string, arguments ...string) error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	repository.calls = append(repository.calls, Call{Operation: operation, Arguments: arguments})
	return repository.failures[operation]
}

// FakeClient clones by writing seeded files to disk and handing out FakeRepository values.
type FakeClient struct {
	mutex         sync.Mutex
	seededFiles   map[string]map[string]string
	cloneFailures map[string]error
	repositories  map[string]*FakeRepository
	clonedURLs    []string
	openedPaths   []string
}

// NewFakeClient constructs an empty client.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		seededFiles:   map[string]map[string]string{},
		cloneFailures: map[string]error{},
		repositories:  map[string]*FakeRepository{},
	}
}

// SeedRemote makes clones of remoteURL contain files (name to contents).
func (client *FakeClient) SeedRemote(remoteURL string, files map[string]string) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	client.seededFiles[remoteURL] = files
}

// FailClone makes cloning remoteURL fail.
func (client *FakeClient) FailClone(remoteURL string, failure error) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	client.cloneFailures[remoteURL] = failure
}

// RegisterExisting makes Open(path) return repository.
func (client *FakeClient) RegisterExisting(repository *FakeRepository) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	client.repositories[repository.Path()] = repository
}

// Repository returns the handle created for path.
func (client *FakeClient) Repository(path string) *FakeRepository {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	return client.repositories[path]
}

// ClonedURLs returns the cloned URLs in order.
func (client *FakeClient) ClonedURLs() []string {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	return append([]string{}, client.clonedURLs...)
}

// OpenedPaths returns the reopened paths in order.
func (client *FakeClient) OpenedPaths() []string {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	return append([]string{}, client.openedPaths...)
}

// Clone implements vcs.Client.
func (client *FakeClient) Clone(_ context.Context, remoteURL string, path string) (vcs.Repository, error) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	client.clonedURLs = append(client.clonedURLs, remoteURL)
	if failure, failing := client.cloneFailures[remoteURL]; failing {
		return nil, failure
	}

	if mkdirError := os.MkdirAll(path, seededDirectoryPermissions); mkdirError != nil {
		return nil, mkdirError
	}
	for fileName, contents := range client.seededFiles[remoteURL] {
		if writeError := os.WriteFile(filepath.Join(path, fileName), []byte(contents), seededFilePermissions); writeError != nil {
			return nil, writeError
		}
	}

	repository := NewFakeRepository(path, remoteURL, defaultBranchConstant)
	client.repositories[path] = repository
	return repository, nil
}

// Open implements vcs.Client.
func (client *FakeClient) Open(_ context.Context, path string) (vcs.Repository, error) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	client.openedPaths = append(client.openedPaths, path)
	repository, known := client.repositories[path]
	if !known {
		return nil, fmt.Errorf("%w: %s", vcs.ErrNotRepository, path)
	}
	return repository, nil
}
