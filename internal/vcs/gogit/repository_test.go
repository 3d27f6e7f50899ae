package gogit

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gitfleet/internal/vcs"
)

const (
	testAuthorNameConstant     = "Fleet Bot"
	testAuthorEmailConstant    = "bot@example.com"
	testDefaultBranchConstant  = "master"
	testReadmeFileNameConstant = "README.md"
	testNewFileNameConstant    = "notes.txt"
)

type remoteFixture struct {
	barePath string
	seed     *git.Repository
	seedPath string
}

// requireLocalTransport skips when git-upload-pack is unavailable for go-git's file transport.
func requireLocalTransport(testInstance *testing.T) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath("git-upload-pack"); lookupError != nil {
		testInstance.Skip("git-upload-pack not available for local transport")
	}
}

func newRemoteFixture(testInstance *testing.T) remoteFixture {
	testInstance.Helper()
	requireLocalTransport(testInstance)

	fixtureRoot := testInstance.TempDir()
	barePath := filepath.Join(fixtureRoot, "remote.git")
	_, bareError := git.PlainInit(barePath, true)
	require.NoError(testInstance, bareError)

	seedPath := filepath.Join(fixtureRoot, "seed")
	seed, seedError := git.PlainInit(seedPath, false)
	require.NoError(testInstance, seedError)
	_, remoteError := seed.CreateRemote(&config.RemoteConfig{Name: vcs.DefaultRemoteName, URLs: []string{barePath}})
	require.NoError(testInstance, remoteError)

	fixture := remoteFixture{barePath: barePath, seed: seed, seedPath: seedPath}
	fixture.commitFile(testInstance, testReadmeFileNameConstant, "# Mixer\n")
	fixture.pushBranch(testInstance, testDefaultBranchConstant)
	return fixture
}

func (fixture remoteFixture) commitFile(testInstance *testing.T, fileName string, contents string) plumbing.Hash {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(filepath.Join(fixture.seedPath, fileName), []byte(contents), 0o644))
	worktree, worktreeError := fixture.seed.Worktree()
	require.NoError(testInstance, worktreeError)
	_, addError := worktree.Add(fileName)
	require.NoError(testInstance, addError)
	commitHash, commitError := worktree.Commit("Add "+fileName, &git.CommitOptions{
		Author: &object.Signature{Name: testAuthorNameConstant, Email: testAuthorEmailConstant, When: time.Now()},
	})
	require.NoError(testInstance, commitError)
	return commitHash
}

func (fixture remoteFixture) pushBranch(testInstance *testing.T, branchName string) {
	testInstance.Helper()
	pushError := fixture.seed.Push(&git.PushOptions{
		RemoteName: vcs.DefaultRemoteName,
		RefSpecs:   []config.RefSpec{config.RefSpec("refs/heads/" + branchName + ":refs/heads/" + branchName)},
	})
	require.NoError(testInstance, pushError)
}

func (fixture remoteFixture) remoteBranchHash(testInstance *testing.T, branchName string) plumbing.Hash {
	testInstance.Helper()
	bare, openError := git.PlainOpen(fixture.barePath)
	require.NoError(testInstance, openError)
	reference, referenceError := bare.Reference(plumbing.NewBranchReferenceName(branchName), true)
	require.NoError(testInstance, referenceError)
	return reference.Hash()
}

func newTestClient() *Client {
	return NewClient(ClientOptions{
		Author:      AuthorIdentity{Name: testAuthorNameConstant, Email: testAuthorEmailConstant},
		Credentials: NewCredentialSource(func(string) string { return "" }),
	})
}

func cloneFixture(testInstance *testing.T, fixture remoteFixture) *Repository {
	testInstance.Helper()
	clonePath := filepath.Join(testInstance.TempDir(), "libraries", "Adc")
	handle, cloneError := newTestClient().Clone(context.Background(), fixture.barePath, clonePath)
	require.NoError(testInstance, cloneError)
	return handle.(*Repository)
}

func TestClientCloneAndOpen(testInstance *testing.T) {
	fixture := newRemoteFixture(testInstance)
	handle := cloneFixture(testInstance, fixture)

	executionContext := context.Background()
	branchName, branchError := handle.CurrentBranch(executionContext)
	require.NoError(testInstance, branchError)
	require.Equal(testInstance, testDefaultBranchConstant, branchName)

	remoteURL, remoteError := handle.RemoteURL(executionContext, vcs.DefaultRemoteName)
	require.NoError(testInstance, remoteError)
	require.Equal(testInstance, fixture.barePath, remoteURL)

	_, missingRemoteError := handle.RemoteURL(executionContext, "upstream")
	require.ErrorIs(testInstance, missingRemoteError, vcs.ErrRemoteNotFound)

	statusText, statusError := handle.Status(executionContext)
	require.NoError(testInstance, statusError)
	require.Equal(testInstance, "On branch master\nnothing to commit, working tree clean\n", statusText)

	reopened, openError := newTestClient().Open(executionContext, handle.Path())
	require.NoError(testInstance, openError)
	require.Equal(testInstance, handle.Path(), reopened.Path())
}

func TestClientRejectsUnusablePaths(testInstance *testing.T) {
	executionContext := context.Background()
	client := newTestClient()

	_, openError := client.Open(executionContext, testInstance.TempDir())
	require.ErrorIs(testInstance, openError, vcs.ErrNotRepository)

	occupiedPath := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(occupiedPath, "stray.txt"), []byte("x"), 0o644))
	_, cloneError := client.Clone(executionContext, "https://example.invalid/fleet/Mixer.git", occupiedPath)
	require.ErrorIs(testInstance, cloneError, os.ErrExist)
}

func TestRepositoryStageCommitPush(testInstance *testing.T) {
	fixture := newRemoteFixture(testInstance)
	handle := cloneFixture(testInstance, fixture)
	executionContext := context.Background()

	require.ErrorIs(testInstance, handle.Commit(executionContext, "nothing"), git.ErrEmptyCommit)

	require.NoError(testInstance, os.WriteFile(filepath.Join(handle.Path(), testNewFileNameConstant), []byte("mix\n"), 0o644))
	require.NoError(testInstance, handle.AddAll(executionContext))
	require.NoError(testInstance, handle.AddAll(executionContext))

	statusText, statusError := handle.Status(executionContext)
	require.NoError(testInstance, statusError)
	require.Equal(testInstance, "On branch master\nA  "+testNewFileNameConstant+"\n", statusText)

	require.NoError(testInstance, handle.Commit(executionContext, "Add notes"))
	require.NoError(testInstance, handle.Push(executionContext))
	require.NoError(testInstance, handle.Push(executionContext))

	localHead, headError := handle.repository.Head()
	require.NoError(testInstance, headError)
	require.Equal(testInstance, localHead.Hash(), fixture.remoteBranchHash(testInstance, testDefaultBranchConstant))

	headCommit, commitError := handle.repository.CommitObject(localHead.Hash())
	require.NoError(testInstance, commitError)
	require.Equal(testInstance, testAuthorNameConstant, headCommit.Author.Name)
	require.Equal(testInstance, "Add notes", strings.TrimSpace(headCommit.Message))
}

func TestRepositoryCreateBranchAndPushWithUpstream(testInstance *testing.T) {
	fixture := newRemoteFixture(testInstance)
	handle := cloneFixture(testInstance, fixture)
	executionContext := context.Background()

	require.NoError(testInstance, os.WriteFile(filepath.Join(handle.Path(), testNewFileNameConstant), []byte("draft\n"), 0o644))

	require.NoError(testInstance, handle.CreateBranch(executionContext, "feature-x"))
	require.ErrorIs(testInstance, handle.CreateBranch(executionContext, "feature-x"), ErrBranchExists)
	require.NoError(testInstance, handle.Checkout(executionContext, "feature-x"))

	branchName, branchError := handle.CurrentBranch(executionContext)
	require.NoError(testInstance, branchError)
	require.Equal(testInstance, "feature-x", branchName)
	require.FileExists(testInstance, filepath.Join(handle.Path(), testNewFileNameConstant))

	require.ErrorIs(testInstance, handle.Push(executionContext), ErrNoUpstream)
	require.NoError(testInstance, handle.PushWithUpstream(executionContext, vcs.DefaultRemoteName, "feature-x"))

	localHead, headError := handle.repository.Head()
	require.NoError(testInstance, headError)
	require.Equal(testInstance, localHead.Hash(), fixture.remoteBranchHash(testInstance, "feature-x"))

	repositoryConfiguration, configurationError := handle.repository.Config()
	require.NoError(testInstance, configurationError)
	require.Equal(testInstance, vcs.DefaultRemoteName, repositoryConfiguration.Branches["feature-x"].Remote)
	require.NoError(testInstance, handle.Push(executionContext))
}

func TestRepositoryCheckoutTracking(testInstance *testing.T) {
	fixture := newRemoteFixture(testInstance)
	handle := cloneFixture(testInstance, fixture)
	executionContext := context.Background()

	seedWorktree, worktreeError := fixture.seed.Worktree()
	require.NoError(testInstance, worktreeError)
	require.NoError(testInstance, seedWorktree.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName("release"), Create: true}))
	releaseHash := fixture.commitFile(testInstance, "CHANGELOG.md", "## 1.0.0\n")
	fixture.pushBranch(testInstance, "release")

	require.NoError(testInstance, handle.CheckoutTracking(executionContext, "release", vcs.DefaultRemoteName))

	branchName, branchError := handle.CurrentBranch(executionContext)
	require.NoError(testInstance, branchError)
	require.Equal(testInstance, "release", branchName)

	localHead, headError := handle.repository.Head()
	require.NoError(testInstance, headError)
	require.Equal(testInstance, releaseHash, localHead.Hash())

	repositoryConfiguration, configurationError := handle.repository.Config()
	require.NoError(testInstance, configurationError)
	require.Equal(testInstance, plumbing.NewBranchReferenceName("release"), repositoryConfiguration.Branches["release"].Merge)

	require.ErrorIs(testInstance, handle.CheckoutTracking(executionContext, "missing", vcs.DefaultRemoteName), ErrRemoteBranchMissing)
}

func TestRepositoryCreateAnnotatedTag(testInstance *testing.T) {
	fixture := newRemoteFixture(testInstance)
	handle := cloneFixture(testInstance, fixture)
	executionContext := context.Background()

	require.NoError(testInstance, handle.CreateAnnotatedTag(executionContext, "v1.0.0", "First release"))

	tagReference, referenceError := handle.repository.Tag("v1.0.0")
	require.NoError(testInstance, referenceError)
	tagObject, tagError := handle.repository.TagObject(tagReference.Hash())
	require.NoError(testInstance, tagError)
	require.Equal(testInstance, "First release", strings.TrimSpace(tagObject.Message))
	require.Equal(testInstance, testAuthorEmailConstant, tagObject.Tagger.Email)
}

func TestRepositoryDetachedHead(testInstance *testing.T) {
	fixture := newRemoteFixture(testInstance)
	handle := cloneFixture(testInstance, fixture)

	headReference, headError := handle.repository.Head()
	require.NoError(testInstance, headError)
	worktree, worktreeError := handle.repository.Worktree()
	require.NoError(testInstance, worktreeError)
	require.NoError(testInstance, worktree.Checkout(&git.CheckoutOptions{Hash: headReference.Hash()}))

	_, branchError := handle.CurrentBranch(context.Background())
	require.ErrorIs(testInstance, branchError, vcs.ErrDetachedHead)
}
