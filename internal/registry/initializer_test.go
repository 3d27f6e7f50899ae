package registry_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitfleet/internal/manifest"
	"github.com/temirov/gitfleet/internal/registry"
	"github.com/temirov/gitfleet/internal/vcs/testsupport"
)

const (
	testBaseURLConstant       = "https://example.com/org/"
	testLibraryPrefixConstant = "lib_"
	testLibrarySuffixConstant = ".git"
	testProjectNameConstant   = "Mixer"
	testManifestNameConstant  = "MixerLibs.txt"
)

var errTestNetwork = errors.New("network unreachable")

type initializerFixture struct {
	client    *testsupport.FakeClient
	layout    registry.WorkspaceLayout
	naming    registry.RemoteNaming
	output    *bytes.Buffer
	observed  *observer.ObservedLogs
	logger    *zap.Logger
	workspace string
}

func newInitializerFixture(testInstance *testing.T, manifestContents string) initializerFixture {
	testInstance.Helper()
	workspace := testInstance.TempDir()
	core, observed := observer.New(zap.DebugLevel)
	fixture := initializerFixture{
		client:    testsupport.NewFakeClient(),
		layout:    registry.WorkspaceLayout{Root: workspace, ProjectDirectory: "project", LibrariesDirectory: "Libs"},
		naming:    registry.RemoteNaming{BaseURL: testBaseURLConstant, LibraryPrefix: testLibraryPrefixConstant, LibrarySuffix: testLibrarySuffixConstant},
		output:    &bytes.Buffer{},
		observed:  observed,
		logger:    zap.New(core),
		workspace: workspace,
	}
	fixture.client.SeedRemote(fixture.naming.ProjectURL(testProjectNameConstant), map[string]string{
		testManifestNameConstant: manifestContents,
		"README.md":              "mixer firmware\n",
	})
	return fixture
}

func (fixture initializerFixture) initializer(policy registry.ClonePolicy) *registry.Initializer {
	return registry.NewInitializer(registry.InitializerDependencies{
		Client:  fixture.client,
		Naming:  fixture.naming,
		Layout:  fixture.layout,
		Locator: manifest.Locator{},
		Policy:  policy,
		Output:  fixture.output,
		Logger:  fixture.logger,
	})
}

func TestInitializeOrdersLibrariesBeforeProject(testInstance *testing.T) {
	fixture := newInitializerFixture(testInstance, "Adc\r\nDac\r\nComms\r\n")

	repositoryRegistry, initializationError := fixture.initializer(registry.ClonePolicyAbort).Initialize(context.Background(), testProjectNameConstant)
	require.NoError(testInstance, initializationError)
	require.Equal(testInstance, []string{"Adc", "Dac", "Comms", "Mixer"}, repositoryRegistry.Names())
	require.Equal(testInstance, []string{
		"https://example.com/org/Mixer",
		"https://example.com/org/lib_Adc.git",
		"https://example.com/org/lib_Dac.git",
		"https://example.com/org/lib_Comms.git",
	}, fixture.client.ClonedURLs())

	projectRecord, lookupError := repositoryRegistry.Lookup(testProjectNameConstant)
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, registry.KindProject, projectRecord.Kind)
	require.Equal(testInstance, filepath.Join(fixture.workspace, "project", "Mixer"), projectRecord.Path)
	require.Same(testInstance, fixture.client.Repository(projectRecord.Path), projectRecord.Handle)

	libraryRecord, libraryError := repositoryRegistry.Lookup("Dac")
	require.NoError(testInstance, libraryError)
	require.Equal(testInstance, registry.KindLibrary, libraryRecord.Kind)
	require.Equal(testInstance, filepath.Join(fixture.workspace, "Libs", "Dac"), libraryRecord.Path)

	require.Contains(testInstance, fixture.output.String(), "Cloning project...\n")
	require.Contains(testInstance, fixture.output.String(), "Cloning libraries...\n")
	require.Contains(testInstance, fixture.output.String(), "Cloning Comms from https://example.com/org/lib_Comms.git\n")
	require.Equal(testInstance, 4, fixture.observed.FilterMessage("repository ready").Len())
}

func TestInitializeWithEmptyManifestRegistersProjectOnly(testInstance *testing.T) {
	fixture := newInitializerFixture(testInstance, "\n\n")

	repositoryRegistry, initializationError := fixture.initializer(registry.ClonePolicyAbort).Initialize(context.Background(), testProjectNameConstant)
	require.NoError(testInstance, initializationError)
	require.Equal(testInstance, []string{testProjectNameConstant}, repositoryRegistry.Names())
}

func TestInitializeFailures(testInstance *testing.T) {
	testCases := []struct {
		name          string
		manifest      string
		projectName   string
		prepare       func(fixture initializerFixture)
		assertFailure func(testInstance *testing.T, failure error)
	}{
		{
			name:        "project_clone_failure",
			manifest:    "Adc\n",
			projectName: testProjectNameConstant,
			prepare: func(fixture initializerFixture) {
				fixture.client.FailClone(fixture.naming.ProjectURL(testProjectNameConstant), errTestNetwork)
			},
			assertFailure: func(testInstance *testing.T, failure error) {
				var cloneError registry.CloneError
				require.ErrorAs(testInstance, failure, &cloneError)
				require.Equal(testInstance, testProjectNameConstant, cloneError.Name)
				require.ErrorIs(testInstance, failure, errTestNetwork)
			},
		},
		{
			name:        "reserved_project_name",
			manifest:    "Adc\n",
			projectName: registry.AllTarget,
			assertFailure: func(testInstance *testing.T, failure error) {
				var reservedError registry.ReservedRepositoryNameError
				require.ErrorAs(testInstance, failure, &reservedError)
			},
		},
		{
			name:        "reserved_library_name",
			manifest:    "Adc\nall\n",
			projectName: testProjectNameConstant,
			assertFailure: func(testInstance *testing.T, failure error) {
				var reservedError registry.ReservedRepositoryNameError
				require.ErrorAs(testInstance, failure, &reservedError)
			},
		},
		{
			name:        "library_named_like_project",
			manifest:    "Adc\nMixer\n",
			projectName: testProjectNameConstant,
			assertFailure: func(testInstance *testing.T, failure error) {
				var duplicateError registry.DuplicateRepositoryError
				require.ErrorAs(testInstance, failure, &duplicateError)
				require.Equal(testInstance, testProjectNameConstant, duplicateError.Name)
			},
		},
		{
			name:        "duplicate_manifest_entry",
			manifest:    "Adc\nAdc\n",
			projectName: testProjectNameConstant,
			assertFailure: func(testInstance *testing.T, failure error) {
				var duplicateError manifest.DuplicateLibraryError
				require.ErrorAs(testInstance, failure, &duplicateError)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newInitializerFixture(testInstance, testCase.manifest)
			if testCase.prepare != nil {
				testCase.prepare(fixture)
			}
			_, initializationError := fixture.initializer(registry.ClonePolicyAbort).Initialize(context.Background(), testCase.projectName)
			require.Error(testInstance, initializationError)
			testCase.assertFailure(testInstance, initializationError)
		})
	}
}

func TestInitializeManifestNotFound(testInstance *testing.T) {
	fixture := newInitializerFixture(testInstance, "Adc\n")
	fixture.client.SeedRemote(fixture.naming.ProjectURL(testProjectNameConstant), map[string]string{
		"AdcLibs.txt": "Adc\n",
		"DacLibs.txt": "Dac\n",
	})

	_, initializationError := fixture.initializer(registry.ClonePolicyAbort).Initialize(context.Background(), testProjectNameConstant)
	var notFoundError manifest.ManifestNotFoundError
	require.ErrorAs(testInstance, initializationError, &notFoundError)
	require.Equal(testInstance, []string{"AdcLibs.txt", "DacLibs.txt"}, notFoundError.Candidates)
	require.Len(testInstance, fixture.client.ClonedURLs(), 1)
}

func TestInitializeClonePolicies(testInstance *testing.T) {
	testCases := []struct {
		name               string
		policy             registry.ClonePolicy
		expectedClones     []string
		expectedFailures   int
		expectedFailedName string
	}{
		{
			name:   "abort_stops_at_first_failure",
			policy: registry.ClonePolicyAbort,
			expectedClones: []string{
				"https://example.com/org/Mixer",
				"https://example.com/org/lib_Adc.git",
				"https://example.com/org/lib_Dac.git",
			},
			expectedFailures:   1,
			expectedFailedName: "Dac",
		},
		{
			name:   "collect_attempts_every_library",
			policy: registry.ClonePolicyCollect,
			expectedClones: []string{
				"https://example.com/org/Mixer",
				"https://example.com/org/lib_Adc.git",
				"https://example.com/org/lib_Dac.git",
				"https://example.com/org/lib_Comms.git",
			},
			expectedFailures:   2,
			expectedFailedName: "Dac",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newInitializerFixture(testInstance, "Adc\nDac\nComms\n")
			fixture.client.FailClone(fixture.naming.LibraryURL("Dac"), errTestNetwork)
			fixture.client.FailClone(fixture.naming.LibraryURL("Comms"), errTestNetwork)

			repositoryRegistry, initializationError := fixture.initializer(testCase.policy).Initialize(context.Background(), testProjectNameConstant)
			require.Nil(testInstance, repositoryRegistry)
			require.Error(testInstance, initializationError)
			require.Equal(testInstance, testCase.expectedClones, fixture.client.ClonedURLs())

			failures := multierr.Errors(initializationError)
			require.Len(testInstance, failures, testCase.expectedFailures)
			var cloneError registry.CloneError
			require.ErrorAs(testInstance, failures[0], &cloneError)
			require.Equal(testInstance, testCase.expectedFailedName, cloneError.Name)
			require.ErrorIs(testInstance, initializationError, errTestNetwork)
		})
	}
}

func TestInitializeReusesMatchingClones(testInstance *testing.T) {
	fixture := newInitializerFixture(testInstance, "Adc\n")
	_, firstError := fixture.initializer(registry.ClonePolicyAbort).Initialize(context.Background(), testProjectNameConstant)
	require.NoError(testInstance, firstError)
	fixture.output.Reset()

	repositoryRegistry, secondError := fixture.initializer(registry.ClonePolicyAbort).Initialize(context.Background(), testProjectNameConstant)
	require.NoError(testInstance, secondError)
	require.Equal(testInstance, []string{"Adc", "Mixer"}, repositoryRegistry.Names())
	require.Len(testInstance, fixture.client.ClonedURLs(), 2)
	require.Len(testInstance, fixture.client.OpenedPaths(), 2)
	require.Contains(testInstance, fixture.output.String(), "Reusing Mixer at "+fixture.layout.ProjectPath(testProjectNameConstant))
}

func TestInitializeRejectsOccupiedPaths(testInstance *testing.T) {
	testCases := []struct {
		name    string
		prepare func(testInstance *testing.T, fixture initializerFixture)
	}{
		{
			name: "foreign_clone",
			prepare: func(testInstance *testing.T, fixture initializerFixture) {
				projectPath := fixture.layout.ProjectPath(testProjectNameConstant)
				require.NoError(testInstance, os.MkdirAll(projectPath, 0o755))
				require.NoError(testInstance, os.WriteFile(filepath.Join(projectPath, "README.md"), []byte("other\n"), 0o644))
				fixture.client.RegisterExisting(testsupport.NewFakeRepository(projectPath, "https://example.com/other/Mixer", "master"))
			},
		},
		{
			name: "plain_directory",
			prepare: func(testInstance *testing.T, fixture initializerFixture) {
				projectPath := fixture.layout.ProjectPath(testProjectNameConstant)
				require.NoError(testInstance, os.MkdirAll(projectPath, 0o755))
				require.NoError(testInstance, os.WriteFile(filepath.Join(projectPath, "notes.txt"), []byte("notes\n"), 0o644))
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newInitializerFixture(testInstance, "Adc\n")
			testCase.prepare(testInstance, fixture)

			_, initializationError := fixture.initializer(registry.ClonePolicyAbort).Initialize(context.Background(), testProjectNameConstant)
			var cloneError registry.CloneError
			require.ErrorAs(testInstance, initializationError, &cloneError)
			require.ErrorIs(testInstance, initializationError, registry.ErrPathConflict)
			require.Empty(testInstance, fixture.client.ClonedURLs())
		})
	}
}

func TestParseClonePolicy(testInstance *testing.T) {
	testCases := []struct {
		name           string
		rawValue       string
		expectedPolicy registry.ClonePolicy
		expectError    bool
	}{
		{name: "empty_defaults_to_abort", rawValue: "", expectedPolicy: registry.ClonePolicyAbort},
		{name: "abort", rawValue: "abort", expectedPolicy: registry.ClonePolicyAbort},
		{name: "collect", rawValue: "collect", expectedPolicy: registry.ClonePolicyCollect},
		{name: "unsupported", rawValue: "retry", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			policy, parseError := registry.ParseClonePolicy(testCase.rawValue)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedPolicy, policy)
		})
	}
}
