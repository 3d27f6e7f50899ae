package execshell_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitfleet/internal/execshell"
)

const testRepositoryDirectoryConstant = "/workspace/libraries/Adc"

func TestCommandMessageFormatterDescribesGitSubcommands(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	testCases := []struct {
		name            string
		arguments       []string
		result          execshell.ExecutionResult
		failure         error
		build           func(execshell.ShellCommand, execshell.ExecutionResult, error) string
		expectedMessage string
	}{
		{
			name:      "clone_started",
			arguments: []string{"clone", "https://example.com/org/libAdc.git", testRepositoryDirectoryConstant},
			build: func(command execshell.ShellCommand, _ execshell.ExecutionResult, _ error) string {
				return formatter.BuildStartedMessage(command)
			},
			expectedMessage: "Cloning https://example.com/org/libAdc.git into " + testRepositoryDirectoryConstant,
		},
		{
			name:      "current_branch_success",
			arguments: []string{"rev-parse", "--abbrev-ref", "HEAD"},
			result:    execshell.ExecutionResult{StandardOutput: "feature\n"},
			build: func(command execshell.ShellCommand, result execshell.ExecutionResult, _ error) string {
				return formatter.BuildSuccessMessage(command, result)
			},
			expectedMessage: "Current branch in " + testRepositoryDirectoryConstant + " is feature",
		},
		{
			name:      "current_branch_detached",
			arguments: []string{"rev-parse", "--abbrev-ref", "HEAD"},
			result:    execshell.ExecutionResult{StandardOutput: "HEAD\n"},
			build: func(command execshell.ShellCommand, result execshell.ExecutionResult, _ error) string {
				return formatter.BuildSuccessMessage(command, result)
			},
			expectedMessage: testRepositoryDirectoryConstant + " is in a detached HEAD state",
		},
		{
			name:      "tracking_checkout_started",
			arguments: []string{"checkout", "-b", "feature", "origin/feature"},
			build: func(command execshell.ShellCommand, _ execshell.ExecutionResult, _ error) string {
				return formatter.BuildStartedMessage(command)
			},
			expectedMessage: "Creating branch feature tracking origin/feature in " + testRepositoryDirectoryConstant,
		},
		{
			name:      "checkout_failure",
			arguments: []string{"checkout", "feature"},
			result:    execshell.ExecutionResult{ExitCode: 1, StandardError: "error: pathspec 'feature' did not match"},
			build: func(command execshell.ShellCommand, result execshell.ExecutionResult, _ error) string {
				return formatter.BuildFailureMessage(command, result)
			},
			expectedMessage: "Failed to switch " + testRepositoryDirectoryConstant + " to branch feature (exit code 1: error: pathspec 'feature' did not match)",
		},
		{
			name:      "push_with_upstream_success",
			arguments: []string{"push", "--set-upstream", "origin", "feature"},
			build: func(command execshell.ShellCommand, result execshell.ExecutionResult, _ error) string {
				return formatter.BuildSuccessMessage(command, result)
			},
			expectedMessage: "Pushed feature to origin from " + testRepositoryDirectoryConstant,
		},
		{
			name:      "plain_push_started",
			arguments: []string{"push"},
			build: func(command execshell.ShellCommand, _ execshell.ExecutionResult, _ error) string {
				return formatter.BuildStartedMessage(command)
			},
			expectedMessage: "Pushing current branch to upstream from " + testRepositoryDirectoryConstant,
		},
		{
			name:      "add_all_success",
			arguments: []string{"add", "--all"},
			build: func(command execshell.ShellCommand, result execshell.ExecutionResult, _ error) string {
				return formatter.BuildSuccessMessage(command, result)
			},
			expectedMessage: "Staged all changes in " + testRepositoryDirectoryConstant,
		},
		{
			name:      "commit_execution_failure",
			arguments: []string{"commit", "-m", "Bump"},
			failure:   errors.New("signal: killed"),
			build: func(command execshell.ShellCommand, _ execshell.ExecutionResult, failure error) string {
				return formatter.BuildExecutionFailureMessage(command, failure)
			},
			expectedMessage: "Unable to create commit in " + testRepositoryDirectoryConstant + " with message \"Bump\": signal: killed",
		},
		{
			name:      "tag_started",
			arguments: []string{"tag", "-a", "v1.0.0", "-m", "Release"},
			build: func(command execshell.ShellCommand, _ execshell.ExecutionResult, _ error) string {
				return formatter.BuildStartedMessage(command)
			},
			expectedMessage: "Creating tag v1.0.0 in " + testRepositoryDirectoryConstant,
		},
		{
			name:      "fetch_branch_started",
			arguments: []string{"fetch", "origin", "feature"},
			build: func(command execshell.ShellCommand, _ execshell.ExecutionResult, _ error) string {
				return formatter.BuildStartedMessage(command)
			},
			expectedMessage: "Fetching feature from origin into " + testRepositoryDirectoryConstant,
		},
		{
			name:      "fetch_branch_success",
			arguments: []string{"fetch", "origin", "feature"},
			build: func(command execshell.ShellCommand, result execshell.ExecutionResult, _ error) string {
				return formatter.BuildSuccessMessage(command, result)
			},
			expectedMessage: "Fetched feature from origin into " + testRepositoryDirectoryConstant,
		},
		{
			name:      "fetch_branch_failure",
			arguments: []string{"fetch", "origin", "feature"},
			result:    execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: couldn't find remote ref feature\n"},
			build: func(command execshell.ShellCommand, result execshell.ExecutionResult, _ error) string {
				return formatter.BuildFailureMessage(command, result)
			},
			expectedMessage: "Failed to fetch feature from origin into " + testRepositoryDirectoryConstant + " (exit code 128: fatal: couldn't find remote ref feature)",
		},
		{
			name:      "fetch_without_positional_arguments",
			arguments: []string{"fetch", "--prune"},
			build: func(command execshell.ShellCommand, _ execshell.ExecutionResult, _ error) string {
				return formatter.BuildStartedMessage(command)
			},
			expectedMessage: "Fetching all branches from default remote into " + testRepositoryDirectoryConstant,
		},
		{
			name:      "unknown_subcommand_falls_back",
			arguments: []string{"gc", "--prune"},
			build: func(command execshell.ShellCommand, _ execshell.ExecutionResult, _ error) string {
				return formatter.BuildStartedMessage(command)
			},
			expectedMessage: "Running git gc --prune (in " + testRepositoryDirectoryConstant + ")",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := execshell.ShellCommand{
				Name: execshell.CommandGit,
				Details: execshell.CommandDetails{
					Arguments:        testCase.arguments,
					WorkingDirectory: testRepositoryDirectoryConstant,
				},
			}
			require.Equal(testInstance, testCase.expectedMessage, testCase.build(command, testCase.result, testCase.failure))
		})
	}
}
