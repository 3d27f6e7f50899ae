package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitfleet/internal/execshell"
)

const (
	testWorkingDirectoryConstant   = "/tmp/workspace/Mixer"
	testStandardOutputConstant     = "feature/dac\n"
	testStandardErrorConstant      = "fatal: not a git repository"
	testRunnerFailureConstant      = "executable not found"
	testStatusStartMessageConstant = "Reviewing working tree status in " + testWorkingDirectoryConstant
)

type recordingCommandRunner struct {
	executedCommands []execshell.ShellCommand
	result           execshell.ExecutionResult
	runError         error
}

func (runner *recordingCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.executedCommands = append(runner.executedCommands, command)
	if runner.runError != nil {
		return execshell.ExecutionResult{}, runner.runError
	}
	return runner.result, nil
}

func TestNewShellExecutorValidatesDependencies(testInstance *testing.T) {
	_, loggerError := execshell.NewShellExecutor(nil, &recordingCommandRunner{})
	require.ErrorIs(testInstance, loggerError, execshell.ErrLoggerNotConfigured)

	_, runnerError := execshell.NewShellExecutor(zap.NewNop(), nil)
	require.ErrorIs(testInstance, runnerError, execshell.ErrCommandRunnerNotConfigured)
}

func TestShellExecutorExecuteGit(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		runner                *recordingCommandRunner
		expectedOutput        string
		expectFailedError     bool
		expectExecutionError  bool
		expectedLogLevel      zapcore.Level
		expectedRecordedCount int
	}{
		{
			name:                  "success",
			runner:                &recordingCommandRunner{result: execshell.ExecutionResult{StandardOutput: testStandardOutputConstant}},
			expectedOutput:        testStandardOutputConstant,
			expectedLogLevel:      zapcore.DebugLevel,
			expectedRecordedCount: 2,
		},
		{
			name:                  "non_zero_exit",
			runner:                &recordingCommandRunner{result: execshell.ExecutionResult{ExitCode: 128, StandardError: testStandardErrorConstant}},
			expectFailedError:     true,
			expectedLogLevel:      zapcore.WarnLevel,
			expectedRecordedCount: 2,
		},
		{
			name:                  "runner_failure",
			runner:                &recordingCommandRunner{runError: errors.New(testRunnerFailureConstant)},
			expectExecutionError:  true,
			expectedLogLevel:      zapcore.ErrorLevel,
			expectedRecordedCount: 2,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			recorder := &execshell.RecordingCommandEventObserver{}
			executor, creationError := execshell.NewShellExecutor(zap.New(observerCore), testCase.runner, recorder, nil)
			require.NoError(testInstance, creationError)

			details := execshell.CommandDetails{
				Arguments:        []string{"status"},
				WorkingDirectory: testWorkingDirectoryConstant,
			}
			result, executionError := executor.ExecuteGit(context.Background(), details)

			require.Len(testInstance, testCase.runner.executedCommands, 1)
			require.Equal(testInstance, execshell.CommandGit, testCase.runner.executedCommands[0].Name)
			require.Equal(testInstance, details, testCase.runner.executedCommands[0].Details)

			switch {
			case testCase.expectFailedError:
				var failedError execshell.CommandFailedError
				require.ErrorAs(testInstance, executionError, &failedError)
				require.Equal(testInstance, 128, failedError.Result.ExitCode)
				require.Contains(testInstance, failedError.Error(), testStandardErrorConstant)
			case testCase.expectExecutionError:
				var runError execshell.CommandExecutionError
				require.ErrorAs(testInstance, executionError, &runError)
				require.EqualError(testInstance, errors.Unwrap(executionError), testRunnerFailureConstant)
			default:
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.expectedOutput, result.StandardOutput)
			}

			entries := observedLogs.All()
			require.NotEmpty(testInstance, entries)
			require.Equal(testInstance, testCase.expectedLogLevel, entries[len(entries)-1].Level)

			messages := recorder.Messages()
			require.Len(testInstance, messages, testCase.expectedRecordedCount)
			require.Equal(testInstance, testStatusStartMessageConstant, messages[0])
		})
	}
}

func TestCommandFailedErrorDescribesReason(testInstance *testing.T) {
	commitCommand := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"commit", "-m", "empty"}},
	}

	testCases := []struct {
		name            string
		result          execshell.ExecutionResult
		expectedMessage string
	}{
		{
			name:            "standard_error_preferred",
			result:          execshell.ExecutionResult{ExitCode: 128, StandardOutput: "ignored\n", StandardError: testStandardErrorConstant + "\n"},
			expectedMessage: "git commit -m empty failed with exit code 128: " + testStandardErrorConstant,
		},
		{
			name:            "standard_output_when_standard_error_blank",
			result:          execshell.ExecutionResult{ExitCode: 1, StandardOutput: "nothing to commit, working tree clean\n", StandardError: "  \n"},
			expectedMessage: "git commit -m empty failed with exit code 1: nothing to commit, working tree clean",
		},
		{
			name:            "no_reason",
			result:          execshell.ExecutionResult{ExitCode: 1},
			expectedMessage: "git commit -m empty failed with exit code 1",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(zap.NewNop(), &recordingCommandRunner{result: testCase.result})
			require.NoError(testInstance, creationError)

			_, executionError := executor.Execute(context.Background(), commitCommand)
			require.EqualError(testInstance, executionError, testCase.expectedMessage)
		})
	}
}
