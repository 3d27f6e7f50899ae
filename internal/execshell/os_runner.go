package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
)

const (
	environmentAssignmentTemplateConstant = "%s=%s"
	gitTerminalPromptVariableConstant     = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant     = "0"
)

// OSCommandRunner executes commands as child processes of the current process.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the command and reports its exit code. A non-zero exit is not an error at this level.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	executable.Dir = command.Details.WorkingDirectory
	executable.Env = buildEnvironment(command)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer
	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	result := ExecutionResult{}
	runError := executable.Run()
	result.StandardOutput = standardOutputBuffer.String()
	result.StandardError = standardErrorBuffer.String()
	if runError == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}
	return ExecutionResult{}, runError
}

// buildEnvironment layers command variables over the process environment.
// Git never asks for credentials on the terminal because gitfleet owns stdin for its own prompts.
func buildEnvironment(command ShellCommand) []string {
	environment := append([]string{}, os.Environ()...)
	if command.Name == CommandGit {
		environment = append(environment, fmt.Sprintf(environmentAssignmentTemplateConstant, gitTerminalPromptVariableConstant, gitTerminalPromptDisabledConstant))
	}

	variableNames := make([]string, 0, len(command.Details.EnvironmentVariables))
	for variableName := range command.Details.EnvironmentVariables {
		variableNames = append(variableNames, variableName)
	}
	sort.Strings(variableNames)
	for _, variableName := range variableNames {
		environment = append(environment, fmt.Sprintf(environmentAssignmentTemplateConstant, variableName, command.Details.EnvironmentVariables[variableName]))
	}
	return environment
}
