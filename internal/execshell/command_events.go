package execshell

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted is called before the runner is invoked.
	CommandStarted(command ShellCommand)
	// CommandCompleted is called once the process exits, whatever its exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed is called when the process could not be run at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// RecordingCommandEventObserver keeps the rendered lifecycle messages in memory.
type RecordingCommandEventObserver struct {
	formatter CommandMessageFormatter
	messages  []string
}

// CommandStarted records the start message.
func (recorder *RecordingCommandEventObserver) CommandStarted(command ShellCommand) {
	recorder.messages = append(recorder.messages, recorder.formatter.BuildStartedMessage(command))
}

// CommandCompleted records either the success or the failure message.
func (recorder *RecordingCommandEventObserver) CommandCompleted(command ShellCommand, result ExecutionResult) {
	if result.ExitCode == 0 {
		recorder.messages = append(recorder.messages, recorder.formatter.BuildSuccessMessage(command, result))
		return
	}
	recorder.messages = append(recorder.messages, recorder.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed records the execution failure message.
func (recorder *RecordingCommandEventObserver) CommandExecutionFailed(command ShellCommand, failure error) {
	recorder.messages = append(recorder.messages, recorder.formatter.BuildExecutionFailureMessage(command, failure))
}

// Messages returns a copy of the recorded messages in arrival order.
func (recorder *RecordingCommandEventObserver) Messages() []string {
	return append([]string{}, recorder.messages...)
}
