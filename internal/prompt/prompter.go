// Package prompt asks the operator for values a command was invoked without.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompt texts shown to the operator.
const (
	NewBranchPromptConstant      = "Name of branch to be created:"
	WorkingBranchPromptConstant  = "Enter name of working branch:"
	CommitMessagePromptConstant  = "Message to commit:"
	TagNamePromptConstant        = "Tag name:"
	TagDescriptionPromptConstant = "Tag description:"

	promptSuffixConstant          = " "
	emptyResponseTemplateConstant = "no answer given to %q"
	inputClosedMessageConstant    = "input closed before an answer was given"
)

// ErrInputClosed indicates the input reached EOF without any answer.
var ErrInputClosed = errors.New(inputClosedMessageConstant)

// EmptyResponseError reports a blank answer to a prompt that requires a value.
type EmptyResponseError struct {
	Prompt string
}

// Error names the prompt.
func (responseError EmptyResponseError) Error() string {
	return fmt.Sprintf(emptyResponseTemplateConstant, responseError.Prompt)
}

// IOPrompter reads single-line answers from an io.Reader.
type IOPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOPrompter constructs a prompter from the provided reader and writer.
func NewIOPrompter(input io.Reader, output io.Writer) *IOPrompter {
	return &IOPrompter{reader: bufio.NewReader(input), writer: output}
}

// Ask writes the prompt and returns the trimmed answer. Blank answers fail with EmptyResponseError.
func (prompter *IOPrompter) Ask(prompt string) (string, error) {
	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, prompt+promptSuffixConstant); writeError != nil {
			return "", writeError
		}
	}

	response, readError := prompter.reader.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", readError
	}
	if errors.Is(readError, io.EOF) && len(response) == 0 {
		return "", ErrInputClosed
	}

	trimmedResponse := strings.TrimSpace(response)
	if len(trimmedResponse) == 0 {
		return "", EmptyResponseError{Prompt: prompt}
	}
	return trimmedResponse, nil
}

// Resolve returns value when it is not blank and asks prompt otherwise.
func (prompter *IOPrompter) Resolve(value string, prompt string) (string, error) {
	if trimmedValue := strings.TrimSpace(value); len(trimmedValue) > 0 {
		return trimmedValue, nil
	}
	return prompter.Ask(prompt)
}
