package dispatch_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitfleet/internal/dispatch"
)

func TestWriterReporter(testInstance *testing.T) {
	testCases := []struct {
		name           string
		result         dispatch.Result
		expectedOutput string
	}{
		{
			name:           "single_line_output",
			result:         dispatch.Result{Repository: "Adc", Output: "Pushed to upstream"},
			expectedOutput: "Adc: Pushed to upstream\n",
		},
		{
			name:           "multi_line_output",
			result:         dispatch.Result{Repository: "Adc", Output: "On branch dev\nnothing to commit, working tree clean\n"},
			expectedOutput: "Adc:\nOn branch dev\nnothing to commit, working tree clean\n",
		},
		{
			name:           "notice",
			result:         dispatch.Result{Repository: "Dac", Notice: "Action on master branch forbidden. Use branch-checkout to change."},
			expectedOutput: "Dac: Action on master branch forbidden. Use branch-checkout to change.\n",
		},
		{
			name:           "empty",
			result:         dispatch.Result{Repository: "Dac"},
			expectedOutput: "",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := &bytes.Buffer{}
			dispatch.NewWriterReporter(output).Report(testCase.result)
			require.Equal(testInstance, testCase.expectedOutput, output.String())
		})
	}
}

func TestWriterReporterProgress(testInstance *testing.T) {
	output := &bytes.Buffer{}
	reporter := dispatch.NewWriterReporter(output)
	reporter.Progress("This may take a moment...")
	require.Equal(testInstance, "This may take a moment...\n", output.String())

	require.NotPanics(testInstance, func() {
		dispatch.NewWriterReporter(nil).Progress("ignored")
	})
}
