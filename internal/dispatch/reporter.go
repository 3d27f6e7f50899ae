package dispatch

import (
	"fmt"
	"io"
	"strings"
)

const (
	progressLineTemplateConstant = "%s\n"
	noticeLineTemplateConstant   = "%s: %s\n"
	outputHeaderTemplateConstant = "%s:\n"
	singleLineOutputTemplate     = "%s: %s\n"
	lineTerminatorConstant       = "\n"
)

// Reporter receives progress messages and per-repository results as they are produced.
type Reporter interface {
	Progress(message string)
	Report(result Result)
}

// WriterReporter renders results as plain text.
type WriterReporter struct {
	writer io.Writer
}

// NewWriterReporter constructs a WriterReporter. A nil writer discards everything.
func NewWriterReporter(writer io.Writer) *WriterReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &WriterReporter{writer: writer}
}

// Progress prints message on its own line.
func (reporter *WriterReporter) Progress(message string) {
	fmt.Fprintf(reporter.writer, progressLineTemplateConstant, message)
}

// Report prints the notice or the output of result prefixed by the repository name.
// Multi-line output is printed below a header line.
func (reporter *WriterReporter) Report(result Result) {
	if len(result.Notice) > 0 {
		fmt.Fprintf(reporter.writer, noticeLineTemplateConstant, result.Repository, result.Notice)
	}
	output := strings.TrimRight(result.Output, lineTerminatorConstant)
	if len(output) == 0 {
		return
	}
	if !strings.Contains(output, lineTerminatorConstant) {
		fmt.Fprintf(reporter.writer, singleLineOutputTemplate, result.Repository, output)
		return
	}
	fmt.Fprintf(reporter.writer, outputHeaderTemplateConstant, result.Repository)
	fmt.Fprint(reporter.writer, output+lineTerminatorConstant)
}

type discardReporter struct{}

func (discardReporter) Progress(string) {}

func (discardReporter) Report(Result) {}
