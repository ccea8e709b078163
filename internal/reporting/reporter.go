// Package reporting prints the human-readable status lines shown while dependencies are installed.
package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const lineTerminatorConstant = "\n"

// Reporter emits one status line per call.
type Reporter interface {
	Reportf(format string, arguments ...any)
}

type writerReporter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewWriterReporter constructs a Reporter that writes lines to writer, or to standard output when writer is nil.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &writerReporter{writer: writer}
}

// Reportf formats a status line and terminates it with a newline when the format does not.
func (reporter *writerReporter) Reportf(format string, arguments ...any) {
	statusLine := fmt.Sprintf(format, arguments...)
	if !strings.HasSuffix(statusLine, lineTerminatorConstant) {
		statusLine += lineTerminatorConstant
	}

	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	_, _ = io.WriteString(reporter.writer, statusLine)
}

type discardReporter struct{}

// NewDiscardReporter returns a Reporter that drops every line.
func NewDiscardReporter() Reporter {
	return discardReporter{}
}

func (discardReporter) Reportf(string, ...any) {}

// Resolve returns reporter, or a discarding reporter when reporter is nil.
func Resolve(reporter Reporter) Reporter {
	if reporter == nil {
		return NewDiscardReporter()
	}
	return reporter
}
