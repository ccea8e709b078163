package reporting_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depfetch/internal/reporting"
)

func TestWriterReporterTerminatesLines(testInstance *testing.T) {
	var output bytes.Buffer
	reporter := reporting.NewWriterReporter(&output)

	reporter.Reportf("Cloning %s from %s...", "A", "u1")
	reporter.Reportf("%s is ready.\n", "A")

	require.Equal(testInstance, "Cloning A from u1...\nA is ready.\n", output.String())
}

func TestResolveFallsBackToDiscard(testInstance *testing.T) {
	reporter := reporting.Resolve(nil)
	require.NotNil(testInstance, reporter)
	reporter.Reportf("ignored %d", 1)
}
