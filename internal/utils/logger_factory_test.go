package utils_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/depfetch/internal/utils"
)

const (
	testVisibleMessageConstant = "dependency materialized"
	testHiddenMessageConstant  = "manifest loaded"
)

// captureStandardError builds a logger while standard error is redirected and returns what it wrote.
func captureStandardError(testInstance *testing.T, level utils.LogLevel, format utils.LogFormat, emit func(logger *zap.Logger)) string {
	testInstance.Helper()
	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	originalStandardError := os.Stderr
	os.Stderr = pipeWriter
	logger, creationError := utils.NewLoggerFactory().CreateLogger(level, format)
	os.Stderr = originalStandardError
	require.NoError(testInstance, creationError)

	emit(logger)
	if syncError := logger.Sync(); syncError != nil {
		require.True(testInstance, errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL))
	}
	require.NoError(testInstance, pipeWriter.Close())

	captured, readError := io.ReadAll(pipeReader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, pipeReader.Close())
	return string(bytes.TrimSpace(captured))
}

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name           string
		level          utils.LogLevel
		format         utils.LogFormat
		expectJSONLine bool
	}{
		{name: "structured_info", level: utils.LogLevelInfo, format: utils.LogFormatStructured, expectJSONLine: true},
		{name: "console_debug", level: utils.LogLevelDebug, format: utils.LogFormatConsole, expectJSONLine: false},
		{name: "mixed_case_names", level: utils.LogLevel("INFO"), format: utils.LogFormat(" Console "), expectJSONLine: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := captureStandardError(testInstance, testCase.level, testCase.format, func(logger *zap.Logger) {
				logger.Info(testVisibleMessageConstant, zap.String("dependency", "utilities"))
			})

			require.Contains(testInstance, output, testVisibleMessageConstant)
			require.Equal(testInstance, testCase.expectJSONLine, json.Valid([]byte(output)))
		})
	}
}

func TestLoggerFactoryFiltersBelowLevel(testInstance *testing.T) {
	output := captureStandardError(testInstance, utils.LogLevelWarn, utils.LogFormatStructured, func(logger *zap.Logger) {
		logger.Info(testHiddenMessageConstant)
		logger.Warn(testVisibleMessageConstant)
	})

	require.NotContains(testInstance, output, testHiddenMessageConstant)
	require.Contains(testInstance, output, testVisibleMessageConstant)
}

func TestLoggerFactoryRejectsUnknownSettings(testInstance *testing.T) {
	factory := utils.NewLoggerFactory()

	logger, levelError := factory.CreateLogger(utils.LogLevel("verbose"), utils.LogFormatStructured)
	require.ErrorContains(testInstance, levelError, "unsupported log level")
	require.Nil(testInstance, logger)

	logger, formatError := factory.CreateLogger(utils.LogLevelInfo, utils.LogFormat("xml"))
	require.ErrorContains(testInstance, formatError, "unsupported log format")
	require.Nil(testInstance, logger)
}
