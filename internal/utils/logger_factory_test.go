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

	"github.com/temirov/gitfleet/internal/utils"
)

const testLogMessageConstant = "repository ready"

func captureStandardError(testInstance *testing.T, build func() error) []byte {
	testInstance.Helper()
	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	originalStandardError := os.Stderr
	os.Stderr = pipeWriter
	buildError := build()
	os.Stderr = originalStandardError
	require.NoError(testInstance, buildError)

	require.NoError(testInstance, pipeWriter.Close())
	capturedOutput, readError := io.ReadAll(pipeReader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, pipeReader.Close())
	return bytes.TrimSpace(capturedOutput)
}

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name           string
		logLevel       utils.LogLevel
		logFormat      utils.LogFormat
		expectJSON     bool
		expectMessages bool
	}{
		{name: "StructuredDebug", logLevel: utils.LogLevelDebug, logFormat: utils.LogFormatStructured, expectJSON: true, expectMessages: true},
		{name: "StructuredInfo", logLevel: utils.LogLevelInfo, logFormat: utils.LogFormatStructured, expectJSON: true, expectMessages: true},
		{name: "ConsoleInfo", logLevel: utils.LogLevelInfo, logFormat: utils.LogFormatConsole, expectMessages: true},
		{name: "ConsoleErrorSuppressesInfo", logLevel: utils.LogLevelError, logFormat: utils.LogFormatConsole},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			capturedOutput := captureStandardError(subTest, func() error {
				logger, creationError := utils.NewLoggerFactory().CreateLogger(testCase.logLevel, testCase.logFormat)
				if creationError != nil {
					return creationError
				}
				logger.Info(testLogMessageConstant)
				if syncError := logger.Sync(); syncError != nil && !errors.Is(syncError, syscall.ENOTSUP) && !errors.Is(syncError, syscall.EINVAL) {
					return syncError
				}
				return nil
			})

			if !testCase.expectMessages {
				require.Empty(subTest, capturedOutput)
				return
			}
			require.Contains(subTest, string(capturedOutput), testLogMessageConstant)
			require.Equal(subTest, testCase.expectJSON, json.Valid(capturedOutput))
		})
	}
}

func TestLoggerFactoryRejectsUnsupportedSettings(testInstance *testing.T) {
	loggerFactory := utils.NewLoggerFactory()

	logger, levelError := loggerFactory.CreateLogger(utils.LogLevel("trace"), utils.LogFormatStructured)
	require.Error(testInstance, levelError)
	require.Nil(testInstance, logger)

	logger, formatError := loggerFactory.CreateLogger(utils.LogLevelInfo, utils.LogFormat("xml"))
	require.Error(testInstance, formatError)
	require.Nil(testInstance, logger)
}

func TestParseLogLevelAndFormat(testInstance *testing.T) {
	parsedLevel, levelError := utils.ParseLogLevel(" WARN ")
	require.NoError(testInstance, levelError)
	require.Equal(testInstance, utils.LogLevelWarn, parsedLevel)

	_, unsupportedLevelError := utils.ParseLogLevel("trace")
	require.EqualError(testInstance, unsupportedLevelError, "unsupported log level: trace")

	parsedFormat, formatError := utils.ParseLogFormat("Console")
	require.NoError(testInstance, formatError)
	require.Equal(testInstance, utils.LogFormatConsole, parsedFormat)

	_, unsupportedFormatError := utils.ParseLogFormat("xml")
	require.Error(testInstance, unsupportedFormatError)
}
