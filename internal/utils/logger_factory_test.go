package utils_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/pageaudit/internal/utils"
)

const (
	testLoggerFactoryCaseSupportedFormatConstant   = "supported_log_level_%s_format_%s"
	testLoggerFactoryCaseUnsupportedLevelConstant  = "unsupported_log_level"
	testLoggerFactoryCaseUnsupportedFormatConstant = "unsupported_log_format"
	testLoggerFactorySubtestTemplateConstant       = "%d_%s"
	testInvalidLogLevelConstant                    = "invalid"
	testInvalidLogFormatConstant                   = "invalid"
	testLogMessageConstant                         = "logger_factory_test_message"
	testDebugMessageConstant                       = "logger_factory_debug_message"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name                string
		requestedLogLevel   utils.LogLevel
		requestedLogFormat  utils.LogFormat
		expectError         bool
		expectStructuredLog bool
		expectDebugOutput   bool
	}{
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelDebug, utils.LogFormatStructured),
			requestedLogLevel:   utils.LogLevelDebug,
			requestedLogFormat:  utils.LogFormatStructured,
			expectStructuredLog: true,
			expectDebugOutput:   true,
		},
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelInfo, utils.LogFormatStructured),
			requestedLogLevel:   utils.LogLevelInfo,
			requestedLogFormat:  utils.LogFormatStructured,
			expectStructuredLog: true,
		},
		{
			name:               fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelInfo, utils.LogFormatConsole),
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormatConsole,
		},
		{
			name:               testLoggerFactoryCaseUnsupportedLevelConstant,
			requestedLogLevel:  utils.LogLevel(testInvalidLogLevelConstant),
			requestedLogFormat: utils.LogFormatStructured,
			expectError:        true,
		},
		{
			name:               testLoggerFactoryCaseUnsupportedFormatConstant,
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormat(testInvalidLogFormatConstant),
			expectError:        true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testLoggerFactorySubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			var capturedOutput bytes.Buffer
			loggerFactory := utils.NewLoggerFactoryWithOutput(&capturedOutput)

			logger, creationError := loggerFactory.CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}

			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)

			logger.Debug(testDebugMessageConstant)
			logger.Info(testLogMessageConstant)
			require.NoError(testInstance, logger.Sync())

			trimmedOutput := bytes.TrimSpace(capturedOutput.Bytes())
			require.NotEmpty(testInstance, trimmedOutput)
			require.Contains(testInstance, string(trimmedOutput), testLogMessageConstant)
			require.Equal(testInstance, testCase.expectDebugOutput, bytes.Contains(trimmedOutput, []byte(testDebugMessageConstant)))

			lines := bytes.Split(trimmedOutput, []byte("\n"))
			lastLine := lines[len(lines)-1]
			require.Equal(testInstance, testCase.expectStructuredLog, json.Valid(lastLine))
		})
	}
}
