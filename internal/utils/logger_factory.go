package utils

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	timeEncoderKeyConstant               = "ts"
	messageEncoderKeyConstant            = "msg"
	levelEncoderKeyConstant              = "level"
	loggerNameEncoderKeyConstant         = "logger"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// LoggerFactory builds zap loggers writing diagnostics to a single sink, stderr by default.
// Reports never go through the logger.
type LoggerFactory struct {
	output zapcore.WriteSyncer
}

// NewLoggerFactory constructs a factory writing to standard error.
func NewLoggerFactory() *LoggerFactory {
	return NewLoggerFactoryWithOutput(os.Stderr)
}

// NewLoggerFactoryWithOutput constructs a factory writing to the provided writer.
func NewLoggerFactoryWithOutput(output io.Writer) *LoggerFactory {
	if output == nil {
		output = os.Stderr
	}
	return &LoggerFactory{output: zapcore.Lock(zapcore.AddSync(output))}
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	var encoder zapcore.Encoder
	switch requestedLogFormat {
	case LogFormatStructured:
		encoder = zapcore.NewJSONEncoder(encoderConfiguration(zapcore.LowercaseLevelEncoder))
	case LogFormatConsole:
		encoder = zapcore.NewConsoleEncoder(encoderConfiguration(zapcore.CapitalLevelEncoder))
	default:
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	core := zapcore.NewCore(encoder, factory.output, zap.NewAtomicLevelAt(zapLogLevel))
	return zap.New(core, zap.ErrorOutput(factory.output)), nil
}

func encoderConfiguration(levelEncoder zapcore.LevelEncoder) zapcore.EncoderConfig {
	configuration := zap.NewProductionEncoderConfig()
	configuration.TimeKey = timeEncoderKeyConstant
	configuration.MessageKey = messageEncoderKeyConstant
	configuration.LevelKey = levelEncoderKeyConstant
	configuration.NameKey = loggerNameEncoderKeyConstant
	configuration.EncodeTime = zapcore.ISO8601TimeEncoder
	configuration.EncodeLevel = levelEncoder
	return configuration
}
