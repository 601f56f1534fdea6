// Package observability provides logging, metrics and buffer instrumentation.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jittakal/boundedbuffer/internal/config/dto"
)

// NewLogger creates a zap logger from the logging configuration.
func NewLogger(cfg dto.LoggingConfig) (*zap.Logger, error) {
	var config zap.Config

	switch cfg.Format {
	case "console":
		config = zap.NewDevelopmentConfig()
	case "json", "":
		config = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	config.Level = ParseLogLevel(cfg.Level)

	output := cfg.Output
	if output == "" {
		output = "stdout"
	}
	config.OutputPaths = []string{output}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build()
}

// ParseLogLevel parses the log level string. Unknown levels map to info.
func ParseLogLevel(level string) zap.AtomicLevel {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}
