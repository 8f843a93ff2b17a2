// Package logging constructs the application logger.
//
// All packages take a logr.Logger; this package is the only place that knows
// the sink is zap. Log level and format come from the application config.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logr.Logger backed by zap for the given level and format.
// Level is one of debug, info, warn, error; format is text or json.
func New(level, format string) (logr.Logger, error) {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))

	zapLog, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, err
	}

	return zapr.NewLogger(zapLog), nil
}

// Discard returns a logger that drops everything, for tests.
func Discard() logr.Logger {
	return logr.Discard()
}

func zapLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
