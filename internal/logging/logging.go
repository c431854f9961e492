// Package logging builds the process logger. Logs go to stderr and an optional
// file, never stdout, which carries protocol frames.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production zap logger at the given level ("debug", "info",
// "warn", "error"). An empty level means info.
func New(level, file string) (*zap.Logger, error) {
	paths := []string{"stderr"}
	if file != "" {
		paths = append(paths, file)
	}
	return build(level, paths)
}

// NewFileOnly builds a logger that writes only to file, for full-screen
// commands that own the terminal. An empty file yields a no-op logger.
func NewFileOnly(level, file string) (*zap.Logger, error) {
	if file == "" {
		return zap.NewNop(), nil
	}
	return build(level, []string{file})
}

func build(level string, paths []string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()

	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	if lvl == zapcore.DebugLevel {
		config.Sampling = nil
	}

	config.OutputPaths = paths
	config.ErrorOutputPaths = paths
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
