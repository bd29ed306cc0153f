// Package logging sets up the shared zap logger for fnr.
//
// All output goes to stderr so the MCP stdio transport on stdout stays
// clean. In quiet mode (the default for interactive CLI use) only warnings
// and errors are emitted.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console logger writing to stderr. Pass verbose=true to
// include debug-level events.
func New(verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

// NewFileLogger builds a JSON logger appending to the given path. Used by
// the MCP server when a log file is configured; falls back to the stderr
// logger when the file cannot be opened.
func NewFileLogger(path string, verbose bool) *zap.Logger {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return New(verbose)
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(f),
		level,
	)
	return zap.New(core)
}
