// Package logging builds the zap logger shared by sagtrack's components.
//
// The TUI owns the terminal, so by default entries are written as JSON to a
// file; internal/logtail reads them back for the Log view.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options select where and how verbosely to log.
type Options struct {
	// File receives JSON entries. Empty disables file output.
	File string
	// Stderr adds console output, used by foreground commands such as mock.
	Stderr bool
	Debug  bool
}

// New builds a logger for opts. With no outputs it returns a no-op logger.
func New(opts Options) (*zap.Logger, error) {
	var outputs []string
	if file := strings.TrimSpace(opts.File); file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		outputs = append(outputs, file)
	}
	if opts.Stderr {
		outputs = append(outputs, "stderr")
	}
	if len(outputs) == 0 {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	if opts.Debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.Development = true
	}
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = outputs
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Component names used for child loggers.
const (
	Poller  = "poller"
	Events  = "events"
	Config  = "config"
	MockAPI = "mockapi"
	UI      = "ui"
)
