// Package logging builds the zap loggers used across supportbot.
// Interactive sessions log to a file because the terminal belongs to the
// widget; every other command logs to stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"supportbot/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a subsystem. Loggers for a category are derived with
// zap.Logger.Named.
type Category string

const (
	CategoryChat   Category = "chat"   // Terminal widget
	CategoryClient Category = "client" // Chat endpoint client
	CategoryServer Category = "server" // HTTP API
	CategoryFAQ    Category = "faq"    // FAQ matching and onboarding
	CategoryStore  Category = "store"  // Database access
	CategoryLLM    Category = "llm"    // Embedding and completion calls
)

// Options selects where and how verbosely to log.
type Options struct {
	// Interactive routes output to the configured file instead of stderr.
	Interactive bool
	// Verbose forces debug level.
	Verbose bool
}

// New builds a logger from configuration.
func New(cfg config.LoggingConfig, opts Options) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "console" || cfg.Format == "text" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	out := "stderr"
	if opts.Interactive {
		if cfg.File == "" {
			return zap.NewNop(), nil
		}
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		out = cfg.File
	}
	zc.OutputPaths = []string{out}
	zc.ErrorOutputPaths = []string{out}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// ParseLevel maps a config level name to a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level: %q", s)
	}
}

// For returns the named child logger for a category. A nil parent yields a
// no-op logger.
func For(parent *zap.Logger, c Category) *zap.Logger {
	if parent == nil {
		return zap.NewNop()
	}
	return parent.Named(string(c))
}
