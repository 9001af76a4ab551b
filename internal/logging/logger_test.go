package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"supportbot/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"", zapcore.InfoLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"chatty", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_InteractiveWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "supportbot.log")
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json", File: path}, Options{Interactive: true})
	require.NoError(t, err)

	For(logger, CategoryClient).Info("Reply received", zap.Int("length", 5))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, `"logger":"client"`)
	assert.Contains(t, line, `"msg":"Reply received"`)
	assert.Contains(t, line, `"length":5`)
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, err := New(config.LoggingConfig{Level: "error", Format: "console", File: path}, Options{Interactive: true, Verbose: true})
	require.NoError(t, err)

	logger.Debug("visible")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "visible"))
}

func TestNew_InteractiveWithoutFileIsNop(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "info"}, Options{Interactive: true})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "nope"}, Options{})
	assert.Error(t, err)
}

func TestFor(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	For(zap.New(core), CategoryFAQ).Debug("matched")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "faq", entries[0].LoggerName)

	// nil parent must not panic
	For(nil, CategoryStore).Info("dropped")
}
