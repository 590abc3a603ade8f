package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name:   "text format with info level",
			config: Config{Level: slog.LevelInfo, Format: FormatText},
			want:   "level=INFO",
		},
		{
			name:   "JSON format with debug level",
			config: Config{Level: slog.LevelDebug, Format: FormatJSON},
			want:   `"level":"INFO"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.config.Output = &buf

			NewLogger(tt.config).Info("test message")

			assert.Contains(t, buf.String(), tt.want)
			assert.NotContains(t, buf.String(), "time=")
		})
	}
}

func TestLogger_SetLevelAppliesToChildren(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: slog.LevelInfo, Output: &buf})
	child := logger.With("component", "allocator")

	child.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.SetLevel(slog.LevelDebug)
	child.Debug("shown")
	assert.Contains(t, buf.String(), "component=allocator")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG", slog.LevelError))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning", slog.LevelError))
	assert.Equal(t, slog.LevelError, ParseLevel("", slog.LevelError))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("logfmt"))
}

func TestNewFileLogger(t *testing.T) {
	file := filepath.Join(t.TempDir(), "condenser-debug.log")

	logger := NewFileLogger(file, slog.LevelDebug, FormatJSON)
	logger.Debug("hello from file")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello from file"`)
	assert.Contains(t, string(data), `"time":`)
}

func TestNewFileLogger_UnwritablePathDiscards(t *testing.T) {
	logger := NewFileLogger(filepath.Join(t.TempDir(), "missing", "x.log"), slog.LevelDebug, FormatText)
	assert.NotPanics(t, func() { logger.Error("dropped") })
}

func TestGlobalLogger(t *testing.T) {
	prev := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(prev) })

	var buf bytes.Buffer
	SetGlobalLogger(NewLogger(Config{Level: slog.LevelInfo, Output: &buf}))

	NewComponentLogger("engine").Info("run started")
	LogError(GetGlobalLogger(), "condense failed", errors.New("boom"), "path", "a.go")

	assert.Contains(t, buf.String(), "component=engine")
	assert.Contains(t, buf.String(), "error=boom")
	assert.Contains(t, buf.String(), "path=a.go")
}
