package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger interface for dependency injection and testing
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithGroup(name string) Logger
	SetLevel(level slog.Level)
}

// Config holds logger configuration
type Config struct {
	Level   slog.Level
	Format  Format
	Output  io.Writer
	AddTime bool
}

// Format represents the output format
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// ParseFormat maps "json" to FormatJSON and anything else to FormatText.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return FormatJSON
	}
	return FormatText
}

// ParseLevel maps a level name to a slog level, defaulting to fallback.
func ParseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return fallback
}

type slogLogger struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

// NewLogger creates a new logger with the given configuration
func NewLogger(config Config) Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	level := new(slog.LevelVar)
	level.Set(config.Level)
	opts := &slog.HandlerOptions{Level: level}
	if !config.AddTime {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		}
	}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(config.Output, opts)
	default:
		handler = slog.NewTextHandler(config.Output, opts)
	}

	return &slogLogger{logger: slog.New(handler), level: level}
}

// NewDefaultLogger logs info and above to stderr without timestamps.
func NewDefaultLogger() Logger {
	return NewLogger(Config{Level: slog.LevelInfo, Output: os.Stderr})
}

// NewDisabledLogger discards everything. Used by tests and library callers
// that pass no logger.
func NewDisabledLogger() Logger {
	return NewLogger(Config{Level: slog.Level(1000), Output: io.Discard})
}

// NewCLILogger picks the CLI logger for the --verbose and --quiet flags.
// quiet wins when both are set.
func NewCLILogger(verbose, quiet bool, format Format) Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return NewLogger(Config{Level: level, Format: format, Output: os.Stderr})
}

// NewFileLogger appends timestamped records to path. When the file cannot
// be opened the logger discards output.
func NewFileLogger(path string, level slog.Level, format Format) Logger {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return NewLogger(Config{Level: level, Output: io.Discard})
	}
	return NewLogger(Config{Level: level, Format: format, Output: file, AddTime: true})
}

func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }

func (l *slogLogger) Info(msg string, args ...any) { l.logger.Info(msg, args...) }

func (l *slogLogger) Warn(msg string, args ...any) { l.logger.Warn(msg, args...) }

func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// With returns a logger with additional attributes. It shares the level of
// its parent.
func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...), level: l.level}
}

// WithGroup returns a logger with a group name
func (l *slogLogger) WithGroup(name string) Logger {
	return &slogLogger{logger: l.logger.WithGroup(name), level: l.level}
}

// SetLevel updates the level of this logger and every logger derived from it.
func (l *slogLogger) SetLevel(level slog.Level) { l.level.Set(level) }

var (
	globalMu     sync.RWMutex
	globalLogger = NewDefaultLogger()
)

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

func Debug(msg string, args ...any) { GetGlobalLogger().Debug(msg, args...) }

func Info(msg string, args ...any) { GetGlobalLogger().Info(msg, args...) }

func Warn(msg string, args ...any) { GetGlobalLogger().Warn(msg, args...) }

func Error(msg string, args ...any) { GetGlobalLogger().Error(msg, args...) }

// Fatal logs an error message and exits the program
func Fatal(msg string, args ...any) {
	GetGlobalLogger().Error(msg, args...)
	os.Exit(1)
}

// NewComponentLogger tags the global logger with a component name.
func NewComponentLogger(component string) Logger {
	return GetGlobalLogger().With("component", component)
}

// NewFileLogger tags a logger with the path it is working on.
func NewFileLogger(parent Logger, path string) Logger {
	return parent.With("path", path)
}

// LogError logs err under the "error" key.
func LogError(logger Logger, msg string, err error, args ...any) {
	logger.Error(msg, append(args, "error", err)...)
}
