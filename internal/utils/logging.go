package utils

import (
	"io"
	"log/slog"
	"os"

	"github.com/jmylchreest/lightsd/internal/config"
)

// LogLevel defines log level types
type LogLevel string

// Log level constants - using values from config package
const (
	LogLevelDebug LogLevel = LogLevel(config.LogLevelDebug)
	LogLevelInfo  LogLevel = LogLevel(config.LogLevelInfo)
	LogLevelWarn  LogLevel = LogLevel(config.LogLevelWarn)
	LogLevelError LogLevel = LogLevel(config.LogLevelError)
)

// LogFormat defines log format types
type LogFormat string

// Log format constants - using values from config package
const (
	LogFormatText LogFormat = LogFormat(config.LogFormatText)
	LogFormatJSON    LogFormat = LogFormat(config.LogFormatJSON)
	LogFormatJournal LogFormat = LogFormat(config.LogFormatJournal)
)

// level is shared by every logger built here so the daemon can change
// verbosity at runtime (socket set_level, config reload).
var level = new(slog.LevelVar)

// GetLogLevel converts a string log level to slog.Level
func GetLogLevel(lvl string) slog.Level {
	switch lvl {
	case string(LogLevelDebug):
		return slog.LevelDebug
	case string(LogLevelWarn):
		return slog.LevelWarn
	case string(LogLevelError):
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelToString converts a slog.Level back to its config string
func LevelToString(lvl slog.Level) string {
	switch {
	case lvl <= slog.LevelDebug:
		return string(LogLevelDebug)
	case lvl <= slog.LevelInfo:
		return string(LogLevelInfo)
	case lvl <= slog.LevelWarn:
		return string(LogLevelWarn)
	default:
		return string(LogLevelError)
	}
}

// ValidateLogLevel ensures the provided level is valid, returning a default if not
func ValidateLogLevel(lvl string) string {
	switch lvl {
	case string(LogLevelDebug), string(LogLevelInfo), string(LogLevelWarn), string(LogLevelError):
		return lvl
	default:
		return string(LogLevelInfo)
	}
}

// ValidateLogFormat ensures the provided format is valid, returning a default if not
func ValidateLogFormat(format string) string {
	switch format {
	case string(LogFormatText), string(LogFormatJSON), string(LogFormatJournal):
		return format
	default:
		return string(LogFormatText)
	}
}

// SetupLogger creates a logger writing to stderr with the given level and format.
func SetupLogger(lvl string, format string) *slog.Logger {
	return NewLogger(os.Stderr, lvl, format)
}

// NewLogger creates a logger writing to w. The level is held in the shared
// LevelVar, so SetLevel affects every logger created here.
func NewLogger(w io.Writer, lvl string, format string) *slog.Logger {
	level.Set(GetLogLevel(ValidateLogLevel(lvl)))

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch format := ValidateLogFormat(format); {
	case format == string(LogFormatJSON):
		handler = slog.NewJSONHandler(w, opts)
	case format == string(LogFormatJournal) && journalAvailable():
		handler = NewJournalHandler("lightsd", level)
	default:
		// journal falls back to text when journald is not running
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// SetupErrorLogger creates a simple text logger for reporting errors during startup.
func SetupErrorLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// SetLevel changes the level of all loggers created by SetupLogger/NewLogger
func SetLevel(lvl string) {
	level.Set(GetLogLevel(ValidateLogLevel(lvl)))
}

// GetLevel returns the current shared log level
func GetLevel() slog.Level {
	return level.Level()
}

// SetAsDefaultLogger sets a logger as the default logger
func SetAsDefaultLogger(logger *slog.Logger) {
	slog.SetDefault(logger)
}
