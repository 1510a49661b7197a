// Package log is a thin leveled facade over the standard library's slog.
//
// The package configures one process-wide logger writing JSON to stderr;
// set LOG_FORMAT=text for a text handler instead. The level starts at
// info and changes through SetLevel, which the CLI wires to --log-level
// and --debug. SetOutput redirects output for tests and returns a
// function restoring the previous writer.
package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level mirrors slog's levels under a local name so callers outside this
// package never import slog directly.
type Level int8

// Levels in increasing order of severity.
const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// String returns the level's conventional upper-case name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ErrInvalidLogLevel is returned by ParseLevel for unknown level names.
var ErrInvalidLogLevel = errors.New("invalid log level")

// ParseLevel maps a level name to its Level, case-insensitively. Unknown
// names return LevelInfo alongside ErrInvalidLogLevel so callers can warn
// and continue with the default.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLogLevel, name)
	}
}

var (
	logger  *slog.Logger
	leveler = &slog.LevelVar{}

	output io.Writer = os.Stderr

	// withTimestamps is raised by testutil.CaptureJSONLogs so captured
	// JSON carries the time key tests assert on.
	withTimestamps bool
)

func init() {
	leveler.Set(slog.LevelInfo)
	rebuild()
}

// rebuild swaps in a handler reflecting the current output writer and
// timestamp mode. JSON output drops the time key outside of test captures
// to keep log lines stable.
func rebuild() {
	opts := &slog.HandlerOptions{Level: leveler}

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
		logger = slog.New(slog.NewTextHandler(output, opts))
		return
	}

	opts.ReplaceAttr = func(_ []string, a slog.Attr) slog.Attr {
		if !withTimestamps && a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	}
	logger = slog.New(slog.NewJSONHandler(output, opts))
}

// SetOutput redirects log output to w and returns a function restoring
// the previous writer. Intended for tests.
func SetOutput(w io.Writer) (restore func()) {
	prev := output
	output = w
	rebuild()
	return func() {
		output = prev
		rebuild()
	}
}

// SetLevel changes the process-wide log level.
func SetLevel(level Level) {
	leveler.Set(slog.Level(level))
}

// CurrentLevel reports the process-wide log level.
func CurrentLevel() Level {
	return Level(leveler.Level())
}

// SetTestModeWithTimestamps forces timestamps into JSON output while
// enabled. Only test helpers call this.
func SetTestModeWithTimestamps(enabled bool) {
	withTimestamps = enabled
	rebuild()
}

// Debug logs at debug level with optional key-value pairs.
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs at info level with optional key-value pairs.
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs at warn level with optional key-value pairs.
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs at error level with optional key-value pairs.
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// Warnf logs a printf-formatted message at warn level.
func Warnf(format string, args ...any) {
	logger.Warn(fmt.Sprintf(format, args...))
}
