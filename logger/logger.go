// Package logger wraps zerolog with the constructors and the shared
// package-level logger used by controllers, schedulers and utilities.
package logger

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// Logger embeds zerolog.Logger so the full zerolog API is available.
type Logger struct {
	zerolog.Logger
}

// Log is the application logger. It is replaced by Init at startup and by
// Nop in tests.
var Log = NewLogger("adconnect-api", "info")

// NewLogger builds a JSON logger writing to stdout with role, timestamp and
// caller function fields.
func NewLogger(role, level string) *Logger {
	return newLogger(os.Stdout, role, level)
}

func newLogger(w io.Writer, role, level string) *Logger {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	l := zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{l}
}

// Init replaces the package logger.
func Init(role, level string) *Logger {
	Log = NewLogger(role, level)
	return Log
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// With returns a child logger carrying an extra component field.
func (l *Logger) With(component string) *Logger {
	return &Logger{l.Logger.With().Str("component", component).Logger()}
}
