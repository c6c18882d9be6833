// Package logging provides structured logging for the CLI and the server.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog with mode-specific output.
type Logger struct {
	zlog   zerolog.Logger
	mode   string // "cli" or "server"
	output io.Writer
}

// NewLogger creates a new logger for the specified mode.
// Server mode writes one JSON object per line; CLI mode writes console lines.
// Output goes to stdout until changed with SetOutput.
func NewLogger(mode string) *Logger {
	return newLogger(mode, os.Stdout)
}

// NewDefaultCLILogger creates a CLI logger on stderr, leaving stdout to
// command output.
func NewDefaultCLILogger() *Logger {
	return newLogger("cli", os.Stderr)
}

// NewWriterLogger creates a logger that writes console-formatted lines to w.
// Mostly used by tests that want to inspect log output.
func NewWriterLogger(w io.Writer) *Logger {
	return newLogger("cli", w)
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{zlog: zerolog.Nop(), mode: "cli", output: io.Discard}
}

func newLogger(mode string, w io.Writer) *Logger {
	l := &Logger{mode: mode}
	l.SetOutput(w)
	return l
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// SetOutput changes the output writer for the logger.
// The CLI uses this to route log lines above the progress bars.
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
	if l.mode == "server" {
		l.zlog = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	l.zlog = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}).With().Timestamp().Logger()
}

// Output returns the current output writer.
func (l *Logger) Output() io.Writer {
	return l.output
}

// Infof logs an info message with printf-style formatting.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zlog.Info().Msgf(format, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zlog.Warn().Msgf(format, args...)
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// ParseLevel converts a textual level ("debug", "info", ...).
// Unknown values fall back to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return lvl
}

func init() {
	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Configure global logger
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	})
}
