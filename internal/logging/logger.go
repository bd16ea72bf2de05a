// Package logging provides the structured stderr logger used by the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Logger wraps zerolog with the CLI's console formatting.
type Logger struct {
	zlog   zerolog.Logger
	output io.Writer
}

// Options controls New.
type Options struct {
	// Verbose enables debug events.
	Verbose bool
	// Quiet drops everything below error.
	Quiet bool
	// NoColor forces plain output even on a terminal.
	NoColor bool
}

// New creates a logger writing to w. Warnings and info lines are printed
// without a level marker so they read as plain diagnostics.
func New(w io.Writer, opts Options) *Logger {
	noColor := opts.NoColor || !isTerminal(w)
	cw := zerolog.ConsoleWriter{
		Out:         w,
		NoColor:     noColor,
		PartsOrder:  []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: formatLevel(noColor),
	}

	level := zerolog.InfoLevel
	switch {
	case opts.Quiet:
		level = zerolog.ErrorLevel
	case opts.Verbose:
		level = zerolog.DebugLevel
	}

	return &Logger{
		zlog:   zerolog.New(cw).Level(level),
		output: w,
	}
}

// NewDefault creates a logger on stderr.
func NewDefault() *Logger {
	return New(os.Stderr, Options{})
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop(), output: io.Discard}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func formatLevel(noColor bool) zerolog.Formatter {
	return func(i interface{}) string {
		level, _ := i.(string)
		switch level {
		case "", zerolog.LevelWarnValue, zerolog.LevelInfoValue:
			return ""
		}
		tag := strings.ToUpper(level)
		if noColor {
			return tag + ":"
		}
		return fmt.Sprintf("\x1b[%dm%s:\x1b[0m", levelColor(level), tag)
	}
}

func levelColor(level string) int {
	switch level {
	case zerolog.LevelDebugValue, zerolog.LevelTraceValue:
		return 90
	default:
		return 31
	}
}

// Zerolog exposes the underlying logger.
func (l *Logger) Zerolog() zerolog.Logger { return l.zlog }

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event { return l.zlog.Debug() }

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event { return l.zlog.Info() }

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event { return l.zlog.Warn() }

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event { return l.zlog.Error() }

// Warnf logs a warning message with printf-style formatting.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zlog.Warn().Msgf(format, args...)
}

// Debugf logs a debug message with printf-style formatting.
// This is only shown when verbose mode is enabled.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zlog.Debug().Msgf(format, args...)
}

// Output returns the writer the logger was built on.
func (l *Logger) Output() io.Writer {
	return l.output
}
