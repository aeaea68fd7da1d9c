// Package log provides context-aware logging for itg.
//
// Plain messages (Printf, Println) go to the configured writer unless quiet
// is set. Verbose mode additionally echoes external commands with their
// duration and renders Debug lines through zerolog's console writer.
package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// Logger provides output and verbose command logging.
type Logger struct {
	out     io.Writer
	verbose bool
	quiet   bool
	debug   zerolog.Logger
}

// New creates a new logger. Quiet overrides verbose.
func New(out io.Writer, verbose, quiet bool) *Logger {
	cw := zerolog.ConsoleWriter{
		Out:          out,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	return &Logger{
		out:     out,
		verbose: verbose,
		quiet:   quiet,
		debug:   zerolog.New(cw).Level(zerolog.DebugLevel),
	}
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context.
// Returns a no-op logger if none is attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return New(io.Discard, false, true)
}

// Printf writes formatted output.
func (l *Logger) Printf(format string, args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

// Println writes a line of output.
func (l *Logger) Println(args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintln(l.out, args...)
}

// Command logs an external command execution and returns a func that
// records its duration once the command finished.
// Only prints when verbose mode is enabled.
func (l *Logger) Command(dir, name string, args ...string) func(time.Duration) {
	if !l.IsVerbose() {
		return func(time.Duration) {}
	}

	line := "$ " + strings.TrimSpace(name+" "+strings.Join(args, " "))
	if dir != "" {
		line = fmt.Sprintf("[%s] %s", dir, line)
	}

	return func(d time.Duration) {
		fmt.Fprintf(l.out, "%s (%s)\n", line, d.Round(time.Millisecond))
	}
}

// Debug writes a structured debug line in verbose mode.
// keyvals are alternating keys and values; a trailing key without value is dropped.
func (l *Logger) Debug(msg string, keyvals ...any) {
	if !l.IsVerbose() {
		return
	}

	ev := l.debug.Debug()
	for i := 0; i+1 < len(keyvals); i += 2 {
		ev = ev.Str(fmt.Sprint(keyvals[i]), fmt.Sprint(keyvals[i+1]))
	}
	ev.Msg(msg)
}

// IsVerbose returns true if verbose mode is enabled and not silenced by quiet.
func (l *Logger) IsVerbose() bool {
	return l.verbose && !l.quiet
}

// Writer returns the underlying writer.
func (l *Logger) Writer() io.Writer {
	return l.out
}
