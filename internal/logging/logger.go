package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Logger provides leveled logging with redaction support.
// Output goes to stderr unless another writer is supplied with WithWriter.
type Logger struct {
	debug   bool
	noColor bool

	mu  sync.Mutex
	out io.Writer
}

// New creates a new logger instance
func New(debug, noColor bool) *Logger {
	return &Logger{
		debug:   debug,
		noColor: noColor,
		out:     os.Stderr,
	}
}

// Discard returns a logger that drops everything. Used where no logger was configured.
func Discard() *Logger {
	return New(false, true).WithWriter(io.Discard)
}

// WithWriter redirects output to w and returns the logger
func (l *Logger) WithWriter(w io.Writer) *Logger {
	l.mu.Lock()
	l.out = w
	l.mu.Unlock()
	return l
}

// DebugEnabled reports whether Debug messages are written
func (l *Logger) DebugEnabled() bool {
	return l.debug
}

func (l *Logger) write(color, glyph, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.noColor {
		fmt.Fprintf(l.out, "\033[%sm%s\033[0m %s\n", color, glyph, msg)
	} else {
		fmt.Fprintf(l.out, "%s %s\n", glyph, msg)
	}
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.write("32", "✓", format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write("33", "⚠", format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.write("31", "✗", format, args...)
}

// Debug logs a debug message if debug mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.write("36", "[DEBUG]", format, args...)
}

// Secret represents a value that should be redacted in logs
type Secret string

// String implements the Stringer interface, always returning a redacted value
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements the GoStringer interface for %#v formatting
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Value wraps a parameter value for logging. SecureString values are
// redacted, everything else is printed as-is.
func Value(value string, secure bool) fmt.Stringer {
	if secure {
		return Secret(value)
	}
	return plain(value)
}

type plain string

func (p plain) String() string { return string(p) }

// Redact replaces sensitive values in a string with [REDACTED]
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if secret != "" && len(secret) > 3 { // Only redact non-trivial secrets
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}
