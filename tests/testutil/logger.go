package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/envexplorer/internal/logging"
)

// TestLogger captures the output of a real logging.Logger so tests can
// check what was logged and that secrets were redacted.
//
// Example usage:
//
//	logs := testutil.NewTestLogger(t)
//	c := cache.New(store, cache.WithLogger(logs.Logger))
//	...
//	logs.AssertContains(t, "Skipping prefix /prod")
//	logs.AssertRedacted(t, "hunter2")
type TestLogger struct {
	Logger *logging.Logger

	mu     sync.Mutex
	buffer bytes.Buffer
}

// NewTestLogger creates a colourless logger with debug output disabled
func NewTestLogger(t *testing.T) *TestLogger {
	t.Helper()
	return newTestLogger(false)
}

// NewTestLoggerWithDebug also captures Debug messages
func NewTestLoggerWithDebug(t *testing.T) *TestLogger {
	t.Helper()
	return newTestLogger(true)
}

func newTestLogger(debug bool) *TestLogger {
	l := &TestLogger{}
	l.Logger = logging.New(debug, true).WithWriter(lockedWriter{l})
	return l
}

type lockedWriter struct{ l *TestLogger }

func (w lockedWriter) Write(p []byte) (int, error) {
	w.l.mu.Lock()
	defer w.l.mu.Unlock()
	return w.l.buffer.Write(p)
}

// String returns everything logged so far
func (l *TestLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buffer.String()
}

// Clear drops the captured output
func (l *TestLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buffer.Reset()
}

// AssertContains asserts that the log output contains substr
func (l *TestLogger) AssertContains(t *testing.T, substr string) {
	t.Helper()
	assert.Contains(t, l.String(), substr, "Expected log output to contain %q", substr)
}

// AssertNotContains asserts that the log output does not contain substr
func (l *TestLogger) AssertNotContains(t *testing.T, substr string) {
	t.Helper()
	assert.NotContains(t, l.String(), substr, "Expected log output to NOT contain %q", substr)
}

// AssertRedacted asserts that secretValue never reached the log and that
// the redaction marker did.
func (l *TestLogger) AssertRedacted(t *testing.T, secretValue string) {
	t.Helper()
	AssertSecretRedacted(t, l.String(), secretValue)
}

// Lines returns the non-empty lines logged so far
func (l *TestLogger) Lines() []string {
	var lines []string
	for _, line := range strings.Split(l.String(), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
