package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertSecretRedacted verifies that a SecureString value does not appear in
// output and that the [REDACTED] marker does.
//
// Example usage:
//
//	out, _ := executeCommand(t, NewSetCommand(cfg), "/prod/api/DB_PASSWORD", "hunter2", "--type", "secure")
//	testutil.AssertSecretRedacted(t, out, "hunter2")
func AssertSecretRedacted(t *testing.T, output, secretValue string) {
	t.Helper()

	assert.NotContains(t, output, secretValue,
		"Secret value %q should be redacted, but appears in output", secretValue)
	assert.Contains(t, output, "[REDACTED]",
		"Expected [REDACTED] marker when secret is used")
}

// AssertFileContents verifies that a file exists and holds exactly expected
func AssertFileContents(t *testing.T, path string, expected string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if !assert.NoError(t, err, "File should exist: %s", path) {
		return
	}
	assert.Equal(t, expected, string(data), "File contents mismatch for %s", path)
}

// AssertFileMode verifies the permission bits of a written file
func AssertFileMode(t *testing.T, path string, mode os.FileMode) {
	t.Helper()

	info, err := os.Stat(path)
	if !assert.NoError(t, err, "File should exist: %s", path) {
		return
	}
	assert.Equal(t, mode, info.Mode().Perm(), "File mode mismatch for %s", path)
}

// AssertErrorContains verifies that an error occurred and mentions substr
func AssertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()

	if assert.Error(t, err, "Expected an error to occur") {
		assert.Contains(t, err.Error(), substr, "Error message should contain %q", substr)
	}
}

// AssertLinesContain verifies that every expected fragment appears on some
// line of output.
func AssertLinesContain(t *testing.T, output string, expectedLines []string) {
	t.Helper()

	lines := strings.Split(output, "\n")
	for _, expected := range expectedLines {
		found := false
		for _, line := range lines {
			if strings.Contains(line, expected) {
				found = true
				break
			}
		}
		assert.True(t, found, "Expected to find line containing %q in output", expected)
	}
}
