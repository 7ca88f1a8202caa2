package testutil

import (
	"os"
	"testing"
)

// SetupTestEnv sets environment variables for the duration of a test. An
// empty value unsets the variable. Tests calling it cannot be parallel.
//
// Example usage:
//
//	SetupTestEnv(t, map[string]string{
//	    "AWS_REGION":           "us-east-1",
//	    "ENVEXPLORER_TEMPLATE": "",
//	})
func SetupTestEnv(t *testing.T, vars map[string]string) {
	t.Helper()

	for key, value := range vars {
		// t.Setenv records the original value and restores it on cleanup
		t.Setenv(key, value)
		if value == "" {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("Failed to unset environment variable %s: %v", key, err)
			}
		}
	}
}

// IsolateAWSEnv clears the variables the AWS SDK and envexplorer read, so a
// developer's shell cannot leak into a test.
func IsolateAWSEnv(t *testing.T) {
	t.Helper()

	SetupTestEnv(t, map[string]string{
		"AWS_PROFILE":           "",
		"AWS_REGION":            "",
		"AWS_DEFAULT_REGION":    "",
		"AWS_ACCESS_KEY_ID":     "",
		"AWS_SECRET_ACCESS_KEY": "",
		"AWS_SESSION_TOKEN":     "",
		"AWS_ENDPOINT_URL":      "",
		"AWS_ENDPOINT_URL_SSM":  "",
		"ENVEXPLORER_TEMPLATE":  "",
	})
}
