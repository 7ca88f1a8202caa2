package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/envexplorer/internal/config"
	"github.com/systmms/envexplorer/pkg/paramstore"
	"github.com/systmms/envexplorer/tests/fakes"
	"github.com/systmms/envexplorer/tests/testutil"
)

// setupCommandTest writes a config, points the store factory at store and
// returns the config plus the captured log. Tests using it must not run in
// parallel.
func setupCommandTest(t *testing.T, store *fakes.FakeStore) (*config.Config, *testutil.TestLogger) {
	t.Helper()
	testutil.IsolateAWSEnv(t)

	path := testutil.NewTestConfig(t).
		WithPrefixes("/").
		WithHiddenPatterns("/EnvExplorer/").
		Write()

	original := newStoreClient
	newStoreClient = func(context.Context, *config.Config) (paramstore.Client, error) {
		return store, nil
	}
	t.Cleanup(func() { newStoreClient = original })

	logs := testutil.NewTestLogger(t)
	return &config.Config{Path: path, Logger: logs.Logger}, logs
}

func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	err := cmd.Execute()
	return out.String(), err
}

func exampleStore() *fakes.FakeStore {
	return fakes.NewFakeStore().WithParameters(testutil.ExampleParams()...)
}

func TestParseAssignments(t *testing.T) {
	t.Parallel()

	values, err := parseAssignments("set", []string{"env=prod", " service = api ", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"env": "prod", "service": "api", "empty": ""}, values)

	for _, bad := range []string{"env", "=prod", ""} {
		_, err := parseAssignments("set", []string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParseSelections(t *testing.T) {
	t.Parallel()

	selections, err := parseSelections("select", []string{"env=dev, prod", "service=api,,web", "region="})
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", "prod"}, selections["env"])
	assert.Equal(t, []string{"api", "web"}, selections["service"])
	assert.Empty(t, selections["region"])
}

func TestDisplayValue(t *testing.T) {
	t.Parallel()

	secure := paramstore.Parameter{Value: "hunter2", Type: paramstore.TypeSecureString}
	assert.Equal(t, "********", displayValue(secure, false))
	assert.Equal(t, "hunter2", displayValue(secure, true))
	assert.Equal(t, "x", displayValue(paramstore.Parameter{Value: "x", Type: paramstore.TypeString}, false))
}
