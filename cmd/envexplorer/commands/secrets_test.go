package commands

import (
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/envexplorer/internal/config"
	"github.com/systmms/envexplorer/internal/explore"
	"github.com/systmms/envexplorer/internal/hierarchy"
	"github.com/systmms/envexplorer/pkg/paramstore"
	"github.com/systmms/envexplorer/tests/fakes"
)

func secureStore() *fakes.FakeStore {
	return exampleStore().WithParameters(
		paramstore.Parameter{Name: "/dev/api/DB_PASSWORD", Value: "hunter2", Type: paramstore.TypeSecureString, Version: 1},
		paramstore.Parameter{Name: "/prod/api/DB_PASSWORD", Value: "prodsecret", Type: paramstore.TypeSecureString, Version: 1},
	)
}

func TestJSONOutputMasksSecureStrings(t *testing.T) {
	tests := []struct {
		name string
		cmd  func(*config.Config) *cobra.Command
		args []string
	}{
		{
			name: "list",
			cmd:  NewListCommand,
			args: []string{"--set", "env=dev", "--set", "service=api", "--json"},
		},
		{
			name: "compare",
			cmd:  NewCompareCommand,
			args: []string{"/dev/api/DB_PASSWORD", "--by", "env", "--json"},
		},
		{
			name: "missing",
			cmd:  NewMissingCommand,
			args: []string{"--by", "service", "--set", "service=web", "--json"},
		},
		{
			name: "diff",
			cmd:  NewDiffCommand,
			args: []string{"--left", "env=dev,service=api", "--right", "env=prod,service=api", "--json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _ := setupCommandTest(t, secureStore())

			out, err := executeCommand(t, tt.cmd(cfg), tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, maskedValue)
			assert.NotContains(t, out, "hunter2")
			assert.NotContains(t, out, "prodsecret")

			out, err = executeCommand(t, tt.cmd(cfg), append(tt.args, "--show-secrets")...)
			require.NoError(t, err)
			assert.Contains(t, out, "hunter2")
		})
	}
}

func TestJSONMaskingKeepsShape(t *testing.T) {
	cfg, _ := setupCommandTest(t, secureStore())

	out, err := executeCommand(t, NewListCommand(cfg), "--set", "env=dev", "--set", "service=api", "--json")
	require.NoError(t, err)
	var group hierarchy.Group
	require.NoError(t, json.Unmarshal([]byte(out), &group))
	assert.Equal(t, 2, group.Count())
	for _, p := range group.Flatten() {
		if p.Type.IsSecure() {
			assert.Equal(t, maskedValue, p.Value)
		} else {
			assert.Equal(t, "x", p.Value)
		}
	}

	out, err = executeCommand(t, NewMissingCommand(cfg), "--by", "service", "--set", "service=web", "--json")
	require.NoError(t, err)
	var report explore.MissingReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Groups, 3)
	assert.Equal(t, "/dev/web/DB_PASSWORD", report.Groups[0].Name)
	assert.Equal(t, maskedValue, *report.Groups[0].Instances[0].Value)
}

func TestMaskHelpersLeaveSourceUntouched(t *testing.T) {
	t.Parallel()

	value := "hunter2"
	typ := paramstore.TypeSecureString
	rows := []explore.Row{{Name: "/dev/api/DB_PASSWORD", Value: &value, Type: &typ}, {Name: "/qa/api/DB_PASSWORD"}}

	masked := maskRows(rows, false)
	assert.Equal(t, maskedValue, *masked[0].Value)
	assert.Nil(t, masked[1].Value, "missing rows stay missing")
	assert.Equal(t, "hunter2", *rows[0].Value)

	assert.Equal(t, "hunter2", *maskRows(rows, true)[0].Value)
	assert.Nil(t, maskGroup(nil, false))
}
