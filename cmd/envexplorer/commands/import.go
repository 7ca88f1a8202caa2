package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/systmms/envexplorer/internal/config"
	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/explore"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

func NewImportCommand(cfg *config.Config) *cobra.Command {
	var (
		set         []string
		only        []string
		apply       bool
		showSecrets bool
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Update parameters from a .env file",
		Long: `Read a .env file and compare it with the parameters under one template
prefix. Keys are matched the way export names them ("cache__REDIS_URL" for
<prefix>/cache/REDIS_URL).

Each parameter is shown as changed, unchanged or missing from the file.
Without --yes nothing is written. With --yes every changed value, or only
those named with --only, is written one at a time and the outcome is
tallied. Keys in the file with no parameter under the prefix are ignored.

Use - as FILE to read from stdin.

Examples:
  envexplorer import services/api/.env --set env=dev --set service=api
  envexplorer import services/api/.env --set env=dev --set service=api --yes
  envexplorer import - --set env=dev --set service=api --only DB_HOST --yes < .env`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments("set", set)
			if err != nil {
				return err
			}

			env, err := readEnvFile(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), cfg)
			defer cancel()

			plan, err := s.explorer.Import(ctx, values, env)
			if err != nil {
				return err
			}
			if len(plan.Unknown) > 0 {
				cfg.Logger.Warn("Ignoring %d keys with no parameter under %s: %s",
					len(plan.Unknown), plan.Prefix, strings.Join(plan.Unknown, ", "))
			}
			if len(plan.Changes) == 0 {
				cfg.Logger.Warn("No parameters under %s", plan.Prefix)
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, importTable(plan, showSecrets))

			selected, err := plan.Select(only)
			if err != nil {
				return err
			}
			if len(selected) == 0 {
				fmt.Fprintf(out, "Nothing to update under %s\n", plan.Prefix)
				return nil
			}
			if !apply {
				fmt.Fprintf(out, "%d parameters would be updated. Run again with --yes to write them.\n", len(selected))
				return nil
			}

			result := s.explorer.Apply(ctx, selected)
			for _, f := range result.Failures {
				cfg.Logger.Error("Failed to update %s: %v", f.Name, f.Err)
			}
			fmt.Fprintf(out, "Finished updating %d/%d parameters, with %d errors.\n",
				len(result.Updated), result.Attempted(), len(result.Failures))

			if len(result.Failures) > 0 {
				return eerrors.UserError{
					Message:    fmt.Sprintf("%d of %d updates failed", len(result.Failures), result.Attempted()),
					Suggestion: "Fix the reported errors and run the import again; values already written will show as unchanged",
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "Placeholder value as name=value (repeatable)")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Write only these env keys (repeatable or comma separated)")
	cmd.Flags().BoolVar(&apply, "yes", false, "Write the changed values")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print SecureString values instead of masking them")

	return cmd
}

func readEnvFile(stdin io.Reader, path string) (map[string]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, eerrors.UserError{
				Message:    fmt.Sprintf("Cannot open %s", path),
				Suggestion: "Check the path, or pass - to read from stdin",
				Err:        err,
			}
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	env, err := explore.ParseEnv(r)
	if err != nil {
		return nil, eerrors.UserError{
			Message:    fmt.Sprintf("Invalid env file %s", path),
			Details:    err.Error(),
			Suggestion: "Every non-comment line must look like KEY=VALUE",
			Err:        err,
		}
	}
	return env, nil
}

var unchangedStyle = lipgloss.NewStyle().Faint(true)

func importTable(plan explore.ImportPlan, showSecrets bool) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STATUS", "KEY", "CURRENT", "FILE")

	for _, c := range plan.Changes {
		current := displayValue(paramstore.Parameter{Value: c.Current, Type: c.Type}, showSecrets)
		switch c.Status {
		case explore.StatusMissing:
			t.Row(missingStyle.Render(string(c.Status)), c.Key, current, missingStyle.Render("(missing)"))
		case explore.StatusUnchanged:
			t.Row(unchangedStyle.Render(string(c.Status)), c.Key, current, current)
		default:
			file := displayValue(paramstore.Parameter{Value: c.File, Type: c.Type}, showSecrets)
			t.Row(keyStyle.Render(string(c.Status)), c.Key, current, file)
		}
	}
	return t.String()
}
