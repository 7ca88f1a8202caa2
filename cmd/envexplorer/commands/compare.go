package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/systmms/envexplorer/internal/config"
	"github.com/systmms/envexplorer/internal/explore"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

func NewCompareCommand(cfg *config.Config) *cobra.Command {
	var (
		set         []string
		by          string
		showSecrets bool
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "compare KEY",
		Short: "Show one key under every value of a placeholder",
		Long: `Take the part of KEY below the template and look it up under every
observed value of the --by placeholder. The other placeholders keep the
values read from KEY unless --set overrides them.

Examples:
  # DB_HOST of the api service in every environment
  envexplorer compare /dev/api/DB_HOST --by env

  # the same key for the web service
  envexplorer compare /dev/api/DB_HOST --by env --set service=web`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			anchor, err := parseAssignments("set", set)
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if err := requirePlaceholder(s.tmpl, "by", by); err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), cfg)
			defer cancel()

			result, err := s.explorer.Compare(ctx, anchor, by, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				masked := *result
				masked.Rows = maskRows(result.Rows, showSecrets)
				return writeJSON(out, &masked)
			}

			fmt.Fprintln(out, compareTable(result, showSecrets))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "Placeholder value as name=value (repeatable)")
	cmd.Flags().StringVar(&by, "by", "", "Placeholder to compare across")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print SecureString values instead of masking them")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func compareTable(c *explore.Comparison, showSecrets bool) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(c.CompareBy, "NAME", "VALUE", "TYPE")

	for _, row := range c.Rows {
		if row.Missing() {
			t.Row(row.Values[c.CompareBy], row.Name, missingStyle.Render("(missing)"), "")
			continue
		}
		p := paramstore.Parameter{Value: *row.Value, Type: *row.Type}
		t.Row(row.Values[c.CompareBy], row.Name, displayValue(p, showSecrets), string(p.Type))
	}
	return t.String()
}
