package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/envexplorer/internal/config"
	"github.com/systmms/envexplorer/internal/explore"
)

func NewMissingCommand(cfg *config.Config) *cobra.Command {
	var (
		set         []string
		by          string
		filter      string
		showSecrets bool
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "missing",
		Short: "List keys that exist for other values of a placeholder but not this one",
		Long: `Compare the keys under --set <by>=<value> with the keys under every other
observed value of the --by placeholder, and list those that are absent.

Each missing key is shown as it would be named under the reference value,
followed by where it was found instead. Meaningful for templates with two
placeholders; with more, supply values for all of them with --set.
--filter keeps only keys whose name, or the name they were found at,
contains the given text.

Examples:
  envexplorer missing --by env --set env=prod
  envexplorer missing --by service --set service=web --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reference, err := parseAssignments("set", set)
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

			report, err := s.explorer.Missing(ctx, by, reference)
			if err != nil {
				return err
			}

			report.Groups = explore.FilterMissing(report.Groups, filter)

			out := cmd.OutOrStdout()
			if jsonOutput {
				masked := *report
				masked.Groups = maskMissing(report.Groups, showSecrets)
				return writeJSON(out, &masked)
			}

			if len(report.Groups) == 0 {
				cfg.Logger.Info("No keys missing under %s=%s", report.MissingBy, report.MissingByValue)
				return nil
			}

			for _, g := range report.Groups {
				fmt.Fprintln(out, missingStyle.Render(g.Name))
				for _, inst := range g.Instances {
					fmt.Fprintf(out, "  found at %s %s\n", inst.Name, dimStyle.Render(describeValues(inst)))
				}
			}
			fmt.Fprintf(out, "%d keys missing under %s=%s\n", len(report.Groups), report.MissingBy, report.MissingByValue)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "Reference value as name=value (repeatable)")
	cmd.Flags().StringVar(&by, "by", "", "Placeholder whose reference value is checked for gaps")
	cmd.Flags().StringVar(&filter, "filter", "", "Only show keys whose name contains this text")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print SecureString values instead of masking them")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func describeValues(row explore.Row) string {
	var s string
	for i, k := range sortedKeys(row.Values) {
		if i > 0 {
			s += " "
		}
		s += k + "=" + row.Values[k]
	}
	return "(" + s + ")"
}
