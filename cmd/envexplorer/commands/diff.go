package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/systmms/envexplorer/internal/config"
	"github.com/systmms/envexplorer/internal/explore"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

func NewDiffCommand(cfg *config.Config) *cobra.Command {
	var (
		left        []string
		right       []string
		showSecrets bool
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show two template selections side by side",
		Long: `Resolve the template twice and list every key stored below either
prefix, with the value on each side. Empty or absent values are flagged as
missing, and the first row counts the parameters on each side.

Both --left and --right need a value for every placeholder.

Examples:
  envexplorer diff --left env=dev,service=api --right env=prod,service=api
  envexplorer diff --left env=prod,service=api --right env=prod,service=web --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			leftValues, err := parseAssignments("left", left)
			if err != nil {
				return err
			}
			rightValues, err := parseAssignments("right", right)
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), cfg)
			defer cancel()

			diff, err := s.explorer.Diff(ctx, leftValues, rightValues)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, maskDiff(diff, showSecrets))
			}

			if len(diff.Rows) == 0 {
				cfg.Logger.Warn("No parameters under %s or %s", diff.LeftPrefix, diff.RightPrefix)
				return nil
			}

			fmt.Fprintln(out, diffTable(diff, showSecrets))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&left, "left", nil, "Left selection as name=value pairs, comma separated")
	cmd.Flags().StringSliceVar(&right, "right", nil, "Right selection as name=value pairs, comma separated")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print SecureString values instead of masking them")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func diffTable(d *explore.TemplateDiff, showSecrets bool) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", d.LeftPrefix, d.RightPrefix)

	t.Row(keyStyle.Render("Total parameters"), strconv.Itoa(d.LeftTotal), strconv.Itoa(d.RightTotal))
	for _, row := range d.Rows {
		t.Row(row.Key, diffCell(row.Left, showSecrets), diffCell(row.Right, showSecrets))
	}
	return t.String()
}

func diffCell(p *paramstore.Parameter, showSecrets bool) string {
	if p == nil || p.Value == "" {
		return missingStyle.Render("(missing)")
	}
	return displayValue(*p, showSecrets)
}
