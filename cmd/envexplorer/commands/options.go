package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/systmms/envexplorer/internal/config"
)

func NewOptionsCommand(cfg *config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show the values observed for each template placeholder",
		Long: `Discover the distinct values each {placeholder} of the template takes
across the visible parameters, in the order they were first seen.

Examples:
  envexplorer options
  envexplorer options --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), cfg)
			defer cancel()

			opts, err := s.explorer.Options(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, opts)
			}

			fmt.Fprintf(out, "%s\n", dimStyle.Render(s.tmpl.String()))
			for _, name := range s.tmpl.Names() {
				values := opts[name]
				if len(values) == 0 {
					fmt.Fprintf(out, "%s: %s\n", keyStyle.Render(name), missingStyle.Render("(none)"))
					continue
				}
				fmt.Fprintf(out, "%s: %s\n", keyStyle.Render(name), strings.Join(values, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
