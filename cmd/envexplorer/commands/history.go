package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/systmms/envexplorer/internal/config"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

func NewHistoryCommand(cfg *config.Config) *cobra.Command {
	var (
		showSecrets bool
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "history NAME",
		Short: "Show the stored versions of a parameter",
		Long: `List every version the store kept for NAME, newest first.

Examples:
  envexplorer history /prod/api/DB_HOST
  envexplorer history /prod/api/DB_PASSWORD --show-secrets`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), cfg)
			defer cancel()

			entries, err := s.cache.History(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, entries)
			}
			if len(entries) == 0 {
				cfg.Logger.Info("No history recorded for %s", args[0])
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tMODIFIED\tBY\tTYPE\tVALUE")
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				by := e.ModifiedBy
				if by == "" {
					by = "-"
				}
				value := displayValue(paramstore.Parameter{Value: e.Value, Type: e.Type}, showSecrets)
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.Version, humanize.Time(e.LastModified), by, e.Type, value)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print SecureString values instead of masking them")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
