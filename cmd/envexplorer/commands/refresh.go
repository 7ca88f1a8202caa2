package commands

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/systmms/envexplorer/internal/config"
)

func NewRefreshCommand(cfg *config.Config) *cobra.Command {
	var (
		includeHidden bool
		showMetrics   bool
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Reload every parameter under the allowed prefixes",
		Long: `Fetch every parameter under parameterStore.allowedPrefixes and report
what was loaded.

Prefixes are listed concurrently. A prefix that cannot be listed is skipped
with a warning; the command only fails when every prefix fails.

Examples:
  envexplorer refresh
  envexplorer refresh --include-hidden --metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), cfg)
			defer cancel()

			params, err := s.cache.Refresh(ctx, includeHidden)
			if err != nil {
				return err
			}

			stats := s.cache.Stats()
			prefixes := len(cfg.Definition.ParameterStore.AllowedPrefixes)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loaded %d parameters (%d hidden) from %d of %d prefixes\n",
				stats.Total, stats.Hidden, prefixes-len(stats.FailedPrefixes), prefixes)
			if includeHidden {
				fmt.Fprintf(out, "Showing %d parameters including hidden\n", len(params))
			}

			if showMetrics {
				return writeMetrics(cmd)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "Count hidden parameters in the result")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print cache metrics in Prometheus text format")

	return cmd
}

func writeMetrics(cmd *cobra.Command) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "envexplorer_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
