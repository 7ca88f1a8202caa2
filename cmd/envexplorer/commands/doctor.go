package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/envexplorer/internal/config"
	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/providers"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

// PrefixHealth is the outcome of listing one allowed prefix
type PrefixHealth struct {
	Prefix     string
	Status     string
	Parameters int
	Duration   time.Duration
	Error      string
	Suggestion string
}

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, credentials and prefix reachability",
		Long: `Verify that envexplorer can do its job.

This command checks:
- Configuration file validity and the template
- AWS credentials (sts:GetCallerIdentity)
- That every allowed prefix can be listed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg.Logger.Info("Checking envexplorer configuration...")
			if err := cfg.Load(); err != nil {
				cfg.Logger.Error("Configuration error: %v", err)
				return fmt.Errorf("failed to load config: %w", err)
			}
			tmpl, err := cfg.Template()
			if err != nil {
				return err
			}
			cfg.Logger.Info("✓ Configuration loaded successfully")
			fmt.Fprintf(out, "Template:     %s (%s)\n", tmpl, strings.Join(tmpl.Names(), ", "))
			if region := cfg.Definition.AWS.Region; region != "" {
				fmt.Fprintf(out, "Region:       %s\n", region)
			}

			ctx, cancel := withTimeout(cmd.Context(), cfg)
			defer cancel()

			failures := 0

			checker, err := newIdentityChecker(ctx, cfg)
			if err == nil {
				var id providers.Identity
				if id, err = checker.CallerIdentity(ctx); err == nil {
					fmt.Fprintf(out, "Identity:     %s (account %s)\n", id.ARN, id.Account)
				}
			}
			if err != nil {
				failures++
				cfg.Logger.Error("Credentials check failed: %v", err)
			}

			client, err := newStoreClient(ctx, cfg)
			if err != nil {
				cfg.Logger.Error("Cannot create parameter store client: %v", err)
				return err
			}

			results := make([]PrefixHealth, 0, len(cfg.Definition.ParameterStore.AllowedPrefixes))
			for _, prefix := range cfg.Definition.ParameterStore.AllowedPrefixes {
				results = append(results, checkPrefix(ctx, client, prefix))
			}
			displayPrefixResults(cmd, results)

			for _, r := range results {
				if r.Status != "healthy" {
					failures++
				}
			}
			if failures > 0 {
				return eerrors.UserError{
					Message:    fmt.Sprintf("%d checks failed", failures),
					Suggestion: "Fix the problems above and run 'envexplorer doctor' again",
				}
			}
			cfg.Logger.Info("✓ All checks passed")
			return nil
		},
	}

	return cmd
}

func checkPrefix(ctx context.Context, client paramstore.Client, prefix string) PrefixHealth {
	health := PrefixHealth{Prefix: prefix, Status: "checking"}

	started := time.Now()
	params, err := client.ListByPrefix(ctx, prefix)
	health.Duration = time.Since(started)
	if err != nil {
		health.Status = "error"
		health.Error = err.Error()
		var ue eerrors.UserError
		if errors.As(eerrors.StoreError("list", err), &ue) {
			health.Suggestion = ue.Suggestion
		}
		return health
	}

	health.Status = "healthy"
	health.Parameters = len(params)
	return health
}

func displayPrefixResults(cmd *cobra.Command, results []PrefixHealth) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PREFIX\tSTATUS\tPARAMETERS\tDURATION")
	for _, r := range results {
		status := "✓ " + r.Status
		if r.Status != "healthy" {
			status = "✗ " + r.Status
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Prefix, status, r.Parameters, r.Duration.Round(time.Millisecond))
	}
	_ = w.Flush()

	for _, r := range results {
		if r.Error == "" {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s: %s\n", r.Prefix, r.Error)
		if r.Suggestion != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  💡 %s\n", r.Suggestion)
		}
	}
}
