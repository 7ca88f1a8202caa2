package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/systmms/envexplorer/cmd/envexplorer/commands"
	"github.com/systmms/envexplorer/internal/config"
	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/logging"
	"github.com/systmms/envexplorer/internal/secure"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := run()
	secure.Purge()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", eerrors.SimplifyError(err))
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		configFile string
		template   string
		noColor    bool
		debug      bool
	)

	// Create config placeholder
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "envexplorer",
		Short: "Explore a template-shaped parameter store",
		Long: `envexplorer reads AWS Systems Manager Parameter Store through a path
template such as /{environment}/{service}/* and answers questions across
it: which values each placeholder takes, how one key differs between
environments, which keys one environment is missing, and what the .env
file for a selection looks like.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			cfg.Path = configFile
			cfg.TemplateOverride = template
			cfg.Logger = logging.New(debug, noColor)
			if noColor || os.Getenv("NO_COLOR") != "" {
				lipgloss.SetColorProfile(termenv.Ascii)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: ./envexplorer.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&template, "template", "", "Path template, overrides the config and "+config.EnvTemplate)
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewRefreshCommand(cfg),
		commands.NewOptionsCommand(cfg),
		commands.NewListCommand(cfg),
		commands.NewCompareCommand(cfg),
		commands.NewMissingCommand(cfg),
		commands.NewDiffCommand(cfg),
		commands.NewExportCommand(cfg),
		commands.NewSetCommand(cfg),
		commands.NewImportCommand(cfg),
		commands.NewHistoryCommand(cfg),
		commands.NewDoctorCommand(cfg),
		commands.NewKeyringCommand(cfg),
	)

	return rootCmd.Execute()
}
