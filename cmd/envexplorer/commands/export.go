package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/systmms/envexplorer/internal/config"
	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/explore"
)

func NewExportCommand(cfg *config.Config) *cobra.Command {
	var (
		selectFlags []string
		header      bool
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render .env files for every combination of selected placeholder values",
		Long: `Expand the selected placeholder values into every concrete prefix and
render one .env file per prefix. Keys are the path below the template with
'/' replaced by '__'.

A prefix is exported only if it stores its target directory in the
parameter <prefix>/<metadataSegment>/DirectoryName.

Examples:
  # print to stdout
  envexplorer export --select env=dev,prod --select service=api,web

  # write <dir>/<DirectoryName>/.env files
  envexplorer export --select env=dev --select service=api,web --header --out ./out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selections, err := parseSelections("select", selectFlags)
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), cfg)
			defer cancel()

			files, err := s.explorer.Export(ctx, selections)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				cfg.Logger.Warn("Nothing to export: no selected prefix has parameters and a %s/%s entry",
					cfg.Definition.ParameterStore.MetadataSegment, explore.DirectoryNameKey)
				return nil
			}

			out := cmd.OutOrStdout()
			for i, file := range files {
				content := explore.RenderEnv(s.tmpl, file, header)
				if outDir == "" {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "# %s/.env\n%s", file.Directory, content)
					continue
				}

				path, err := exportPath(outDir, file.Directory)
				if err != nil {
					return err
				}
				if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
					return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
				}
				if err := os.WriteFile(path, []byte(content), 0600); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				cfg.Logger.Info("Wrote %s (%d keys)", path, file.Group.Count())
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&selectFlags, "select", nil, "Placeholder values as name=v1,v2 (repeatable, one per placeholder)")
	cmd.Flags().BoolVar(&header, "header", false, "Start each file with the placeholder values as comments")
	cmd.Flags().StringVar(&outDir, "out", "", "Write files under this directory instead of printing them")

	return cmd
}

// exportPath places a .env file under root, refusing directory names that
// would escape it
func exportPath(root, directory string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(directory))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", eerrors.UserError{
			Message:    fmt.Sprintf("Export directory %q escapes the output directory", directory),
			Suggestion: "Use a relative DirectoryName without '..'",
		}
	}
	return filepath.Join(root, clean, ".env"), nil
}
