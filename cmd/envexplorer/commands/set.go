package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/envexplorer/internal/config"
	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/logging"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

func NewSetCommand(cfg *config.Config) *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Create or overwrite a single parameter",
		Long: `Write one value to the parameter store. Existing parameters keep their
type unless --type is given; new ones default to String.

Examples:
  envexplorer set /prod/web/DB_HOST db.internal
  envexplorer set /prod/api/DB_PASSWORD s3cr3t --type secure`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, value := args[0], args[1]

			var typ paramstore.Type
			if cmd.Flags().Changed("type") {
				parsed, err := paramstore.ParseType(typeName)
				if err != nil {
					return eerrors.UserError{
						Message:    err.Error(),
						Suggestion: "Use --type String, SecureString or StringList",
					}
				}
				typ = parsed
			}

			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), cfg)
			defer cancel()

			result, err := s.cache.Update(ctx, name, value, typ)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			p := result.Parameter
			if result.Previous == nil {
				fmt.Fprintf(out, "Created %s = %s (%s)\n", p.Name, logging.Value(p.Value, p.Type.IsSecure()), p.Type)
				return nil
			}
			prev := result.Previous
			fmt.Fprintf(out, "Updated %s = %s (%s), was %s\n", p.Name,
				logging.Value(p.Value, p.Type.IsSecure()), p.Type,
				logging.Value(prev.Value, prev.Type.IsSecure()))
			return nil
		},
	}

	cmd.Flags().StringVar(&typeName, "type", "", "Parameter type: String, SecureString or StringList")

	return cmd
}
