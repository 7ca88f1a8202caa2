package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"
	"github.com/systmms/envexplorer/internal/config"
	"github.com/systmms/envexplorer/internal/explore"
	"github.com/systmms/envexplorer/internal/hierarchy"
	"github.com/systmms/envexplorer/internal/pathkey"
)

func NewListCommand(cfg *config.Config) *cobra.Command {
	var (
		set           []string
		includeHidden bool
		showSecrets   bool
		jsonOutput    bool
		filter        string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the parameters under one template prefix as a tree",
		Long: `Resolve the template with the given placeholder values and show every
parameter below the resulting prefix, grouped by path segment.

Every placeholder needs a value. --filter keeps only parameters whose name
contains the given text, ignoring case.

Examples:
  envexplorer list --set env=prod --set service=api
  envexplorer list --set env=prod --set service=api --filter redis
  envexplorer list --set env=dev --set service=web --include-hidden --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments("set", set)
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), cfg)
			defer cancel()

			group, err := s.explorer.List(ctx, values, includeHidden)
			if err != nil {
				return err
			}

			if filter != "" {
				group = group.Filter(explore.NameFilter(filter))
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, maskGroup(group, showSecrets))
			}

			if group == nil {
				prefix, _ := s.tmpl.Resolve(values)
				if filter != "" {
					cfg.Logger.Warn("No parameters under %s match %q", prefix, filter)
					return nil
				}
				cfg.Logger.Warn("No parameters under %s", prefix)
				return nil
			}

			fmt.Fprintln(out, renderTree(group, showSecrets).String())
			fmt.Fprintf(out, "%s\n", dimStyle.Render(fmt.Sprintf("%d parameters", group.Count())))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "Placeholder value as name=value (repeatable)")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "Include hidden parameters")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print SecureString values instead of masking them")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&filter, "filter", "", "Only show parameters whose name contains this text")

	return cmd
}

// renderTree turns a parameter group into a lipgloss tree. Leaves show the
// last path segment and the value; branches show their full prefix.
func renderTree(g *hierarchy.Group, showSecrets bool) *tree.Tree {
	t := tree.Root(groupStyle.Render(g.Name)).Enumerator(tree.RoundedEnumerator)
	for _, p := range g.Parameters {
		segments := pathkey.Segments(p.Name)
		leaf := segments[len(segments)-1]
		t.Child(fmt.Sprintf("%s = %s", keyStyle.Render(leaf), displayValue(p, showSecrets)))
	}
	for _, child := range g.Children {
		t.Child(renderTree(child, showSecrets))
	}
	return t
}
