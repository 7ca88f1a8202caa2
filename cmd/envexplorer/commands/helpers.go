package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/systmms/envexplorer/internal/cache"
	"github.com/systmms/envexplorer/internal/config"
	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/explore"
	"github.com/systmms/envexplorer/internal/hierarchy"
	"github.com/systmms/envexplorer/internal/providers"
	"github.com/systmms/envexplorer/internal/template"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

// newStoreClient builds the parameter store client. Tests replace it.
var newStoreClient = func(ctx context.Context, cfg *config.Config) (paramstore.Client, error) {
	awsCfg, err := providers.LoadAWSConfig(ctx, awsConfig(cfg), providers.KeyringSource{})
	if err != nil {
		return nil, err
	}
	return providers.NewSSMClient(awsCfg, providers.WithSSMLogger(cfg.Logger)), nil
}

// newIdentityChecker builds the STS identity checker. Tests replace it.
var newIdentityChecker = func(ctx context.Context, cfg *config.Config) (*providers.IdentityChecker, error) {
	awsCfg, err := providers.LoadAWSConfig(ctx, awsConfig(cfg), providers.KeyringSource{})
	if err != nil {
		return nil, err
	}
	return providers.NewIdentityChecker(awsCfg, nil), nil
}

func awsConfig(cfg *config.Config) providers.AWSConfig {
	a := cfg.Definition.AWS
	return providers.AWSConfig{
		Region:         a.Region,
		Profile:        a.Profile,
		AccessKeyID:    a.AccessKeyID,
		KeyringService: a.KeyringService,
	}
}

// session is everything a query command needs, built from a loaded config
type session struct {
	tmpl     template.Template
	client   paramstore.Client
	cache    *cache.Cache
	explorer *explore.Explorer
}

func openSession(ctx context.Context, cfg *config.Config) (*session, error) {
	if err := cfg.Load(); err != nil {
		return nil, err
	}
	tmpl, err := cfg.Template()
	if err != nil {
		return nil, err
	}

	client, err := newStoreClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cache.InitMetrics()
	ps := cfg.Definition.ParameterStore
	c := cache.New(client,
		cache.WithPrefixes(ps.AllowedPrefixes...),
		cache.WithHiddenPatterns(ps.HiddenPatterns...),
		cache.WithMaxConcurrentFetches(ps.MaxConcurrentFetches),
		cache.WithLogger(cfg.Logger),
	)

	return &session{
		tmpl:   tmpl,
		client: client,
		cache:  c,
		explorer: explore.New(c, tmpl,
			explore.WithMetadataSegment(ps.MetadataSegment),
			explore.WithLogger(cfg.Logger),
		),
	}, nil
}

// withTimeout bounds a command's store traffic by parameterStore.timeoutMs
func withTimeout(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Definition == nil {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cfg.Definition.ParameterStore.Timeout())
}

// parseAssignments reads repeated name=value flags
func parseAssignments(flag string, raw []string) (map[string]string, error) {
	values := make(map[string]string, len(raw))
	for _, item := range raw {
		name, value, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, eerrors.UserError{
				Message:    fmt.Sprintf("Invalid --%s value %q", flag, item),
				Suggestion: fmt.Sprintf("Use --%s placeholder=value, e.g. --%s env=prod", flag, flag),
			}
		}
		values[name] = strings.TrimSpace(value)
	}
	return values, nil
}

// parseSelections reads repeated name=v1,v2 flags
func parseSelections(flag string, raw []string) (map[string][]string, error) {
	assignments, err := parseAssignments(flag, raw)
	if err != nil {
		return nil, err
	}
	selections := make(map[string][]string, len(assignments))
	for name, list := range assignments {
		var values []string
		for _, v := range strings.Split(list, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		selections[name] = values
	}
	return selections, nil
}

// requirePlaceholder rejects a placeholder the template does not declare
func requirePlaceholder(tmpl template.Template, flag, name string) error {
	if name == "" {
		return eerrors.UserError{
			Message:    fmt.Sprintf("--%s is required", flag),
			Suggestion: fmt.Sprintf("Pick one of: %s", strings.Join(tmpl.Names(), ", ")),
		}
	}
	if !tmpl.Has(name) {
		return eerrors.UserError{
			Message:    fmt.Sprintf("Unknown placeholder %q", name),
			Suggestion: fmt.Sprintf("The template %s declares: %s", tmpl, strings.Join(tmpl.Names(), ", ")),
		}
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const maskedValue = "********"

// displayValue redacts SecureString values unless showSecrets is set
func displayValue(p paramstore.Parameter, showSecrets bool) string {
	if p.Type.IsSecure() && !showSecrets {
		return maskedValue
	}
	return p.Value
}

// The mask* helpers copy query results for JSON output with SecureString
// values redacted the same way the text renderers do.

func maskParameter(p paramstore.Parameter, showSecrets bool) paramstore.Parameter {
	p.Value = displayValue(p, showSecrets)
	return p
}

func maskGroup(g *hierarchy.Group, showSecrets bool) *hierarchy.Group {
	if showSecrets {
		return g
	}
	return g.Map(func(p paramstore.Parameter) paramstore.Parameter {
		return maskParameter(p, false)
	})
}

func maskRows(rows []explore.Row, showSecrets bool) []explore.Row {
	if rows == nil {
		return nil
	}
	out := make([]explore.Row, len(rows))
	for i, row := range rows {
		if !showSecrets && row.Value != nil && row.Type != nil && row.Type.IsSecure() {
			masked := maskedValue
			row.Value = &masked
		}
		out[i] = row
	}
	return out
}

func maskMissing(groups []explore.MissingGroup, showSecrets bool) []explore.MissingGroup {
	out := make([]explore.MissingGroup, len(groups))
	for i, g := range groups {
		out[i] = explore.MissingGroup{Name: g.Name, Instances: maskRows(g.Instances, showSecrets)}
	}
	return out
}

func maskSide(p *paramstore.Parameter, showSecrets bool) *paramstore.Parameter {
	if p == nil {
		return nil
	}
	masked := maskParameter(*p, showSecrets)
	return &masked
}

func maskDiff(d *explore.TemplateDiff, showSecrets bool) *explore.TemplateDiff {
	out := *d
	out.Rows = make([]explore.DiffRow, len(d.Rows))
	for i, row := range d.Rows {
		out.Rows[i] = explore.DiffRow{
			Key:   row.Key,
			Left:  maskSide(row.Left, showSecrets),
			Right: maskSide(row.Right, showSecrets),
		}
	}
	return &out
}

var (
	keyStyle     = lipgloss.NewStyle().Bold(true)
	groupStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)
