package explore

import (
	"context"

	"github.com/systmms/envexplorer/internal/cache"
	"github.com/systmms/envexplorer/internal/hierarchy"
	"github.com/systmms/envexplorer/internal/logging"
	"github.com/systmms/envexplorer/internal/template"
)

// Explorer answers template queries against a live cache
type Explorer struct {
	cache           *cache.Cache
	tmpl            template.Template
	metadataSegment string
	logger          *logging.Logger
}

// Option configures an Explorer
type Option func(*Explorer)

// WithMetadataSegment sets the segment holding export metadata
func WithMetadataSegment(segment string) Option {
	return func(e *Explorer) {
		if segment != "" {
			e.metadataSegment = segment
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(e *Explorer) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New binds a parsed template to a cache
func New(c *cache.Cache, tmpl template.Template, opts ...Option) *Explorer {
	e := &Explorer{
		cache:           c,
		tmpl:            tmpl,
		metadataSegment: DefaultMetadataSegment,
		logger:          logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Template returns the template queries are evaluated against
func (e *Explorer) Template() template.Template {
	return e.tmpl
}

// Comparison is the result of Explorer.Compare
type Comparison struct {
	Key       string `json:"key"`
	CompareBy string `json:"compareBy"`
	Rows      []Row  `json:"rows"`
}

// MissingReport is the result of Explorer.Missing
type MissingReport struct {
	MissingBy      string         `json:"missingBy"`
	MissingByValue string         `json:"missingByValue"`
	Groups         []MissingGroup `json:"missing"`
}

// Options discovers placeholder values from visible parameters
func (e *Explorer) Options(ctx context.Context) (template.Options, error) {
	params, err := e.cache.Get(ctx, false)
	if err != nil {
		return nil, err
	}
	return e.tmpl.DiscoverOptions(params), nil
}

// List builds the tree of parameters under the prefix values resolve to.
// It returns nil when nothing is stored there.
func (e *Explorer) List(ctx context.Context, values map[string]string, includeHidden bool) (*hierarchy.Group, error) {
	prefix, err := e.tmpl.Resolve(values)
	if err != nil {
		return nil, err
	}
	params, err := e.cache.Get(ctx, includeHidden)
	if err != nil {
		return nil, err
	}

	under := underPrefix(params, prefix)
	e.logger.Debug("Found %d parameters under %s", len(under), prefix)
	return hierarchy.Build(under), nil
}

// Compare shows key under every value of compareBy
func (e *Explorer) Compare(ctx context.Context, anchor map[string]string, compareBy, key string) (*Comparison, error) {
	params, err := e.cache.Get(ctx, false)
	if err != nil {
		return nil, err
	}
	rows, err := Compare(e.tmpl, params, anchor, compareBy, key)
	if err != nil {
		return nil, err
	}
	return &Comparison{Key: key, CompareBy: compareBy, Rows: rows}, nil
}

// Missing lists keys absent under reference[missingBy]
func (e *Explorer) Missing(ctx context.Context, missingBy string, reference map[string]string) (*MissingReport, error) {
	params, err := e.cache.Get(ctx, false)
	if err != nil {
		return nil, err
	}
	groups, err := FindMissing(e.tmpl, params, missingBy, reference)
	if err != nil {
		return nil, err
	}
	return &MissingReport{
		MissingBy:      missingBy,
		MissingByValue: reference[missingBy],
		Groups:         groups,
	}, nil
}

// Export builds the .env files for every prefix selections expand to
func (e *Explorer) Export(ctx context.Context, selections map[string][]string) ([]ExportFile, error) {
	params, err := e.cache.Get(ctx, true)
	if err != nil {
		return nil, err
	}
	files, err := Export(e.tmpl, params, selections, e.metadataSegment)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Export produced %d files", len(files))
	return files, nil
}

// Diff lays two full placeholder selections side by side
func (e *Explorer) Diff(ctx context.Context, left, right map[string]string) (*TemplateDiff, error) {
	params, err := e.cache.Get(ctx, false)
	if err != nil {
		return nil, err
	}
	return DiffTemplates(e.tmpl, params, left, right)
}

// Import compares the visible parameters under the prefix values resolve to
// with the contents of an env file.
func (e *Explorer) Import(ctx context.Context, values map[string]string, env map[string]string) (ImportPlan, error) {
	prefix, err := e.tmpl.Resolve(values)
	if err != nil {
		return ImportPlan{}, err
	}
	group, err := e.List(ctx, values, false)
	if err != nil {
		return ImportPlan{}, err
	}
	return PlanImport(e.tmpl, prefix, group, env), nil
}

// Apply writes changes through the cache one at a time. A rejected write is
// recorded and the rest still run.
func (e *Explorer) Apply(ctx context.Context, changes []ImportChange) ImportResult {
	var result ImportResult
	for _, c := range changes {
		if _, err := e.cache.Update(ctx, c.Name, c.File, c.Type); err != nil {
			result.Failures = append(result.Failures, ImportFailure{Name: c.Name, Err: err})
			continue
		}
		result.Updated = append(result.Updated, c.Name)
	}
	e.logger.Debug("Applied %d of %d imported values", len(result.Updated), result.Attempted())
	return result
}
