package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/logging"
	"github.com/systmms/envexplorer/internal/template"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is the configuration file looked up when --config is not given
	DefaultPath = "envexplorer.yaml"

	// EnvTemplate overrides parameterStore.template
	EnvTemplate = "ENVEXPLORER_TEMPLATE"
	// EnvRegion overrides aws.region
	EnvRegion = "AWS_REGION"

	DefaultKeyringService       = "envexplorer"
	DefaultMetadataSegment      = "EnvExplorer"
	DefaultMaxConcurrentFetches = 4
	DefaultTimeoutMs            = 30000
)

// Config holds the runtime configuration
type Config struct {
	Path   string
	Logger *logging.Logger
	// TemplateOverride takes precedence over the file and the environment
	TemplateOverride string
	Definition       *Definition
}

// Definition represents the envexplorer.yaml structure
type Definition struct {
	Version        int                  `yaml:"version"`
	AWS            AWSConfig            `yaml:"aws"`
	ParameterStore ParameterStoreConfig `yaml:"parameterStore"`
}

// AWSConfig selects region and credentials
type AWSConfig struct {
	Region         string `yaml:"region"`
	Profile        string `yaml:"profile,omitempty"`
	AccessKeyID    string `yaml:"accessKeyId,omitempty"`
	KeyringService string `yaml:"keyringService,omitempty"`
}

// ParameterStoreConfig describes how the store is read and interpreted
type ParameterStoreConfig struct {
	Template             string   `yaml:"template"`
	AllowedPrefixes      []string `yaml:"allowedPrefixes"`
	HiddenPatterns       []string `yaml:"hiddenPatterns"`
	MetadataSegment      string   `yaml:"metadataSegment"`
	MaxConcurrentFetches int      `yaml:"maxConcurrentFetches"`
	TimeoutMs            int      `yaml:"timeoutMs"`
}

// Timeout bounds a single command's store traffic
func (p ParameterStoreConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// Default returns the definition used when no file exists
func Default() Definition {
	return Definition{
		AWS: AWSConfig{
			KeyringService: DefaultKeyringService,
		},
		ParameterStore: ParameterStoreConfig{
			AllowedPrefixes:      []string{"/"},
			HiddenPatterns:       []string{"/EnvExplorer/"},
			MetadataSegment:      DefaultMetadataSegment,
			MaxConcurrentFetches: DefaultMaxConcurrentFetches,
			TimeoutMs:            DefaultTimeoutMs,
		},
	}
}

// Load reads and parses the envexplorer.yaml file. A missing file at the
// default path is not an error: defaults and environment overrides apply.
func (c *Config) Load() error {
	if c.Logger == nil {
		c.Logger = logging.Discard()
	}
	path := c.Path
	if path == "" {
		path = DefaultPath
	}

	def := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, &def); err != nil {
			return err
		}
	case os.IsNotExist(err) && c.Path == "":
		c.Logger.Debug("No %s found, using defaults", DefaultPath)
	case os.IsNotExist(err):
		return eerrors.ConfigError{
			Field:      "path",
			Value:      path,
			Message:    "configuration file not found",
			Suggestion: "Check the --config path, or omit it to run with defaults",
		}
	default:
		return eerrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	c.applyOverrides(&def)
	fillDefaults(&def)

	if err := def.Validate(); err != nil {
		return err
	}

	c.Definition = &def
	return nil
}

func decode(data []byte, def *Definition) error {
	problems, err := validateSchema(data)
	if err != nil {
		return eerrors.ConfigError{
			Message:    err.Error(),
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}
	if len(problems) > 0 {
		return eerrors.ConfigError{
			Field:      schemaField(problems[0]),
			Message:    "configuration does not match the schema:\n  - " + strings.Join(problems, "\n  - "),
			Suggestion: "Compare your file with the example in the README",
		}
	}

	if err := yaml.Unmarshal(data, def); err != nil {
		return eerrors.ConfigError{
			Message:    "invalid YAML in configuration file: " + err.Error(),
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}
	return nil
}

func (c *Config) applyOverrides(def *Definition) {
	if v := os.Getenv(EnvTemplate); v != "" {
		c.Logger.Debug("Template overridden by %s", EnvTemplate)
		def.ParameterStore.Template = v
	}
	if v := os.Getenv(EnvRegion); v != "" {
		def.AWS.Region = v
	}
	if c.TemplateOverride != "" {
		def.ParameterStore.Template = c.TemplateOverride
	}
}

// fillDefaults restores defaults for fields the file set to their zero value
func fillDefaults(def *Definition) {
	d := Default()
	ps := &def.ParameterStore
	if len(ps.AllowedPrefixes) == 0 {
		ps.AllowedPrefixes = d.ParameterStore.AllowedPrefixes
	}
	if ps.MetadataSegment == "" {
		ps.MetadataSegment = d.ParameterStore.MetadataSegment
	}
	if ps.MaxConcurrentFetches <= 0 {
		ps.MaxConcurrentFetches = d.ParameterStore.MaxConcurrentFetches
	}
	if ps.TimeoutMs <= 0 {
		ps.TimeoutMs = d.ParameterStore.TimeoutMs
	}
	if def.AWS.KeyringService == "" {
		def.AWS.KeyringService = d.AWS.KeyringService
	}
}

// Validate checks the fields the schema cannot express
func (d *Definition) Validate() error {
	if d.Version != 0 {
		return eerrors.ConfigError{
			Field:      "version",
			Value:      d.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your envexplorer.yaml file",
		}
	}

	if strings.TrimSpace(d.ParameterStore.Template) == "" {
		return eerrors.ConfigError{
			Field:      "parameterStore.template",
			Message:    "no template configured",
			Suggestion: fmt.Sprintf("Set parameterStore.template, export %s, or pass --template, e.g. /{environment}/{service}/*", EnvTemplate),
		}
	}

	if _, err := template.Parse(d.ParameterStore.Template); err != nil {
		return eerrors.ConfigError{
			Field:      "parameterStore.template",
			Value:      d.ParameterStore.Template,
			Message:    err.Error(),
			Suggestion: "Each {placeholder} must fill a whole path segment and appear once",
		}
	}

	for _, prefix := range d.ParameterStore.AllowedPrefixes {
		if !strings.HasPrefix(prefix, "/") {
			return eerrors.ConfigError{
				Field:      "parameterStore.allowedPrefixes",
				Value:      prefix,
				Message:    "prefix must be an absolute path",
				Suggestion: "Start every prefix with '/'",
			}
		}
	}

	return nil
}

// Template parses the configured template
func (c *Config) Template() (template.Template, error) {
	if c.Definition == nil {
		return template.Template{}, eerrors.UserError{
			Message:    "Configuration not loaded",
			Suggestion: "This is an internal error. Please report it",
		}
	}
	return template.Parse(c.Definition.ParameterStore.Template)
}
