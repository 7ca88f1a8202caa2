// Package testutil provides fixtures and helpers shared by envexplorer tests.
//
// It holds parameter fixtures, a config file builder, log capture, env
// isolation and the LocalStack harness used by the integration suite.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/systmms/envexplorer/internal/config"
	"gopkg.in/yaml.v3"
)

// TestConfigBuilder builds envexplorer.yaml files for tests.
//
// It starts from config.Default() with ExampleTemplate, so a bare
// NewTestConfig(t).Write() is already a loadable file.
//
// Example usage:
//
//	path := testutil.NewTestConfig(t).
//	    WithTemplate("/{env}/{service}/*").
//	    WithPrefixes("/dev", "/prod").
//	    Write()
//
//	cfg := &config.Config{Path: path}
type TestConfigBuilder struct {
	def *config.Definition
	dir string
	t   *testing.T
}

// NewTestConfig creates a builder writing into a per-test temp directory
func NewTestConfig(t *testing.T) *TestConfigBuilder {
	t.Helper()

	def := config.Default()
	def.AWS.Region = "us-east-1"
	def.ParameterStore.Template = ExampleTemplate

	return &TestConfigBuilder{
		def: &def,
		dir: t.TempDir(),
		t:   t,
	}
}

// WithTemplate sets parameterStore.template
func (b *TestConfigBuilder) WithTemplate(raw string) *TestConfigBuilder {
	b.def.ParameterStore.Template = raw
	return b
}

// WithPrefixes sets parameterStore.allowedPrefixes
func (b *TestConfigBuilder) WithPrefixes(prefixes ...string) *TestConfigBuilder {
	b.def.ParameterStore.AllowedPrefixes = prefixes
	return b
}

// WithHiddenPatterns sets parameterStore.hiddenPatterns
func (b *TestConfigBuilder) WithHiddenPatterns(patterns ...string) *TestConfigBuilder {
	b.def.ParameterStore.HiddenPatterns = patterns
	return b
}

// WithMetadataSegment sets parameterStore.metadataSegment
func (b *TestConfigBuilder) WithMetadataSegment(segment string) *TestConfigBuilder {
	b.def.ParameterStore.MetadataSegment = segment
	return b
}

// WithAWS replaces the aws section
func (b *TestConfigBuilder) WithAWS(aws config.AWSConfig) *TestConfigBuilder {
	b.def.AWS = aws
	return b
}

// Build returns a copy of the definition without touching disk
func (b *TestConfigBuilder) Build() config.Definition {
	return *b.def
}

// Write marshals the definition to envexplorer.yaml and returns its path
func (b *TestConfigBuilder) Write() string {
	b.t.Helper()

	path := filepath.Join(b.dir, config.DefaultPath)
	if err := b.WriteYAML(path); err != nil {
		b.t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

// WriteYAML marshals the definition to path
func (b *TestConfigBuilder) WriteYAML(path string) error {
	data, err := yaml.Marshal(b.def)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WriteTestConfig writes raw YAML to a temp envexplorer.yaml and returns its
// path. Use it for files the builder cannot express, such as invalid ones.
func WriteTestConfig(t *testing.T, yamlContent string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.DefaultPath)
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}
