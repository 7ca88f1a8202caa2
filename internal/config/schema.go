package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// validateSchema checks the raw YAML document against the embedded JSON
// schema. It returns one message per violation, empty when valid.
func validateSchema(data []byte) ([]string, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML syntax: %w", err)
	}
	if doc == nil {
		return nil, nil
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration for validation: %w", err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return problems, nil
}

func schemaField(problem string) string {
	field, _, found := strings.Cut(problem, ":")
	if !found || field == "(root)" {
		return ""
	}
	return field
}
