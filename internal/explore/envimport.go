package explore

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/hierarchy"
	"github.com/systmms/envexplorer/internal/template"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

// ParseEnv reads KEY=VALUE lines in the format RenderEnv writes. Blank lines
// and # comments are skipped, a value wrapped in double quotes is unquoted
// and a repeated key keeps its last value.
func ParseEnv(r io.Reader) (map[string]string, error) {
	env := make(map[string]string)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("line %d: expected KEY=VALUE", line)
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
			value = value[1 : len(value)-1]
		}
		env[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return env, nil
}

// ImportStatus classifies one stored parameter against an env file
type ImportStatus string

const (
	StatusChanged   ImportStatus = "changed"
	StatusUnchanged ImportStatus = "unchanged"
	// StatusMissing means the file has no line for the parameter
	StatusMissing ImportStatus = "missing"
)

// ImportChange is one stored parameter and the file's value for it
type ImportChange struct {
	Name    string          `json:"name"`
	Key     string          `json:"key"`
	Type    paramstore.Type `json:"type"`
	Current string          `json:"current"`
	File    string          `json:"file,omitempty"`
	Status  ImportStatus    `json:"status"`
}

// ImportPlan compares the parameters under one prefix with an env file.
// Unknown lists file keys with no parameter under the prefix; they are never
// written.
type ImportPlan struct {
	Prefix  string         `json:"prefix"`
	Changes []ImportChange `json:"changes"`
	Unknown []string       `json:"unknown,omitempty"`
}

// PlanImport marks every parameter in group as changed, unchanged or missing
// against env, in tree order. Keys are matched the way RenderEnv names them.
func PlanImport(tmpl template.Template, prefix string, group *hierarchy.Group, env map[string]string) ImportPlan {
	plan := ImportPlan{Prefix: prefix, Changes: []ImportChange{}}
	matched := make(map[string]bool, len(env))

	group.Walk(func(g *hierarchy.Group, _ int) {
		for _, p := range g.Parameters {
			key := EnvKey(tmpl.Local(p.Name))
			change := ImportChange{
				Name:    p.Name,
				Key:     key,
				Type:    p.Type,
				Current: p.Value,
			}
			value, ok := env[key]
			switch {
			case !ok:
				change.Status = StatusMissing
			case value == p.Value:
				change.File = value
				change.Status = StatusUnchanged
			default:
				change.File = value
				change.Status = StatusChanged
			}
			if ok {
				matched[key] = true
			}
			plan.Changes = append(plan.Changes, change)
		}
	})

	for key := range env {
		if !matched[key] {
			plan.Unknown = append(plan.Unknown, key)
		}
	}
	sort.Strings(plan.Unknown)
	return plan
}

// Pending returns the changes whose file value differs from the store
func (p ImportPlan) Pending() []ImportChange {
	var out []ImportChange
	for _, c := range p.Changes {
		if c.Status == StatusChanged {
			out = append(out, c)
		}
	}
	return out
}

// Select narrows the pending changes to the given env keys. Naming a key
// that has nothing to write is an error.
func (p ImportPlan) Select(keys []string) ([]ImportChange, error) {
	if len(keys) == 0 {
		return p.Pending(), nil
	}
	pending := make(map[string]ImportChange)
	for _, c := range p.Pending() {
		pending[c.Key] = c
	}

	out := make([]ImportChange, 0, len(keys))
	for _, key := range keys {
		c, ok := pending[key]
		if !ok {
			return nil, eerrors.UserError{
				Message:    fmt.Sprintf("Nothing to update for %s", key),
				Suggestion: "Only keys whose file value differs from the stored value can be selected",
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// ImportFailure is one write the store rejected
type ImportFailure struct {
	Name string
	Err  error
}

// ImportResult tallies an applied import
type ImportResult struct {
	Updated  []string
	Failures []ImportFailure
}

// Attempted is the number of writes tried
func (r ImportResult) Attempted() int {
	return len(r.Updated) + len(r.Failures)
}
