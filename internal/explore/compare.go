package explore

import (
	"fmt"

	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/pathkey"
	"github.com/systmms/envexplorer/internal/template"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

// Row is one placeholder assignment of a key. Value and Type are nil when no
// parameter exists under that assignment.
type Row struct {
	Name   string            `json:"name"`
	Value  *string           `json:"value"`
	Type   *paramstore.Type  `json:"type"`
	Values map[string]string `json:"templateValues"`
}

// Missing reports whether the row has no stored parameter
func (r Row) Missing() bool {
	return r.Value == nil
}

// Compare resolves key under every observed value of compareBy and looks each
// candidate up in params. The result has exactly one row per discovered value,
// in discovery order.
//
// anchor supplies the other placeholder values; any it leaves out are read
// from key itself. anchor is not modified.
func Compare(tmpl template.Template, params []paramstore.Parameter, anchor map[string]string, compareBy, key string) ([]Row, error) {
	if !tmpl.Has(compareBy) {
		return nil, eerrors.TemplateError{
			Template:    tmpl.String(),
			Placeholder: compareBy,
			Message:     "cannot compare by a placeholder the template does not declare",
		}
	}

	// The local part is taken once from the template, not from each resolved variant
	local := tmpl.Local(key)
	if local == "" {
		return nil, eerrors.TemplateError{
			Template: tmpl.String(),
			Message:  fmt.Sprintf("key %q has no segments below the template", key),
		}
	}

	base, _ := tmpl.Inverse(key)
	if base == nil {
		base = make(map[string]string)
	}
	for k, v := range anchor {
		base[k] = v
	}

	byName := index(params)
	options := tmpl.DiscoverOptions(params)[compareBy]
	rows := make([]Row, 0, len(options))
	for _, opt := range options {
		values := copyValues(base)
		values[compareBy] = opt

		prefix, err := tmpl.Resolve(values)
		if err != nil {
			return nil, err
		}

		row := Row{Name: pathkey.Join(prefix, local), Values: values}
		if p, ok := byName[row.Name]; ok {
			value, typ := p.Value, p.Type
			row.Value = &value
			row.Type = &typ
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func index(params []paramstore.Parameter) map[string]paramstore.Parameter {
	m := make(map[string]paramstore.Parameter, len(params))
	for _, p := range params {
		m[p.Name] = p
	}
	return m
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values)+1)
	for k, v := range values {
		out[k] = v
	}
	return out
}
