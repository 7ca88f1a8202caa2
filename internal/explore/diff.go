package explore

import (
	"sort"
	"strings"

	"github.com/systmms/envexplorer/internal/pathkey"
	"github.com/systmms/envexplorer/internal/template"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

// DiffRow is one key below the template, looked up under both selections.
// A side is nil when no parameter exists there.
type DiffRow struct {
	Key   string                `json:"key"`
	Left  *paramstore.Parameter `json:"left"`
	Right *paramstore.Parameter `json:"right"`
}

// LeftMissing reports whether the left side has no value
func (r DiffRow) LeftMissing() bool {
	return r.Left == nil || r.Left.Value == ""
}

// RightMissing reports whether the right side has no value
func (r DiffRow) RightMissing() bool {
	return r.Right == nil || r.Right.Value == ""
}

// Differs reports whether both sides hold a value and the values differ
func (r DiffRow) Differs() bool {
	return !r.LeftMissing() && !r.RightMissing() && r.Left.Value != r.Right.Value
}

// TemplateDiff lays two full placeholder selections side by side
type TemplateDiff struct {
	LeftPrefix  string    `json:"leftPrefix"`
	RightPrefix string    `json:"rightPrefix"`
	LeftTotal   int       `json:"leftTotal"`
	RightTotal  int       `json:"rightTotal"`
	Rows        []DiffRow `json:"rows"`
}

// DiffTemplates resolves left and right and lists the union of the keys
// stored below either prefix, sorted case-insensitively. Every placeholder
// needs a value on both sides.
func DiffTemplates(tmpl template.Template, params []paramstore.Parameter, left, right map[string]string) (*TemplateDiff, error) {
	leftPrefix, err := tmpl.Resolve(left)
	if err != nil {
		return nil, err
	}
	rightPrefix, err := tmpl.Resolve(right)
	if err != nil {
		return nil, err
	}

	lefts := byLocal(tmpl, underPrefix(params, leftPrefix))
	rights := byLocal(tmpl, underPrefix(params, rightPrefix))

	keys := make([]string, 0, len(lefts)+len(rights))
	for k := range lefts {
		keys = append(keys, k)
	}
	for k := range rights {
		if _, ok := lefts[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := strings.ToLower(keys[i]), strings.ToLower(keys[j])
		if a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})

	diff := &TemplateDiff{
		LeftPrefix:  leftPrefix,
		RightPrefix: rightPrefix,
		LeftTotal:   len(lefts),
		RightTotal:  len(rights),
		Rows:        make([]DiffRow, 0, len(keys)),
	}
	for _, k := range keys {
		row := DiffRow{Key: k}
		if p, ok := lefts[k]; ok {
			row.Left = &p
		}
		if p, ok := rights[k]; ok {
			row.Right = &p
		}
		diff.Rows = append(diff.Rows, row)
	}
	return diff, nil
}

func underPrefix(params []paramstore.Parameter, prefix string) []paramstore.Parameter {
	var out []paramstore.Parameter
	for _, p := range params {
		if pathkey.HasPrefix(p.Name, prefix) {
			out = append(out, p)
		}
	}
	return out
}

func byLocal(tmpl template.Template, params []paramstore.Parameter) map[string]paramstore.Parameter {
	m := make(map[string]paramstore.Parameter, len(params))
	for _, p := range params {
		if local := tmpl.Local(p.Name); local != "" {
			m[local] = p
		}
	}
	return m
}
