package explore

import (
	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/template"
)

// Combinations is the cartesian product of selections in template
// placeholder order, the first placeholder varying slowest. Every declared
// placeholder needs an entry; an empty entry makes the whole product empty.
func Combinations(tmpl template.Template, selections map[string][]string) ([]map[string]string, error) {
	for name := range selections {
		if !tmpl.Has(name) {
			return nil, eerrors.TemplateError{
				Template:    tmpl.String(),
				Placeholder: name,
				Message:     "selection for a placeholder the template does not declare",
			}
		}
	}

	combos := []map[string]string{{}}
	for _, name := range tmpl.Names() {
		selected, ok := selections[name]
		if !ok {
			return nil, eerrors.TemplateError{
				Template:    tmpl.String(),
				Placeholder: name,
				Message:     "no values selected",
			}
		}

		next := make([]map[string]string, 0, len(combos)*len(selected))
		for _, combo := range combos {
			for _, value := range selected {
				c := copyValues(combo)
				c[name] = value
				next = append(next, c)
			}
		}
		combos = next
	}
	return combos, nil
}

// Expand resolves every combination of selections to a concrete prefix
func Expand(tmpl template.Template, selections map[string][]string) ([]string, error) {
	combos, err := Combinations(tmpl, selections)
	if err != nil {
		return nil, err
	}

	prefixes := make([]string, 0, len(combos))
	for _, combo := range combos {
		prefix, err := tmpl.Resolve(combo)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, prefix)
	}
	return prefixes, nil
}
