package explore

import (
	"sort"

	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/pathkey"
	"github.com/systmms/envexplorer/internal/template"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

// MissingGroup is one key absent under the reference value. Name is the key
// as it would be spelled under the reference value; Instances are the places
// the key was found instead.
type MissingGroup struct {
	Name      string `json:"name"`
	Instances []Row  `json:"parameters"`
}

// FindMissing lists every key that exists under some other value of missingBy
// but not under reference[missingBy].
//
// For each other placeholder and each of its observed values, and each other
// value of missingBy, the template is resolved twice: once with the other
// value (prefix A) and once with the reference value (prefix B). Every key
// under A without a counterpart under B (A swapped for B) is reported under
// its B spelling, with one instance per assignment that exhibited the gap.
//
// This is only meaningful for templates with two placeholders, missingBy and
// one other. With more, the remaining placeholders are held at their
// reference values, so gaps along those axes are not seen and keys from
// different axes land in the same group.
func FindMissing(tmpl template.Template, params []paramstore.Parameter, missingBy string, reference map[string]string) ([]MissingGroup, error) {
	if !tmpl.Has(missingBy) {
		return nil, eerrors.TemplateError{
			Template:    tmpl.String(),
			Placeholder: missingBy,
			Message:     "cannot detect missing keys by a placeholder the template does not declare",
		}
	}
	refValue := reference[missingBy]
	if refValue == "" {
		return nil, eerrors.TemplateError{
			Template:    tmpl.String(),
			Placeholder: missingBy,
			Message:     "no reference value supplied",
		}
	}

	opts := tmpl.DiscoverOptions(params)
	missingOptions := opts.Without(missingBy, refValue)

	groups := make(map[string]*MissingGroup)
	for _, other := range tmpl.Names() {
		if other == missingBy {
			continue
		}
		for _, otherValue := range opts[other] {
			for _, missingOpt := range missingOptions {
				values := copyValues(reference)
				values[other] = otherValue
				values[missingBy] = missingOpt
				otherPrefix, err := tmpl.Resolve(values)
				if err != nil {
					return nil, err
				}

				mainValues := copyValues(values)
				mainValues[missingBy] = refValue
				mainPrefix, err := tmpl.Resolve(mainValues)
				if err != nil {
					return nil, err
				}

				present := make(map[string]bool)
				for _, p := range params {
					if pathkey.HasPrefix(p.Name, mainPrefix) {
						present[p.Name] = true
					}
				}

				for _, p := range params {
					if !pathkey.HasPrefix(p.Name, otherPrefix) {
						continue
					}
					canonical, _ := pathkey.ReplacePrefix(p.Name, otherPrefix, mainPrefix)
					if present[canonical] {
						continue
					}
					g, ok := groups[canonical]
					if !ok {
						g = &MissingGroup{Name: canonical}
						groups[canonical] = g
					}
					value, typ := p.Value, p.Type
					g.Instances = append(g.Instances, Row{
						Name:   p.Name,
						Value:  &value,
						Type:   &typ,
						Values: copyValues(values),
					})
				}
			}
		}
	}

	out := make([]MissingGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
