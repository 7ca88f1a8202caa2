package explore

import (
	"strings"

	"github.com/systmms/envexplorer/pkg/paramstore"
)

// MatchName reports whether query occurs in name, ignoring case. An empty
// query matches every name.
func MatchName(name, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(query))
}

// NameFilter returns a predicate for hierarchy.Group.Filter
func NameFilter(query string) func(paramstore.Parameter) bool {
	return func(p paramstore.Parameter) bool {
		return MatchName(p.Name, query)
	}
}

// FilterMissing keeps the groups whose missing name, or any instance name,
// matches query.
func FilterMissing(groups []MissingGroup, query string) []MissingGroup {
	if query == "" {
		return groups
	}
	out := make([]MissingGroup, 0, len(groups))
	for _, g := range groups {
		if MatchName(g.Name, query) {
			out = append(out, g)
			continue
		}
		for _, inst := range g.Instances {
			if MatchName(inst.Name, query) {
				out = append(out, g)
				break
			}
		}
	}
	return out
}
