package template

import (
	"github.com/systmms/envexplorer/internal/pathkey"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

// Options maps each placeholder to the distinct values observed for it, in
// the order they were first seen.
type Options map[string][]string

// DiscoverOptions collects, per placeholder, the distinct segment values at
// the placeholder's depth across params. Names too short to reach the depth
// contribute nothing.
func (t Template) DiscoverOptions(params []paramstore.Parameter) Options {
	opts := make(Options, len(t.placeholders))
	for _, p := range t.placeholders {
		seen := make(map[string]bool)
		values := []string{}
		for _, param := range params {
			seg, ok := pathkey.Segment(param.Name, p.Depth)
			if !ok || seg == "" || seen[seg] {
				continue
			}
			seen[seg] = true
			values = append(values, seg)
		}
		opts[p.Name] = values
	}
	return opts
}

// Without returns the values of name minus the excluded one
func (o Options) Without(name, exclude string) []string {
	var out []string
	for _, v := range o[name] {
		if v != exclude {
			out = append(out, v)
		}
	}
	return out
}

// Contains reports whether value was observed for name
func (o Options) Contains(name, value string) bool {
	for _, v := range o[name] {
		if v == value {
			return true
		}
	}
	return false
}
