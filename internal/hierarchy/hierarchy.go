// Package hierarchy turns a flat list of parameters into a tree grouped by
// path segment.
package hierarchy

import (
	"github.com/systmms/envexplorer/internal/pathkey"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

// Group is one prefix level of the tree. Parameters holds the leaves exactly
// one segment below Name; Children holds the deeper prefixes.
type Group struct {
	Name       string                 `json:"name"`
	Parameters []paramstore.Parameter `json:"parameters"`
	Children   []*Group               `json:"children"`
}

// Build groups params under a single root and returns nil for empty input.
//
// The root is the level-1 prefix of the first parameter. Callers are expected
// to pass parameters sharing one top-level prefix; parameters under any other
// top-level prefix are not attached anywhere.
func Build(params []paramstore.Parameter) *Group {
	if len(params) == 0 {
		return nil
	}

	maxLevel := 0
	for _, p := range params {
		if d := pathkey.Depth(p.Name); d > maxLevel {
			maxLevel = d
		}
	}

	root := &Group{Name: pathkey.Level(params[0].Name, 1)}
	frontier := []*Group{root}

	for level := 2; level <= maxLevel-1 && len(frontier) > 0; level++ {
		var next []*Group
		for _, node := range frontier {
			node.Children = []*Group{}
			node.Parameters = []paramstore.Parameter{}

			seen := make(map[string]bool)
			for _, p := range params {
				if !pathkey.HasPrefix(p.Name, node.Name) {
					continue
				}
				depth := pathkey.Depth(p.Name)
				switch {
				case depth == level+1:
					node.Parameters = append(node.Parameters, p)
				case depth > level+1:
					childName := pathkey.Level(p.Name, level)
					if !seen[childName] {
						seen[childName] = true
						node.Children = append(node.Children, &Group{Name: childName})
					}
				}
			}
			next = append(next, node.Children...)
		}
		frontier = next
	}

	return root
}

// Walk visits g and every descendant depth-first, parents before children.
// depth is 0 for g itself.
func (g *Group) Walk(fn func(group *Group, depth int)) {
	if g == nil {
		return
	}
	g.walk(fn, 0)
}

func (g *Group) walk(fn func(*Group, int), depth int) {
	fn(g, depth)
	for _, child := range g.Children {
		child.walk(fn, depth+1)
	}
}

// Flatten collects every parameter in the tree
func (g *Group) Flatten() []paramstore.Parameter {
	var out []paramstore.Parameter
	g.Walk(func(group *Group, _ int) {
		out = append(out, group.Parameters...)
	})
	return out
}

// Count is the number of parameters in the tree
func (g *Group) Count() int {
	n := 0
	g.Walk(func(group *Group, _ int) {
		n += len(group.Parameters)
	})
	return n
}

// Find returns the group with the given name, or nil
func (g *Group) Find(name string) *Group {
	var found *Group
	g.Walk(func(group *Group, _ int) {
		if found == nil && group.Name == name {
			found = group
		}
	})
	return found
}

// Map returns a deep copy of the tree with every parameter passed through fn
func (g *Group) Map(fn func(paramstore.Parameter) paramstore.Parameter) *Group {
	if g == nil {
		return nil
	}
	out := &Group{Name: g.Name}
	if g.Parameters != nil {
		out.Parameters = make([]paramstore.Parameter, len(g.Parameters))
		for i, p := range g.Parameters {
			out.Parameters[i] = fn(p)
		}
	}
	if g.Children != nil {
		out.Children = make([]*Group, len(g.Children))
		for i, child := range g.Children {
			out.Children[i] = child.Map(fn)
		}
	}
	return out
}

// Filter returns a copy of the tree holding only the parameters keep accepts.
// Branches left without parameters are dropped, and the result is nil when
// nothing is kept.
func (g *Group) Filter(keep func(paramstore.Parameter) bool) *Group {
	if g == nil {
		return nil
	}
	out := &Group{Name: g.Name, Parameters: []paramstore.Parameter{}, Children: []*Group{}}
	for _, p := range g.Parameters {
		if keep(p) {
			out.Parameters = append(out.Parameters, p)
		}
	}
	for _, child := range g.Children {
		if kept := child.Filter(keep); kept != nil {
			out.Children = append(out.Children, kept)
		}
	}
	if len(out.Parameters) == 0 && len(out.Children) == 0 {
		return nil
	}
	return out
}
