// Package template parses parameter path templates such as
//
//	/{environment}/{service}/*
//
// and resolves them against concrete placeholder values. Every placeholder
// fills exactly one path segment; the optional trailing "/*" is cosmetic and
// is stripped before anything else happens.
package template

import (
	"fmt"
	"regexp"
	"strings"

	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/pathkey"
)

// placeholderPattern is only used through FindAllStringSubmatchIndex,
// which keeps no state between calls.
var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Placeholder is one named slot of a template
type Placeholder struct {
	Name string
	// Depth is the zero-based segment index the value lands on once resolved
	Depth int

	start, end int
}

// Token is the literal form of the placeholder, e.g. "{env}"
func (p Placeholder) Token() string {
	return "{" + p.Name + "}"
}

// Template is a parsed path pattern. The zero value is an empty template.
type Template struct {
	raw          string
	normalized   string
	placeholders []Placeholder
}

// Parse validates raw and records where each placeholder sits
func Parse(raw string) (Template, error) {
	normalized := pathkey.TrimWildcard(strings.TrimSpace(raw))
	t := Template{raw: raw, normalized: normalized}

	if normalized != "" && !strings.HasPrefix(normalized, pathkey.Separator) {
		return Template{}, eerrors.TemplateError{
			Template: raw,
			Message:  "template must start with '/'",
		}
	}

	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(normalized, -1) {
		p := Placeholder{
			Name:  normalized[m[2]:m[3]],
			start: m[0],
			end:   m[1],
		}
		if seen[p.Name] {
			return Template{}, eerrors.TemplateError{
				Template:    raw,
				Placeholder: p.Name,
				Message:     "placeholder appears more than once",
			}
		}
		seen[p.Name] = true

		wholeSegment := p.start > 0 && normalized[p.start-1] == '/' &&
			(p.end == len(normalized) || normalized[p.end] == '/')
		if !wholeSegment {
			return Template{}, eerrors.TemplateError{
				Template:    raw,
				Placeholder: p.Name,
				Message:     "placeholder must fill a whole path segment",
			}
		}

		p.Depth = strings.Count(normalized[:p.start], pathkey.Separator)
		t.placeholders = append(t.placeholders, p)
	}

	return t, nil
}

// MustParse is Parse for templates known to be valid, it panics otherwise
func MustParse(raw string) Template {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the template as it was written
func (t Template) String() string {
	return t.raw
}

// Normalized returns the template without the trailing wildcard
func (t Template) Normalized() string {
	return t.normalized
}

// Placeholders returns the placeholders in template order
func (t Template) Placeholders() []Placeholder {
	out := make([]Placeholder, len(t.placeholders))
	copy(out, t.placeholders)
	return out
}

// Names returns the placeholder names in template order
func (t Template) Names() []string {
	names := make([]string, len(t.placeholders))
	for i, p := range t.placeholders {
		names[i] = p.Name
	}
	return names
}

// Has reports whether the template declares the placeholder
func (t Template) Has(name string) bool {
	_, ok := t.lookup(name)
	return ok
}

func (t Template) lookup(name string) (Placeholder, bool) {
	for _, p := range t.placeholders {
		if p.Name == name {
			return p, true
		}
	}
	return Placeholder{}, false
}

// Depth returns the segment index of the named placeholder
func (t Template) Depth(name string) (int, error) {
	p, ok := t.lookup(name)
	if !ok {
		return 0, t.unknown(name)
	}
	return p.Depth, nil
}

// Segments is the number of segments a resolved prefix has
func (t Template) Segments() int {
	if t.normalized == "" {
		return 0
	}
	return pathkey.Depth(t.normalized)
}

func (t Template) unknown(name string) error {
	return eerrors.TemplateError{
		Template:    t.raw,
		Placeholder: name,
		Message:     fmt.Sprintf("unknown placeholder (template declares %s)", strings.Join(t.Names(), ", ")),
	}
}

// Resolve substitutes values into the template. Every declared placeholder
// needs a non-empty value without a separator in it; extra keys are ignored.
func (t Template) Resolve(values map[string]string) (string, error) {
	var b strings.Builder
	last := 0
	for _, p := range t.placeholders {
		v, ok := values[p.Name]
		switch {
		case !ok:
			return "", eerrors.TemplateError{Template: t.raw, Placeholder: p.Name, Message: "no value supplied"}
		case v == "":
			return "", eerrors.TemplateError{Template: t.raw, Placeholder: p.Name, Message: "value is empty"}
		case strings.Contains(v, pathkey.Separator):
			return "", eerrors.TemplateError{Template: t.raw, Placeholder: p.Name, Message: fmt.Sprintf("value %q spans more than one segment", v)}
		}
		b.WriteString(t.normalized[last:p.start])
		b.WriteString(v)
		last = p.end
	}
	b.WriteString(t.normalized[last:])
	return b.String(), nil
}

// Inverse reads the placeholder values back out of a concrete name. It fails
// when the name is shorter than the template or a static segment differs.
func (t Template) Inverse(name string) (map[string]string, bool) {
	tmplSegs := pathkey.Segments(t.normalized)
	nameSegs := pathkey.Segments(name)
	if len(nameSegs) < len(tmplSegs) {
		return nil, false
	}

	values := make(map[string]string, len(t.placeholders))
	next := 0
	for i, seg := range tmplSegs {
		if next < len(t.placeholders) && t.placeholders[next].Depth == i {
			if nameSegs[i] == "" {
				return nil, false
			}
			values[t.placeholders[next].Name] = nameSegs[i]
			next++
			continue
		}
		if seg != nameSegs[i] {
			return nil, false
		}
	}
	return values, true
}

// Local returns the part of name below the template, e.g. "db/HOST" for
// "/prod/api/db/HOST" under "/{env}/{service}".
func (t Template) Local(name string) string {
	return pathkey.Local(name, t.Segments())
}
