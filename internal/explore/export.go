package explore

import (
	"strings"

	"github.com/systmms/envexplorer/internal/hierarchy"
	"github.com/systmms/envexplorer/internal/pathkey"
	"github.com/systmms/envexplorer/internal/template"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

const (
	// DefaultMetadataSegment names the segment holding per-prefix metadata
	DefaultMetadataSegment = "EnvExplorer"
	// DirectoryNameKey is the metadata parameter naming an export's directory
	DirectoryNameKey = "DirectoryName"
)

// ExportFile is one .env file produced by Export
type ExportFile struct {
	Directory string            `json:"directory"`
	Prefix    string            `json:"prefix"`
	Values    map[string]string `json:"templateValues"`
	Group     *hierarchy.Group  `json:"group"`
}

// Export expands selections and builds one file per prefix. params must
// include hidden parameters, since the directory name lives under the
// metadata segment; only visible parameters go into the file. Prefixes with
// no visible parameters or no directory name are skipped.
func Export(tmpl template.Template, params []paramstore.Parameter, selections map[string][]string, metadataSegment string) ([]ExportFile, error) {
	if metadataSegment == "" {
		metadataSegment = DefaultMetadataSegment
	}

	combos, err := Combinations(tmpl, selections)
	if err != nil {
		return nil, err
	}

	byName := index(params)
	var files []ExportFile
	for _, values := range combos {
		prefix, err := tmpl.Resolve(values)
		if err != nil {
			return nil, err
		}

		var visible []paramstore.Parameter
		for _, p := range params {
			if !p.IsHidden && pathkey.HasPrefix(p.Name, prefix) {
				visible = append(visible, p)
			}
		}
		group := hierarchy.Build(visible)
		if group == nil {
			continue
		}

		dir, ok := byName[pathkey.Join(prefix, metadataSegment+pathkey.Separator+DirectoryNameKey)]
		if !ok || strings.TrimSpace(dir.Value) == "" {
			continue
		}

		files = append(files, ExportFile{
			Directory: strings.TrimSpace(dir.Value),
			Prefix:    prefix,
			Values:    values,
			Group:     group,
		})
	}
	return files, nil
}

// RenderEnv writes the parameters of group as .env lines. Each key is the
// parameter name below the template with separators replaced by "__"; values
// containing a space are double quoted. With header set, the placeholder
// values are written first as "#name: value" comments.
func RenderEnv(tmpl template.Template, file ExportFile, header bool) string {
	var b strings.Builder
	if header {
		for _, name := range tmpl.Names() {
			b.WriteString("#" + name + ": " + file.Values[name] + "\n")
		}
		b.WriteString("\n")
	}

	file.Group.Walk(func(g *hierarchy.Group, _ int) {
		for _, p := range g.Parameters {
			b.WriteString(EnvKey(tmpl.Local(p.Name)))
			b.WriteString("=")
			b.WriteString(envValue(p.Value))
			b.WriteString("\n")
		}
	})
	return b.String()
}

// EnvKey turns a local parameter path into an environment variable name
func EnvKey(local string) string {
	return strings.ReplaceAll(local, pathkey.Separator, "__")
}

func envValue(value string) string {
	if strings.Contains(value, " ") {
		return `"` + value + `"`
	}
	return value
}
