package explore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/explore"
	"github.com/systmms/envexplorer/internal/template"
	"github.com/systmms/envexplorer/tests/testutil"
)

func rowValue(r explore.Row) string {
	if r.Value == nil {
		return "<missing>"
	}
	return *r.Value
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tmpl := template.MustParse(testutil.ExampleTemplate)

	tests := []struct {
		name      string
		anchor    map[string]string
		compareBy string
		key       string
		want      map[string]string
	}{
		{
			name:      "across environments",
			anchor:    map[string]string{"service": "api"},
			compareBy: "env",
			key:       "/dev/api/DB_HOST",
			want: map[string]string{
				"/dev/api/DB_HOST":  "x",
				"/prod/api/DB_HOST": "y",
			},
		},
		{
			name:      "anchor overrides key",
			anchor:    map[string]string{"env": "dev", "service": "web"},
			compareBy: "env",
			key:       "/dev/api/DB_HOST",
			want: map[string]string{
				"/dev/web/DB_HOST":  "z",
				"/prod/web/DB_HOST": "<missing>",
			},
		},
		{
			name:      "across services",
			anchor:    nil,
			compareBy: "service",
			key:       "/prod/api/DB_HOST",
			want: map[string]string{
				"/prod/api/DB_HOST": "y",
				"/prod/web/DB_HOST": "<missing>",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := explore.Compare(tmpl, testutil.ExampleParams(), tt.anchor, tt.compareBy, tt.key)
			require.NoError(t, err)

			got := make(map[string]string, len(rows))
			for _, r := range rows {
				got[r.Name] = rowValue(r)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompareOneRowPerOption(t *testing.T) {
	t.Parallel()

	tmpl := template.MustParse(testutil.ExampleTemplate)
	params := testutil.WideParams()
	options := tmpl.DiscoverOptions(params)

	rows, err := explore.Compare(tmpl, params, map[string]string{"env": "prod"}, "service", "/dev/api/cache/REDIS_URL")
	require.NoError(t, err)
	require.Len(t, rows, len(options["service"]))

	assert.Equal(t, "/prod/api/cache/REDIS_URL", rows[0].Name)
	assert.Equal(t, "redis://prod", rowValue(rows[0]))
	assert.Equal(t, map[string]string{"env": "prod", "service": "api"}, rows[0].Values)

	assert.Equal(t, "/prod/web/cache/REDIS_URL", rows[1].Name)
	assert.True(t, rows[1].Missing())
	assert.Nil(t, rows[1].Type)
}

func TestCompareDoesNotMutateAnchor(t *testing.T) {
	t.Parallel()

	anchor := map[string]string{"service": "api"}
	_, err := explore.Compare(template.MustParse(testutil.ExampleTemplate), testutil.ExampleParams(), anchor, "env", "/dev/api/DB_HOST")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"service": "api"}, anchor)
}

func TestCompareErrors(t *testing.T) {
	t.Parallel()

	tmpl := template.MustParse(testutil.ExampleTemplate)

	_, err := explore.Compare(tmpl, testutil.ExampleParams(), nil, "region", "/dev/api/DB_HOST")
	assert.True(t, eerrors.IsTemplateError(err), "unknown placeholder")

	_, err = explore.Compare(tmpl, testutil.ExampleParams(), nil, "env", "/dev/api")
	assert.True(t, eerrors.IsTemplateError(err), "key without a local part")

	_, err = explore.Compare(tmpl, testutil.ExampleParams(), nil, "env", "/too-short")
	assert.True(t, eerrors.IsTemplateError(err), "key shorter than the template")
}
