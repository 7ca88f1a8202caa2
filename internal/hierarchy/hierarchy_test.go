package hierarchy_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/envexplorer/internal/hierarchy"
	"github.com/systmms/envexplorer/pkg/paramstore"
	"github.com/systmms/envexplorer/tests/testutil"
)

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, hierarchy.Build(nil))
	assert.Nil(t, hierarchy.Build([]paramstore.Parameter{}))
}

func TestBuildShape(t *testing.T) {
	t.Parallel()

	params := testutil.Params(
		"/prod/api/DB_HOST", "h",
		"/prod/api/DB_PORT", "5432",
		"/prod/api/cache/REDIS_URL", "redis://",
		"/prod/api/cache/ttl/SECONDS", "30",
		"/prod/web/PUBLIC_URL", "https://",
		"/prod/VERSION", "7",
	)

	root := hierarchy.Build(params)
	require.NotNil(t, root)
	assert.Equal(t, "/prod", root.Name)

	require.Len(t, root.Parameters, 1)
	assert.Equal(t, "/prod/VERSION", root.Parameters[0].Name)

	require.Len(t, root.Children, 2)
	api, web := root.Children[0], root.Children[1]
	assert.Equal(t, "/prod/api", api.Name)
	assert.Equal(t, "/prod/web", web.Name)

	assert.Equal(t, []string{"/prod/api/DB_HOST", "/prod/api/DB_PORT"}, testutil.Names(api.Parameters))
	require.Len(t, api.Children, 1)
	cache := api.Children[0]
	assert.Equal(t, "/prod/api/cache", cache.Name)
	assert.Equal(t, []string{"/prod/api/cache/REDIS_URL"}, testutil.Names(cache.Parameters))

	ttl := root.Find("/prod/api/cache/ttl")
	require.NotNil(t, ttl)
	assert.Equal(t, []string{"/prod/api/cache/ttl/SECONDS"}, testutil.Names(ttl.Parameters))
	assert.Empty(t, ttl.Children)

	assert.Equal(t, []string{"/prod/web/PUBLIC_URL"}, testutil.Names(web.Parameters))
	assert.Nil(t, root.Find("/prod/missing"))
}

func TestBuildSiblingPrefixNotConfused(t *testing.T) {
	t.Parallel()

	params := testutil.Params(
		"/dev/api/KEY", "1",
		"/dev/apiv2/KEY", "2",
	)

	root := hierarchy.Build(params)
	api := root.Find("/dev/api")
	require.NotNil(t, api)
	assert.Equal(t, []string{"/dev/api/KEY"}, testutil.Names(api.Parameters))
}

func TestBuildSingleRoot(t *testing.T) {
	t.Parallel()

	// Only the first level-1 bucket becomes the root
	params := testutil.Params(
		"/dev/api/KEY", "1",
		"/prod/api/KEY", "2",
	)

	root := hierarchy.Build(params)
	assert.Equal(t, "/dev", root.Name)
	assert.Equal(t, []string{"/dev/api/KEY"}, testutil.Names(root.Flatten()))
}

func TestBuildRoundTrip(t *testing.T) {
	t.Parallel()

	sets := map[string][]paramstore.Parameter{
		"wide dev":  filterPrefix(testutil.WideParams(), "/dev"),
		"wide prod": filterPrefix(testutil.WideParams(), "/prod"),
		"deep chain": testutil.Params(
			"/a/b/c/d/e/f/G", "1",
			"/a/b/H", "2",
			"/a/I", "3",
		),
		"generated": generated(),
	}

	for name, params := range sets {
		t.Run(name, func(t *testing.T) {
			root := hierarchy.Build(params)
			require.NotNil(t, root)

			flat := root.Flatten()
			assert.Equal(t, len(params), root.Count())
			assert.ElementsMatch(t, params, flat)

			seen := make(map[string]bool)
			for _, p := range flat {
				assert.False(t, seen[p.Name], "duplicate %s", p.Name)
				seen[p.Name] = true
			}
		})
	}
}

func TestWalkDepth(t *testing.T) {
	t.Parallel()

	root := hierarchy.Build(testutil.Params("/a/b/c/KEY", "v"))

	var visited []string
	root.Walk(func(g *hierarchy.Group, depth int) {
		visited = append(visited, fmt.Sprintf("%d:%s", depth, g.Name))
	})
	assert.Equal(t, []string{"0:/a", "1:/a/b", "2:/a/b/c"}, visited)

	var nilGroup *hierarchy.Group
	assert.Empty(t, nilGroup.Flatten())
}

func filterPrefix(params []paramstore.Parameter, prefix string) []paramstore.Parameter {
	var out []paramstore.Parameter
	for _, p := range params {
		if len(p.Name) > len(prefix) && p.Name[:len(prefix)+1] == prefix+"/" {
			out = append(out, p)
		}
	}
	return out
}

func generated() []paramstore.Parameter {
	var pairs []string
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			pairs = append(pairs,
				fmt.Sprintf("/root/s%d/KEY_%d", i, j), "v",
				fmt.Sprintf("/root/s%d/n%d/KEY", i, j), "v",
			)
			if j%2 == 0 {
				pairs = append(pairs, fmt.Sprintf("/root/s%d/n%d/deep/er/KEY", i, j), "v")
			}
		}
	}
	return testutil.Params(pairs...)
}

func TestMapCopiesTree(t *testing.T) {
	t.Parallel()

	root := hierarchy.Build(testutil.WideParams()[:4])
	require.NotNil(t, root)

	upper := root.Map(func(p paramstore.Parameter) paramstore.Parameter {
		p.Value = "masked"
		return p
	})

	assert.Equal(t, root.Count(), upper.Count())
	for _, p := range upper.Flatten() {
		assert.Equal(t, "masked", p.Value)
	}
	for _, p := range root.Flatten() {
		assert.NotEqual(t, "masked", p.Value, "source tree is untouched")
	}
	assert.Nil(t, (*hierarchy.Group)(nil).Map(func(p paramstore.Parameter) paramstore.Parameter { return p }))
}

func TestFilter(t *testing.T) {
	t.Parallel()

	root := hierarchy.Build(testutil.WideParams()[:4])
	require.NotNil(t, root)

	tests := []struct {
		name  string
		keep  func(paramstore.Parameter) bool
		names []string
	}{
		{
			name:  "leaf in nested branch",
			keep:  func(p paramstore.Parameter) bool { return p.Value == "30" },
			names: []string{"/dev/api/cache/ttl/SECONDS"},
		},
		{
			name:  "shallow only prunes branches",
			keep:  func(p paramstore.Parameter) bool { return p.Value == "5432" },
			names: []string{"/dev/api/DB_PORT"},
		},
		{
			name:  "everything",
			keep:  func(paramstore.Parameter) bool { return true },
			names: testutil.Names(testutil.WideParams()[:4]),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			filtered := root.Filter(tt.keep)
			require.NotNil(t, filtered)
			assert.Equal(t, tt.names, testutil.Names(filtered.Flatten()))
			filtered.Walk(func(g *hierarchy.Group, _ int) {
				assert.NotZero(t, g.Count(), "empty branch %s kept", g.Name)
			})
		})
	}

	assert.Nil(t, root.Filter(func(paramstore.Parameter) bool { return false }))
}
