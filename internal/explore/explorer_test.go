package explore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/envexplorer/internal/cache"
	"github.com/systmms/envexplorer/internal/explore"
	"github.com/systmms/envexplorer/internal/template"
	"github.com/systmms/envexplorer/tests/fakes"
	"github.com/systmms/envexplorer/tests/testutil"
)

func newExplorer(t *testing.T, store *fakes.FakeStore) (*explore.Explorer, *cache.Cache) {
	t.Helper()
	c := cache.New(store, cache.WithHiddenPatterns("/EnvExplorer/"))
	return explore.New(c, template.MustParse(testutil.ExampleTemplate)), c
}

// The worked example: three keys, discovered, compared and checked for gaps
func TestExplorerEndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := fakes.NewFakeStore().WithParameters(testutil.ExampleParams()...)
	e, _ := newExplorer(t, store)

	opts, err := e.Options(ctx)
	require.NoError(t, err)
	assert.Equal(t, template.Options{"env": {"dev", "prod"}, "service": {"api", "web"}}, opts)

	cmp, err := e.Compare(ctx, map[string]string{"service": "api"}, "env", "/dev/api/DB_HOST")
	require.NoError(t, err)
	assert.Equal(t, "env", cmp.CompareBy)
	require.Len(t, cmp.Rows, 2)
	assert.Equal(t, "x", *cmp.Rows[0].Value)
	assert.Equal(t, "y", *cmp.Rows[1].Value)

	report, err := e.Missing(ctx, "service", map[string]string{"service": "web"})
	require.NoError(t, err)
	assert.Equal(t, "web", report.MissingByValue)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, "/prod/web/DB_HOST", report.Groups[0].Name)
	assert.Equal(t, "/prod/api/DB_HOST", report.Groups[0].Instances[0].Name)

	assert.Equal(t, 1, store.CallCount("ListByPrefix"), "all queries share one snapshot")
}

func TestExplorerSeesUpdates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := fakes.NewFakeStore().WithParameters(testutil.ExampleParams()...)
	e, c := newExplorer(t, store)

	report, err := e.Missing(ctx, "service", map[string]string{"service": "web"})
	require.NoError(t, err)
	require.Len(t, report.Groups, 1)

	_, err = c.Update(ctx, report.Groups[0].Name, "w", "")
	require.NoError(t, err)

	report, err = e.Missing(ctx, "service", map[string]string{"service": "web"})
	require.NoError(t, err)
	assert.Empty(t, report.Groups)

	cmp, err := e.Compare(ctx, nil, "env", "/dev/web/DB_HOST")
	require.NoError(t, err)
	assert.Equal(t, "w", *cmp.Rows[1].Value)
}

func TestExplorerList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	params := append(testutil.WideParams(), testutil.Params("/dev/api/EnvExplorer/DirectoryName", "api")...)
	e, _ := newExplorer(t, fakes.NewFakeStore().WithParameters(params...))

	group, err := e.List(ctx, map[string]string{"env": "dev", "service": "api"}, false)
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.Equal(t, 4, group.Count())
	assert.NotNil(t, group.Find("/dev/api/cache/ttl"))

	group, err = e.List(ctx, map[string]string{"env": "dev", "service": "api"}, true)
	require.NoError(t, err)
	assert.Equal(t, 5, group.Count())

	group, err = e.List(ctx, map[string]string{"env": "qa", "service": "api"}, false)
	require.NoError(t, err)
	assert.Nil(t, group)

	_, err = e.List(ctx, map[string]string{"env": "dev"}, false)
	assert.Error(t, err)
}

func TestExplorerExport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	params := append(testutil.WideParams(), testutil.Params(
		"/dev/api/EnvExplorer/DirectoryName", "services/api",
		"/prod/api/EnvExplorer/DirectoryName", "services/api",
	)...)
	e, _ := newExplorer(t, fakes.NewFakeStore().WithParameters(params...))

	files, err := e.Export(ctx, map[string][]string{"env": {"dev", "prod"}, "service": {"api", "web"}})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "/dev/api", files[0].Prefix)
	assert.Equal(t, "/prod/api", files[1].Prefix)

	out := explore.RenderEnv(e.Template(), files[1], false)
	assert.Equal(t, "DB_HOST=prod-db\ncache__REDIS_URL=redis://prod\n", out)
}

func TestExplorerDiff(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	params := append(testutil.WideParams(), testutil.Params("/prod/web/EnvExplorer/DirectoryName", "web")...)
	e, _ := newExplorer(t, fakes.NewFakeStore().WithParameters(params...))

	diff, err := e.Diff(ctx,
		map[string]string{"env": "dev", "service": "web"},
		map[string]string{"env": "prod", "service": "web"},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, diff.LeftTotal)
	assert.Equal(t, 2, diff.RightTotal, "hidden metadata is not compared")
	require.Len(t, diff.Rows, 3)
	assert.Equal(t, "DB_HOST", diff.Rows[0].Key)
	assert.True(t, diff.Rows[0].RightMissing())
}

func TestExplorerImportAndApply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := fakes.NewFakeStore().
		WithParameters(testutil.WideParams()...).
		WithPutError("/dev/api/DB_PORT", errors.New("AccessDeniedException: no"))
	e, c := newExplorer(t, store)

	values := map[string]string{"env": "dev", "service": "api"}
	plan, err := e.Import(ctx, values, map[string]string{
		"DB_HOST":          "new-db",
		"DB_PORT":          "6543",
		"cache__REDIS_URL": "redis://dev",
	})
	require.NoError(t, err)
	require.Len(t, plan.Pending(), 2)

	result := e.Apply(ctx, plan.Pending())
	assert.Equal(t, 2, result.Attempted())
	assert.Equal(t, []string{"/dev/api/DB_HOST"}, result.Updated)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "/dev/api/DB_PORT", result.Failures[0].Name)

	stored, ok := store.Get("/dev/api/DB_HOST")
	require.True(t, ok)
	assert.Equal(t, "new-db", stored.Value)

	cached, ok, err := c.Lookup(ctx, "/dev/api/DB_PORT")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "5432", cached.Value, "rejected write leaves the cache alone")

	again, err := e.Import(ctx, values, map[string]string{"DB_HOST": "new-db"})
	require.NoError(t, err)
	assert.Empty(t, again.Pending())
}
