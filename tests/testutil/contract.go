package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

// StoreTestCase defines a paramstore.Client implementation under test.
type StoreTestCase struct {
	// Name is a descriptive name for the implementation
	Name string

	// New returns a client whose store holds exactly params
	New func(t *testing.T, params []paramstore.Parameter) paramstore.Client

	// SkipConcurrency skips the concurrent listing test
	SkipConcurrency bool
}

// RunStoreContractTests checks the behaviour every paramstore.Client must
// share, whether it talks to SSM or is an in-memory fake:
//   - ListByPrefix is recursive and returns only names strictly below the prefix
//   - an empty prefix lists nothing without failing
//   - PutParameter creates, refuses to clobber without overwrite, and overwrites
//   - ListHistory is oldest first and fails for unknown names
//   - concurrent listings are safe
//
// Example usage:
//
//	testutil.RunStoreContractTests(t, testutil.StoreTestCase{
//	    Name: "fake",
//	    New: func(t *testing.T, params []paramstore.Parameter) paramstore.Client {
//	        return fakes.NewFakeStore().WithParameters(params...)
//	    },
//	})
func RunStoreContractTests(t *testing.T, tc StoreTestCase) {
	t.Helper()

	require.NotNil(t, tc.New, "New cannot be nil")
	require.NotEmpty(t, tc.Name, "Test case name cannot be empty")

	t.Run("ListByPrefix", func(t *testing.T) {
		testStoreList(t, tc)
	})

	t.Run("ListEmptyPrefix", func(t *testing.T) {
		client := tc.New(t, WideParams())
		params, err := client.ListByPrefix(testContext(t), "/qa")
		require.NoError(t, err)
		assert.Empty(t, params)
	})

	t.Run("PutParameter", func(t *testing.T) {
		testStorePut(t, tc)
	})

	t.Run("ListHistory", func(t *testing.T) {
		testStoreHistory(t, tc)
	})

	if !tc.SkipConcurrency {
		t.Run("Concurrency", func(t *testing.T) {
			testStoreConcurrency(t, tc)
		})
	}
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func testStoreList(t *testing.T, tc StoreTestCase) {
	t.Helper()

	seed := append(WideParams(), Params("/dev/apiary/KEY", "sibling")...)
	client := tc.New(t, seed)
	ctx := testContext(t)

	params, err := client.ListByPrefix(ctx, "/dev/api")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"/dev/api/DB_HOST",
		"/dev/api/DB_PORT",
		"/dev/api/cache/REDIS_URL",
		"/dev/api/cache/ttl/SECONDS",
	}, Names(params), "listing must be recursive and stop at the segment boundary")

	for _, p := range params {
		assert.NotEmpty(t, p.Value, "%s has no value", p.Name)
		assert.NotEmpty(t, p.Type, "%s has no type", p.Name)
	}

	all, err := client.ListByPrefix(ctx, "/")
	require.NoError(t, err)
	assert.Len(t, all, len(seed))
}

func testStorePut(t *testing.T, tc StoreTestCase) {
	t.Helper()

	client := tc.New(t, ExampleParams())
	ctx := testContext(t)

	require.NoError(t, client.PutParameter(ctx, "/prod/web/DB_HOST", "w", paramstore.TypeString, false))
	assert.Error(t, client.PutParameter(ctx, "/prod/web/DB_HOST", "again", paramstore.TypeString, false),
		"put without overwrite must not replace an existing parameter")
	require.NoError(t, client.PutParameter(ctx, "/dev/api/DB_HOST", "secret", paramstore.TypeSecureString, true))

	params, err := client.ListByPrefix(ctx, "/")
	require.NoError(t, err)

	got := make(map[string]paramstore.Parameter)
	for _, p := range params {
		got[p.Name] = p
	}
	assert.Equal(t, "w", got["/prod/web/DB_HOST"].Value)
	assert.Equal(t, "secret", got["/dev/api/DB_HOST"].Value)
	assert.Equal(t, paramstore.TypeSecureString, got["/dev/api/DB_HOST"].Type)
}

func testStoreHistory(t *testing.T, tc StoreTestCase) {
	t.Helper()

	client := tc.New(t, nil)
	ctx := testContext(t)

	name := "/dev/api/ROTATED"
	for _, v := range []string{"v1", "v2", "v3"} {
		require.NoError(t, client.PutParameter(ctx, name, v, paramstore.TypeString, true))
	}

	entries, err := client.ListHistory(ctx, name)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, want := range []string{"v1", "v2", "v3"} {
		assert.Equal(t, want, entries[i].Value)
		if i > 0 {
			assert.Greater(t, entries[i].Version, entries[i-1].Version)
		}
	}

	_, err = client.ListHistory(ctx, "/dev/api/NEVER_WRITTEN")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "ParameterNotFound"), "got %v", err)
}

func testStoreConcurrency(t *testing.T, tc StoreTestCase) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping concurrency test in short mode")
	}

	client := tc.New(t, WideParams())
	ctx := testContext(t)

	const concurrency = 50
	var wg sync.WaitGroup
	errs := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			prefix := "/dev"
			if id%2 == 1 {
				prefix = "/prod"
			}
			params, err := client.ListByPrefix(ctx, prefix)
			if err != nil {
				errs <- fmt.Errorf("goroutine %d: ListByPrefix failed: %w", id, err)
				return
			}
			if len(params) == 0 {
				errs <- fmt.Errorf("goroutine %d: no parameters under %s", id, prefix)
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	var failed int
	for err := range errs {
		t.Error(err)
		failed++
	}
	if failed > 0 {
		t.Fatalf("Concurrency test failed with %d errors", failed)
	}
}
