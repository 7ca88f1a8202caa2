package fakes_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/envexplorer/pkg/paramstore"
	"github.com/systmms/envexplorer/tests/fakes"
	"github.com/systmms/envexplorer/tests/testutil"
)

// The fake must behave like the SSM-backed client or cache tests prove nothing
func TestFakeStoreContract(t *testing.T) {
	t.Parallel()

	testutil.RunStoreContractTests(t, testutil.StoreTestCase{
		Name: "fake",
		New: func(t *testing.T, params []paramstore.Parameter) paramstore.Client {
			return fakes.NewFakeStore().WithParameters(params...)
		},
	})
}

func TestFakeStoreInjectedFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("AccessDeniedException")
	store := fakes.NewFakeStore().
		WithParameters(testutil.ExampleParams()...).
		WithListError("/prod", boom).
		WithPutError("/dev/api/DB_HOST", boom)
	ctx := context.Background()

	_, err := store.ListByPrefix(ctx, "/prod")
	assert.ErrorIs(t, err, boom)

	params, err := store.ListByPrefix(ctx, "/dev")
	require.NoError(t, err)
	assert.Len(t, params, 2)

	assert.ErrorIs(t, store.PutParameter(ctx, "/dev/api/DB_HOST", "v", paramstore.TypeString, true), boom)
	p, _ := store.Get("/dev/api/DB_HOST")
	assert.Equal(t, "x", p.Value)

	assert.Equal(t, 2, store.CallCount("ListByPrefix"))
	assert.Len(t, store.Puts(), 1)
}
