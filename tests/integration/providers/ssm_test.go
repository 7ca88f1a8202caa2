package providers_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/envexplorer/internal/providers"
	"github.com/systmms/envexplorer/pkg/paramstore"
	"github.com/systmms/envexplorer/tests/testutil"
)

func TestSSMClientIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ls := testutil.StartLocalStack(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	newClient := func() *providers.SSMClient {
		return providers.NewSSMClient(ls.AWSConfig(),
			providers.WithSSMAPI(ls.SSM()),
			providers.WithDecryption(true))
	}

	t.Run("contract", func(t *testing.T) {
		testutil.RunStoreContractTests(t, testutil.StoreTestCase{
			Name: "localstack",
			New: func(t *testing.T, params []paramstore.Parameter) paramstore.Client {
				return &rootedClient{root: "/" + sanitize(t.Name()), seed: params, ls: ls, client: newClient()}
			},
			SkipConcurrency: true,
		})
	})

	t.Run("secure_string_decryption", func(t *testing.T) {
		ls.Seed(paramstore.Parameter{Name: "/decrypt/api/DB_PASSWORD", Value: "hunter2", Type: paramstore.TypeSecureString})

		params, err := newClient().ListByPrefix(ctx, "/decrypt")
		require.NoError(t, err)
		require.Len(t, params, 1)
		assert.Equal(t, "hunter2", params[0].Value)
		assert.Equal(t, paramstore.TypeSecureString, params[0].Type)
	})

	t.Run("large_prefix_paginates", func(t *testing.T) {
		var seed []paramstore.Parameter
		for _, env := range []string{"dev", "prod", "qa"} {
			for _, key := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
				seed = append(seed, testutil.Params("/paged/"+env+"/api/"+key, key)...)
			}
		}
		ls.Seed(seed...)

		params, err := newClient().ListByPrefix(ctx, "/paged")
		require.NoError(t, err)
		assert.Len(t, params, len(seed), "SSM returns at most 10 per page")
	})
}

// rootedClient moves every name under root so contract subtests can share
// one LocalStack without seeing each other's parameters
type rootedClient struct {
	root   string
	seed   []paramstore.Parameter
	ls     *testutil.LocalStack
	client paramstore.Client

	once sync.Once
}

func (r *rootedClient) seeded() {
	r.once.Do(func() {
		moved := make([]paramstore.Parameter, len(r.seed))
		for i, p := range r.seed {
			p.Name = r.root + p.Name
			moved[i] = p
		}
		r.ls.Seed(moved...)
	})
}

func (r *rootedClient) ListByPrefix(ctx context.Context, prefix string) ([]paramstore.Parameter, error) {
	r.seeded()
	params, err := r.client.ListByPrefix(ctx, r.root+strings.TrimSuffix(prefix, "/"))
	for i := range params {
		params[i].Name = strings.TrimPrefix(params[i].Name, r.root)
	}
	return params, err
}

func (r *rootedClient) PutParameter(ctx context.Context, name, value string, typ paramstore.Type, overwrite bool) error {
	r.seeded()
	return r.client.PutParameter(ctx, r.root+name, value, typ, overwrite)
}

func (r *rootedClient) ListHistory(ctx context.Context, name string) ([]paramstore.HistoryEntry, error) {
	r.seeded()
	return r.client.ListHistory(ctx, r.root+name)
}

func sanitize(name string) string {
	var b strings.Builder
	for _, ch := range name {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
