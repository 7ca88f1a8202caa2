package providers_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/envexplorer/internal/providers"
	"github.com/systmms/envexplorer/pkg/paramstore"
	"github.com/systmms/envexplorer/tests/fakes"
	"github.com/systmms/envexplorer/tests/testutil"
)

func newSSMClient(api *fakes.FakeSSMClient) *providers.SSMClient {
	return providers.NewSSMClient(aws.Config{}, providers.WithSSMAPI(api))
}

// TestSSMListByPrefixDrainsPages verifies every page is fetched
func TestSSMListByPrefixDrainsPages(t *testing.T) {
	t.Parallel()

	api := fakes.NewFakeSSMClient()
	api.PageSize = 3
	for i := 0; i < 10; i++ {
		api.AddStringParameter(fmt.Sprintf("/dev/api/KEY_%02d", i), fmt.Sprintf("v%d", i))
	}
	api.AddStringParameter("/prod/api/KEY_00", "other")

	params, err := newSSMClient(api).ListByPrefix(context.Background(), "/dev")
	require.NoError(t, err)
	require.Len(t, params, 10)
	assert.Equal(t, "/dev/api/KEY_00", params[0].Name)
	assert.Equal(t, "v9", params[9].Value)
	assert.Equal(t, paramstore.TypeString, params[0].Type)
	assert.Equal(t, int64(1), params[0].Version)
	assert.False(t, params[0].LastModified.IsZero())

	require.Len(t, api.Inputs, 4)
	for _, in := range api.Inputs {
		assert.True(t, aws.ToBool(in.Recursive))
		assert.True(t, aws.ToBool(in.WithDecryption))
		assert.Equal(t, "/dev", aws.ToString(in.Path))
	}
}

// TestSSMListByPrefixDecryption covers SecureString handling
func TestSSMListByPrefixDecryption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		decrypt bool
		want    string
	}{
		{name: "decrypted", decrypt: true, want: "hunter2"},
		{name: "ciphertext", decrypt: false, want: "AQICAHh...encrypted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := fakes.NewFakeSSMClient()
			api.AddSecureStringParameter("/dev/api/PASSWORD", "hunter2")

			client := providers.NewSSMClient(aws.Config{}, providers.WithSSMAPI(api), providers.WithDecryption(tt.decrypt))
			params, err := client.ListByPrefix(context.Background(), "/")
			require.NoError(t, err)
			require.Len(t, params, 1)
			assert.Equal(t, tt.want, params[0].Value)
			assert.True(t, params[0].Type.IsSecure())
		})
	}
}

func TestSSMListByPrefixError(t *testing.T) {
	t.Parallel()

	api := fakes.NewFakeSSMClient()
	denied := errors.New("AccessDeniedException: not authorized to perform ssm:GetParametersByPath")
	api.AddError("/secret", denied)

	_, err := newSSMClient(api).ListByPrefix(context.Background(), "/secret")
	require.Error(t, err)
	assert.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), "/secret")
}

// TestSSMPutParameter covers create, overwrite and refusal to overwrite
func TestSSMPutParameter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := fakes.NewFakeSSMClient()
	client := newSSMClient(api)

	require.NoError(t, client.PutParameter(ctx, "/dev/api/NEW", "1", paramstore.TypeString, false))
	require.NoError(t, client.PutParameter(ctx, "/dev/api/NEW", "2", paramstore.TypeSecureString, true))

	data := api.Parameters["/dev/api/NEW"]
	assert.Equal(t, "2", aws.ToString(data.Value))
	assert.Equal(t, ssmtypes.ParameterTypeSecureString, data.Type)
	assert.Equal(t, int64(2), data.Version)

	err := client.PutParameter(ctx, "/dev/api/NEW", "3", paramstore.TypeString, false)
	require.Error(t, err)
	var exists *ssmtypes.ParameterAlreadyExists
	assert.ErrorAs(t, err, &exists)
}

// TestSSMListHistory covers history paging and missing parameters
func TestSSMListHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := fakes.NewFakeSSMClient()
	api.PageSize = 2
	client := newSSMClient(api)

	for i := 1; i <= 5; i++ {
		_, err := api.PutParameter(ctx, &ssm.PutParameterInput{
			Name:      aws.String("/dev/api/DB_HOST"),
			Value:     aws.String(fmt.Sprintf("host-%d", i)),
			Type:      ssmtypes.ParameterTypeString,
			Overwrite: aws.Bool(true),
		})
		require.NoError(t, err)
	}

	entries, err := client.ListHistory(ctx, "/dev/api/DB_HOST")
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "host-1", entries[0].Value)
	assert.Equal(t, int64(5), entries[4].Version)
	assert.Equal(t, "arn:aws:iam::123456789012:user/tester", entries[4].ModifiedBy)

	_, err = client.ListHistory(ctx, "/dev/api/NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ParameterNotFound")
}

func TestSSMClientContract(t *testing.T) {
	t.Parallel()

	testutil.RunStoreContractTests(t, testutil.StoreTestCase{
		Name: "ssm",
		New: func(t *testing.T, params []paramstore.Parameter) paramstore.Client {
			api := fakes.NewFakeSSMClient()
			api.PageSize = 2
			for _, p := range params {
				api.AddParameter(p.Name, ssmtypes.ParameterType(p.Type), p.Value)
			}
			return providers.NewSSMClient(aws.Config{}, providers.WithSSMAPI(api), providers.WithDecryption(true))
		},
	})
}
