package providers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/secure"
)

// AWSConfig selects the region and credentials used for every AWS client
type AWSConfig struct {
	Region  string
	Profile string
	// AccessKeyID, when set, switches to static credentials whose secret key
	// is read from the OS keyring under KeyringService.
	AccessKeyID    string
	KeyringService string
}

// LoadAWSConfig resolves the SDK configuration. Without an access key id the
// default chain applies (environment, shared profile, SSO, instance role).
func LoadAWSConfig(ctx context.Context, cfg AWSConfig, secrets SecretSource) (aws.Config, error) {
	var configOpts []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		configOpts = append(configOpts, awsconfig.WithRegion(cfg.Region))
	}

	if cfg.Profile != "" {
		configOpts = append(configOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	if cfg.AccessKeyID != "" {
		if secrets == nil {
			secrets = KeyringSource{}
		}
		secret, err := secrets.Get(cfg.KeyringService, cfg.AccessKeyID)
		if err != nil {
			return aws.Config{}, eerrors.UserError{
				Message:    fmt.Sprintf("No secret access key for %s in keyring service %q", cfg.AccessKeyID, cfg.KeyringService),
				Suggestion: "Store it with 'envexplorer keyring set " + cfg.AccessKeyID + "'",
				Err:        err,
			}
		}
		sealed, err := secure.FromString(secret)
		if err != nil {
			return aws.Config{}, fmt.Errorf("failed to protect secret access key: %w", err)
		}
		configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
			aws.NewCredentialsCache(&keyringCredentials{accessKeyID: cfg.AccessKeyID, secret: sealed}),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return awsCfg, nil
}

// keyringCredentials serves the access key with a secret kept sealed in
// memory. Only the SDK's credential cache holds the plaintext.
type keyringCredentials struct {
	accessKeyID string
	secret      *secure.SecureBuffer
}

// KeyringCredentialsSource is reported as aws.Credentials.Source
const KeyringCredentialsSource = "EnvExplorerKeyring"

func (k *keyringCredentials) Retrieve(ctx context.Context) (aws.Credentials, error) {
	secret, err := k.secret.Reveal()
	if err != nil {
		return aws.Credentials{}, err
	}
	return aws.Credentials{
		AccessKeyID:     k.accessKeyID,
		SecretAccessKey: secret,
		Source:          KeyringCredentialsSource,
	}, nil
}
