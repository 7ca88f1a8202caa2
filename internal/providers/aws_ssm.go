package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/systmms/envexplorer/internal/logging"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

// SSMClientAPI defines the interface for AWS SSM Parameter Store operations
// This allows for mocking in tests
type SSMClientAPI interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	GetParameterHistory(ctx context.Context, params *ssm.GetParameterHistoryInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterHistoryOutput, error)
}

// SSMClient implements paramstore.Client over AWS Systems Manager Parameter Store
type SSMClient struct {
	client         SSMClientAPI
	logger         *logging.Logger
	withDecryption bool
}

// SSMOption is a functional option for configuring SSM clients
type SSMOption func(*SSMClient)

// WithSSMAPI sets a custom SSM client (for testing)
func WithSSMAPI(client SSMClientAPI) SSMOption {
	return func(c *SSMClient) {
		c.client = client
	}
}

// WithSSMLogger sets the logger
func WithSSMLogger(logger *logging.Logger) SSMOption {
	return func(c *SSMClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDecryption controls whether SecureString values are decrypted on read.
// Defaults to true.
func WithDecryption(decrypt bool) SSMOption {
	return func(c *SSMClient) {
		c.withDecryption = decrypt
	}
}

// NewSSMClient creates a Parameter Store client. awsCfg is only used when no
// client was injected with WithSSMAPI.
func NewSSMClient(awsCfg aws.Config, opts ...SSMOption) *SSMClient {
	c := &SSMClient{
		logger:         logging.Discard(),
		withDecryption: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = ssm.NewFromConfig(awsCfg)
	}

	return c
}

// ListByPrefix fetches every parameter below prefix, draining all pages
func (c *SSMClient) ListByPrefix(ctx context.Context, prefix string) ([]paramstore.Parameter, error) {
	input := &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(c.withDecryption),
	}

	var params []paramstore.Parameter
	pages := 0
	paginator := ssm.NewGetParametersByPathPaginator(c.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list parameters under %s: %w", prefix, err)
		}
		pages++
		for _, p := range page.Parameters {
			params = append(params, fromSSMParameter(p))
		}
	}

	c.logger.Debug("Listed %d parameters under %s in %d pages", len(params), prefix, pages)
	return params, nil
}

// PutParameter writes a single value
func (c *SSMClient) PutParameter(ctx context.Context, name, value string, typ paramstore.Type, overwrite bool) error {
	c.logger.Debug("Putting parameter %s = %s", name, logging.Value(value, typ.IsSecure()))

	_, err := c.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(name),
		Value:     aws.String(value),
		Type:      types.ParameterType(typ),
		Overwrite: aws.Bool(overwrite),
	})
	if err != nil {
		return fmt.Errorf("put parameter %s: %w", name, err)
	}
	return nil
}

// ListHistory returns every stored version of name, oldest first
func (c *SSMClient) ListHistory(ctx context.Context, name string) ([]paramstore.HistoryEntry, error) {
	input := &ssm.GetParameterHistoryInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(c.withDecryption),
	}

	var entries []paramstore.HistoryEntry
	paginator := ssm.NewGetParameterHistoryPaginator(c.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isParameterNotFoundError(err) {
				return nil, fmt.Errorf("ParameterNotFound: %s", name)
			}
			return nil, fmt.Errorf("get history of %s: %w", name, err)
		}
		for _, h := range page.Parameters {
			entries = append(entries, paramstore.HistoryEntry{
				Value:        aws.ToString(h.Value),
				Type:         paramstore.Type(h.Type),
				LastModified: aws.ToTime(h.LastModifiedDate),
				Version:      h.Version,
				ModifiedBy:   aws.ToString(h.LastModifiedUser),
			})
		}
	}
	return entries, nil
}

func fromSSMParameter(p types.Parameter) paramstore.Parameter {
	return paramstore.Parameter{
		Name:         aws.ToString(p.Name),
		Value:        aws.ToString(p.Value),
		Type:         paramstore.Type(p.Type),
		LastModified: aws.ToTime(p.LastModifiedDate),
		Version:      p.Version,
	}
}

// isParameterNotFoundError checks if the error is a parameter not found error
func isParameterNotFoundError(err error) bool {
	var notFound *types.ParameterNotFound
	if errors.As(err, &notFound) {
		return true
	}
	return strings.Contains(err.Error(), "ParameterNotFound")
}

var _ paramstore.Client = (*SSMClient)(nil)
