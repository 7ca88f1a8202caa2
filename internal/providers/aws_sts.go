package providers

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	eerrors "github.com/systmms/envexplorer/internal/errors"
)

// STSClientAPI is the subset of STS used to confirm who the credentials belong to
type STSClientAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Identity is the principal behind the active credentials
type Identity struct {
	Account string
	ARN     string
	UserID  string
}

// IdentityChecker reports the caller identity
type IdentityChecker struct {
	client STSClientAPI
}

// NewIdentityChecker creates a checker. A nil client builds one from awsCfg.
func NewIdentityChecker(awsCfg aws.Config, client STSClientAPI) *IdentityChecker {
	if client == nil {
		client = sts.NewFromConfig(awsCfg)
	}
	return &IdentityChecker{client: client}
}

// CallerIdentity calls sts:GetCallerIdentity, which needs no IAM permission
// and so isolates credential problems from authorization ones.
func (c *IdentityChecker) CallerIdentity(ctx context.Context) (Identity, error) {
	out, err := c.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, eerrors.UserError{
			Message:    "Failed to validate AWS credentials",
			Details:    err.Error(),
			Suggestion: getSTSErrorSuggestion(err),
			Err:        err,
		}
	}

	return Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}

// getSTSErrorSuggestion provides helpful suggestions based on STS errors
func getSTSErrorSuggestion(err error) string {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "InvalidClientTokenId"):
		return "The access key id is unknown to AWS. Check aws.accessKeyId or your profile"
	case strings.Contains(errStr, "SignatureDoesNotMatch"):
		return "The secret access key does not match the key id. Update it in the keyring"
	case strings.Contains(errStr, "ExpiredToken"):
		return "Session credentials have expired. Refresh them, e.g. 'aws sso login'"
	case strings.Contains(errStr, "RegionDisabled"):
		return "The specified region is disabled for your account"
	default:
		return "Check AWS credentials, profile and region"
	}
}
