package fakes

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// DefaultPageSize is how many parameters FakeSSMClient returns per page
const DefaultPageSize = 10

// FakeSSMClient is a mock implementation of providers.SSMClientAPI.
// Listing is paginated the way the real service does it, so paginator
// draining is exercised.
type FakeSSMClient struct {
	mu sync.Mutex

	// Parameters maps parameter names to their data
	Parameters map[string]*ParameterData
	// History maps parameter names to their stored versions, oldest first
	History map[string][]ssmtypes.ParameterHistory
	// Errors maps a path (for listing) or a name (for put and history) to an error
	Errors map[string]error
	// PageSize caps each GetParametersByPath page
	PageSize int
	// Inputs records every GetParametersByPath request
	Inputs []ssm.GetParametersByPathInput

	// GetParametersByPathFunc allows custom behavior for GetParametersByPath
	GetParametersByPathFunc func(ctx context.Context, params *ssm.GetParametersByPathInput) (*ssm.GetParametersByPathOutput, error)
}

// ParameterData holds the data for a mock SSM parameter
type ParameterData struct {
	Name             *string
	Type             ssmtypes.ParameterType
	Value            *string
	Version          int64
	LastModifiedDate *time.Time
	ARN              *string
}

// NewFakeSSMClient creates a new mock SSM client
func NewFakeSSMClient() *FakeSSMClient {
	return &FakeSSMClient{
		Parameters: make(map[string]*ParameterData),
		History:    make(map[string][]ssmtypes.ParameterHistory),
		Errors:     make(map[string]error),
		PageSize:   DefaultPageSize,
	}
}

// AddParameter adds a parameter to the mock client
func (f *FakeSSMClient) AddParameter(name string, typ ssmtypes.ParameterType, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	f.Parameters[name] = &ParameterData{
		Name:             aws.String(name),
		Type:             typ,
		Value:            aws.String(value),
		Version:          1,
		LastModifiedDate: &now,
		ARN:              aws.String(fmt.Sprintf("arn:aws:ssm:us-east-1:123456789012:parameter%s", name)),
	}
}

// AddStringParameter adds a String parameter to the mock client
func (f *FakeSSMClient) AddStringParameter(name, value string) {
	f.AddParameter(name, ssmtypes.ParameterTypeString, value)
}

// AddSecureStringParameter adds a SecureString parameter to the mock client
func (f *FakeSSMClient) AddSecureStringParameter(name, value string) {
	f.AddParameter(name, ssmtypes.ParameterTypeSecureString, value)
}

// AddError configures the mock to return an error for a path or name
func (f *FakeSSMClient) AddError(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[key] = err
}

// GetParametersByPath mocks the GetParametersByPath operation
func (f *FakeSSMClient) GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	if f.GetParametersByPathFunc != nil {
		return f.GetParametersByPathFunc(ctx, params)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Inputs = append(f.Inputs, *params)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := aws.ToString(params.Path)
	if err, exists := f.Errors[path]; exists {
		return nil, err
	}

	base := strings.TrimSuffix(path, "/") + "/"
	var names []string
	for name := range f.Parameters {
		if !strings.HasPrefix(name, base) {
			continue
		}
		if !aws.ToBool(params.Recursive) && strings.Contains(name[len(base):], "/") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	start, next := page(aws.ToString(params.NextToken), len(names), f.PageSize)
	out := &ssm.GetParametersByPathOutput{NextToken: next}
	for _, name := range names[start:min(start+f.pageSize(), len(names))] {
		data := f.Parameters[name]
		value := data.Value
		if data.Type == ssmtypes.ParameterTypeSecureString && !aws.ToBool(params.WithDecryption) {
			value = aws.String("AQICAHh...encrypted")
		}
		out.Parameters = append(out.Parameters, ssmtypes.Parameter{
			Name:             data.Name,
			Type:             data.Type,
			Value:            value,
			Version:          data.Version,
			LastModifiedDate: data.LastModifiedDate,
			ARN:              data.ARN,
		})
	}
	return out, nil
}

// PutParameter mocks the PutParameter operation
func (f *FakeSSMClient) PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(params.Name)
	if err, exists := f.Errors[name]; exists {
		return nil, err
	}

	data, exists := f.Parameters[name]
	if exists && !aws.ToBool(params.Overwrite) {
		return nil, &ssmtypes.ParameterAlreadyExists{
			Message: aws.String(fmt.Sprintf("Parameter %s already exists", name)),
		}
	}
	if !exists {
		data = &ParameterData{
			Name: aws.String(name),
			ARN:  aws.String(fmt.Sprintf("arn:aws:ssm:us-east-1:123456789012:parameter%s", name)),
		}
		f.Parameters[name] = data
	}

	now := time.Now()
	data.Type = params.Type
	data.Value = params.Value
	data.Version++
	data.LastModifiedDate = &now

	f.History[name] = append(f.History[name], ssmtypes.ParameterHistory{
		Name:             data.Name,
		Type:             data.Type,
		Value:            data.Value,
		Version:          data.Version,
		LastModifiedDate: data.LastModifiedDate,
		LastModifiedUser: aws.String("arn:aws:iam::123456789012:user/tester"),
	})

	return &ssm.PutParameterOutput{Version: data.Version}, nil
}

// GetParameterHistory mocks the GetParameterHistory operation
func (f *FakeSSMClient) GetParameterHistory(ctx context.Context, params *ssm.GetParameterHistoryInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterHistoryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(params.Name)
	if err, exists := f.Errors[name]; exists {
		return nil, err
	}

	history, exists := f.History[name]
	if !exists {
		if _, found := f.Parameters[name]; !found {
			return nil, &ssmtypes.ParameterNotFound{
				Message: aws.String(fmt.Sprintf("Parameter %s not found", name)),
			}
		}
	}

	start, next := page(aws.ToString(params.NextToken), len(history), f.PageSize)
	return &ssm.GetParameterHistoryOutput{
		Parameters: history[start:min(start+f.pageSize(), len(history))],
		NextToken:  next,
	}, nil
}

func (f *FakeSSMClient) pageSize() int {
	if f.PageSize <= 0 {
		return DefaultPageSize
	}
	return f.PageSize
}

// page turns a NextToken into a start offset and the token of the following page
func page(token string, total, size int) (int, *string) {
	if size <= 0 {
		size = DefaultPageSize
	}
	start, _ := strconv.Atoi(token)
	if start > total {
		start = total
	}
	if start+size >= total {
		return start, nil
	}
	return start, aws.String(strconv.Itoa(start + size))
}

// FakeSTSClient is a mock implementation of providers.STSClientAPI
type FakeSTSClient struct {
	Account string
	ARN     string
	UserID  string
	Err     error
}

// GetCallerIdentity mocks the GetCallerIdentity operation
func (f *FakeSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &sts.GetCallerIdentityOutput{
		Account: aws.String(f.Account),
		Arn:     aws.String(f.ARN),
		UserId:  aws.String(f.UserID),
	}, nil
}
