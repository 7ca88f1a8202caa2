package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// TemplateError reports a template that cannot be parsed or resolved.
// Placeholder is empty when the problem is not tied to one placeholder.
type TemplateError struct {
	Template    string
	Placeholder string
	Message     string
}

func (e TemplateError) Error() string {
	msg := fmt.Sprintf("template %q", e.Template)
	if e.Placeholder != "" {
		msg += fmt.Sprintf(" placeholder {%s}", e.Placeholder)
	}
	return msg + ": " + e.Message
}

// IsTemplateError reports whether err is, or wraps, a TemplateError
func IsTemplateError(err error) bool {
	var te TemplateError
	return errors.As(err, &te)
}

// StoreError enhances parameter store errors with context
func StoreError(operation string, err error) error {
	return UserError{
		Message:    fmt.Sprintf("parameter store error during %s", operation),
		Suggestion: getStoreSuggestion(err),
		Err:        err,
	}
}

// getStoreSuggestion returns helpful suggestions based on the store error
func getStoreSuggestion(err error) string {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "accessdenied"):
		return "Check IAM permissions: ssm:GetParametersByPath, ssm:PutParameter, ssm:GetParameterHistory and kms:Decrypt (for SecureString)"
	case strings.Contains(errStr, "parameternotfound"):
		return "Verify the parameter name and path. Parameter names are case-sensitive"
	case strings.Contains(errStr, "parameteralreadyexists"):
		return "The parameter exists and overwrite was not requested"
	case strings.Contains(errStr, "invalidkeyid"):
		return "The KMS key for this SecureString parameter may not exist or you lack kms:Decrypt permission"
	case strings.Contains(errStr, "throttl"):
		return "Request was throttled. Lower parameterStore.maxConcurrentFetches or try again shortly"
	case strings.Contains(errStr, "credentials"):
		return "Configure AWS credentials: 'aws configure', set AWS_PROFILE, or store the secret key in the keyring"
	case strings.Contains(errStr, "region"):
		return "Check that aws.region points at the region where the parameters are stored"
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
		return "The operation timed out. Check your network connection or raise parameterStore.timeoutMs"
	case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "no such host"):
		return "Unable to connect. Check your network and region configuration"
	}

	return ""
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	// Already a user-friendly error
	switch err.(type) {
	case UserError, ConfigError, TemplateError:
		return err
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	return err
}
