package paramstore

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Type is the parameter type as named by the store
type Type string

const (
	// TypeString is a plain text parameter
	TypeString Type = "String"
	// TypeSecureString is an encrypted parameter, values arrive decrypted
	TypeSecureString Type = "SecureString"
	// TypeStringList is a comma separated list
	TypeStringList Type = "StringList"
)

// ParseType accepts the store names and the friendlier aliases used on the command line
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string", "plaintext", "plain":
		return TypeString, nil
	case "securestring", "secure", "secret":
		return TypeSecureString, nil
	case "stringlist", "list":
		return TypeStringList, nil
	}
	return "", fmt.Errorf("unknown parameter type %q (expected String, SecureString or StringList)", s)
}

// IsSecure reports whether values of this type must be redacted in logs
func (t Type) IsSecure() bool {
	return t == TypeSecureString
}

// Parameter is one stored key and its value
type Parameter struct {
	Name         string    `json:"name"`
	Value        string    `json:"value"`
	Type         Type      `json:"type"`
	LastModified time.Time `json:"lastModified"`
	Version      int64     `json:"version,omitempty"`
	IsHidden     bool      `json:"isHidden"`
}

// HistoryEntry is one past version of a parameter
type HistoryEntry struct {
	Value        string    `json:"value"`
	Type         Type      `json:"type"`
	LastModified time.Time `json:"lastModified"`
	Version      int64     `json:"version"`
	ModifiedBy   string    `json:"modifiedBy,omitempty"`
}

// Client is the backing store consumed by the parameter cache
type Client interface {
	// ListByPrefix returns every parameter below prefix, recursively, with all pages drained
	ListByPrefix(ctx context.Context, prefix string) ([]Parameter, error)
	// PutParameter writes a single value
	PutParameter(ctx context.Context, name, value string, typ Type, overwrite bool) error
	// ListHistory returns the stored versions of one parameter, oldest first
	ListHistory(ctx context.Context, name string) ([]HistoryEntry, error)
}
