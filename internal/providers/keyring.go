package providers

import (
	"errors"
	"os"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keyring service secret access keys are stored under
const DefaultKeyringService = "envexplorer"

// ErrKeyringItemNotFound is returned when the keyring has no entry for the account
var ErrKeyringItemNotFound = errors.New("keyring item not found")

// SecretSource looks up a secret by service and account
type SecretSource interface {
	Get(service, account string) (string, error)
}

// KeyringSource reads and writes the OS keyring (macOS Keychain, Secret Service
// on Linux, Credential Manager on Windows).
type KeyringSource struct{}

// Get retrieves a secret
func (KeyringSource) Get(service, account string) (string, error) {
	if service == "" {
		service = DefaultKeyringService
	}
	secret, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrKeyringItemNotFound
		}
		return "", err
	}
	return secret, nil
}

// Set stores a secret, replacing any existing one
func (KeyringSource) Set(service, account, secret string) error {
	if service == "" {
		service = DefaultKeyringService
	}
	return keyring.Set(service, account, secret)
}

// Delete removes a secret
func (KeyringSource) Delete(service, account string) error {
	if service == "" {
		service = DefaultKeyringService
	}
	err := keyring.Delete(service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrKeyringItemNotFound
	}
	return err
}

// IsHeadless returns true if running in an environment where the keyring
// daemon is unlikely to be reachable
func IsHeadless() bool {
	// Check for SSH session
	if os.Getenv("SSH_TTY") != "" {
		return true
	}
	// Check for CI environments
	if os.Getenv("CI") != "" {
		return true
	}
	return false
}
