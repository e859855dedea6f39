// Package keyring stores cadence secrets in the OS keyring. Two entries are
// kept under the cadence service: the PostgreSQL connection string and the
// task service API key.
package keyring

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/cadence/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secret names one keyring entry.
type Secret string

const (
	ConnectionString Secret = constants.DefaultKeyringUser
	APIKey           Secret = constants.APIKeyKeyringUser
)

// envFor maps a secret to the environment variable that overrides it.
func envFor(s Secret) string {
	switch s {
	case ConnectionString:
		return constants.EnvDBConnection
	case APIKey:
		return constants.EnvAPIKey
	default:
		return ""
	}
}

// Get returns the stored secret. Returns ErrNotFound if nothing is stored.
func Get(s Secret) (string, error) {
	value, err := keyring.Get(constants.AppName, string(s))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

// Resolve prefers the secret's environment variable and falls back to the keyring.
func Resolve(s Secret) (string, error) {
	if name := envFor(s); name != "" {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	return Get(s)
}

// Set stores value under s.
func Set(s Secret, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", s)
	}
	if err := keyring.Set(constants.AppName, string(s), value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", s, err)
	}
	return nil
}

// Delete removes s from the keyring.
func Delete(s Secret) error {
	err := keyring.Delete(constants.AppName, string(s))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", s, err)
	}
	return nil
}

// ParseSecret maps a command-line name to a Secret.
func ParseSecret(name string) (Secret, error) {
	switch Secret(name) {
	case ConnectionString, "connection-string":
		return ConnectionString, nil
	case APIKey:
		return APIKey, nil
	}
	return "", fmt.Errorf("unknown secret %q (want api-key or connection-string)", name)
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
