package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/sipstreak/internal/constants"
)

// RefPrefix marks a --db value that should be read from the OS keyring,
// e.g. "keyring:" or "keyring:work".
const RefPrefix = "keyring:"

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func account(user string) string {
	if strings.TrimSpace(user) == "" {
		return constants.DefaultKeyringUser
	}
	return user
}

// Get retrieves the connection string stored for user (the default account when empty).
func Get(user string) (string, error) {
	connStr, err := keyring.Get(constants.AppName, account(user))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

// Set stores connStr for user.
func Set(user, connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(constants.AppName, account(user), connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the entry for user.
func Delete(user string) error {
	err := keyring.Delete(constants.AppName, account(user))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsRef reports whether dbPath names a keyring entry.
func IsRef(dbPath string) bool {
	return strings.HasPrefix(dbPath, RefPrefix)
}

// Resolve returns dbPath unchanged unless it is a keyring reference, in which
// case the stored connection string is returned.
func Resolve(dbPath string) (string, error) {
	if !IsRef(dbPath) {
		return dbPath, nil
	}
	return Get(strings.TrimPrefix(dbPath, RefPrefix))
}

// IsAvailable checks if the OS keyring is available on the current system.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	// ErrNotFound means the keyring answered
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Redact hides the password portion of a postgres URL for display.
func Redact(connStr string) string {
	scheme := strings.Index(connStr, "://")
	at := strings.LastIndex(connStr, "@")
	if scheme < 0 || at < scheme {
		return connStr
	}
	creds := connStr[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		return connStr[:scheme+3] + creds[:colon] + ":****" + connStr[at:]
	}
	return connStr
}
