package storage

import (
	"errors"
	"strings"
)

var (
	// ErrNotLoaded is returned by stores used before Init or Load
	ErrNotLoaded = errors.New("storage not loaded")
	// ErrNotInitialized is returned by Load when nothing exists at the configured path
	ErrNotInitialized = errors.New("storage not initialized, run 'sipstreak init' first")
)

// Provider is a string-keyed store of JSON-encoded values. Values are opaque
// to the store; decoding and defaulting live with the caller.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Key-value access. A missing key reports ok=false with a nil error.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Keys() ([]string, error)

	// Utils
	GetConfigPath() string
}

// IsPostgresConn reports whether path is a PostgreSQL URL rather than a file path
func IsPostgresConn(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}

// IsJSONPath reports whether path names a JSON file store
func IsJSONPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".json")
}

// CopyAll copies every key from src into dst and returns how many were written
func CopyAll(src, dst Provider) (int, error) {
	keys, err := src.Keys()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, k := range keys {
		v, ok, err := src.Get(k)
		if err != nil {
			return n, err
		}
		if !ok {
			continue
		}
		if err := dst.Set(k, v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
