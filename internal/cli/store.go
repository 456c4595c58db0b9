package cli

import (
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/sipstreak/internal/errors"
	"github.com/julianstephens/sipstreak/internal/keyring"
	"github.com/julianstephens/sipstreak/internal/storage"
	"github.com/julianstephens/sipstreak/internal/storage/postgres"
	"github.com/julianstephens/sipstreak/internal/storage/sqlite"
	"github.com/julianstephens/sipstreak/internal/utils"
)

// MemoryPath selects the in-memory store.
const MemoryPath = ":memory:"

// OpenStore picks a storage backend for dbPath:
//   - ":memory:" for a throwaway session
//   - "keyring:<account>" for a PostgreSQL connection string held in the OS keyring
//   - postgres:// URLs for PostgreSQL
//   - *.json for a single JSON file
//   - anything else is a SQLite file
//
// The store is returned unopened; callers Init or Load it.
func OpenStore(dbPath string) (storage.Provider, error) {
	if dbPath == MemoryPath {
		return storage.NewMemoryStore(), nil
	}

	fromKeyring := keyring.IsRef(dbPath)
	resolved, err := keyring.Resolve(dbPath)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, apperrors.WithHint(err, "store one with 'sipstreak keyring set <connection-string>'")
		}
		return nil, err
	}

	if fromKeyring || storage.IsPostgresConn(resolved) {
		// passwords are accepted only when the whole string came from the keyring
		err := postgres.ValidateConnString(resolved)
		switch {
		case err == nil:
		case errors.Is(err, postgres.ErrEmbeddedCredentials) && fromKeyring:
		case errors.Is(err, postgres.ErrEmbeddedCredentials):
			return nil, apperrors.WithHint(err,
				"use PGPASSWORD, a .pgpass file, or 'sipstreak keyring set' and pass --db keyring:")
		default:
			return nil, err
		}
		return postgres.New(resolved), nil
	}

	path, err := utils.ExpandPath(resolved)
	if err != nil {
		return nil, err
	}
	if storage.IsJSONPath(path) {
		return storage.NewJSONStore(path), nil
	}
	if path == "" {
		return nil, fmt.Errorf("empty database path")
	}
	return sqlite.NewStore(path), nil
}
