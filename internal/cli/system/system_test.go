package system

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/sipstreak/internal/cli"
	"github.com/julianstephens/sipstreak/internal/config"
	"github.com/julianstephens/sipstreak/internal/storage"
	"github.com/julianstephens/sipstreak/internal/storage/sqlite"
)

var testNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Timezone = "UTC"
	return cfg
}

// setupSQLiteContext returns a context over an initialized SQLite store
func setupSQLiteContext(t *testing.T) (*cli.Context, *sqlite.Store, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "sipstreak.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	return &cli.Context{
		Store:  store,
		Config: testConfig(),
		Out:    &out,
		Now:    func() time.Time { return testNow },
	}, store, &out
}

func setupMemoryContext(t *testing.T) (*cli.Context, *storage.MemoryStore, *bytes.Buffer) {
	t.Helper()
	store := storage.NewMemoryStore()
	var out bytes.Buffer
	return &cli.Context{
		Store:  store,
		Config: testConfig(),
		Out:    &out,
		Now:    func() time.Time { return testNow },
	}, store, &out
}
