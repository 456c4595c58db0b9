package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/sipstreak/internal/constants"
	"github.com/julianstephens/sipstreak/internal/storage/sqlite"
)

func setupTestDB(t *testing.T, kv map[string]string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "sipstreak.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init test database: %v", err)
	}
	for k, v := range kv {
		if err := store.Set(k, v); err != nil {
			t.Fatalf("failed to seed %s: %v", k, err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close test database: %v", err)
	}
	return dbPath
}

func readKey(t *testing.T, dbPath, key string) (string, bool) {
	t.Helper()
	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load %s: %v", dbPath, err)
	}
	defer store.Close()
	v, ok, err := store.Get(key)
	if err != nil {
		t.Fatalf("failed to read %s: %v", key, err)
	}
	return v, ok
}

// stepClock returns a clock advancing by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t, map[string]string{constants.KeyGoal: "1500"})

	clock := time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)
	mgr := NewManager(dbPath, WithClock(func() time.Time { return clock }))
	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if filepath.Base(backupPath) != "sipstreak-20260301-0930.db" {
		t.Errorf("unexpected backup name %s", filepath.Base(backupPath))
	}
	if filepath.Dir(backupPath) != mgr.Dir() {
		t.Errorf("backup written outside %s", mgr.Dir())
	}
	if v, ok := readKey(t, backupPath, constants.KeyGoal); !ok || v != "1500" {
		t.Errorf("backup goal = %q (present %v), want 1500", v, ok)
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupTestDB(t, nil)

	clock := time.Date(2026, 3, 1, 9, 30, 5, 0, time.Local)
	mgr := NewManager(dbPath, WithClock(func() time.Time { return clock }))

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		p, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
		if seen[p] {
			t.Fatalf("duplicate backup path %s", p)
		}
		seen[p] = true
	}

	want := []string{"sipstreak-20260301-0930.db", "sipstreak-20260301-093005.db", "sipstreak-20260301-093005-1.db"}
	for _, name := range want {
		if !seen[filepath.Join(mgr.Dir(), name)] {
			t.Errorf("expected backup %s", name)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Errorf("expected 3 backups listed, got %d", len(backups))
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestDB(t, nil)

	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local)
	mgr := NewManager(dbPath, WithKeep(3), WithClock(stepClock(start, time.Hour)))
	var last string
	for i := 0; i < 5; i++ {
		p, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
		last = p
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups after rotation, got %d", len(backups))
	}
	if backups[0].Path != last {
		t.Errorf("newest backup = %s, want %s", backups[0].Path, last)
	}
	if !backups[2].Timestamp.Equal(start.Add(2 * time.Hour)) {
		t.Errorf("oldest kept backup at %v, want %v", backups[2].Timestamp, start.Add(2*time.Hour))
	}
}

func TestDefaultKeep(t *testing.T) {
	mgr := NewManager("/tmp/x/sipstreak.db")
	if mgr.keep != constants.MaxBackups {
		t.Errorf("keep = %d, want %d", mgr.keep, constants.MaxBackups)
	}
	if mgr.Dir() != filepath.Join("/tmp/x", constants.BackupDirName) {
		t.Errorf("unexpected backup dir %s", mgr.Dir())
	}
}

func TestListBackupsIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t, nil)
	mgr := NewManager(dbPath)

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List on missing dir failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}

	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "sipstreak-garbage.db", "waterlog-20260101-1200.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := mgr.Create(); err != nil {
		t.Fatal(err)
	}

	backups, err = mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Errorf("expected only the real backup, got %d", len(backups))
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t, map[string]string{constants.KeyStreak: "4"})
	mgr := NewManager(dbPath, WithClock(stepClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local), time.Minute)))

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(constants.KeyStreak, "9"); err != nil {
		t.Fatal(err)
	}
	store.Close()

	safety, err := mgr.Restore(backupPath)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if safety == "" {
		t.Fatal("expected a pre-restore backup")
	}

	if v, _ := readKey(t, dbPath, constants.KeyStreak); v != "4" {
		t.Errorf("restored streak = %q, want 4", v)
	}
	if v, _ := readKey(t, safety, constants.KeyStreak); v != "9" {
		t.Errorf("pre-restore backup streak = %q, want 9", v)
	}
	if _, err := os.Stat(dbPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file left behind")
	}
}

func TestRestoreIntoMissingDatabase(t *testing.T) {
	dbPath := setupTestDB(t, map[string]string{constants.KeyGoal: "1800"})
	mgr := NewManager(dbPath)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(dbPath); err != nil {
		t.Fatal(err)
	}

	safety, err := mgr.Restore(backupPath)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if safety != "" {
		t.Errorf("no pre-restore backup expected, got %s", safety)
	}
	if v, _ := readKey(t, dbPath, constants.KeyGoal); v != "1800" {
		t.Errorf("restored goal = %q, want 1800", v)
	}
}

func TestRestoreRejectsInvalidBackups(t *testing.T) {
	dbPath := setupTestDB(t, nil)
	mgr := NewManager(dbPath)
	dir := t.TempDir()

	if _, err := mgr.Restore(filepath.Join(dir, "missing.db")); err == nil {
		t.Error("expected error for missing backup file")
	}

	corrupt := filepath.Join(dir, "corrupt.db")
	if err := os.WriteFile(corrupt, []byte("this is not a database"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := mgr.Restore(corrupt)
	if err == nil || !strings.Contains(err.Error(), "corrupted or invalid") {
		t.Errorf("expected corrupted backup error, got %v", err)
	}
}

func TestBackupWithNoDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "nope.db"))
	if _, err := mgr.Create(); err == nil {
		t.Error("expected error when database is missing")
	}
}
