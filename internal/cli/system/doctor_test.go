package system

import (
	"strings"
	"testing"

	"github.com/julianstephens/sipstreak/internal/backup"
	"github.com/julianstephens/sipstreak/internal/constants"
)

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, _, out := setupSQLiteContext(t)

	// missing backups is a warning, not a failure
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed on healthy database: %v\n%s", err, out.String())
	}
	for _, want := range []string{
		"✓ Database reachable: OK",
		"✓ Schema version: OK",
		"✓ Migrations complete: OK",
		"✓ Stored values: OK",
		"⚠ Backups present: WARNING",
		"All diagnostics passed!",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDoctorCmd_WithBackups(t *testing.T) {
	ctx, store, out := setupSQLiteContext(t)
	if _, err := backup.NewManager(store.GetConfigPath()).Create(); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed with backups present: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backups present: OK") {
		t.Errorf("backups not detected:\n%s", out.String())
	}
}

func TestDoctorCmd_FutureSchema(t *testing.T) {
	ctx, store, out := setupSQLiteContext(t)
	db := store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Fatal("doctor should fail with a schema newer than supported")
	}
	if !strings.Contains(out.String(), "❌ Schema version: FAIL") {
		t.Errorf("schema failure not reported:\n%s", out.String())
	}
}

func TestDoctorCmd_LegacyValuesWarn(t *testing.T) {
	ctx, store, out := setupSQLiteContext(t)
	if err := store.Set(constants.KeyEvents, "[1710061200000]"); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("legacy values should only warn: %v", err)
	}
	if !strings.Contains(out.String(), "⚠ Stored values: WARNING") {
		t.Errorf("legacy events not flagged:\n%s", out.String())
	}
}

func TestCheckStoredValues_BadGoal(t *testing.T) {
	ctx, store, _ := setupMemoryContext(t)
	if err := store.Set(constants.KeyGoal, "lots"); err != nil {
		t.Fatal(err)
	}
	err := checkStoredValues(ctx)
	if _, ok := err.(errWarn); !ok {
		t.Fatalf("expected a warning, got %v", err)
	}
}

func TestDoctorCmd_MemoryStoreSkips(t *testing.T) {
	ctx, _, out := setupMemoryContext(t)
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed on memory store: %v", err)
	}
	if !strings.Contains(out.String(), "⊘ Schema version: SKIPPED") {
		t.Errorf("schema check not skipped:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "⊘ Backups present: SKIPPED") {
		t.Errorf("backup check not skipped:\n%s", out.String())
	}
}
