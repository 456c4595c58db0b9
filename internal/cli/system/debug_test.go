package system

import (
	"encoding/json"
	"testing"

	"github.com/julianstephens/sipstreak/internal/constants"
)

func TestDebugDBPathCmd(t *testing.T) {
	ctx, store, out := setupSQLiteContext(t)
	if err := (&DebugDBPathCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if got["path"] != store.GetConfigPath() {
		t.Errorf("path = %q, want %q", got["path"], store.GetConfigPath())
	}
}

func TestDebugDumpCmd(t *testing.T) {
	ctx, store, out := setupMemoryContext(t)
	for k, v := range map[string]string{
		constants.KeyEvents:     `[{"ts":1710061200000,"ml":50}]`,
		constants.KeyGoal:       "2000",
		constants.KeyAwardedDay: "2024-03-10",
	} {
		if err := store.Set(k, v); err != nil {
			t.Fatal(err)
		}
	}

	if err := (&DebugDumpCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	var dump map[string]json.RawMessage
	if err := json.Unmarshal(out.Bytes(), &dump); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(dump) != 3 {
		t.Fatalf("dumped %d keys, want 3", len(dump))
	}
	var events []map[string]int64
	if err := json.Unmarshal(dump[constants.KeyEvents], &events); err != nil || len(events) != 1 {
		t.Errorf("events not embedded as JSON: %s", dump[constants.KeyEvents])
	}
	if string(dump[constants.KeyAwardedDay]) != `"2024-03-10"` {
		t.Errorf("non-JSON value not quoted: %s", dump[constants.KeyAwardedDay])
	}

	out.Reset()
	if err := (&DebugDumpCmd{Key: constants.KeyGoal}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	dump = nil
	if err := json.Unmarshal(out.Bytes(), &dump); err != nil || len(dump) != 1 {
		t.Errorf("single key dump = %s", out.String())
	}

	if err := (&DebugDumpCmd{Key: "missing"}).Run(ctx); err == nil {
		t.Error("expected an error for a missing key")
	}
}
