// Package storagetest holds behavior checks shared by every storage.Provider.
package storagetest

import (
	"reflect"
	"testing"

	"github.com/julianstephens/sipstreak/internal/storage"
)

// RunContract exercises get/set/delete/keys on an initialized, empty provider
func RunContract(t *testing.T, p storage.Provider) {
	t.Helper()

	t.Run("missing key", func(t *testing.T) {
		v, ok, err := p.Get("water_goal_v3")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if ok || v != "" {
			t.Errorf("Get() on missing key = %q, %v", v, ok)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		if err := p.Set("water_goal_v3", "2500"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		v, ok, err := p.Get("water_goal_v3")
		if err != nil || !ok || v != "2500" {
			t.Errorf("Get() = %q, %v, %v; want 2500", v, ok, err)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := p.Set("water_goal_v3", "3000"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		v, _, _ := p.Get("water_goal_v3")
		if v != "3000" {
			t.Errorf("Get() after overwrite = %q, want 3000", v)
		}
	})

	t.Run("json values are opaque", func(t *testing.T) {
		events := `[{"ts":1710064800000,"ml":50},1710064900000]`
		if err := p.Set("water_events_v3", events); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		v, _, _ := p.Get("water_events_v3")
		if v != events {
			t.Errorf("Get() = %q, want %q", v, events)
		}
	})

	t.Run("keys sorted", func(t *testing.T) {
		keys, err := p.Keys()
		if err != nil {
			t.Fatalf("Keys() error = %v", err)
		}
		want := []string{"water_events_v3", "water_goal_v3"}
		if !reflect.DeepEqual(keys, want) {
			t.Errorf("Keys() = %v, want %v", keys, want)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := p.Delete("water_goal_v3"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, ok, _ := p.Get("water_goal_v3"); ok {
			t.Error("key still present after Delete()")
		}
		if err := p.Delete("never_written"); err != nil {
			t.Errorf("Delete() of missing key error = %v", err)
		}
	})
}
