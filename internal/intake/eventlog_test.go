package intake

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/sipstreak/internal/models"
)

var baseTime = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func TestRecord(t *testing.T) {
	tests := []struct {
		name    string
		volume  int
		wantErr bool
	}{
		{name: "default cup", volume: 50},
		{name: "large volume has no upper bound", volume: 5000},
		{name: "zero rejected", volume: 0, wantErr: true},
		{name: "negative rejected", volume: -100, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := NewEventLog(nil)
			e, err := log.Record(baseTime, tt.volume)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVolume) {
					t.Fatalf("Record() error = %v, want ErrInvalidVolume", err)
				}
				if log.Len() != 0 {
					t.Errorf("Len() = %d after rejected record, want 0", log.Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("Record() unexpected error: %v", err)
			}
			if e.VolumeMl != tt.volume || !e.Timestamp.Equal(baseTime) {
				t.Errorf("Record() = %+v", e)
			}
			if log.Len() != 1 {
				t.Errorf("Len() = %d, want 1", log.Len())
			}
		})
	}
}

func TestUndoLast(t *testing.T) {
	log := NewEventLog(nil)
	if _, ok := log.UndoLast(); ok {
		t.Fatal("UndoLast() on empty log reported a removal")
	}

	yesterday := baseTime.Add(-24 * time.Hour)
	if _, err := log.Record(baseTime, 50); err != nil {
		t.Fatal(err)
	}
	// appended last even though it is older
	if _, err := log.Record(yesterday, 200); err != nil {
		t.Fatal(err)
	}

	removed, ok := log.UndoLast()
	if !ok {
		t.Fatal("UndoLast() reported no removal")
	}
	if removed.VolumeMl != 200 || !removed.Timestamp.Equal(yesterday) {
		t.Errorf("UndoLast() removed %+v, want the most recently appended event", removed)
	}
	if log.Len() != 1 {
		t.Errorf("Len() = %d, want 1", log.Len())
	}
}

func TestPrune(t *testing.T) {
	now := baseTime
	cutoff := Cutoff(now, 30)

	tests := []struct {
		name        string
		timestamps  []time.Time
		wantRemoved int
		wantLen     int
	}{
		{
			name:        "empty log",
			wantRemoved: 0,
			wantLen:     0,
		},
		{
			name:        "all inside window",
			timestamps:  []time.Time{now, now.Add(-29 * 24 * time.Hour)},
			wantRemoved: 0,
			wantLen:     2,
		},
		{
			name:        "exactly at cutoff is kept",
			timestamps:  []time.Time{cutoff},
			wantRemoved: 0,
			wantLen:     1,
		},
		{
			name:        "one millisecond before cutoff is dropped",
			timestamps:  []time.Time{cutoff.Add(-time.Millisecond), now},
			wantRemoved: 1,
			wantLen:     1,
		},
		{
			name:        "forty days old",
			timestamps:  []time.Time{now.Add(-40 * 24 * time.Hour), now.Add(-31 * 24 * time.Hour), now},
			wantRemoved: 2,
			wantLen:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := make([]models.IntakeEvent, len(tt.timestamps))
			for i, ts := range tt.timestamps {
				events[i] = models.IntakeEvent{Timestamp: ts, VolumeMl: 50}
			}
			log := NewEventLog(events)

			if got := log.Prune(now, 30); got != tt.wantRemoved {
				t.Errorf("Prune() removed %d, want %d", got, tt.wantRemoved)
			}
			if log.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", log.Len(), tt.wantLen)
			}
			// idempotent
			if got := log.Prune(now, 30); got != 0 {
				t.Errorf("second Prune() removed %d, want 0", got)
			}
		})
	}
}

func TestEventsReturnsCopy(t *testing.T) {
	log := NewEventLog([]models.IntakeEvent{{Timestamp: baseTime, VolumeMl: 50}})
	events := log.Events()
	events[0].VolumeMl = 999
	if log.Events()[0].VolumeMl != 50 {
		t.Error("Events() exposed the internal slice")
	}
}
