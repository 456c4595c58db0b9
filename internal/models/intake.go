package models

import "time"

// IntakeEvent is a single logged drink. Events are never edited; they leave the
// log only through undo or retention pruning.
type IntakeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	VolumeMl  int       `json:"volumeMl"`
}

// EpochMs returns the event timestamp in milliseconds since the Unix epoch.
func (e IntakeEvent) EpochMs() int64 {
	return e.Timestamp.UnixMilli()
}
