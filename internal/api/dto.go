package api

import (
	"github.com/julianstephens/sipstreak/internal/intake"
	"github.com/julianstephens/sipstreak/internal/models"
	"github.com/julianstephens/sipstreak/internal/tracker"
)

// todayResponse is a snapshot plus the award it produced, if any
type todayResponse struct {
	tracker.Snapshot
	Award *tracker.Award `json:"award,omitempty"`
}

func newTodayResponse(s tracker.Snapshot, a *tracker.Award) todayResponse {
	return todayResponse{Snapshot: s, Award: a}
}

type eventDTO struct {
	Timestamp int64 `json:"ts"`
	VolumeMl  int   `json:"ml"`
}

func newEventDTO(e models.IntakeEvent) *eventDTO {
	if e.Timestamp.IsZero() {
		return nil
	}
	return &eventDTO{Timestamp: e.EpochMs(), VolumeMl: e.VolumeMl}
}

type mutationResponse struct {
	Event *eventDTO     `json:"event,omitempty"`
	Today todayResponse `json:"today"`
}

type undoResponse struct {
	Undone bool `json:"undone"`
	mutationResponse
}

func newMutationResponse(r tracker.Result) mutationResponse {
	return mutationResponse{
		Event: newEventDTO(r.Event),
		Today: newTodayResponse(r.Snapshot, r.Award),
	}
}

type drinkRequest struct {
	Ml *int `json:"ml"`
}

type goalRequest struct {
	GoalMl int `json:"goalMl" binding:"required"`
}

type chartResponse struct {
	Day   string `json:"day"`
	Hours []int  `json:"hours"`
	MaxMl int    `json:"maxMl"`
}

type historyResponse struct {
	Days []intake.DayHistory `json:"days"`
}

type daysResponse struct {
	Days []string `json:"days"`
}

type errorResponse struct {
	Error string `json:"error"`
}
