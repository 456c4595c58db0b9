// Package streak awards at most one point per calendar day on which the
// intake goal is reached.
package streak

import "fmt"

// State is the persisted streak counter and the last day it was credited
type State struct {
	Count      int    `json:"count"`
	AwardedDay string `json:"awardedDay"`
}

// CheckAndAward credits today when todayTotalMl has reached goalMl and today
// has not been credited yet. It never decrements, so an undo that drops the
// total back under the goal leaves the award in place. It is safe to call
// repeatedly.
func CheckAndAward(todayTotalMl, goalMl int, today string, state State) (State, bool) {
	if state.AwardedDay == today {
		return state, false
	}
	if goalMl <= 0 || todayTotalMl < goalMl {
		return state, false
	}
	return State{Count: state.Count + 1, AwardedDay: today}, true
}

// Message is the toast shown when a point is awarded
func Message(count int) string {
	return fmt.Sprintf("🎉 Goal reached! Streak +1 (🔥 %d)", count)
}
