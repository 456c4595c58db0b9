package progress

import "fmt"

// Tier is the band a ratio falls into
type Tier int

const (
	TierTapToStart Tier = iota
	TierKeepSipping
	TierHalfway
	TierGoalReached
)

func (t Tier) String() string {
	switch t {
	case TierTapToStart:
		return "tap-to-start"
	case TierKeepSipping:
		return "keep-sipping"
	case TierHalfway:
		return "halfway"
	case TierGoalReached:
		return "goal-reached"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Hint is a tier plus the message shown for it
type Hint struct {
	Tier    Tier   `json:"tier"`
	Message string `json:"message"`
}

// TierFor maps a ratio to its tier. Lower bounds are inclusive.
func TierFor(ratio float64) Tier {
	switch {
	case ratio >= 1:
		return TierGoalReached
	case ratio >= 0.5:
		return TierHalfway
	case ratio > 0:
		return TierKeepSipping
	default:
		return TierTapToStart
	}
}

// HintFor returns the hint for ratio; cupMl is quoted by the tap-to-start message
func HintFor(ratio float64, cupMl int) Hint {
	tier := TierFor(ratio)
	var msg string
	switch tier {
	case TierGoalReached:
		msg = "Goal reached 🎉 Keep it up!"
	case TierHalfway:
		msg = "Nice! Halfway there."
	case TierKeepSipping:
		msg = "Good start — keep sipping."
	default:
		msg = fmt.Sprintf("Tap the bottle to log %dml.", cupMl)
	}
	return Hint{Tier: tier, Message: msg}
}
