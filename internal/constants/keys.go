package constants

// Storage keys. The first five keep the names used by the browser build so an
// exported localStorage dump can be imported as-is.
const (
	KeyEvents     = "water_events_v3"
	KeyGoal       = "water_goal_v3"
	KeyStreak     = "water_streak_v1"
	KeyAwardedDay = "water_streak_awarded_day_v1"
	KeyProfile    = "water_profile_v1"
	KeyInstallID  = "sipstreak_install_v1"
)

// StateKeys lists the keys cleared by a full reset.
var StateKeys = []string{KeyEvents, KeyStreak, KeyAwardedDay}
