package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "sipstreak"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/sipstreak/sipstreak.db"
	Version            = "v0.1.0"

	// DateFormat is the day key format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// ClockFormat is the time-of-day format used for history entries (HH:MM:SS)
	ClockFormat = "15:04:05"

	// Intake defaults
	DefaultGoalMl   = 2000
	RetentionDays   = 30
	HistoryDays     = 30
	LegacyCupMl     = 50
	HoursPerDay     = 24
	MidnightBuffer  = 50 * time.Millisecond
	ChartMinScaleMl = 50
	ToastDuration   = 2600 * time.Millisecond

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "sipstreak-"
	BackupFileSuffix = ".db"

	// Reminder and notify constants
	DefaultReminderMinutes = 30
	MinReminderMinutes     = 1
	NotifierLockfileName   = "sipstreak-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.sipstreak"
	ReminderTitle          = "💧 Drink water"
	ReminderBody           = "Take a few sips now."

	// HTTP API
	DefaultAPIAddr = "127.0.0.1:8787"
)

// Session States
const (
	StateToday SessionState = iota
	StateHistory
	StateChart
	StateReminder
	StateProfile
	StateEditGoal
	StateEditReminder
	StateEditProfile
	StateConfirmReset
)
