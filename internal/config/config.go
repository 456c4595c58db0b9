// Package config loads runtime settings layered as defaults, an optional
// YAML file and SIPSTREAK_ environment variables.
package config

import (
	"fmt"

	"github.com/julianstephens/sipstreak/internal/constants"
	"github.com/julianstephens/sipstreak/internal/models"
	"github.com/julianstephens/sipstreak/internal/utils"
)

// Config contains process configuration.
type Config struct {
	// DB is a sqlite file path, a *.json file path or a postgres:// URL.
	DB string `koanf:"db"`

	// Timezone is an IANA name or "Local"; day keys are computed in it.
	Timezone string `koanf:"timezone"`

	RetentionDays int `koanf:"retention_days"`
	HistoryDays   int `koanf:"history_days"`
	DefaultGoalMl int `koanf:"default_goal_ml"`

	// LegacyCupMl is the volume assumed for events stored as bare timestamps.
	LegacyCupMl int `koanf:"legacy_cup_ml"`

	ReminderMinutes int  `koanf:"reminder_minutes"`
	Notifications   bool `koanf:"notifications"`

	// APIAddr is the listen address for `sipstreak serve`.
	APIAddr string `koanf:"api_addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

// New returns a Config populated with defaults
func New() *Config {
	return &Config{
		DB:              constants.DefaultConfigPath,
		Timezone:        "Local",
		RetentionDays:   constants.RetentionDays,
		HistoryDays:     constants.HistoryDays,
		DefaultGoalMl:   constants.DefaultGoalMl,
		LegacyCupMl:     constants.LegacyCupMl,
		ReminderMinutes: constants.DefaultReminderMinutes,
		Notifications:   true,
		APIAddr:         constants.DefaultAPIAddr,
		LogLevel:        "warn",
	}
}

// Validate checks ranges and the timezone name
func (c *Config) Validate() error {
	switch {
	case c.DB == "":
		return fmt.Errorf("%w: db must not be empty", ErrInvalidConfig)
	case c.RetentionDays < 1:
		return fmt.Errorf("%w: retention_days must be at least 1, got %d", ErrInvalidConfig, c.RetentionDays)
	case c.HistoryDays < 1:
		return fmt.Errorf("%w: history_days must be at least 1, got %d", ErrInvalidConfig, c.HistoryDays)
	case c.DefaultGoalMl <= 0:
		return fmt.Errorf("%w: default_goal_ml must be positive, got %d", ErrInvalidConfig, c.DefaultGoalMl)
	case !models.CupSize(c.LegacyCupMl).Valid():
		return fmt.Errorf("%w: legacy_cup_ml must be 50, 100 or 200, got %d", ErrInvalidConfig, c.LegacyCupMl)
	case c.ReminderMinutes < constants.MinReminderMinutes:
		return fmt.Errorf("%w: reminder_minutes must be at least %d, got %d", ErrInvalidConfig, constants.MinReminderMinutes, c.ReminderMinutes)
	case c.APIAddr == "":
		return fmt.Errorf("%w: api_addr must not be empty", ErrInvalidConfig)
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfig, c.Timezone)
	}
	return nil
}
