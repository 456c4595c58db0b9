package config

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty db", mutate: func(c *Config) { c.DB = "" }, wantErr: true},
		{name: "zero retention", mutate: func(c *Config) { c.RetentionDays = 0 }, wantErr: true},
		{name: "negative goal", mutate: func(c *Config) { c.DefaultGoalMl = -1 }, wantErr: true},
		{name: "odd legacy cup", mutate: func(c *Config) { c.LegacyCupMl = 75 }, wantErr: true},
		{name: "reminder under a minute", mutate: func(c *Config) { c.ReminderMinutes = 0 }, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "iana timezone", mutate: func(c *Config) { c.Timezone = "Europe/Berlin" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}
