package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix namespaces every environment override, e.g. SIPSTREAK_RETENTION_DAYS
	EnvPrefix = "SIPSTREAK_"
	// EnvConfigFile points at an optional YAML file
	EnvConfigFile = "SIPSTREAK_CONFIG"
)

// Options tweaks a single Load call
type Options struct {
	// File overrides SIPSTREAK_CONFIG when set.
	File string
	// DotEnv is the .env file read before the environment; "" means ".env".
	DotEnv string
}

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New)
//  2. YAML file from opts.File or SIPSTREAK_CONFIG
//  3. env (prefix SIPSTREAK_), after a .env file is merged into the process env
func Load(_ context.Context, opts Options) (*Config, error) {
	dotenv := opts.DotEnv
	if dotenv == "" {
		dotenv = ".env"
	}
	// godotenv never overrides variables that are already set
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, dotenv, err)
	}

	k := koanf.New(".")

	path := opts.File
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// SIPSTREAK_RETENTION_DAYS -> retention_days; underscores kept to match koanf tags
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
