package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables understood by Load.
const (
	EnvConfigFile = "MOVIES_CONFIG"
	EnvDotEnvFile = "MOVIES_ENV_FILE"
	EnvPrefix     = "MOVIES_"
	EnvPort       = "PORT"
)

const maxPort = 65535

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. YAML file if MOVIES_CONFIG is set
//  3. MOVIES_* env vars
//  4. PORT
func Load(ctx context.Context) (*Config, error) {
	_ = ctx
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %w", ErrLoadConfig, path, err)
		}
	}

	// MOVIES_LOG_LEVEL -> log_level, MOVIES_ALLOWED_ORIGINS -> allowed_origins (comma separated).
	prefixed := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "config" || key == "env_file" {
			return "", nil
		}
		if key == "allowed_origins" {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	port := env.Provider(EnvPort, ".", func(key string) string {
		if key != EnvPort {
			return ""
		}
		return "port"
	})
	if err := k.Load(port, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	cfg.AllowedOrigins = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if k.Exists("allowed_origins") {
		cfg.AllowedOrigins = compact(cfg.AllowedOrigins)
	} else {
		cfg.AllowedOrigins = base.AllowedOrigins
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports whether the configuration can be used to start the server.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > maxPort {
		return fmt.Errorf("%w: port must be between 1 and %d, got %d", ErrInvalidConfig, maxPort, c.Port)
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("%w: allowed_origins must not be empty", ErrInvalidConfig)
	}
	return nil
}

func splitList(s string) []string {
	return compact(strings.Split(s, ","))
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
