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

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if SECCARD_CONFIG is set
//  3. env (prefix SECCARD_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SECCARD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SECCARD_ADDR, SECCARD_SESSION_LOG_CAP, ...
	// Map env keys like SECCARD_SESSION_LOG_CAP -> session_log_cap (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SECCARD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "seccard_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DistanceYds <= 0:
		return fmt.Errorf("%w: distance_yds must be positive", ErrInvalidConfig)
	case c.MOAPerClick <= 0:
		return fmt.Errorf("%w: moa_per_click must be positive", ErrInvalidConfig)
	case c.DefaultTargetWidth <= 0:
		return fmt.Errorf("%w: default_target_width must be positive", ErrInvalidConfig)
	case c.SessionLogCap <= 0:
		return fmt.Errorf("%w: session_log_cap must be positive", ErrInvalidConfig)
	case c.DailyBucketCap <= 0:
		return fmt.Errorf("%w: daily_bucket_cap must be positive", ErrInvalidConfig)
	case c.RenderQueueSize <= 0:
		return fmt.Errorf("%w: render_queue_size must be positive", ErrInvalidConfig)
	case c.RenderWorkerCount <= 0:
		return fmt.Errorf("%w: render_worker_count must be positive", ErrInvalidConfig)
	}
	return nil
}
