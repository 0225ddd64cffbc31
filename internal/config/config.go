// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataPath locates the sqlite kv database. Empty selects the
	// in-memory store (nothing survives a restart).
	DataPath string `koanf:"data_path"`

	// DistanceYds is the sighting distance assumed for corrections.
	DistanceYds float64 `koanf:"distance_yds"`

	// MOAPerClick is the sight's angular value per adjustment click.
	MOAPerClick float64 `koanf:"moa_per_click"`

	// DialUnit names the angular unit reported on payloads.
	DialUnit string `koanf:"dial_unit"`

	// SessionLogCap bounds the append-only session log.
	SessionLogCap int `koanf:"session_log_cap"`

	// DailyBucketCap bounds each day's rolling-average bucket.
	DailyBucketCap int `koanf:"daily_bucket_cap"`

	// MaxLeaderboardLimit caps GET /leaderboard and /recent ?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// RenderQueueSize bounds the certificate render queue.
	RenderQueueSize int `koanf:"render_queue_size"`

	// RenderWorkerCount sets the number of render workers.
	RenderWorkerCount int `koanf:"render_worker_count"`

	// DedupeSize sets the size of the session idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// TargetWidths maps target template keys to real-world widths in inches.
	TargetWidths map[string]float64 `koanf:"target_widths"`

	// DefaultTargetWidth is used for unknown template keys.
	DefaultTargetWidth float64 `koanf:"default_target_width"`

	// VendorName is the print vendor shown on certificates when the
	// payload carries a well-formed vendor URL.
	VendorName string `koanf:"vendor_name"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		DataPath:            "seccard.db",
		DistanceYds:         100,
		MOAPerClick:         0.25,
		DialUnit:            "MOA",
		SessionLogCap:       5000,
		DailyBucketCap:      200,
		MaxLeaderboardLimit: 100,
		RenderQueueSize:     1024,
		RenderWorkerCount:   runtime.NumCPU(),
		DedupeSize:          50_000,
		TargetWidths: map[string]float64{
			"splatter-4":  4.0,
			"splatter-8":  8.0,
			"splatter-12": 12.0,
		},
		DefaultTargetWidth: 4.0,
		VendorName:         "RangeWorks Printing",
	}
}
