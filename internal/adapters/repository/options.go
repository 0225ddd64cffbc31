package repository

import (
	"time"

	"github.com/okian/seccard/pkg/logger"
)

// Default history configuration constants.
const (
	defaultLogCap    = 5000
	defaultBucketCap = 200
)

// Option applies a configuration option to the LogStore.
type Option func(*LogStore)

// WithLogCap bounds the session log length.
func WithLogCap(n int) Option {
	return func(s *LogStore) {
		if n > 0 {
			s.logCap = n
		}
	}
}

// WithBucketCap bounds the per-day score bucket length.
func WithBucketCap(n int) Option {
	return func(s *LogStore) {
		if n > 0 {
			s.bucketCap = n
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *LogStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNow overrides the clock used for daily bucket keys. Test hook.
func WithNow(now func() time.Time) Option {
	return func(s *LogStore) {
		if now != nil {
			s.now = now
		}
	}
}
