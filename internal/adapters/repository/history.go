// Package repository implements the session history store: an
// append-only log of completed scoring runs plus per-day score buckets,
// persisted best-effort through the durable key-value port.
package repository

import (
	"context"

	"github.com/okian/seccard/internal/domain/model"
)

// Stats aggregates the whole session log. Distinct from the same-day
// rolling average.
type Stats struct {
	Count int     `json:"count"`
	Best  int     `json:"best"`
	Avg   float64 `json:"avg"`
}

// DailyAverage is the same-day rolling average over the retained bucket.
type DailyAverage struct {
	Avg float64 `json:"avg"`
	N   int     `json:"n"`
}

// Store provides append and read access to the session history.
type Store interface {
	// Append adds a completed run to the log, silently dropping the oldest
	// entry on overflow. It never fails on a durable-write error.
	Append(ctx context.Context, rec model.SessionRecord)

	// RecordScoreForAvg folds score into today's bucket (capped, oldest
	// dropped) and returns the rolling average over the retained values.
	RecordScoreForAvg(ctx context.Context, score int) DailyAverage

	// TopN returns up to n records ordered by score descending. Ties keep
	// insertion order of the underlying log.
	TopN(ctx context.Context, n int) ([]model.SessionRecord, error)

	// RecentM returns up to m records ordered by timestamp descending.
	RecentM(ctx context.Context, m int) ([]model.SessionRecord, error)

	// Stats aggregates the entire log. Returns ErrEmptyLog when empty so
	// callers never see NaN or -Inf sentinels.
	Stats(ctx context.Context) (Stats, error)

	// Clear irreversibly replaces the log with an empty list.
	Clear(ctx context.Context)

	// Count returns the number of records in the log.
	Count(ctx context.Context) int
}
