package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/okian/seccard/internal/adapters/storage"
	"github.com/okian/seccard/internal/domain/model"
	"github.com/okian/seccard/pkg/logger"
	"github.com/okian/seccard/pkg/metrics"
)

// dayKeyLayout formats a local calendar day, e.g. "2026-08-29".
const dayKeyLayout = "2006-01-02"

// LogStore implements Store over the durable key-value port. All state
// is held in memory and mirrored to storage best-effort: a failed write
// is logged and counted, never surfaced to the caller. Last write wins
// across concurrent processes; that lost-update risk is accepted.
type LogStore struct {
	mu      sync.RWMutex
	store   storage.Store
	log     []model.SessionRecord
	buckets map[string][]int

	logCap    int
	bucketCap int
	now       func() time.Time
	logger    logger.Logger
}

// NewLogStore creates a history store backed by store, loading any
// previously persisted log and buckets.
func NewLogStore(ctx context.Context, store storage.Store, opts ...Option) *LogStore {
	s := &LogStore{
		store:     store,
		buckets:   make(map[string][]int),
		logCap:    defaultLogCap,
		bucketCap: defaultBucketCap,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.load(ctx)
	return s
}

// load restores persisted state. Missing keys are a fresh install, any
// other failure degrades to an empty in-memory state.
func (s *LogStore) load(ctx context.Context) {
	if raw, err := s.store.Get(ctx, storage.KeySessionLog); err == nil {
		var log []model.SessionRecord
		if json.Unmarshal(raw, &log) == nil {
			if len(log) > s.logCap {
				log = log[len(log)-s.logCap:]
			}
			s.log = log
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		metrics.RecordStorageReadError()
		s.warn(ctx, "failed to load session log", logger.Error(err))
	}

	if raw, err := s.store.Get(ctx, storage.KeyDailyBuckets); err == nil {
		var buckets map[string][]int
		if json.Unmarshal(raw, &buckets) == nil && buckets != nil {
			s.buckets = buckets
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		metrics.RecordStorageReadError()
		s.warn(ctx, "failed to load daily buckets", logger.Error(err))
	}
}

// Append adds a completed run to the log, capping to the configured
// length by dropping the oldest entries. Durable-write failures are
// swallowed: the in-memory append still succeeds.
func (s *LogStore) Append(ctx context.Context, rec model.SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log = append(s.log, rec)
	if len(s.log) > s.logCap {
		s.log = s.log[len(s.log)-s.logCap:]
	}
	s.persistLog(ctx)
	metrics.UpdateSessionLogSize(len(s.log))
}

// RecordScoreForAvg folds score into today's bucket and returns the
// rolling average over exactly the retained values. Old buckets are
// never purged; a new day simply starts its own bucket.
func (s *LogStore) RecordScoreForAvg(ctx context.Context, score int) DailyAverage {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.now().Format(dayKeyLayout)
	bucket := append(s.buckets[day], score)
	if len(bucket) > s.bucketCap {
		bucket = bucket[len(bucket)-s.bucketCap:]
	}
	s.buckets[day] = bucket
	s.persistBuckets(ctx)
	metrics.RecordDailyAverageSample()

	var total int
	for _, v := range bucket {
		total += v
	}
	return DailyAverage{
		Avg: float64(total) / float64(len(bucket)),
		N:   len(bucket),
	}
}

// DailyBucket returns a copy of the retained scores for day (layout
// "YYYY-MM-DD"). Old buckets remain queryable indefinitely.
func (s *LogStore) DailyBucket(_ context.Context, day string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.buckets[day]
	out := make([]int, len(bucket))
	copy(out, bucket)
	return out
}

// TopN returns up to n records by score descending. The sort is stable
// so equal scores keep the insertion order of the underlying log, and
// the projection never mutates the log itself.
func (s *LogStore) TopN(_ context.Context, n int) ([]model.SessionRecord, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	out := make([]model.SessionRecord, len(s.log))
	copy(out, s.log)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// RecentM returns up to m records by timestamp descending.
func (s *LogStore) RecentM(_ context.Context, m int) ([]model.SessionRecord, error) {
	if m < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	out := make([]model.SessionRecord, len(s.log))
	copy(out, s.log)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].TS > out[j].TS })
	if len(out) > m {
		out = out[:m]
	}
	return out, nil
}

// Stats aggregates the whole log. An empty log reports ErrEmptyLog so
// callers render an explicit empty state instead of NaN.
func (s *LogStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.log) == 0 {
		return Stats{}, ErrEmptyLog
	}

	best := s.log[0].Score
	var total int
	for _, rec := range s.log {
		if rec.Score > best {
			best = rec.Score
		}
		total += rec.Score
	}
	return Stats{
		Count: len(s.log),
		Best:  best,
		Avg:   float64(total) / float64(len(s.log)),
	}, nil
}

// Clear irreversibly replaces the log with an empty list. Confirmation
// is the caller's responsibility.
func (s *LogStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log = nil
	s.persistLog(ctx)
	metrics.UpdateSessionLogSize(0)
}

// Count returns the number of records in the log.
func (s *LogStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.log)
}

// persistLog mirrors the log to durable storage. Caller holds the lock.
func (s *LogStore) persistLog(ctx context.Context) {
	raw, err := json.Marshal(s.log)
	if err == nil {
		err = s.store.Set(ctx, storage.KeySessionLog, raw)
	}
	if err != nil {
		metrics.RecordStorageWriteError()
		s.warn(ctx, "failed to persist session log", logger.Error(err), logger.Int("records", len(s.log)))
	}
}

// persistBuckets mirrors the daily buckets. Caller holds the lock.
func (s *LogStore) persistBuckets(ctx context.Context) {
	raw, err := json.Marshal(s.buckets)
	if err == nil {
		err = s.store.Set(ctx, storage.KeyDailyBuckets, raw)
	}
	if err != nil {
		metrics.RecordStorageWriteError()
		s.warn(ctx, "failed to persist daily buckets", logger.Error(err))
	}
}

func (s *LogStore) warn(ctx context.Context, msg string, fields ...logger.Field) {
	if s.logger != nil {
		s.logger.Warn(ctx, msg, fields...)
	}
}
