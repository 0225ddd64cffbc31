// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/oklog/ulid/v2"

	renderqueue "github.com/okian/seccard/internal/adapters/mq/queue"
	workerpool "github.com/okian/seccard/internal/adapters/mq/worker"
	repository "github.com/okian/seccard/internal/adapters/repository"
	"github.com/okian/seccard/internal/adapters/storage"
	"github.com/okian/seccard/internal/domain/banding"
	"github.com/okian/seccard/internal/domain/certificate"
	"github.com/okian/seccard/internal/domain/codec"
	"github.com/okian/seccard/internal/domain/dedupe"
	"github.com/okian/seccard/internal/domain/geometry"
	"github.com/okian/seccard/internal/domain/model"
	"github.com/okian/seccard/pkg/logger"
	"github.com/okian/seccard/pkg/metrics"
)

// ScoreRequest carries one scoring run submitted by a station.
// DistanceYds and MOAPerClick override the configured sighting setup for
// this run only; zero keeps the service defaults.
type ScoreRequest struct {
	SessionID   string
	Anchor      model.Point2D
	Hits        []model.Point2D
	TargetKey   string
	VendorURL   string
	SKU         string
	DistanceYds float64
	MOAPerClick float64
}

// ScoreResult is the outcome returned to the station: the full payload,
// its transport token, the banding labels, and today's rolling average.
type ScoreResult struct {
	Payload   model.SECPayload
	Token     string
	Band      banding.Band
	Label     string
	Daily     repository.DailyAverage
	Duplicate bool
}

// storedArtifact is the durable envelope for a finished certificate.
// JSON base64-encodes the PNG bytes for free.
type storedArtifact struct {
	Filename string `json:"filename"`
	PNG      []byte `json:"png"`
}

// Service implements the API dependencies for the card system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    storage.Store
	history  repository.Store
	calc     *geometry.Calculator
	deduper  dedupe.Deduper
	queue    renderqueue.Queue
	pool     *workerpool.Pool
	composer *certificate.Composer

	// Configuration
	dataPath      string
	distanceYds   float64
	moaPerClick   float64
	dialUnit      string
	targetWidths  map[string]float64
	defaultWidth  float64
	logCap        int
	bucketCap     int
	queueSize     int
	workerCount   int
	dedupeSize    int
	vendorName    string
	ownStore      bool
	injectedStore storage.Store

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects a key-value store, overriding WithDataPath.
func WithStore(st storage.Store) Option {
	return func(s *Service) {
		s.injectedStore = st
	}
}

// WithDataPath selects the sqlite database file. Empty keeps everything
// in memory.
func WithDataPath(path string) Option {
	return func(s *Service) {
		s.dataPath = path
	}
}

// WithDistance sets the sighting distance in yards.
func WithDistance(yds float64) Option {
	return func(s *Service) {
		if yds > 0 {
			s.distanceYds = yds
		}
	}
}

// WithMOAPerClick sets the sight's angular value per click.
func WithMOAPerClick(moa float64) Option {
	return func(s *Service) {
		if moa > 0 {
			s.moaPerClick = moa
		}
	}
}

// WithDialUnit sets the angular unit reported on payloads.
func WithDialUnit(unit string) Option {
	return func(s *Service) {
		if unit != "" {
			s.dialUnit = unit
		}
	}
}

// WithTargetWidths sets the template key to real-world width mapping.
func WithTargetWidths(widths map[string]float64) Option {
	return func(s *Service) {
		s.targetWidths = widths
	}
}

// WithDefaultTargetWidth sets the width used for unknown template keys.
func WithDefaultTargetWidth(inches float64) Option {
	return func(s *Service) {
		if inches > 0 {
			s.defaultWidth = inches
		}
	}
}

// WithLogCap bounds the append-only session log.
func WithLogCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.logCap = n
		}
	}
}

// WithBucketCap bounds each day's rolling-average bucket.
func WithBucketCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bucketCap = n
		}
	}
}

// WithRenderQueueSize sets the capacity of the render queue.
func WithRenderQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRenderWorkerCount sets the number of render workers.
func WithRenderWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDedupeSize sets the size of the session idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithVendorName sets the print vendor shown on certificates.
func WithVendorName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.vendorName = name
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		distanceYds:  geometry.DefaultDistanceYds,
		moaPerClick:  geometry.DefaultMOAPerClick,
		dialUnit:     "MOA",
		defaultWidth: geometry.DefaultTargetWidthInches,
		logCap:       5000,
		bucketCap:    200,
		queueSize:    1024,
		workerCount:  2,
		dedupeSize:   50000,
		logger:       nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting card service...")

	// Initialize the durable store
	switch {
	case s.injectedStore != nil:
		s.store = s.injectedStore
	case s.dataPath != "":
		st, err := storage.OpenSQLite(s.dataPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = st
		s.ownStore = true
		s.logger.Info(ctx, "using sqlite store", logger.String("path", s.dataPath))
	default:
		s.store = storage.NewMemoryStore()
		s.ownStore = true
		s.logger.Info(ctx, "using in-memory store")
	}

	// Initialize components
	s.calc = geometry.NewCalculator(
		geometry.WithDistance(s.distanceYds),
		geometry.WithMOAPerClick(s.moaPerClick),
		geometry.WithTargetWidths(s.targetWidths),
		geometry.WithDefaultTargetWidth(s.defaultWidth),
	)
	s.history = repository.NewLogStore(ctx, s.store,
		repository.WithLogCap(s.logCap),
		repository.WithBucketCap(s.bucketCap),
		repository.WithLogger(s.logger),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.composer = certificate.NewComposer(
		certificate.WithVendorName(s.vendorName),
	)
	s.queue = renderqueue.NewInMemoryQueue(
		renderqueue.WithCapacity(s.queueSize),
	)

	// Create and start render worker pool
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.composer, s)
	s.pool.Start(ctx)
	metrics.UpdateWorkerCount(s.workerCount)

	s.started = true
	s.logger.Info(ctx, "card service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Float64("distanceYds", s.distanceYds),
		logger.Float64("moaPerClick", s.moaPerClick),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping card service...")

	// Close queue first so workers drain what is left
	if q, ok := s.queue.(*renderqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	if s.pool != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = s.pool.Shutdown(shutdownCtx)
	}

	if s.ownStore && s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "card service stopped")
}

// ScoreSession evaluates one run end to end: geometry, payload,
// history, rolling average, and an async certificate render when a
// target image is on file. A repeated session id returns the duplicate
// acknowledgement without touching the log.
func (s *Service) ScoreSession(ctx context.Context, req ScoreRequest) (ScoreResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ScoreResult{}, ErrNotStarted
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = ulid.Make().String()
	}
	if s.deduper.SeenAndRecord(ctx, sessionID) {
		metrics.RecordSessionDuplicate()
		s.logger.Debug(ctx, "duplicate session, skipping",
			logger.String("sessionID", sessionID),
		)
		return ScoreResult{Duplicate: true}, nil
	}

	calc := s.calc
	clickValue := s.moaPerClick
	if req.DistanceYds > 0 || req.MOAPerClick > 0 {
		distance := s.distanceYds
		if req.DistanceYds > 0 {
			distance = req.DistanceYds
		}
		if req.MOAPerClick > 0 {
			clickValue = req.MOAPerClick
		}
		calc = geometry.NewCalculator(
			geometry.WithDistance(distance),
			geometry.WithMOAPerClick(clickValue),
			geometry.WithTargetWidths(s.targetWidths),
			geometry.WithDefaultTargetWidth(s.defaultWidth),
		)
	}

	res, err := calc.Evaluate(ctx, geometry.Input{
		Anchor:    req.Anchor,
		Hits:      req.Hits,
		TargetKey: req.TargetKey,
	})
	if err != nil {
		// Leave the id retryable on failed runs.
		s.deduper.Unrecord(ctx, sessionID)
		return ScoreResult{}, err
	}

	now := time.Now()
	p := model.SECPayload{
		SessionID: sessionID,
		Score:     res.Score,
		Shots:     len(req.Hits),
		Windage:   res.Windage,
		Elevation: res.Elevation,
		Target:    model.TargetRef{Key: req.TargetKey},
		Dial:      model.Dial{Unit: s.dialUnit, ClickValue: clickValue},
		VendorURL: req.VendorURL,
		Debug: model.DebugTrace{
			Aim:    req.Anchor,
			Hits:   req.Hits,
			AvgPOI: res.POIB,
		},
		SKU: req.SKU,
	}

	metrics.RecordSessionScored(res.Score)

	label := banding.Fine(res.Score)
	s.history.Append(ctx, model.SessionRecord{
		Score:     res.Score,
		TS:        now.UnixMilli(),
		Label:     label,
		TargetKey: req.TargetKey,
		Dial:      p.Dial,
		Shots:     p.Shots,
	})
	daily := s.history.RecordScoreForAvg(ctx, res.Score)

	token, err := codec.Encode(p)
	if err != nil {
		return ScoreResult{}, fmt.Errorf("encode payload: %w", err)
	}
	if err := codec.Persist(ctx, s.store, p); err != nil {
		// Durable fallback is best-effort; the result stands.
		metrics.RecordStorageWriteError()
		s.logger.Warn(ctx, "persist payload failed", logger.Error(err))
	}

	s.maybeEnqueueRender(ctx, p)

	return ScoreResult{
		Payload: p,
		Token:   token,
		Band:    banding.Coarse(res.Score),
		Label:   label,
		Daily:   daily,
	}, nil
}

// maybeEnqueueRender schedules an async certificate render when a
// target image is on file. Dropped silently when the queue is full.
func (s *Service) maybeEnqueueRender(ctx context.Context, p model.SECPayload) {
	img, err := s.store.Get(ctx, storage.KeyTargetImage)
	if err != nil {
		return
	}
	if ok := s.queue.Enqueue(ctx, renderqueue.Job{Payload: p, Image: img}); !ok {
		s.logger.Warn(ctx, "render queue full, dropping job",
			logger.String("sessionID", p.SessionID),
		)
	}
}

// SetTargetImage stores the raw target photo used for certificate
// thumbnails. Rejects bytes that do not decode as an image.
func (s *Service) SetTargetImage(ctx context.Context, data []byte) error {
	if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %w", ErrBadImage, err)
	}
	if err := s.store.Set(ctx, storage.KeyTargetImage, data); err != nil {
		metrics.RecordStorageWriteError()
		return fmt.Errorf("store target image: %w", err)
	}
	return nil
}

// SaveArtifact persists a finished certificate for later download.
// Implements the render pipeline's sink.
func (s *Service) SaveArtifact(ctx context.Context, sessionID string, art certificate.Artifact) error {
	raw, err := json.Marshal(storedArtifact{Filename: art.Filename, PNG: art.PNG})
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := s.store.Set(ctx, storage.CertificateKey(sessionID), raw); err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}
	return nil
}

// Certificate returns the certificate PNG for a session. A previously
// rendered artifact is served as-is; otherwise the payload is resolved
// (token first, stored fallback) and composed on demand.
func (s *Service) Certificate(ctx context.Context, token, sessionID string) (certificate.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return certificate.Artifact{}, ErrNotStarted
	}

	if sessionID != "" {
		if raw, err := s.store.Get(ctx, storage.CertificateKey(sessionID)); err == nil {
			var env storedArtifact
			if err := json.Unmarshal(raw, &env); err == nil && len(env.PNG) > 0 {
				return certificate.Artifact{PNG: env.PNG, Filename: env.Filename}, nil
			}
		}
	}

	p, err := codec.Resolve(ctx, token, s.store)
	if err != nil {
		return certificate.Artifact{}, err
	}

	img, err := s.store.Get(ctx, storage.KeyTargetImage)
	if err != nil {
		return certificate.Artifact{}, certificate.ErrMissingTargetImage
	}

	start := time.Now()
	art, err := s.composer.Compose(ctx, p, img)
	if err != nil {
		metrics.RecordRenderError()
		return certificate.Artifact{}, err
	}
	metrics.RecordRenderLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordCertificateRendered()
	return art, nil
}

// TopN returns up to n history records ordered by score descending.
func (s *Service) TopN(ctx context.Context, n int) ([]model.SessionRecord, error) {
	return s.history.TopN(ctx, n)
}

// RecentM returns up to m history records ordered by timestamp descending.
func (s *Service) RecentM(ctx context.Context, m int) ([]model.SessionRecord, error) {
	return s.history.RecentM(ctx, m)
}

// Stats aggregates the whole session log.
func (s *Service) Stats(ctx context.Context) (repository.Stats, error) {
	return s.history.Stats(ctx)
}

// ClearLog irreversibly empties the session history.
func (s *Service) ClearLog(ctx context.Context) {
	s.history.Clear(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		totalSessions := s.history.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalSessions"] = totalSessions

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateSessionLogSize(totalSessions)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
