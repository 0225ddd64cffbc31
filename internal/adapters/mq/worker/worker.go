// Package worker defines the render workers that compose certificate
// artifacts off the request path.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/seccard/internal/adapters/mq/queue"
	"github.com/okian/seccard/internal/domain/certificate"
	"github.com/okian/seccard/internal/domain/model"
	"github.com/okian/seccard/pkg/logger"
	"github.com/okian/seccard/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount = 2
)

// Job is what workers read off the render queue.
type Job = queue.Job

// Composer renders a certificate artifact for a payload.
type Composer interface {
	Compose(ctx context.Context, p model.SECPayload, targetImage []byte) (certificate.Artifact, error)
}

// ArtifactSink persists a finished artifact for later download.
type ArtifactSink interface {
	SaveArtifact(ctx context.Context, sessionID string, art certificate.Artifact) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes render jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// RenderWorker implements Worker for certificate composition.
type RenderWorker struct {
	queue    Queue
	composer Composer
	sink     ArtifactSink
	name     string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewRenderWorker creates a new worker with configuration options.
func NewRenderWorker(queue Queue, composer Composer, sink ArtifactSink, opts ...Option) *RenderWorker {
	w := &RenderWorker{
		queue:    queue,
		composer: composer,
		sink:     sink,
		name:     "render-worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("render-worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run starts the worker loop.
func (w *RenderWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				// Channel closed, worker should stop
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "render job failed",
					logger.String("sessionID", job.Payload.SessionID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *RenderWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process composes and persists a single certificate.
func (w *RenderWorker) process(ctx context.Context, job Job) error {
	start := time.Now()

	art, err := w.composer.Compose(ctx, job.Payload, job.Image)
	metrics.RecordRenderLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordRenderError()
		return fmt.Errorf("compose certificate for %s: %w", job.Payload.SessionID, err)
	}

	if err := w.sink.SaveArtifact(ctx, job.Payload.SessionID, art); err != nil {
		// Best-effort persistence: the artifact can still be composed on
		// demand, so a failed save is logged and counted only.
		metrics.RecordStorageWriteError()
		w.logger.Warn(ctx, "failed to persist certificate artifact",
			logger.String("sessionID", job.Payload.SessionID),
			logger.Error(err),
		)
	}

	metrics.RecordCertificateRendered()
	return nil
}

// Pool manages multiple render workers.
type Pool struct {
	workers []*RenderWorker
	logger  logger.Logger
}

// NewPool creates a pool of workerCount render workers.
func NewPool(workerCount int, queue Queue, composer Composer, sink ArtifactSink) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*RenderWorker, workerCount),
		logger:  logger.Get().Named("render-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewRenderWorker(
			queue,
			composer,
			sink,
			WithName("render-worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Shutdown stops every worker, waiting up to ctx for each.
func (p *Pool) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, worker := range p.workers {
		if err := worker.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	metrics.UpdateWorkerCount(0)
	return firstErr
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int { return len(p.workers) }
