// Package worker runs the pool that scores candidates off the job queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/relief/internal/adapters/mq/queue"
	"github.com/okian/relief/pkg/logger"
	"github.com/okian/relief/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU(); scoring is CPU bound
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// ErrNoScorer is returned for jobs submitted without a scorer.
var ErrNoScorer = errors.New("job has no scorer")

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker scores jobs until it is stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in hand is finished.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for jobs from an in-process queue.
type InMemoryWorker struct {
	queue Queue
	name  string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	active *atomic.Int64
	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading from q.
func NewInMemoryWorker(q Queue, opts ...Option) *InMemoryWorker {
	return newWorker(q, newSettings(opts))
}

func newWorker(q Queue, s settings) *InMemoryWorker {
	if s.name == "" {
		s.name = "worker"
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.active == nil {
		s.active = &atomic.Int64{}
	}
	return &InMemoryWorker{
		queue:    q,
		name:     s.name,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		active:   s.active,
		logger:   s.logger.Named(s.name),
	}
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		close(w.done)
	}()

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job",
					logger.String("volunteerId", job.Candidate.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process scores one job and delivers the outcome.
func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if job.Scorer == nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByType("scoring_error", "high")
		return ErrNoScorer
	}

	out := queue.Outcome{Index: job.Index, Scored: job.Scorer.Score(job.Target, job.Candidate)}
	select {
	case job.Reply <- out:
		return nil
	case <-ctx.Done():
		metrics.RecordWorkerError()
		return fmt.Errorf("deliver outcome for %s: %w", job.Candidate.ID, ctx.Err())
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdown     chan struct{}
	shutdownOnce sync.Once

	active atomic.Int64
	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive count scales with the CPU count.
func NewPool(workerCount int, q Queue, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
	}

	base := newSettings(opts)
	if base.logger == nil {
		base.logger = logger.Get()
	}
	pool.logger = base.logger.Named("worker-pool")

	for i := 0; i < workerCount; i++ {
		ws := base
		ws.name = "worker-" + strconv.Itoa(i)
		ws.active = &pool.active
		pool.workers[i] = newWorker(q, ws)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Active returns the number of workers whose loop is running.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Stopped is closed once the pool has been asked to stop.
func (p *Pool) Stopped() <-chan struct{} {
	return p.shutdown
}

// Start starts all workers in the pool.
// Workers stop with ctx; the pool then reports Stopped as if Stop had been
// called.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go func() {
		select {
		case <-ctx.Done():
			p.signal()
		case <-p.shutdown:
		}
	}()
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stop signals every worker and waits briefly for each to exit.
func (p *Pool) Stop() {
	p.signal()
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue, then stops every worker.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	p.signal()

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}

func (p *Pool) signal() {
	p.shutdownOnce.Do(func() {
		close(p.shutdown)
		for _, w := range p.workers {
			w.shutdownOnce.Do(func() { close(w.shutdown) })
		}
	})
}
