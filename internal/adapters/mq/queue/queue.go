// Package queue carries scoring jobs from a match request to the worker pool.
package queue

import (
	"context"
	"sync"

	"github.com/okian/relief/internal/domain/matching"
	"github.com/okian/relief/pkg/metrics"
)

// DefaultCapacity bounds a queue built without WithCapacity.
const DefaultCapacity = 10_000

// Scorer computes one candidate's scores. *matching.Engine satisfies it.
type Scorer interface {
	Score(t matching.Target, c matching.Candidate) matching.Scored
}

// Outcome is a scored candidate sent back to the requester.
type Outcome struct {
	Index  int
	Scored matching.Scored
}

// Job asks a worker to score one candidate and reply on Reply. Reply must
// have room for the outcome; requesters size it to the number of jobs.
type Job struct {
	Index     int
	Scorer    Scorer
	Target    matching.Target
	Candidate matching.Candidate
	Reply     chan<- Outcome
}

// Queue is a bounded FIFO of scoring jobs. Producers never block: a full or
// closed queue refuses work and the producer scores it itself.
type Queue interface {
	Enqueue(ctx context.Context, j Job) bool
	// Submit enqueues a prefix of jobs and reports its length.
	Submit(ctx context.Context, jobs []Job) int
	// Dequeue is closed once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Job
	Len(ctx context.Context) int
	Close() error
	IsClosed() bool
}

// Option configures an InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets how many jobs may wait at once. Non-positive values keep
// DefaultCapacity.
func WithCapacity(n int) Option {
	return func(q *InMemoryQueue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates an open queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds one job without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) bool { //nolint:gocritic // hugeParam: Job travels by value over the channel
	return q.Submit(ctx, []Job{j}) == 1
}

// Submit enqueues jobs in order until the queue is full or closed, or ctx is
// done. It returns n: jobs[:n] were accepted and jobs[n:] were not.
func (q *InMemoryQueue) Submit(ctx context.Context, jobs []Job) int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	n := 0
	if !q.closed && ctx.Err() == nil {
	fill:
		for n < len(jobs) {
			select {
			case q.jobs <- jobs[n]:
				n++
				metrics.RecordQueueEnqueue()
			default:
				break fill
			}
		}
	}
	for i := n; i < len(jobs); i++ {
		metrics.RecordQueueEnqueueError()
	}
	metrics.UpdateQueueSize(len(q.jobs))
	return n
}

// Dequeue returns the job channel.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Job {
	return q.jobs
}

// Len reports the jobs waiting and refreshes the size gauge.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	return size
}

// Capacity is the configured bound.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close stops intake. Jobs already queued are still delivered. Closing twice
// is a no-op.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
