package worker_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	queue "github.com/okian/relief/internal/adapters/mq/queue"
	worker "github.com/okian/relief/internal/adapters/mq/worker"
	"github.com/okian/relief/internal/domain/matching"
	logging "github.com/okian/relief/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	jobs chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(_ context.Context) <-chan queue.Job {
	return mq.jobs
}

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return nil
}

type mockScorer struct {
	calls atomic.Int64
}

func (ms *mockScorer) Score(_ matching.Target, c matching.Candidate) matching.Scored {
	ms.calls.Add(1)
	return matching.Scored{Candidate: c, Score: 0.5}
}

func receive(t *testing.T, ch <-chan queue.Outcome) queue.Outcome {
	t.Helper()
	select {
	case out := <-ch:
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outcome")
		return queue.Outcome{}
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading a mock queue", t, func() {
		mq := newMockQueue()
		scorer := &mockScorer{}
		w := worker.NewInMemoryWorker(mq, worker.WithName("w-test"), worker.WithLogger(logging.NewNop()))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a job is queued", func() {
			reply := make(chan queue.Outcome, 1)
			mq.jobs <- queue.Job{Index: 3, Scorer: scorer, Candidate: matching.Candidate{ID: "v1"}, Reply: reply}

			convey.Convey("Then the outcome is delivered with its index", func() {
				out := receive(t, reply)
				convey.So(out.Index, convey.ShouldEqual, 3)
				convey.So(out.Scored.Candidate.ID, convey.ShouldEqual, "v1")
				convey.So(out.Scored.Score, convey.ShouldEqual, 0.5)
				convey.So(scorer.calls.Load(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a job has no scorer", func() {
			bad := make(chan queue.Outcome, 1)
			mq.jobs <- queue.Job{Index: 1, Reply: bad}
			good := make(chan queue.Outcome, 1)
			mq.jobs <- queue.Job{Index: 2, Scorer: scorer, Reply: good}

			convey.Convey("Then it is dropped and the worker keeps going", func() {
				out := receive(t, good)
				convey.So(out.Index, convey.ShouldEqual, 2)
				convey.So(len(bad), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()

			convey.Convey("Then it stops cleanly and a second shutdown is harmless", func() {
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		pool := worker.NewPool(4, q, worker.WithLogger(logging.NewNop()))
		scorer := &mockScorer{}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When many jobs are enqueued", func() {
			const n = 40
			reply := make(chan queue.Outcome, n)
			for i := 0; i < n; i++ {
				ok := q.Enqueue(ctx, queue.Job{Index: i, Scorer: scorer, Reply: reply})
				convey.So(ok, convey.ShouldBeTrue)
			}

			convey.Convey("Then every index is answered exactly once", func() {
				seen := make(map[int]int, n)
				for i := 0; i < n; i++ {
					seen[receive(t, reply).Index]++
				}
				convey.So(len(seen), convey.ShouldEqual, n)
				for _, c := range seen {
					convey.So(c, convey.ShouldEqual, 1)
				}
			})
		})

		convey.Convey("When the pool shuts down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer scancel()
			err := pool.Shutdown(sctx)

			convey.Convey("Then the queue is closed and the pool reports stopped", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				select {
				case <-pool.Stopped():
				default:
					t.Error("expected stopped channel to be closed")
				}
				pool.Stop()
			})
		})
	})
}

func TestNewPoolDefaults(t *testing.T) {
	convey.Convey("Given a non-positive worker count", t, func() {
		pool := worker.NewPool(0, newMockQueue(), worker.WithLogger(logging.NewNop()))

		convey.Convey("Then the pool scales with the CPU count", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}

func TestPoolRunContextCancelled(t *testing.T) {
	convey.Convey("Given a started pool", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		pool := worker.NewPool(2, q, worker.WithLogger(logging.NewNop()))
		ctx, cancel := context.WithCancel(context.Background())
		pool.Start(ctx)

		convey.Convey("When its run context is cancelled", func() {
			cancel()

			convey.Convey("Then the pool reports stopped without Stop being called", func() {
				select {
				case <-pool.Stopped():
				case <-time.After(2 * time.Second):
					t.Error("expected stopped channel to close after cancellation")
				}
				pool.Stop()
				convey.So(pool.Active(), convey.ShouldEqual, 0)
			})
		})
	})
}
