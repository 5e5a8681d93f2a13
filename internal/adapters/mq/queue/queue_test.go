package queue

import (
	"context"
	"testing"

	"github.com/okian/relief/internal/domain/matching"
)

func job(i int) Job {
	return Job{Index: i, Candidate: matching.Candidate{ID: "v"}}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if q.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Capacity())
	}

	if !q.Enqueue(ctx, job(1)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	j := <-q.Dequeue(ctx)
	if j.Index != 1 {
		t.Errorf("expected job 1, got %d", j.Index)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, job(1)) || !q.Enqueue(ctx, job(2)) {
		t.Fatal("expected the first two enqueues to succeed")
	}
	if q.Enqueue(ctx, job(3)) {
		t.Error("expected enqueue to fail when full")
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, job(1)) {
		t.Error("expected enqueue to fail with a cancelled context")
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()
	_ = q.Enqueue(ctx, job(1))

	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if q.Enqueue(ctx, job(2)) {
		t.Error("expected enqueue to fail after close")
	}

	// buffered jobs are still delivered, then the channel closes
	ch := q.Dequeue(ctx)
	if j, ok := <-ch; !ok || j.Index != 1 {
		t.Errorf("expected buffered job 1, got %v %v", j.Index, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
}

func TestInMemoryQueue_DefaultCapacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(-1))
	if q.Capacity() != DefaultCapacity {
		t.Errorf("expected default capacity, got %d", q.Capacity())
	}
}

func TestInMemoryQueue_Submit(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(3))
	ctx := context.Background()

	if n := q.Submit(ctx, []Job{job(0), job(1)}); n != 2 {
		t.Fatalf("expected 2 accepted, got %d", n)
	}
	// only one slot left: the prefix is accepted, the rest refused
	if n := q.Submit(ctx, []Job{job(2), job(3), job(4)}); n != 1 {
		t.Fatalf("expected 1 accepted, got %d", n)
	}
	if l := q.Len(ctx); l != 3 {
		t.Errorf("expected length 3, got %d", l)
	}
	for want := 0; want < 3; want++ {
		if j := <-q.Dequeue(ctx); j.Index != want {
			t.Errorf("expected job %d, got %d", want, j.Index)
		}
	}
	if n := q.Submit(ctx, nil); n != 0 {
		t.Errorf("expected 0 for an empty batch, got %d", n)
	}

	_ = q.Close()
	if n := q.Submit(ctx, []Job{job(5)}); n != 0 {
		t.Errorf("expected a closed queue to refuse, got %d", n)
	}
}
