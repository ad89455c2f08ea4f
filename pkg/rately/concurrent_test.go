package rately

import (
	"testing"
	"time"
)

func TestConcurrent_BatchRunsInParallel(t *testing.T) {
	rec := newRecorder()
	gates := []chan any{make(chan any), make(chan any), make(chan any)}
	started := make(chan struct{}, 3)
	d, _ := newTestDispatcher(t, concurrentPolicy{}, Config{Capacity: 3, Window: time.Second}, nil)

	jobs := make([]Job, 0, 3)
	for _, gate := range gates {
		gate := gate
		jobs = append(jobs, Job{
			Run:  func() Result { started <- struct{}{}; return Pending(gate) },
			Done: rec.done,
		})
	}
	d.Submit(jobs...)

	// All three must start without waiting on each other.
	waitForCount(t, started, 3, time.Second)
}

func TestConcurrent_CompletionsFreeSlotsIndependently(t *testing.T) {
	rec := newRecorder()
	slow := make(chan any)
	d, src := newTestDispatcher(t, concurrentPolicy{}, Config{Capacity: 3, Window: time.Second}, nil)

	d.Submit(
		gatedJob(rec, slow),
		valueJob(rec, "fast-1"),
		valueJob(rec, "fast-2"),
	)
	// The two fast jobs complete out from under the slow sibling.
	waitForCount(t, rec.signal, 2, time.Second)

	started := make(chan struct{}, 4)
	for i := 0; i < 4; i++ {
		d.Submit(Job{Run: func() Result { started <- struct{}{}; return Value(nil) }, Done: rec.done})
	}
	// Two freed slots are visible to the next window; the slow job still
	// holds the third.
	src.last().fire()
	waitForCount(t, started, 2, time.Second)
	expectNoSignal(t, started, 30*time.Millisecond)

	close(slow)
	waitForCount(t, rec.signal, 1, time.Second)
}

func TestConcurrent_CompletionOrderUnconstrained(t *testing.T) {
	rec := newRecorder()
	first := make(chan any)
	d, _ := newTestDispatcher(t, concurrentPolicy{}, Config{Capacity: 2, Window: time.Second}, nil)

	d.Submit(gatedJob(rec, first), valueJob(rec, "second"))
	waitForCount(t, rec.signal, 1, time.Second)
	if got := rec.snapshot(); got[0] != "second" {
		t.Fatalf("expected the later job to complete first, got %v", got)
	}
	first <- "first"
	waitForCount(t, rec.signal, 1, time.Second)
}
