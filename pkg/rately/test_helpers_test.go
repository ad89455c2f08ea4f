package rately

import (
	"sync"
	"testing"
	"time"

	"github.com/almgong/rately/internal/testutil"
)

// fakeTicker is a manually fired window timer.
type fakeTicker struct {
	interval time.Duration
	ch       chan time.Time
	stopped  bool
	mu       sync.Mutex
}

func newFakeTicker(d time.Duration) *fakeTicker {
	return &fakeTicker{interval: d, ch: make(chan time.Time)}
}

func (f *fakeTicker) Chan() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

// fire simulates one timer fire; it blocks until the drain loop receives it.
func (f *fakeTicker) fire() {
	f.ch <- time.Now()
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// tickerSource hands out fake tickers and remembers the latest one.
type tickerSource struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (s *tickerSource) New(d time.Duration) ticker {
	s.mu.Lock()
	defer s.mu.Unlock()
	tk := newFakeTicker(d)
	s.tickers = append(s.tickers, tk)
	return tk
}

func (s *tickerSource) last() *fakeTicker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tickers) == 0 {
		return nil
	}
	return s.tickers[len(s.tickers)-1]
}

func (s *tickerSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickers)
}

// recorder collects resolved values in completion order.
type recorder struct {
	mu     sync.Mutex
	values []any
	signal chan struct{}
}

func newRecorder() *recorder {
	return &recorder{signal: make(chan struct{}, 64)}
}

func (r *recorder) done(v any) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
	r.signal <- struct{}{}
}

func (r *recorder) snapshot() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.values...)
}

// waitFor waits for a signal on ch or fails after timeout.
func waitFor(t *testing.T, ch <-chan struct{}, timeout time.Duration) {
	t.Helper()
	ctx := testutil.Context(t, timeout)
	select {
	case <-ctx.Done():
		t.Fatalf("timeout waiting for signal")
	case <-ch:
	}
}

// waitForCount waits for count signals or fails after timeout.
func waitForCount(t *testing.T, ch <-chan struct{}, count int, timeout time.Duration) {
	t.Helper()
	if count <= 0 {
		return
	}
	ctx := testutil.Context(t, timeout)
	seen := 0
	for seen < count {
		select {
		case <-ctx.Done():
			t.Fatalf("timeout waiting for %d signals (got %d)", count, seen)
		case <-ch:
			seen++
		}
	}
}

// expectNoSignal asserts that ch stays quiet for the whole wait.
func expectNoSignal(t *testing.T, ch <-chan struct{}, wait time.Duration) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("unexpected signal")
	case <-time.After(wait):
	}
}

// newTestDispatcher builds a dispatcher with a fake ticker source.
func newTestDispatcher(t *testing.T, p policy, cfg Config, observer Observer) (*Dispatcher, *tickerSource) {
	t.Helper()
	src := &tickerSource{}
	d, err := newDispatcher(p, cfg, dispatcherConfig{newTicker: src.New, observer: observer})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	t.Cleanup(d.Stop)
	return d, src
}
