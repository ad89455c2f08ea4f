package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/almgong/rately/internal/testutil"
	"github.com/almgong/rately/pkg/rately"
)

// newTestServer builds a handler backed by a small concurrent dispatcher.
func newTestServer(t *testing.T, capacity int) (*httptest.Server, *stats) {
	t.Helper()
	st := &stats{log: zerolog.Nop()}
	dispatcher, err := rately.NewConcurrentWithObserver(rately.Config{
		Capacity:    capacity,
		Window:      50 * time.Millisecond,
		GraceBuffer: 10 * time.Millisecond,
	}, st)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	t.Cleanup(dispatcher.Stop)

	srv := &server{dispatcher: dispatcher, stats: st, log: zerolog.Nop()}
	mux := http.NewServeMux()
	srv.routes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, st
}

func TestHandleJobs_SubmitsAndCompletes(t *testing.T) {
	ts, st := newTestServer(t, 5)

	res, err := http.Post(ts.URL+"/jobs", "application/json", strings.NewReader(`{"count":3}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", res.StatusCode)
	}
	var body submitResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.IDs) != 3 {
		t.Fatalf("expected 3 job IDs, got %d", len(body.IDs))
	}

	testutil.Eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		snap := st.snapshot()
		return snap.Completed == 3
	}, "jobs never completed")
}

func TestHandleJobs_WindowsThrottleBursts(t *testing.T) {
	ts, st := newTestServer(t, 2)

	res, err := http.Post(ts.URL+"/jobs", "application/json", strings.NewReader(`{"count":5,"hold_ms":5}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	res.Body.Close()

	testutil.Eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		snap := st.snapshot()
		return snap.Completed == 5 && snap.Windows >= 3
	}, "expected 5 completions across at least 3 windows")
}

func TestHandleStats_ReportsCounters(t *testing.T) {
	ts, st := newTestServer(t, 5)

	res, err := http.Post(ts.URL+"/jobs", "application/json", strings.NewReader(`{"count":2}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	res.Body.Close()
	testutil.Eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		return st.snapshot().Completed == 2
	}, "jobs never completed")

	statsRes, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	defer statsRes.Body.Close()
	var snap statsSnapshot
	if err := json.NewDecoder(statsRes.Body).Decode(&snap); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if snap.Submitted != 2 || snap.Completed != 2 {
		t.Fatalf("unexpected stats: %+v", snap)
	}
}

func TestHandleJobs_RejectsBadRequests(t *testing.T) {
	ts, _ := newTestServer(t, 5)

	res, err := http.Post(ts.URL+"/jobs", "application/json", strings.NewReader("not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid body, got %d", res.StatusCode)
	}

	res, err = http.Post(ts.URL+"/jobs", "application/json", strings.NewReader(`{"hold_ms":-5}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative hold, got %d", res.StatusCode)
	}

	res, err = http.Get(ts.URL + "/jobs")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET /jobs, got %d", res.StatusCode)
	}
}

func TestHandleHealth(t *testing.T) {
	ts, _ := newTestServer(t, 1)
	res, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
}
