package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/almgong/rately/pkg/rately"
)

// stats tracks dispatcher counters via observer events.
type stats struct {
	mu        sync.Mutex
	log       zerolog.Logger
	submitted int
	completed int
	windows   int
	active    int
	depth     int
}

// OnSubmit records newly queued jobs.
func (s *stats) OnSubmit(queued, depth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted += queued
	s.depth = depth
}

// OnBatchStart records an opened window.
func (s *stats) OnBatchStart(size, active, depth int) {
	s.mu.Lock()
	s.windows++
	s.active = active
	s.depth = depth
	s.mu.Unlock()
	s.log.Debug().Int("batch", size).Int("active", active).Int("queued", depth).Msg("window opened")
}

// OnJobDone records a job completion.
func (s *stats) OnJobDone(active, depth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed++
	s.active = active
	s.depth = depth
}

// statsSnapshot is the JSON shape served by /stats.
type statsSnapshot struct {
	Submitted int `json:"submitted"`
	Completed int `json:"completed"`
	Windows   int `json:"windows"`
	Active    int `json:"active"`
	Queued    int `json:"queued"`
}

// snapshot returns a copy of the counters.
func (s *stats) snapshot() statsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return statsSnapshot{
		Submitted: s.submitted,
		Completed: s.completed,
		Windows:   s.windows,
		Active:    s.active,
		Queued:    s.depth,
	}
}

// server exposes the dispatcher over HTTP.
type server struct {
	dispatcher *rately.Dispatcher
	stats      *stats
	log        zerolog.Logger
}

// submitRequest is the JSON body accepted by POST /jobs.
type submitRequest struct {
	Count  int `json:"count"`
	HoldMS int `json:"hold_ms"`
}

// submitResponse acknowledges queued jobs with their assigned IDs.
type submitResponse struct {
	IDs []string `json:"ids"`
}

// routes registers the HTTP surface on a mux.
func (s *server) routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/jobs", s.handleJobs)
	mux.HandleFunc("/stats", s.handleStats)
}

// handleHealth reports liveness.
func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleJobs accepts simulated jobs and submits them to the dispatcher.
func (s *server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.HoldMS < 0 {
		http.Error(w, "hold_ms must be non-negative", http.StatusBadRequest)
		return
	}

	hold := time.Duration(req.HoldMS) * time.Millisecond
	ids := make([]string, 0, req.Count)
	jobs := make([]rately.Job, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		id := uuid.NewString()
		ids = append(ids, id)
		jobs = append(jobs, s.simulatedJob(id, hold))
	}
	s.dispatcher.Submit(jobs...)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(submitResponse{IDs: ids})
}

// handleStats serves the dispatcher counters.
func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.stats.snapshot())
}

// simulatedJob builds a job that holds its capacity slot for the requested
// duration before resolving to its ID.
func (s *server) simulatedJob(id string, hold time.Duration) rately.Job {
	log := s.log.With().Str("job", id).Logger()
	return rately.Job{
		Run: func() rately.Result {
			if hold <= 0 {
				return rately.Value(id)
			}
			ch := make(chan any, 1)
			time.AfterFunc(hold, func() { ch <- id })
			return rately.Pending(ch)
		},
		Done: func(v any) {
			log.Debug().Interface("value", v).Msg("job finished")
		},
	}
}
