// Package rately dispatches submitted jobs without exceeding a fixed number
// of operations per fixed time window. A Dispatcher owns a FIFO waiting
// queue, a repeating window timer, and the capacity accounting for the
// current window; the chosen policy decides whether a reserved batch runs
// in parallel or strictly one job at a time.
package rately

import (
	"sync"
	"time"
)

// Dispatcher schedules submitted jobs against windowed capacity. All mutable
// state is owned by the instance and guarded by one mutex; independent
// instances never interfere.
type Dispatcher struct {
	mu        sync.Mutex
	cfg       Config
	policy    policy
	observer  Observer
	newTicker func(time.Duration) ticker

	queue  []Job
	active int
	tk     ticker
	stopCh chan struct{}
}

// NewConcurrent creates a Dispatcher that runs each reserved batch in
// parallel, up to Capacity jobs per window.
func NewConcurrent(cfg Config) (*Dispatcher, error) {
	return newDispatcher(concurrentPolicy{}, cfg, dispatcherConfig{})
}

// NewConcurrentWithObserver creates a concurrent Dispatcher with an observer.
func NewConcurrentWithObserver(cfg Config, observer Observer) (*Dispatcher, error) {
	return newDispatcher(concurrentPolicy{}, cfg, dispatcherConfig{observer: observer})
}

// NewSerial creates a Dispatcher that reserves windowed batches but executes
// the reserved jobs strictly one at a time, in submission order, across the
// dispatcher's whole lifetime.
func NewSerial(cfg Config) (*Dispatcher, error) {
	return newDispatcher(&serialPolicy{}, cfg, dispatcherConfig{})
}

// NewSerialWithObserver creates a serial Dispatcher with an observer.
func NewSerialWithObserver(cfg Config, observer Observer) (*Dispatcher, error) {
	return newDispatcher(&serialPolicy{}, cfg, dispatcherConfig{observer: observer})
}

// newDispatcher builds a Dispatcher with custom wiring, primarily for tests.
func newDispatcher(p policy, cfg Config, dcfg dispatcherConfig) (*Dispatcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if dcfg.newTicker == nil {
		dcfg.newTicker = newRealTicker
	}
	return &Dispatcher{
		cfg:       cfg,
		policy:    p,
		observer:  dcfg.observer,
		newTicker: dcfg.newTicker,
	}, nil
}

// Submit appends jobs to the waiting queue, preserving argument order and
// submission order across calls. On a dispatcher that has not started it
// synchronously runs an immediate first burst and starts the window timer;
// on a started dispatcher the jobs wait for the next tick. Submitting zero
// jobs is a no-op.
func (d *Dispatcher) Submit(jobs ...Job) {
	if len(jobs) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, jobs...)
	if d.observer != nil {
		d.observer.OnSubmit(len(jobs), len(d.queue))
	}
	if d.tk == nil {
		d.tickLocked()
		d.startLocked()
	}
}

// Start begins the repeating window timer. It is idempotent; the timer fires
// every Window+GraceBuffer. Submit starts the timer implicitly, so calling
// Start directly is rarely needed.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.startLocked()
}

// Stop cancels the window timer. It is idempotent. Jobs already reserved or
// in flight are unaffected; Stop only prevents future ticks from starting
// new batches. Queued jobs remain queued and a later Submit restarts
// dispatch.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// stopLocked tears down the ticker and its drain loop.
func (d *Dispatcher) stopLocked() {
	if d.tk == nil {
		return
	}
	d.tk.Stop()
	close(d.stopCh)
	d.tk = nil
	d.stopCh = nil
}

// HasStarted reports whether the window timer is currently running.
func (d *Dispatcher) HasStarted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tk != nil
}

// startLocked creates the ticker and its drain loop if none is running.
func (d *Dispatcher) startLocked() {
	if d.tk != nil {
		return
	}
	d.tk = d.newTicker(d.cfg.interval())
	d.stopCh = make(chan struct{})
	go d.loop(d.tk, d.stopCh)
}

// loop forwards ticker fires to the tick handler until stopped.
func (d *Dispatcher) loop(tk ticker, stopCh chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		case <-tk.Chan():
			d.mu.Lock()
			// A fire can already be in flight while Stop runs; only the
			// ticker currently installed may open a window.
			if d.tk == tk {
				d.tickLocked()
			}
			d.mu.Unlock()
		}
	}
}

// tickLocked opens a window: it reserves up to the remaining capacity of
// queued jobs as one batch and hands the batch to the policy. The active
// count is raised by the batch size before any job begins executing, so
// submissions observed during this tick see the correct remaining capacity.
// A batch of zero leaves the queue untouched for the next window; this is
// the carry-over path when in-flight jobs still hold slots.
func (d *Dispatcher) tickLocked() {
	available := d.cfg.Capacity - d.active
	batch := len(d.queue)
	if batch > available {
		batch = available
	}
	if batch <= 0 {
		return
	}
	jobs := make([]Job, batch)
	copy(jobs, d.queue)
	d.queue = d.queue[batch:]
	d.active += batch
	if d.observer != nil {
		d.observer.OnBatchStart(batch, d.active, len(d.queue))
	}
	d.policy.dispatch(d, jobs)
}

// release returns one reserved slot after a job's runner completes. Freed
// capacity is observed by the next tick; completion never triggers an
// immediate dispatch.
func (d *Dispatcher) release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active--
	if d.observer != nil {
		d.observer.OnJobDone(d.active, len(d.queue))
	}
}
