package rately

import (
	"fmt"
	"time"
)

const (
	// DefaultCapacity is the number of jobs allowed per window when unset.
	DefaultCapacity = 10
	// DefaultWindow is the window length when unset.
	DefaultWindow = 10 * time.Second
	// DefaultGraceBuffer is the timer jitter allowance when unset.
	DefaultGraceBuffer = 200 * time.Millisecond
)

// Config fixes the window accounting for a Dispatcher at construction.
type Config struct {
	// Capacity is the maximum number of jobs reserved per window.
	// Zero is legal and starves the queue indefinitely.
	Capacity int
	// Window is the nominal window length.
	Window time.Duration
	// GraceBuffer is added to Window between ticks so a window is never
	// observed closed before its nominal duration has elapsed.
	GraceBuffer time.Duration
}

// DefaultConfig returns the documented dispatcher defaults.
func DefaultConfig() Config {
	return Config{
		Capacity:    DefaultCapacity,
		Window:      DefaultWindow,
		GraceBuffer: DefaultGraceBuffer,
	}
}

// validate rejects configurations with no defined scheduling behavior.
func (c Config) validate() error {
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must be non-negative, got %d", c.Capacity)
	}
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %s", c.Window)
	}
	if c.GraceBuffer < 0 {
		return fmt.Errorf("grace buffer must be non-negative, got %s", c.GraceBuffer)
	}
	return nil
}

// interval is the repeating tick period derived from the window.
func (c Config) interval() time.Duration {
	return c.Window + c.GraceBuffer
}

// ticker abstracts the repeating window timer so tests can drive ticks.
type ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// realTicker wraps time.Ticker behind the ticker interface.
type realTicker struct {
	t *time.Ticker
}

func (r realTicker) Chan() <-chan time.Time { return r.t.C }

func (r realTicker) Stop() { r.t.Stop() }

// newRealTicker creates a wall-clock ticker.
func newRealTicker(d time.Duration) ticker {
	return realTicker{t: time.NewTicker(d)}
}

// dispatcherConfig overrides dispatcher behavior for tests or tuning.
type dispatcherConfig struct {
	newTicker func(time.Duration) ticker
	observer  Observer
}
