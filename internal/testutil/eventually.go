package testutil

import (
	"testing"
	"time"
)

// DefaultInterval is the polling interval used when none is given. It is
// deliberately short; conditions here usually settle within one window.
const DefaultInterval = 5 * time.Millisecond

// Eventually polls fn until it returns true, failing the test with msg once
// timeout elapses. A non-positive interval falls back to DefaultInterval.
func Eventually(t *testing.T, timeout, interval time.Duration, fn func() bool, msg string) {
	t.Helper()
	if interval <= 0 {
		interval = DefaultInterval
	}
	deadline := time.After(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if fn() {
			return
		}
		select {
		case <-deadline:
			if msg == "" {
				t.Fatalf("condition not met before timeout")
			}
			t.Fatalf("%s", msg)
		case <-ticker.C:
		}
	}
}
