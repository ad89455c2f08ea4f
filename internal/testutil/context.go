package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultTimeout bounds waits on dispatch activity in tests. Window timers
// are faked or run at millisecond scale, so anything slower than this is a
// hang, not a slow machine.
const DefaultTimeout = 2 * time.Second

// Context returns a context that expires after timeout (DefaultTimeout when
// timeout is not positive) and is cancelled when the test ends. The timeout
// is clamped below the test binary's own deadline so failures surface as
// test errors rather than a killed process.
func Context(t testing.TB, timeout time.Duration) context.Context {
	t.Helper()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if td, ok := t.(interface{ Deadline() (time.Time, bool) }); ok {
		if deadline, ok := td.Deadline(); ok {
			remaining := time.Until(deadline) - time.Second
			if remaining > 0 && remaining < timeout {
				timeout = remaining
			}
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
