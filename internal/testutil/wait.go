package testutil

import (
	"testing"
	"time"
)

// WaitFor polls cond every millisecond until it returns true or timeout expires.
// Used instead of time.Sleep to synchronise with background loops.
func WaitFor(t testing.TB, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout after %v waiting for %s", timeout, msg)
		}
		<-ticker.C
	}
}
