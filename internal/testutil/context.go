package testutil

import (
	"context"
	"testing"
	"time"
)

// ContextWithTimeout bounds a store or session call made from a test.
// The context derives from tb.Context, so it also ends with the test.
func ContextWithTimeout(tb testing.TB, d time.Duration) context.Context {
	tb.Helper()
	ctx, cancel := context.WithTimeout(tb.Context(), d)
	tb.Cleanup(cancel)
	return ctx
}

// ContextWithCancel is used to stop a background loop (tick, save,
// auto-collect) in the middle of a test. Cancelling early is allowed;
// the cleanup cancel is a no-op then.
func ContextWithCancel(tb testing.TB) (context.Context, context.CancelFunc) {
	tb.Helper()
	ctx, cancel := context.WithCancel(tb.Context())
	tb.Cleanup(cancel)
	return ctx, cancel
}
