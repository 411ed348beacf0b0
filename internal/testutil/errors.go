package testutil

import "errors"

// ErrSimulated is what MemoryStore and other fakes fail with when a test
// injects a store outage. Assert on it with errors.Is through the wrapping
// added by the session (production.ErrPersistence).
var ErrSimulated = errors.New("testutil: simulated store outage")
