package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/event"
	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/snapshot"
)

// MemoryStore is an in-memory snapshot.Store for unit tests.
// Set Err to make every call fail; set Block to make Save wait for ctx.
type MemoryStore struct {
	mu        sync.Mutex
	snapshots map[string]snapshot.Snapshot
	saves     int

	Err   error
	Block bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]snapshot.Snapshot)}
}

// Save stores a copy of snap.
func (m *MemoryStore) Save(ctx context.Context, snap snapshot.Snapshot) error {
	m.mu.Lock()
	block, err := m.Block, m.Err
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snap.SessionID] = snap
	m.saves++
	return nil
}

// Load returns the stored snapshot or snapshot.ErrNotFound.
func (m *MemoryStore) Load(_ context.Context, sessionID string) (snapshot.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return snapshot.Snapshot{}, m.Err
	}
	snap, ok := m.snapshots[sessionID]
	if !ok {
		return snapshot.Snapshot{}, fmt.Errorf("%w: session %s", snapshot.ErrNotFound, sessionID)
	}
	return snap, nil
}

// Put seeds a snapshot directly.
func (m *MemoryStore) Put(snap snapshot.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snap.SessionID] = snap
}

// SetErr changes the failure injected into later calls.
func (m *MemoryStore) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// SetBlock makes Save wait until its context is done.
func (m *MemoryStore) SetBlock(block bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Block = block
}

// SaveCount returns the number of successful saves.
func (m *MemoryStore) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Recorder is an event.Notifier that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []event.Event
}

// Notify records ev.
func (r *Recorder) Notify(ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of type typ.
func (r *Recorder) OfType(typ event.Type) []event.Event {
	var out []event.Event
	for _, ev := range r.Events() {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
