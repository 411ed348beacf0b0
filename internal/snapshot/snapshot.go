// Package snapshot defines the persisted form of a truck session and the
// stores that keep it.
//
// A Snapshot is an immutable point-in-time copy of the production core.
// Field names are stable across versions: unknown fields are ignored on
// load and missing fields fall back to Default().
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/production"
)

// CurrentVersion is the version written by Encode.
//
//	1: flat record (quantity, capacity, rate, per-track level/cost, balance)
//	2: nested accumulator and tracks, efficiency, lifetime totals, saved_at
const CurrentVersion = 2

var (
	// ErrNotFound is returned by stores when a session has never been saved.
	ErrNotFound = errors.New("snapshot not found")
	// ErrCorrupt is returned for undecodable data or failed checksums.
	ErrCorrupt = errors.New("corrupt snapshot")
	// ErrUnsupportedVersion is returned for saves written by a newer build.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

// Store persists snapshots. Implementations may be slow; callers bound them with ctx.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, sessionID string) (Snapshot, error)
}

// Tracks holds one UpgradeTrack per upgradeable parameter.
// A zero track means "not saved" and is replaced by the configured base track on restore.
type Tracks struct {
	Rate     production.UpgradeTrack `json:"rate"`
	Capacity production.UpgradeTrack `json:"capacity"`
}

// Snapshot is the complete persisted state of a session.
type Snapshot struct {
	Version   int       `json:"version"`
	SessionID string    `json:"session_id"`
	SavedAt   time.Time `json:"saved_at"`

	Accumulator production.AccumulatorState `json:"accumulator"`
	Efficiency  float64                     `json:"efficiency"`
	Tracks      Tracks                      `json:"tracks"`

	Balance     float64 `json:"balance"`
	TotalEarned float64 `json:"total_earned"`
	TotalSpent  float64 `json:"total_spent"`
}

// Default returns the values used for fields missing from a saved record.
func Default() Snapshot {
	return Snapshot{
		Version:     CurrentVersion,
		Accumulator: production.AccumulatorState{Active: true},
		Efficiency:  1.0,
	}
}

// Track returns the saved track of kind.
func (s Snapshot) Track(kind production.TrackKind) (production.UpgradeTrack, bool) {
	switch kind {
	case production.TrackRate:
		return s.Tracks.Rate, true
	case production.TrackCapacity:
		return s.Tracks.Capacity, true
	default:
		return production.UpgradeTrack{}, false
	}
}

// SetTrack stores track under kind. Unknown kinds are ignored.
func (s *Snapshot) SetTrack(kind production.TrackKind, track production.UpgradeTrack) {
	switch kind {
	case production.TrackRate:
		s.Tracks.Rate = track
	case production.TrackCapacity:
		s.Tracks.Capacity = track
	}
}

// Validate checks the identity fields every store relies on.
func (s Snapshot) Validate() error {
	if _, err := uuid.Parse(s.SessionID); err != nil {
		return fmt.Errorf("%w: session id %q: %v", ErrCorrupt, s.SessionID, err)
	}
	if s.Version < 1 || s.Version > CurrentVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	return nil
}
