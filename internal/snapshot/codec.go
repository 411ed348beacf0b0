package snapshot

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/production"
)

// Encode serializes snap at CurrentVersion.
// float64 values are written in shortest round-trip form, so Decode restores them exactly.
func Encode(snap Snapshot) ([]byte, error) {
	snap.Version = CurrentVersion
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot of any supported version.
// Missing fields keep their Default() values; unknown fields are ignored.
func Decode(data []byte) (Snapshot, error) {
	var probe struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if probe.Version == nil {
		return Snapshot{}, fmt.Errorf("%w: missing version", ErrCorrupt)
	}

	switch v := *probe.Version; {
	case v == 1:
		return decodeV1(data)
	case v == CurrentVersion:
		snap := Default()
		if err := json.Unmarshal(data, &snap); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return snap, nil
	default:
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
}

// snapshotV1 is the flat dictionary-shaped record of the first save format.
type snapshotV1 struct {
	SessionID     string  `json:"session_id"`
	Quantity      float64 `json:"current_quantity"`
	Capacity      int     `json:"capacity"`
	Rate          float64 `json:"rate"`
	Active        *bool   `json:"active"`
	RateLevel     int     `json:"rate_level"`
	RateCost      float64 `json:"rate_cost"`
	CapacityLevel int     `json:"capacity_level"`
	CapacityCost  float64 `json:"capacity_cost"`
	Balance       float64 `json:"balance"`
}

// decodeV1 upgrades a version 1 record. Fields v1 never had keep defaults:
// efficiency 1.0, zero totals, zero SavedAt (no offline progress).
func decodeV1(data []byte) (Snapshot, error) {
	var old snapshotV1
	if err := json.Unmarshal(data, &old); err != nil {
		return Snapshot{}, fmt.Errorf("%w: v1: %v", ErrCorrupt, err)
	}

	snap := Default()
	snap.SessionID = old.SessionID
	snap.Accumulator = production.AccumulatorState{
		Quantity: old.Quantity,
		Capacity: old.Capacity,
		Rate:     old.Rate,
		Active:   true,
	}
	if old.Active != nil {
		snap.Accumulator.Active = *old.Active
	}
	snap.Tracks.Rate = production.UpgradeTrack{Level: old.RateLevel, NextCost: old.RateCost}
	snap.Tracks.Capacity = production.UpgradeTrack{Level: old.CapacityLevel, NextCost: old.CapacityCost}
	snap.Balance = old.Balance
	return snap, nil
}

// envelope wraps an encoded snapshot with its checksum on disk.
type envelope struct {
	Checksum string          `json:"checksum"`
	Payload  json.RawMessage `json:"payload"`
}

// Seal encodes snap and wraps it with a BLAKE2b-256 checksum.
func Seal(snap Snapshot) ([]byte, error) {
	payload, err := Encode(snap)
	if err != nil {
		return nil, err
	}
	sum := blake2b.Sum256(payload)
	data, err := json.Marshal(envelope{
		Checksum: hex.EncodeToString(sum[:]),
		Payload:  payload,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding envelope: %w", err)
	}
	return data, nil
}

// Open verifies the checksum of sealed data and decodes the payload.
func Open(data []byte) (Snapshot, error) {
	payload, err := verify(data)
	if err != nil {
		return Snapshot{}, err
	}
	return Decode(payload)
}

// Verify checks the checksum of sealed data without decoding the payload.
func Verify(data []byte) error {
	_, err := verify(data)
	return err
}

func verify(data []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrCorrupt, err)
	}
	if len(env.Payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrCorrupt)
	}
	sum := blake2b.Sum256(env.Payload)
	if hex.EncodeToString(sum[:]) != env.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	return env.Payload, nil
}
