package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/event"
	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/production"
	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/snapshot"
)

// Snapshot returns an immutable copy of the session state.
func (s *Session) Snapshot() snapshot.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// snapshotLocked builds a snapshot. Caller holds mu.
func (s *Session) snapshotLocked() snapshot.Snapshot {
	snap := snapshot.Snapshot{
		Version:     snapshot.CurrentVersion,
		SessionID:   s.id,
		SavedAt:     s.clock.Now().UTC().Truncate(time.Microsecond),
		Accumulator: s.acc.State(),
		Efficiency:  s.acc.Efficiency(),
		Balance:     s.wallet.Balance(),
	}
	for _, kind := range production.Kinds() {
		if track, ok := s.ledger.Track(kind); ok {
			snap.SetTrack(kind, track)
		}
	}
	if book, ok := s.wallet.(accountBook); ok {
		snap.TotalEarned, snap.TotalSpent = book.Totals()
	}
	return snap
}

// Restore replaces the session state with snap and credits offline progress:
// the time since snap.SavedAt, capped at the economy's MaxOfflineProgress.
// Tracks missing from snap start at the configured base track.
// On error the session is left untouched.
func (s *Session) Restore(snap snapshot.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("%w: %w", production.ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := production.NewAccumulator(0, 0, 1)
	if err != nil {
		return err
	}
	if err := acc.Restore(snap.Accumulator, snap.Efficiency); err != nil {
		return fmt.Errorf("%w: restore accumulator: %w", production.ErrPersistence, err)
	}

	ledger, err := production.NewLedger(s.economy.TrackConfigs())
	if err != nil {
		return err
	}
	for _, kind := range production.Kinds() {
		track, _ := snap.Track(kind)
		if track == (production.UpgradeTrack{}) {
			continue
		}
		if err := ledger.Restore(kind, track); err != nil {
			return fmt.Errorf("%w: restore %s track: %w", production.ErrPersistence, kind, err)
		}
	}

	var offline time.Duration
	if !snap.SavedAt.IsZero() {
		offline = s.clock.Now().Sub(snap.SavedAt)
		if offline > s.economy.MaxOfflineProgress {
			offline = s.economy.MaxOfflineProgress
		}
		if offline > 0 {
			acc.Advance(offline.Seconds())
		}
	}

	s.id = snap.SessionID
	s.acc = acc
	s.ledger = ledger

	if book, ok := s.wallet.(accountBook); ok {
		book.Restore(snap.Balance, snap.TotalEarned, snap.TotalSpent)
	} else {
		slog.Warn("currency cannot restore balances, keeping current wallet", "session", s.id)
	}

	state := acc.State()
	s.notifier.Notify(event.NewProductionUpdated(state.Quantity, state.Capacity))

	slog.Info("session restored",
		"session", s.id,
		"quantity", state.Quantity,
		"capacity", state.Capacity,
		"rate", state.Rate,
		"offline", offline)

	return nil
}

// Load restores the session from the store.
// Returns false with a nil error when nothing was saved yet for this session id.
func (s *Session) Load(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, fmt.Errorf("%w: no snapshot store configured", production.ErrPersistence)
	}

	ctx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()

	snap, err := s.store.Load(ctx, s.ID())
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: load session %s: %w", production.ErrPersistence, s.ID(), err)
	}
	if err := s.Restore(snap); err != nil {
		return false, err
	}
	return true, nil
}

// Save synchronously persists a snapshot, bounded by the save timeout.
// Failures are reported as production.ErrPersistence and a save_failed event;
// in-memory state is never affected.
func (s *Session) Save(ctx context.Context) error {
	return s.persist(ctx, s.Snapshot())
}

// RequestSave queues a snapshot for the save loop without blocking.
// A pending request not yet picked up is replaced by the newer snapshot.
func (s *Session) RequestSave() {
	snap := s.Snapshot()
	for {
		select {
		case s.saveReq <- snap:
			return
		default:
		}
		select {
		case <-s.saveReq:
		default:
		}
	}
}

func (s *Session) persist(ctx context.Context, snap snapshot.Snapshot) error {
	if s.store == nil {
		return fmt.Errorf("%w: no snapshot store configured", production.ErrPersistence)
	}

	ctx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()

	if err := s.store.Save(ctx, snap); err != nil {
		err = fmt.Errorf("%w: save session %s: %w", production.ErrPersistence, snap.SessionID, err)
		s.notifier.Notify(event.NewSaveFailed(err))
		return err
	}
	return nil
}
