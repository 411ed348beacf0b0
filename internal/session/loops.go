package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/production"
)

// RunTickLoop advances production every interval by the wall time elapsed
// since the previous tick, as reported by the session clock.
// Goroutine exits when ctx is cancelled.
func (s *Session) RunTickLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := s.clock.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := s.clock.Now()
			s.Tick(now.Sub(last))
			last = now
		}
	}
}

// RunAutoCollect collects on the auto-collector's cadence.
// The cadence can be changed at runtime through ac.SetInterval.
func (s *Session) RunAutoCollect(ctx context.Context, ac *production.AutoCollector) error {
	return ac.Run(ctx, func() {
		amount := s.Collect()
		slog.Debug("auto-collect", "session", s.ID(), "amount", amount)
	})
}

// RunSaveLoop persists snapshots requested through RequestSave and, if
// interval > 0, periodically. A final save runs when ctx is cancelled.
// Save failures are logged and never stop the loop.
func (s *Session) RunSaveLoop(ctx context.Context, interval time.Duration) error {
	var periodic <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		periodic = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			// Final save before exit; ctx is already done so use a fresh one.
			if err := s.Save(context.Background()); err != nil {
				slog.Error("final session save", "session", s.ID(), "error", err)
			} else {
				slog.Info("session saved on shutdown", "session", s.ID())
			}
			return ctx.Err()
		case snap := <-s.saveReq:
			if err := s.persist(ctx, snap); err != nil {
				slog.Error("requested session save", "session", snap.SessionID, "error", err)
			}
		case <-periodic:
			if err := s.Save(ctx); err != nil {
				slog.Error("periodic session save", "session", s.ID(), "error", err)
			}
		}
	}
}
