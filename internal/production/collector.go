package production

import (
	"context"
	"sync/atomic"
	"time"
)

// Collect converts the accumulated quantity into currency.
// The returned state is empty and active again. Collecting nothing credits 0.
func Collect(state AccumulatorState, conversionRate float64) (float64, AccumulatorState) {
	var credited float64
	if state.Quantity > 0 && conversionRate > 0 {
		credited = Round(state.Quantity * conversionRate)
	}
	state.Quantity = 0
	state.Active = true
	return credited, state
}

// AutoCollector fires a collect callback on a wall-clock interval.
// The interval can be changed while Run is active and takes effect immediately.
type AutoCollector struct {
	interval atomic.Int64
	resetCh  chan struct{}
}

// NewAutoCollector creates an auto-collector. An interval <= 0 starts it paused.
func NewAutoCollector(interval time.Duration) *AutoCollector {
	a := &AutoCollector{resetCh: make(chan struct{}, 1)}
	a.interval.Store(int64(interval))
	return a
}

// Interval returns the current collect interval.
func (a *AutoCollector) Interval() time.Duration {
	return time.Duration(a.interval.Load())
}

// SetInterval reconfigures the collect cadence. d <= 0 pauses auto-collect.
func (a *AutoCollector) SetInterval(d time.Duration) {
	a.interval.Store(int64(d))
	select {
	case a.resetCh <- struct{}{}:
	default:
	}
}

// Run calls collect every Interval until ctx is cancelled.
func (a *AutoCollector) Run(ctx context.Context, collect func()) error {
	for {
		var (
			timer *time.Timer
			fire  <-chan time.Time
		)
		if d := a.Interval(); d > 0 {
			timer = time.NewTimer(d)
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-a.resetCh:
			if timer != nil {
				timer.Stop()
			}
		case <-fire:
			collect()
		}
	}
}
