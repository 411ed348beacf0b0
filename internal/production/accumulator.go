// Package production implements the idle production core of the food truck:
// an Accumulator that fills over time up to a capacity, a Collector that
// drains it into currency, and an upgrade Ledger that sells rate and
// capacity increases at escalating cost.
//
// Types here are not safe for concurrent use. The session package serializes access.
package production

import "fmt"

// AccumulatorState is the persisted state of an Accumulator.
// Quantity is always within [0, Capacity].
type AccumulatorState struct {
	Quantity float64 `json:"current_quantity"`
	Capacity int     `json:"capacity"`
	Rate     float64 `json:"rate"` // units per second
	Active   bool    `json:"active"`
}

// Full reports whether the quantity has reached capacity.
func (s AccumulatorState) Full() bool {
	return s.Quantity >= float64(s.Capacity)
}

// Advance returns s after elapsed seconds of production at the given efficiency.
// Growth stops at capacity and clears Active. An inactive state does not grow.
func (s AccumulatorState) Advance(elapsed, efficiency float64) AccumulatorState {
	if !(elapsed > 0) || !s.Active {
		return s
	}

	limit := float64(s.Capacity)
	if limit <= 0 {
		s.Quantity = 0
		s.Active = false
		return s
	}

	// Zero rate or efficiency times an infinite elapsed is NaN, not growth.
	gain := s.Rate * elapsed * efficiency
	if !(gain > 0) {
		return s
	}

	s.Quantity += gain
	if s.Quantity >= limit {
		s.Quantity = limit
		s.Active = false
	}
	return s
}

// Accumulator tracks a bounded quantity growing at Rate*efficiency per second.
type Accumulator struct {
	state      AccumulatorState
	efficiency float64
}

// NewAccumulator creates an empty, active accumulator.
// Negative or non-finite parameters are rejected with ErrConfiguration.
func NewAccumulator(capacity int, rate, efficiency float64) (*Accumulator, error) {
	if err := validateParams(capacity, rate, efficiency); err != nil {
		return nil, err
	}
	return &Accumulator{
		state: AccumulatorState{
			Capacity: capacity,
			Rate:     rate,
			Active:   true,
		},
		efficiency: efficiency,
	}, nil
}

func validateParams(capacity int, rate, efficiency float64) error {
	if capacity < 0 {
		return fmt.Errorf("%w: capacity %d is negative", ErrConfiguration, capacity)
	}
	if !finite(rate) || rate < 0 {
		return fmt.Errorf("%w: rate %v must be a non-negative number", ErrConfiguration, rate)
	}
	if !finite(efficiency) || efficiency < 0 {
		return fmt.Errorf("%w: efficiency %v must be a non-negative number", ErrConfiguration, efficiency)
	}
	return nil
}

// Advance adds elapsed seconds of production and returns the new state.
func (a *Accumulator) Advance(elapsed float64) AccumulatorState {
	a.state = a.state.Advance(elapsed, a.efficiency)
	return a.state
}

// Drain collects the accumulated quantity at conversionRate and resets production.
func (a *Accumulator) Drain(conversionRate float64) float64 {
	credited, next := Collect(a.state, conversionRate)
	a.state = next
	return credited
}

// State returns a copy of the current state.
func (a *Accumulator) State() AccumulatorState { return a.state }

// Efficiency returns the production multiplier.
func (a *Accumulator) Efficiency() float64 { return a.efficiency }

// SetEfficiency changes the production multiplier.
func (a *Accumulator) SetEfficiency(efficiency float64) error {
	if err := validateParams(a.state.Capacity, a.state.Rate, efficiency); err != nil {
		return err
	}
	a.efficiency = efficiency
	return nil
}

// AddRate raises the production rate. Non-positive deltas are ignored.
func (a *Accumulator) AddRate(delta float64) {
	if !(delta > 0) || !finite(delta) {
		return
	}
	a.state.Rate = Round(a.state.Rate + delta)
}

// AddCapacity raises the capacity. Non-positive deltas are ignored.
// A full accumulator resumes production once there is room again.
func (a *Accumulator) AddCapacity(delta int) {
	if delta <= 0 {
		return
	}
	a.state.Capacity += delta
	if !a.state.Full() {
		a.state.Active = true
	}
}

// Restore replaces the state, validating it like the constructor does.
// Quantity is clamped into [0, Capacity].
func (a *Accumulator) Restore(state AccumulatorState, efficiency float64) error {
	if err := validateParams(state.Capacity, state.Rate, efficiency); err != nil {
		return err
	}
	if !finite(state.Quantity) || state.Quantity < 0 {
		state.Quantity = 0
	}
	if state.Full() {
		state.Quantity = float64(state.Capacity)
		state.Active = false
	}
	a.state = state
	a.efficiency = efficiency
	return nil
}
