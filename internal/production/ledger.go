package production

import "fmt"

// TrackKind names an upgradeable accumulator parameter.
type TrackKind string

const (
	TrackRate     TrackKind = "rate"
	TrackCapacity TrackKind = "capacity"
)

// Kinds returns every upgrade track kind in a stable order.
func Kinds() []TrackKind {
	return []TrackKind{TrackRate, TrackCapacity}
}

// TrackConfig holds the balance numbers of one upgrade track.
type TrackConfig struct {
	BaseCost  float64
	Scaling   float64 // next cost multiplier, must be > 1
	Increment float64 // added to the parameter per purchase
}

// Validate checks that the track can produce strictly increasing costs.
func (c TrackConfig) Validate() error {
	if !finite(c.BaseCost) || c.BaseCost <= 0 {
		return fmt.Errorf("%w: base cost %v must be positive", ErrConfiguration, c.BaseCost)
	}
	if !finite(c.Scaling) || c.Scaling <= 1 {
		return fmt.Errorf("%w: scaling %v must be greater than 1", ErrConfiguration, c.Scaling)
	}
	if !finite(c.Increment) || c.Increment <= 0 {
		return fmt.Errorf("%w: increment %v must be positive", ErrConfiguration, c.Increment)
	}
	return nil
}

// UpgradeTrack is the purchase progress of one parameter.
type UpgradeTrack struct {
	Level    int     `json:"level"`
	NextCost float64 `json:"next_cost"`
}

// NewTrack returns a level 0 track priced at the base cost.
func NewTrack(cfg TrackConfig) UpgradeTrack {
	cost := Round(cfg.BaseCost)
	if cost < cent {
		cost = cent
	}
	return UpgradeTrack{NextCost: cost}
}

// PurchaseResult is the outcome of a successful purchase.
// The caller adds AppliedIncrement to the matching accumulator parameter.
type PurchaseResult struct {
	Track            UpgradeTrack
	Cost             float64
	NewBalance       float64
	AppliedIncrement float64
}

// Purchase buys the next level of track. It fails with ErrInsufficientFunds
// when balance is below the track's next cost; nothing is modified then.
// Amounts are rounded at every purchase; if rounding would stall the cost,
// the next cost is raised by one cent so it stays strictly increasing.
func Purchase(track UpgradeTrack, balance, increment, scaling float64) (PurchaseResult, error) {
	if !(balance >= track.NextCost) {
		return PurchaseResult{}, fmt.Errorf("%w: cost %.2f, balance %.2f", ErrInsufficientFunds, track.NextCost, balance)
	}

	cost := track.NextCost
	next := Round(cost * scaling)
	if next <= cost {
		next = Round(cost + cent)
	}

	return PurchaseResult{
		Track: UpgradeTrack{
			Level:    track.Level + 1,
			NextCost: next,
		},
		Cost:             cost,
		NewBalance:       Round(balance - cost),
		AppliedIncrement: Round(increment),
	}, nil
}

// Ledger holds the upgrade tracks of a session together with their balance numbers.
type Ledger struct {
	configs map[TrackKind]TrackConfig
	tracks  map[TrackKind]UpgradeTrack
}

// NewLedger creates a ledger with every kind at level 0.
// A config must be present and valid for each of Kinds().
func NewLedger(configs map[TrackKind]TrackConfig) (*Ledger, error) {
	l := &Ledger{
		configs: make(map[TrackKind]TrackConfig, len(configs)),
		tracks:  make(map[TrackKind]UpgradeTrack, len(configs)),
	}
	for _, kind := range Kinds() {
		cfg, ok := configs[kind]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s upgrade track", ErrConfiguration, kind)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s track: %w", kind, err)
		}
		l.configs[kind] = cfg
		l.tracks[kind] = NewTrack(cfg)
	}
	return l, nil
}

// Track returns the current state of a track.
func (l *Ledger) Track(kind TrackKind) (UpgradeTrack, bool) {
	t, ok := l.tracks[kind]
	return t, ok
}

// Config returns the balance numbers of a track.
func (l *Ledger) Config(kind TrackKind) (TrackConfig, bool) {
	c, ok := l.configs[kind]
	return c, ok
}

// Quote prices the next purchase of kind against balance without committing it.
func (l *Ledger) Quote(kind TrackKind, balance float64) (PurchaseResult, error) {
	track, ok := l.tracks[kind]
	if !ok {
		return PurchaseResult{}, fmt.Errorf("unknown upgrade track %q", kind)
	}
	cfg := l.configs[kind]
	return Purchase(track, balance, cfg.Increment, cfg.Scaling)
}

// Commit stores the track produced by a successful Quote.
func (l *Ledger) Commit(kind TrackKind, track UpgradeTrack) {
	if _, ok := l.tracks[kind]; ok {
		l.tracks[kind] = track
	}
}

// Restore replaces a track with persisted progress.
func (l *Ledger) Restore(kind TrackKind, track UpgradeTrack) error {
	if _, ok := l.tracks[kind]; !ok {
		return fmt.Errorf("unknown upgrade track %q", kind)
	}
	if track.Level < 0 {
		return fmt.Errorf("%w: %s track level %d is negative", ErrConfiguration, kind, track.Level)
	}
	if !finite(track.NextCost) || track.NextCost <= 0 {
		return fmt.Errorf("%w: %s track cost %v must be positive", ErrConfiguration, kind, track.NextCost)
	}
	l.tracks[kind] = track
	return nil
}
