package production

import (
	"errors"
	"math"
	"testing"
)

// balance=10, next cost=10, scaling=1.5.
func TestPurchase_Success(t *testing.T) {
	t.Parallel()

	res, err := Purchase(UpgradeTrack{NextCost: 10}, 10.0, 0.5, 1.5)
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}

	if res.NewBalance != 0 {
		t.Errorf("NewBalance = %v; want 0", res.NewBalance)
	}
	if res.Track.NextCost != 15 {
		t.Errorf("NextCost = %v; want 15", res.Track.NextCost)
	}
	if res.Track.Level != 1 {
		t.Errorf("Level = %d; want 1", res.Track.Level)
	}
	if res.Cost != 10 {
		t.Errorf("Cost = %v; want 10", res.Cost)
	}
	if res.AppliedIncrement != 0.5 {
		t.Errorf("AppliedIncrement = %v; want 0.5", res.AppliedIncrement)
	}
}

// balance=5, next cost=10.
func TestPurchase_InsufficientFunds(t *testing.T) {
	t.Parallel()

	track := UpgradeTrack{Level: 2, NextCost: 10}
	balance := 5.0

	res, err := Purchase(track, balance, 1, 1.5)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Purchase() error = %v; want ErrInsufficientFunds", err)
	}
	if res != (PurchaseResult{}) {
		t.Errorf("result = %+v; want zero value", res)
	}
	if track.Level != 2 || track.NextCost != 10 || balance != 5 {
		t.Errorf("inputs changed: track=%+v balance=%v", track, balance)
	}
}

func TestPurchase_NonNumericBalance(t *testing.T) {
	t.Parallel()

	track := UpgradeTrack{Level: 1, NextCost: 10}
	for _, balance := range []float64{math.NaN(), math.Inf(-1)} {
		res, err := Purchase(track, balance, 1, 1.5)
		if !errors.Is(err, ErrInsufficientFunds) {
			t.Errorf("Purchase(balance=%v) error = %v; want ErrInsufficientFunds", balance, err)
		}
		if res != (PurchaseResult{}) {
			t.Errorf("Purchase(balance=%v) = %+v; want zero value", balance, res)
		}
	}
}

func TestPurchase_StrictlyIncreasing(t *testing.T) {
	t.Parallel()

	for _, scaling := range []float64{1.01, 1.07, 1.15, 1.5, 2, 3.3} {
		track := UpgradeTrack{NextCost: 0.01}
		balance := 1e12

		for i := range 200 {
			res, err := Purchase(track, balance, 1, scaling)
			if err != nil {
				t.Fatalf("scaling=%v purchase %d: %v", scaling, i, err)
			}
			if res.Track.NextCost <= track.NextCost {
				t.Fatalf("scaling=%v purchase %d: NextCost %v not greater than %v",
					scaling, i, res.Track.NextCost, track.NextCost)
			}
			if res.Track.Level != track.Level+1 {
				t.Fatalf("scaling=%v purchase %d: Level = %d; want %d",
					scaling, i, res.Track.Level, track.Level+1)
			}
			track = res.Track
			balance = res.NewBalance
			if balance < track.NextCost {
				break
			}
		}
	}
}

func TestPurchase_RoundingDoesNotDrift(t *testing.T) {
	t.Parallel()

	// 10 * 1.15^n evaluated with rounding after every step.
	want := []float64{11.5, 13.23, 15.21, 17.49, 20.11, 23.13, 26.6, 30.59}

	track := UpgradeTrack{NextCost: 10}
	balance := 1000.0
	spent := 0.0

	for i, w := range want {
		res, err := Purchase(track, balance, 0.1, 1.15)
		if err != nil {
			t.Fatalf("purchase %d: %v", i, err)
		}
		if res.Track.NextCost != w {
			t.Errorf("purchase %d: NextCost = %v; want %v", i, res.Track.NextCost, w)
		}
		spent += res.Cost
		track = res.Track
		balance = res.NewBalance
	}

	// Balance is an exact two-decimal value, not an accumulation of float error.
	if balance != Round(balance) {
		t.Errorf("balance = %v; not rounded to 2 places", balance)
	}
	if got, want := balance, Round(1000-spent); got != want {
		t.Errorf("balance = %v; want %v", got, want)
	}
}

func TestPurchase_HalfUp(t *testing.T) {
	t.Parallel()

	// 2.5 * 1.25 = 3.125 -> 3.13.
	res, err := Purchase(UpgradeTrack{NextCost: 2.5}, 2.5, 0.005, 1.25)
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if res.Track.NextCost != 3.13 {
		t.Errorf("NextCost = %v; want 3.13", res.Track.NextCost)
	}
	if res.AppliedIncrement != 0.01 {
		t.Errorf("AppliedIncrement = %v; want 0.01", res.AppliedIncrement)
	}
}

func TestTrackConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := TrackConfig{BaseCost: 10, Scaling: 1.5, Increment: 1}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v; want nil", err)
	}

	bad := []TrackConfig{
		{BaseCost: 0, Scaling: 1.5, Increment: 1},
		{BaseCost: 10, Scaling: 1, Increment: 1},
		{BaseCost: 10, Scaling: 0.9, Increment: 1},
		{BaseCost: 10, Scaling: 1.5, Increment: 0},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); !errors.Is(err, ErrConfiguration) {
			t.Errorf("Validate(%+v) = %v; want ErrConfiguration", cfg, err)
		}
	}
}

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := NewLedger(map[TrackKind]TrackConfig{
		TrackRate:     {BaseCost: 10, Scaling: 1.5, Increment: 0.5},
		TrackCapacity: {BaseCost: 25, Scaling: 2, Increment: 50},
	})
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	return l
}

func TestNewLedger_MissingTrack(t *testing.T) {
	t.Parallel()

	_, err := NewLedger(map[TrackKind]TrackConfig{
		TrackRate: {BaseCost: 10, Scaling: 1.5, Increment: 0.5},
	})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("NewLedger() error = %v; want ErrConfiguration", err)
	}
}

func TestLedger_QuoteAndCommit(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)

	res, err := l.Quote(TrackCapacity, 30)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if res.AppliedIncrement != 50 || res.NewBalance != 5 {
		t.Errorf("Quote = %+v; want increment 50 and balance 5", res)
	}

	// Quote alone does not move the track.
	if tr, _ := l.Track(TrackCapacity); tr.Level != 0 {
		t.Errorf("Level = %d; want 0 before commit", tr.Level)
	}

	l.Commit(TrackCapacity, res.Track)
	tr, _ := l.Track(TrackCapacity)
	if tr.Level != 1 || tr.NextCost != 50 {
		t.Errorf("Track = %+v; want level 1, cost 50", tr)
	}

	// Rate track is independent.
	if rt, _ := l.Track(TrackRate); rt.Level != 0 || rt.NextCost != 10 {
		t.Errorf("rate Track = %+v; want untouched", rt)
	}
}

func TestLedger_UnknownKind(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	if _, err := l.Quote("speed", 100); err == nil {
		t.Error("Quote(unknown) = nil error; want error")
	}
	if err := l.Restore("speed", UpgradeTrack{NextCost: 1}); err == nil {
		t.Error("Restore(unknown) = nil error; want error")
	}
}

func TestLedger_Restore(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	if err := l.Restore(TrackRate, UpgradeTrack{Level: 4, NextCost: 50.63}); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if tr, _ := l.Track(TrackRate); tr.Level != 4 || tr.NextCost != 50.63 {
		t.Errorf("Track = %+v; want restored values", tr)
	}

	if err := l.Restore(TrackRate, UpgradeTrack{Level: 1, NextCost: 0}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Restore(zero cost) = %v; want ErrConfiguration", err)
	}
}

func TestRound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1.005, 1.01},
		{2.675, 2.68},
		{0.125, 0.13},
		{10.004, 10},
		{0.1 + 0.2, 0.3},
		{-1.005, -1.01},
	}
	for _, tt := range tests {
		if got := Round(tt.in); got != tt.want {
			t.Errorf("Round(%v) = %v; want %v", tt.in, got, tt.want)
		}
	}
}
