package production

import (
	"errors"
	"math"
	"testing"
)

func TestNewAccumulator(t *testing.T) {
	t.Parallel()

	acc, err := NewAccumulator(100, 1.0, 1.0)
	if err != nil {
		t.Fatalf("NewAccumulator: %v", err)
	}

	s := acc.State()
	if s.Quantity != 0 {
		t.Errorf("Quantity = %v; want 0", s.Quantity)
	}
	if s.Capacity != 100 {
		t.Errorf("Capacity = %d; want 100", s.Capacity)
	}
	if !s.Active {
		t.Error("Active = false; want true")
	}
}

func TestNewAccumulator_InvalidParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		capacity   int
		rate       float64
		efficiency float64
	}{
		{"negative capacity", -1, 1, 1},
		{"negative rate", 10, -0.5, 1},
		{"negative efficiency", 10, 1, -1},
		{"NaN rate", 10, math.NaN(), 1},
		{"infinite efficiency", 10, 1, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewAccumulator(tt.capacity, tt.rate, tt.efficiency)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("NewAccumulator() error = %v; want ErrConfiguration", err)
			}
		})
	}
}

// capacity=100, rate=1, efficiency=1, advance(50).
func TestAccumulator_Advance_HalfFull(t *testing.T) {
	t.Parallel()

	acc, err := NewAccumulator(100, 1.0, 1.0)
	if err != nil {
		t.Fatalf("NewAccumulator: %v", err)
	}

	s := acc.Advance(50)
	if s.Quantity != 50.0 {
		t.Errorf("Quantity = %v; want 50", s.Quantity)
	}
	if !s.Active {
		t.Error("Active = false; want true")
	}
}

// capacity=100, quantity=100 (inactive), advance(10).
func TestAccumulator_Advance_AlreadyFull(t *testing.T) {
	t.Parallel()

	acc, _ := NewAccumulator(100, 1.0, 1.0)
	if err := acc.Restore(AccumulatorState{Quantity: 100, Capacity: 100, Rate: 1.0, Active: false}, 1.0); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	s := acc.Advance(10)
	if s.Quantity != 100 {
		t.Errorf("Quantity = %v; want 100", s.Quantity)
	}
	if s.Active {
		t.Error("Active = true; want false")
	}
}

func TestAccumulator_Advance_ClampsAndDeactivates(t *testing.T) {
	t.Parallel()

	acc, _ := NewAccumulator(100, 3.0, 1.0)

	s := acc.Advance(40)
	if s.Quantity != 100 {
		t.Errorf("Quantity = %v; want 100 (clamped)", s.Quantity)
	}
	if s.Active {
		t.Error("Active = true; want false after hitting capacity")
	}
}

func TestAccumulator_Advance_NoOps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rate       float64
		efficiency float64
		elapsed    float64
	}{
		{"zero elapsed", 1, 1, 0},
		{"negative elapsed", 1, 1, -5},
		{"NaN elapsed", 1, 1, math.NaN()},
		{"zero rate", 0, 1, 10},
		{"zero efficiency", 1, 0, 10},
		{"zero rate, infinite elapsed", 0, 1, math.Inf(1)},
		{"zero efficiency, infinite elapsed", 1, 0, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			acc, _ := NewAccumulator(100, tt.rate, tt.efficiency)
			s := acc.Advance(tt.elapsed)
			if s.Quantity != 0 {
				t.Errorf("Quantity = %v; want 0", s.Quantity)
			}
			if !s.Active {
				t.Error("Active = false; want true")
			}
		})
	}
}

func TestAccumulator_Advance_ZeroCapacity(t *testing.T) {
	t.Parallel()

	acc, _ := NewAccumulator(0, 5, 1)

	s := acc.Advance(1)
	if s.Quantity != 0 {
		t.Errorf("Quantity = %v; want 0", s.Quantity)
	}
	if s.Active {
		t.Error("Active = true; want false for zero capacity")
	}
}

func TestAccumulator_Advance_Efficiency(t *testing.T) {
	t.Parallel()

	acc, _ := NewAccumulator(1000, 2.0, 1.5)

	s := acc.Advance(10)
	if s.Quantity != 30 {
		t.Errorf("Quantity = %v; want 30 (2/s * 10s * 1.5)", s.Quantity)
	}
}

func TestAccumulator_Advance_NeverOutOfBounds(t *testing.T) {
	t.Parallel()

	steps := []float64{0, 0.001, 0.5, 1, 3.3, 17, 250, 1e6, -1, 42.42, math.Inf(1)}
	for _, capacity := range []int{0, 1, 7, 100, 10000} {
		for _, rate := range []float64{0, 0.1, 1, 13.7, 1e4} {
			acc, err := NewAccumulator(capacity, rate, 1.25)
			if err != nil {
				t.Fatalf("NewAccumulator(%d, %v): %v", capacity, rate, err)
			}
			for _, step := range steps {
				s := acc.Advance(step)
				if math.IsNaN(s.Quantity) || s.Quantity < 0 || s.Quantity > float64(s.Capacity) {
					t.Fatalf("capacity=%d rate=%v step=%v: Quantity = %v out of [0, %d]",
						capacity, rate, step, s.Quantity, s.Capacity)
				}
				if step > 0 && s.Quantity == float64(s.Capacity) && s.Active {
					t.Fatalf("capacity=%d rate=%v: full accumulator still active", capacity, rate)
				}
				// Periodically drain so production keeps running.
				if !s.Active {
					acc.Drain(1)
				}
			}
		}
	}
}

func TestAccumulator_AddCapacity_Reactivates(t *testing.T) {
	t.Parallel()

	acc, _ := NewAccumulator(10, 1, 1)
	acc.Advance(20)
	if acc.State().Active {
		t.Fatal("Active = true; want false before upgrade")
	}

	acc.AddCapacity(5)
	s := acc.State()
	if s.Capacity != 15 {
		t.Errorf("Capacity = %d; want 15", s.Capacity)
	}
	if !s.Active {
		t.Error("Active = false; want true after capacity upgrade")
	}

	s = acc.Advance(100)
	if s.Quantity != 15 {
		t.Errorf("Quantity = %v; want 15", s.Quantity)
	}
}

func TestAccumulator_AddIgnoresNonPositive(t *testing.T) {
	t.Parallel()

	acc, _ := NewAccumulator(10, 1, 1)
	acc.AddCapacity(0)
	acc.AddCapacity(-3)
	acc.AddRate(0)
	acc.AddRate(-1)
	acc.AddRate(math.NaN())

	s := acc.State()
	if s.Capacity != 10 || s.Rate != 1 {
		t.Errorf("State = %+v; want capacity 10 and rate 1 unchanged", s)
	}
}

func TestAccumulator_AddRate_Rounded(t *testing.T) {
	t.Parallel()

	acc, _ := NewAccumulator(10, 0, 1)
	for range 10 {
		acc.AddRate(0.1)
	}
	if got := acc.State().Rate; got != 1.0 {
		t.Errorf("Rate = %v; want exactly 1.0 after ten 0.1 increments", got)
	}
}

func TestAccumulator_Restore(t *testing.T) {
	t.Parallel()

	acc, _ := NewAccumulator(10, 1, 1)

	if err := acc.Restore(AccumulatorState{Quantity: 500, Capacity: 50, Rate: 2, Active: true}, 1.5); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	s := acc.State()
	if s.Quantity != 50 || s.Active {
		t.Errorf("State = %+v; want quantity clamped to 50 and inactive", s)
	}
	if acc.Efficiency() != 1.5 {
		t.Errorf("Efficiency() = %v; want 1.5", acc.Efficiency())
	}

	err := acc.Restore(AccumulatorState{Capacity: -1}, 1)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("Restore(negative capacity) error = %v; want ErrConfiguration", err)
	}
	if acc.State().Capacity != 50 {
		t.Errorf("Capacity = %d; want 50 (unchanged after failed restore)", acc.State().Capacity)
	}
}

func TestAccumulator_SetEfficiency(t *testing.T) {
	t.Parallel()

	acc, _ := NewAccumulator(10, 1, 1)
	if err := acc.SetEfficiency(-2); !errors.Is(err, ErrConfiguration) {
		t.Errorf("SetEfficiency(-2) error = %v; want ErrConfiguration", err)
	}
	if err := acc.SetEfficiency(2); err != nil {
		t.Fatalf("SetEfficiency(2): %v", err)
	}
	if s := acc.Advance(2); s.Quantity != 4 {
		t.Errorf("Quantity = %v; want 4", s.Quantity)
	}
}
