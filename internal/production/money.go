package production

import (
	"math"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places costs, balances and increments are rounded to.
const Places = 2

// cent is the smallest representable step at Places precision.
const cent = 0.01

// Round rounds v half away from zero to Places decimals.
// For the non-negative values used by the economy this is round-half-up.
// Rounding is done on the shortest decimal representation of v,
// so 2.675 rounds to 2.68 rather than following binary float error.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(Places).Float64()
	return f
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
