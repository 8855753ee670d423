package optimizer

import (
	"math"

	"github.com/shopspring/decimal"
)

// roundTo rounds v half away from zero to the given number of decimal places.
// Values go through their shortest decimal representation so 2.675 rounds to 2.68.
func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// toInt converts a float the way every integer output field does: truncation toward zero.
func toInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}

// ratio divides a by b, returning fallback when the result would not be finite.
func ratio(a, b, fallback float64) float64 {
	if b == 0 {
		return fallback
	}
	r := a / b
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return fallback
	}
	return r
}
