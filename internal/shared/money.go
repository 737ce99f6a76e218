package shared

import "math"

// moneyEpsilon absorbs float64 noise when comparing rupee amounts.
const moneyEpsilon = 0.009

// Round2 rounds an amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AmountEqual reports whether two amounts are equal within a paisa.
func AmountEqual(a, b float64) bool {
	return math.Abs(a-b) < moneyEpsilon
}

// AmountLTE reports whether a <= b within a paisa.
func AmountLTE(a, b float64) bool {
	return a-b < moneyEpsilon
}
