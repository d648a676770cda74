package shared

import (
	"fmt"
	"math"
	"strconv"
)

// Round2 rounds an amount to two decimal places.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatAmount renders an amount with exactly two decimals for persistence.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(Round2(amount), 'f', 2, 64)
}

// ParseAmount parses a persisted two-decimal amount. NaN and infinities are
// rejected so a hand-edited row cannot poison recomputed totals.
func ParseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("shared: non-finite amount %q", s)
	}
	return v, nil
}
