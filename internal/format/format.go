package format

import (
	"math"

	"github.com/shopspring/decimal"
)

// Fixed n decimals, "0" for NaN / Inf.
func Fixed(v float64, decimals int32) string {
	if !finite(v) {
		return "0"
	}
	return decimal.NewFromFloat(v).StringFixed(decimals)
}

// Price 2 decimals above 1, more precision for sub-dollar prices.
func Price(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs == 0 || abs >= 1:
		return Fixed(v, 2)
	case abs >= 0.01:
		return Fixed(v, 4)
	default:
		return Fixed(v, 8)
	}
}

// Percent "x.xx%", "0.00%" for NaN / Inf.
func Percent(v float64) string {
	return PercentN(v, 2)
}

func PercentN(v float64, decimals int32) string {
	if !finite(v) {
		return decimal.Zero.StringFixed(decimals) + "%"
	}
	return decimal.NewFromFloat(v).StringFixed(decimals) + "%"
}

// Signed leading "+" for positive values, e.g. PnL.
func Signed(v float64, decimals int32) string {
	s := Fixed(v, decimals)
	if finite(v) && v > 0 {
		return "+" + s
	}
	return s
}

var suffixes = []struct {
	threshold float64
	suffix    string
}{
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// Large K / M / B suffixes at 1e3 / 1e6 / 1e9, two decimals.
func Large(v float64) string {
	if !finite(v) {
		return "0"
	}
	abs := math.Abs(v)
	for _, s := range suffixes {
		if abs >= s.threshold {
			return Fixed(v/s.threshold, 2) + s.suffix
		}
	}
	return Fixed(v, 2)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
