package margin

import (
	"math"
)

// Tier maintenance bracket by position value
type Tier struct {
	MinValue        float64 // 最小倉位價值
	MaxValue        float64 // 最大倉位價值
	MaintenanceRate float64 // 維持保證金率
	MaxLeverage     float64 // 最大槓桿
}

// Tiers ordered brackets
type Tiers []Tier

var DefaultTiers = Tiers{
	{0, 50000, 0.004, 125},           // 0.4% for positions < 50k USDT
	{50000, 250000, 0.005, 100},      // 0.5% for 50k-250k
	{250000, 1000000, 0.01, 50},      // 1.0% for 250k-1M
	{1000000, 5000000, 0.025, 20},    // 2.5% for 1M-5M
	{5000000, 10000000, 0.05, 10},    // 5.0% for 5M-10M
	{10000000, 20000000, 0.1, 5},     // 10% for 10M-20M
	{20000000, 50000000, 0.125, 4},   // 12.5% for 20M-50M
	{50000000, math.Inf(1), 0.15, 3}, // 15% for > 50M
}

// Find bracket holding the position value.
func (ts Tiers) Find(positionValue float64) (Tier, bool) {
	for _, t := range ts {
		if positionValue >= t.MinValue && positionValue < t.MaxValue {
			return t, true
		}
	}
	return Tier{}, false
}

// Rate maintenance rate of the bracket, falling back to the last bracket.
func (ts Tiers) Rate(positionValue float64) float64 {
	if t, ok := ts.Find(positionValue); ok {
		return t.MaintenanceRate
	}
	if len(ts) == 0 {
		return 0
	}
	return ts[len(ts)-1].MaintenanceRate
}

// MaxLeverage allowed for the position value, 0 when no bracket matches.
func (ts Tiers) MaxLeverage(positionValue float64) float64 {
	if t, ok := ts.Find(positionValue); ok {
		return t.MaxLeverage
	}
	return 0
}
