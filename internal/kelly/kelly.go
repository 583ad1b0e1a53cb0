package kelly

import "math"

const (
	DefaultFraction    = 0.5  // half Kelly
	DefaultMaxFraction = 0.25 // never stake more than 25% of capital
)

// Params Kelly sizing input. WinRate is a probability in (0, 1).
type Params struct {
	WinRate      float64 `json:"win_rate" validate:"gt=0,lt=1"`
	WinLossRatio float64 `json:"win_loss_ratio" validate:"gt=0,lte=1000"`
	Fraction     float64 `json:"fraction" validate:"gt=0,lte=1"`
	MaxFraction  float64 `json:"max_fraction" validate:"gt=0,lte=1"`
	Capital      float64 `json:"capital,omitempty" validate:"gte=0,lte=1e12"`
}

// Result fractions are of capital, 0.1 = 10%
type Result struct {
	FullKelly        float64 `json:"full_kelly"`
	AdjustedFraction float64 `json:"adjusted_fraction"`
	PositionSize     float64 `json:"position_size"`
	Edge             float64 `json:"edge"` // expected return per unit staked
	HasEdge          bool    `json:"has_edge"`
}

// FullKelly f* = p - (1-p)/b
func FullKelly(winRate, winLossRatio float64) float64 {
	if winLossRatio <= 0 {
		return 0
	}
	return winRate - (1-winRate)/winLossRatio
}

// Calculate applies the fractional multiplier and clamps into [0, MaxFraction].
func Calculate(p Params) Result {
	full := FullKelly(p.WinRate, p.WinLossRatio)
	adjusted := math.Min(math.Max(full*p.Fraction, 0), p.MaxFraction)

	return Result{
		FullKelly:        full,
		AdjustedFraction: adjusted,
		PositionSize:     p.Capital * adjusted,
		Edge:             p.WinRate*p.WinLossRatio - (1 - p.WinRate),
		HasEdge:          full > 0,
	}
}
