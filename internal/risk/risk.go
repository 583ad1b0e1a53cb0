package risk

import (
	"fmt"
	"math"
	"strings"
)

// Level four-tier risk classification
type Level int

const (
	LOW Level = iota
	MEDIUM
	HIGH
	EXTREME
)

func (l Level) String() string {
	switch l {
	case LOW:
		return "LOW"
	case MEDIUM:
		return "MEDIUM"
	case HIGH:
		return "HIGH"
	case EXTREME:
		return "EXTREME"
	default:
		return "unknown"
	}
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "LOW":
		*l = LOW
	case "MEDIUM":
		*l = MEDIUM
	case "HIGH":
		*l = HIGH
	case "EXTREME":
		*l = EXTREME
	default:
		return fmt.Errorf("unknown risk level %q", string(text))
	}
	return nil
}

// ========================================================

// score weights, they add up to 100
const (
	MaxLeverage       = 125.0
	LeverageWeight    = 40.0
	MarginWeight      = 30.0
	LiquidationWeight = 30.0
	MaxScore          = 100.0
)

// Thresholds are the lower score bounds of MEDIUM, HIGH and EXTREME.
type Thresholds struct {
	Medium  float64 `toml:"medium"`
	High    float64 `toml:"high"`
	Extreme float64 `toml:"extreme"`
}

var DefaultThresholds = Thresholds{
	Medium:  25,
	High:    50,
	Extreme: 75,
}

// Level maps a score onto a tier.
func (t Thresholds) Level(score float64) Level {
	switch {
	case score < t.Medium:
		return LOW
	case score < t.High:
		return MEDIUM
	case score < t.Extreme:
		return HIGH
	default:
		return EXTREME
	}
}

// LeverageRisk leverage component of the score, capped at LeverageWeight.
func LeverageRisk(leverage float64) float64 {
	return math.Max(0, math.Min(leverage/MaxLeverage*LeverageWeight, LeverageWeight))
}

// Score combines leverage, margin ratio and liquidation distance (percent)
// into a value within [0, 100].
func Score(marginRatio, leverage, distanceToLiquidation float64) float64 {
	leverageRisk := LeverageRisk(leverage)
	marginRisk := math.Max(0, (1-marginRatio)*MarginWeight)
	liquidationRisk := math.Max(0, (1-distanceToLiquidation/100)*LiquidationWeight)

	return math.Min(leverageRisk+marginRisk+liquidationRisk, MaxScore)
}
