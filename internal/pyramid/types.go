package pyramid

import (
	"fmt"
	"strings"

	"frizo/futures_calculator/internal/position"
	"frizo/futures_calculator/internal/risk"
)

// Strategy quantity growth rule between levels
type Strategy int

const (
	EqualRatio Strategy = iota // initialQuantity * ratio^(k-1)
	DoubleDown                 // initialQuantity * 2^(k-1)
)

func (s Strategy) String() string {
	switch s {
	case EqualRatio:
		return "EQUAL_RATIO"
	case DoubleDown:
		return "DOUBLE_DOWN"
	default:
		return "unknown"
	}
}

// ParseStrategy accepts EQUAL_RATIO / DOUBLE_DOWN, case and dash insensitive.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_") {
	case "EQUAL_RATIO":
		return EqualRatio, nil
	case "DOUBLE_DOWN":
		return DoubleDown, nil
	default:
		return 0, fmt.Errorf("unknown pyramid strategy %q", s)
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	strategy, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = strategy
	return nil
}

// Params pyramid plan input
type Params struct {
	Symbol           string        `json:"symbol,omitempty" validate:"omitempty,tradingpair"`
	Side             position.Side `json:"side" validate:"side"`
	InitialPrice     float64       `json:"initial_price" validate:"gt=0,lte=1e10"`
	InitialQuantity  float64       `json:"initial_quantity" validate:"gt=0,lte=1e12"`
	InitialMargin    float64       `json:"initial_margin" validate:"gt=0,lte=1e12"`
	Leverage         float64       `json:"leverage" validate:"gte=1,lte=125"`
	Levels           int           `json:"levels" validate:"gte=2,lte=10"`
	Strategy         Strategy      `json:"strategy" validate:"gte=0,lte=1"`
	PriceDropPercent float64       `json:"price_drop_percent" validate:"gt=0,lte=50"`
	// only EQUAL_RATIO reads it
	RatioMultiplier float64 `json:"ratio_multiplier" validate:"gt=1,lte=5"`
}

// Level one rung of the plan
type Level struct {
	Level                 int     `json:"level"`
	Price                 float64 `json:"price"`
	Quantity              float64 `json:"quantity"`
	Margin                float64 `json:"margin"`
	CumulativeQuantity    float64 `json:"cumulative_quantity"`
	CumulativeMargin      float64 `json:"cumulative_margin"`
	AveragePrice          float64 `json:"average_price"`
	LiquidationPrice      float64 `json:"liquidation_price"`
	PriceDropFromPrevious float64 `json:"price_drop_from_previous"`
}

// Plan ordered levels plus the summary of the last one
type Plan struct {
	Params                Params     `json:"params"`
	Levels                []Level    `json:"levels"`
	FinalAveragePrice     float64    `json:"final_average_price"`
	FinalLiquidationPrice float64    `json:"final_liquidation_price"`
	TotalQuantity         float64    `json:"total_quantity"`
	TotalMargin           float64    `json:"total_margin"`
	TotalValue            float64    `json:"total_value"`
	MaxDrawdown           float64    `json:"max_drawdown"`
	FinalUnrealizedPnL    float64    `json:"final_unrealized_pnl"`
	FinalRiskLevel        risk.Level `json:"final_risk_level"`
}
