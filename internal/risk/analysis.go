package risk

// advice triggers
const (
	highLeverage           = 20.0
	nearLiquidationPercent = 10.0
	concentrationPercent   = 50.0
)

// Input numbers needed for a full analysis. WalletBalance is optional, zero
// disables the concentration component.
type Input struct {
	MarginRatio         float64
	Leverage            float64
	LiquidationDistance float64
	PositionMargin      float64
	WalletBalance       float64
}

// Analysis risk report of one position
type Analysis struct {
	RiskLevel           Level    `json:"risk_level"`
	RiskScore           float64  `json:"risk_score"`
	MarginRatio         float64  `json:"margin_ratio"`
	LeverageRisk        float64  `json:"leverage_risk"`
	ConcentrationRisk   float64  `json:"concentration_risk"`
	LiquidationDistance float64  `json:"liquidation_distance"`
	Recommendations     []string `json:"recommendations"`
}

// Analyze scores the input and attaches human readable recommendations.
func Analyze(in Input, t Thresholds) Analysis {
	score := Score(in.MarginRatio, in.Leverage, in.LiquidationDistance)

	concentration := 0.0
	if in.WalletBalance > 0 {
		concentration = in.PositionMargin / in.WalletBalance * 100
	}

	a := Analysis{
		RiskLevel:           t.Level(score),
		RiskScore:           score,
		MarginRatio:         in.MarginRatio,
		LeverageRisk:        LeverageRisk(in.Leverage),
		ConcentrationRisk:   concentration,
		LiquidationDistance: in.LiquidationDistance,
		Recommendations:     make([]string, 0, 4),
	}

	if in.Leverage > highLeverage {
		a.Recommendations = append(a.Recommendations, "Leverage above 20x, consider lowering it")
	}
	if in.LiquidationDistance < nearLiquidationPercent {
		a.Recommendations = append(a.Recommendations, "Liquidation price is within 10% of the current price, add margin or reduce size")
	}
	if concentration > concentrationPercent {
		a.Recommendations = append(a.Recommendations, "Position margin exceeds half of the wallet balance")
	}
	if a.RiskLevel >= HIGH {
		a.Recommendations = append(a.Recommendations, "Set a stop-loss before holding this position")
	}

	return a
}
