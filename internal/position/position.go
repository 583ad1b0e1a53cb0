package position

import (
	"frizo/futures_calculator/internal/risk"
)

// Position 倉位 (isolated margin, one side)
type Position struct {
	Symbol     string  `json:"symbol" validate:"required,tradingpair"`
	Side       Side    `json:"side" validate:"side"`
	Status     Status  `json:"status"`
	Leverage   float64 `json:"leverage" validate:"gte=1,lte=125"`
	EntryPrice float64 `json:"entry_price" validate:"gt=0,lte=1e10"` // 開倉均價
	Quantity   float64 `json:"quantity" validate:"gt=0,lte=1e12"`
	Margin     float64 `json:"margin" validate:"gt=0,lte=1e12"` // 保證金
	ExitPrice  float64 `json:"exit_price,omitempty" validate:"gte=0,lte=1e10"`
	StopLoss   float64 `json:"stop_loss,omitempty" validate:"gte=0,lte=1e10"`   // 止損, 0 = unset
	TakeProfit float64 `json:"take_profit,omitempty" validate:"gte=0,lte=1e10"` // 止盈, 0 = unset
}

// Fill the position as a single fill at its entry price.
func (p Position) Fill() Fill {
	return Fill{Price: p.EntryPrice, Quantity: p.Quantity, Margin: p.Margin}
}

// Notional value at entry
func (p Position) Notional() float64 {
	return TotalValue(p.EntryPrice, p.Quantity)
}

// Options knobs shared by every derived computation.
type Options struct {
	MaintenanceMarginRate float64
	// MaintenanceRate overrides MaintenanceMarginRate by notional (tiered brackets) when set.
	MaintenanceRate func(notional float64) float64
	Thresholds      risk.Thresholds
}

func DefaultOptions() Options {
	return Options{
		MaintenanceMarginRate: DefaultMaintenanceMarginRate,
		Thresholds:            risk.DefaultThresholds,
	}
}

// RateFor maintenance margin rate applied to the given notional.
func (o Options) RateFor(notional float64) float64 {
	if o.MaintenanceRate != nil {
		return o.MaintenanceRate(notional)
	}
	return o.MaintenanceMarginRate
}

// Snapshot derived view of one position at a price
type Snapshot struct {
	AveragePrice          float64    `json:"average_price"`
	TotalQuantity         float64    `json:"total_quantity"`
	TotalMargin           float64    `json:"total_margin"`
	Leverage              float64    `json:"leverage"`
	CurrentPrice          float64    `json:"current_price"`
	LiquidationPrice      float64    `json:"liquidation_price"`
	MaintenanceMarginRate float64    `json:"maintenance_margin_rate"`
	UnrealizedPnL         float64    `json:"unrealized_pnl"`
	ROE                   float64    `json:"roe"`
	TotalValue            float64    `json:"total_value"`
	MarginRatio           float64    `json:"margin_ratio"`
	RiskScore             float64    `json:"risk_score"`
	RiskLevel             risk.Level `json:"risk_level"`
	DistanceToLiquidation float64    `json:"distance_to_liquidation"`
}

// Evaluate builds the snapshot of a validated position. A non-positive
// currentPrice means "at rest" and falls back to the entry price.
func Evaluate(p Position, currentPrice float64, opts Options) Snapshot {
	if currentPrice <= 0 {
		currentPrice = p.EntryPrice
	}

	mmr := opts.RateFor(p.Notional())
	liquidationPrice := MustLiquidationPrice(p.Side, p.Leverage, p.EntryPrice, mmr)

	pnl := UnrealizedPnL(p.Side, p.EntryPrice, currentPrice, p.Quantity)
	totalValue := TotalValue(currentPrice, p.Quantity)
	marginRatio := MarginRatio(p.Margin, totalValue)
	distance := DistanceToLiquidation(currentPrice, liquidationPrice, p.Side)
	score := risk.Score(marginRatio, p.Leverage, distance)

	return Snapshot{
		AveragePrice:          p.EntryPrice,
		TotalQuantity:         p.Quantity,
		TotalMargin:           p.Margin,
		Leverage:              p.Leverage,
		CurrentPrice:          currentPrice,
		LiquidationPrice:      liquidationPrice,
		MaintenanceMarginRate: mmr,
		UnrealizedPnL:         pnl,
		ROE:                   ROE(pnl, p.Margin),
		TotalValue:            totalValue,
		MarginRatio:           marginRatio,
		RiskScore:             score,
		RiskLevel:             opts.Thresholds.Level(score),
		DistanceToLiquidation: distance,
	}
}

// AddResult (加倉結果)
type AddResult struct {
	Position Position `json:"position"`
	Snapshot
}

// Add merges a new fill into the position (加倉). The fill's margin adds to
// the position margin, leverage is kept.
func Add(original Position, fill Fill, currentPrice float64, opts Options) AddResult {
	// formula: new average price = (current position val + new position val) / (current size + new size)
	merged := original
	merged.EntryPrice = AveragePrice([]Fill{original.Fill(), fill})
	merged.Quantity = original.Quantity + fill.Quantity
	merged.Margin = original.Margin + fill.Margin

	return AddResult{
		Position: merged,
		Snapshot: Evaluate(merged, currentPrice, opts),
	}
}
