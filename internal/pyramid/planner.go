package pyramid

import (
	"github.com/shopspring/decimal"

	"frizo/futures_calculator/internal/position"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
)

// Build generates the plan from validated params. Every call returns a fresh
// slice, levels are never reused between calls.
func Build(p Params, opts position.Options) Plan {
	levels := make([]Level, 0, p.Levels)

	leverage := decimal.NewFromFloat(p.Leverage)
	step := decimal.NewFromFloat(p.PriceDropPercent).Div(hundred)
	if p.Side == position.SHORT {
		step = one.Add(step) // SHORT adds into a rising price
	} else {
		step = one.Sub(step) // LONG averages down
	}

	growth := decimal.NewFromFloat(p.RatioMultiplier)
	if p.Strategy == DoubleDown {
		growth = two
	}

	initialQuantity := decimal.NewFromFloat(p.InitialQuantity)
	price := decimal.NewFromFloat(p.InitialPrice)
	factor := one // growth^(k-1)

	cumNotional := decimal.Zero
	cumSize := decimal.Zero
	cumQuantity := 0.0
	cumMargin := 0.0
	previousPrice := 0.0

	for k := 1; k <= p.Levels; k++ {
		var quantity, margin decimal.Decimal
		if k == 1 {
			quantity = initialQuantity
			margin = decimal.NewFromFloat(p.InitialMargin)
		} else {
			price = price.Mul(step)
			factor = factor.Mul(growth)
			quantity = initialQuantity.Mul(factor)
			margin = price.Mul(quantity).Div(leverage)
		}

		level := Level{
			Level:    k,
			Price:    price.InexactFloat64(),
			Quantity: quantity.InexactFloat64(),
			Margin:   margin.InexactFloat64(),
		}

		cumQuantity += level.Quantity
		cumMargin += level.Margin
		cumNotional = cumNotional.Add(price.Mul(quantity))
		cumSize = cumSize.Add(quantity)

		level.CumulativeQuantity = cumQuantity
		level.CumulativeMargin = cumMargin
		level.AveragePrice = cumNotional.Div(cumSize).InexactFloat64()
		level.LiquidationPrice = position.MustLiquidationPrice(
			p.Side, p.Leverage, level.AveragePrice, opts.RateFor(cumNotional.InexactFloat64()))
		if k > 1 {
			level.PriceDropFromPrevious = adverseMove(p.Side, previousPrice, level.Price)
		}

		previousPrice = level.Price
		levels = append(levels, level)
	}

	last := levels[len(levels)-1]
	final := position.Evaluate(position.Position{
		Symbol:     p.Symbol,
		Side:       p.Side,
		Leverage:   p.Leverage,
		EntryPrice: last.AveragePrice,
		Quantity:   last.CumulativeQuantity,
		Margin:     last.CumulativeMargin,
	}, last.Price, opts)

	return Plan{
		Params:                p,
		Levels:                levels,
		FinalAveragePrice:     last.AveragePrice,
		FinalLiquidationPrice: last.LiquidationPrice,
		TotalQuantity:         last.CumulativeQuantity,
		TotalMargin:           last.CumulativeMargin,
		TotalValue:            cumNotional.InexactFloat64(),
		MaxDrawdown:           adverseMove(p.Side, p.InitialPrice, last.Price),
		FinalUnrealizedPnL:    final.UnrealizedPnL,
		FinalRiskLevel:        final.RiskLevel,
	}
}

// adverseMove percent move from -> to, positive when the price went against the side.
func adverseMove(side position.Side, from, to float64) float64 {
	if from <= 0 {
		return 0
	}
	if side == position.SHORT {
		return (to - from) / from * 100
	}
	return (from - to) / from * 100
}
