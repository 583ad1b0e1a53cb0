package target

import (
	"github.com/shopspring/decimal"

	"frizo/futures_calculator/internal/position"
)

var hundred = decimal.NewFromInt(100)

// Params target-price calculator input. Quantity is optional and only feeds
// the expected PnL figures, MaxLossPercent (of margin) adds a stop-loss price.
type Params struct {
	Side           position.Side `json:"side" validate:"side"`
	EntryPrice     float64       `json:"entry_price" validate:"gt=0,lte=1e10"`
	TargetROE      float64       `json:"target_roe" validate:"ne=0,gte=-1000,lte=1000"`
	Leverage       float64       `json:"leverage" validate:"gte=1,lte=125"`
	Quantity       float64       `json:"quantity,omitempty" validate:"gte=0,lte=1e12"`
	MaxLossPercent float64       `json:"max_loss_percent,omitempty" validate:"gte=0,lt=100"`
}

// Result price that realises the ROE, with the implied numbers
type Result struct {
	TargetPrice    float64 `json:"target_price"`
	PriceChange    float64 `json:"price_change"`              // signed percent from entry
	ExpectedPnL    float64 `json:"expected_pnl"`              // 0 without quantity
	RequiredMargin float64 `json:"required_margin"`           // 0 without quantity
	StopLossPrice  float64 `json:"stop_loss_price,omitempty"` // 0 without max loss
}

// Price inverse of the ROE formula
//
//	LONG:  entryPrice * (1 + targetROE/100/leverage)
//	SHORT: entryPrice * (1 - targetROE/100/leverage)
func Price(side position.Side, entryPrice, targetROE, leverage float64) float64 {
	if leverage <= 0 {
		leverage = 1
	}
	move := decimal.NewFromFloat(targetROE).Div(hundred).Div(decimal.NewFromFloat(leverage))
	if side == position.SHORT {
		move = move.Neg()
	}
	return decimal.NewFromFloat(entryPrice).Mul(decimal.NewFromInt(1).Add(move)).InexactFloat64()
}

// Calculate target price plus the PnL it would realise.
func Calculate(p Params) Result {
	price := Price(p.Side, p.EntryPrice, p.TargetROE, p.Leverage)

	r := Result{
		TargetPrice: price,
		PriceChange: (price - p.EntryPrice) / p.EntryPrice * 100,
	}
	if p.Quantity > 0 {
		r.ExpectedPnL = position.UnrealizedPnL(p.Side, p.EntryPrice, price, p.Quantity)
		r.RequiredMargin = position.TotalValue(p.EntryPrice, p.Quantity) / p.Leverage
	}
	if p.MaxLossPercent > 0 {
		r.StopLossPrice = StopLossPrice(p.Side, p.EntryPrice, p.MaxLossPercent, p.Leverage)
	}
	return r
}

// StopLossPrice price at which the position has lost maxLossPercent of its margin.
func StopLossPrice(side position.Side, entryPrice, maxLossPercent, leverage float64) float64 {
	return Price(side, entryPrice, -maxLossPercent, leverage)
}

// BreakEvenParams entry plus round trip fee rates (0.0004 = 0.04%)
type BreakEvenParams struct {
	Side         position.Side `json:"side" validate:"side"`
	EntryPrice   float64       `json:"entry_price" validate:"gt=0,lte=1e10"`
	OpenFeeRate  float64       `json:"open_fee_rate" validate:"gte=0,lt=0.1"`
	CloseFeeRate float64       `json:"close_fee_rate" validate:"gte=0,lt=0.1"`
}

// BreakEvenPrice exit price that pays back both fees.
//
//	LONG:  entry * (1 + openFee) / (1 - closeFee)
//	SHORT: entry * (1 - openFee) / (1 + closeFee)
func BreakEvenPrice(p BreakEvenParams) float64 {
	one := decimal.NewFromInt(1)
	entry := decimal.NewFromFloat(p.EntryPrice)
	openFee := decimal.NewFromFloat(p.OpenFeeRate)
	closeFee := decimal.NewFromFloat(p.CloseFeeRate)

	if p.Side == position.SHORT {
		return entry.Mul(one.Sub(openFee)).Div(one.Add(closeFee)).InexactFloat64()
	}
	return entry.Mul(one.Add(openFee)).Div(one.Sub(closeFee)).InexactFloat64()
}
