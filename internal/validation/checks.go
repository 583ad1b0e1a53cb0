package validation

import (
	"fmt"
	"math"
	"sort"

	"frizo/futures_calculator/internal/kelly"
	"frizo/futures_calculator/internal/margin"
	"frizo/futures_calculator/internal/position"
	"frizo/futures_calculator/internal/pyramid"
	"frizo/futures_calculator/internal/target"
)

// Position field checks, leverage cap, stop-loss / take-profit placement and
// the mark price (0 means at entry).
func (v *Validator) Position(p position.Position, currentPrice float64) Errors {
	errs := v.Struct(p)
	v.checkLeverage(&errs, "leverage", p.Leverage)
	checkExits(&errs, p)
	checkPrice(&errs, "current_price", currentPrice)
	return errs
}

// AddPosition the fill must bring both quantity and margin.
func (v *Validator) AddPosition(original position.Position, fill position.Fill, currentPrice float64) Errors {
	errs := v.Position(original, currentPrice)
	for _, e := range v.Struct(fill) {
		e.Field = "fill." + e.Field
		errs = append(errs, e)
	}
	// negative margins already fail the gte tag
	if fill.Margin == 0 {
		errs.add("fill.margin", "gt", "fill.margin must be greater than 0")
	}
	return errs
}

type fillList struct {
	Fills []position.Fill `json:"fills" validate:"min=1,dive"`
}

// Fills entry-price calculator input
func (v *Validator) Fills(fills []position.Fill) Errors {
	return v.Struct(fillList{Fills: fills})
}

// Pyramid plan parameters
func (v *Validator) Pyramid(p pyramid.Params) Errors {
	errs := v.Struct(p)
	v.checkLeverage(&errs, "leverage", p.Leverage)
	return errs
}

// Target price parameters, the target price itself must stay positive.
func (v *Validator) Target(p target.Params) Errors {
	errs := v.Struct(p)
	v.checkLeverage(&errs, "leverage", p.Leverage)
	if p.Leverage > 0 && !math.IsNaN(p.TargetROE) {
		move := p.TargetROE / p.Leverage
		if p.Side == position.LONG && move <= -100 {
			errs.add("target_roe", "range", "target_roe must be greater than %g for a %gx LONG", -100*p.Leverage, p.Leverage)
		}
		if p.Side == position.SHORT && move >= 100 {
			errs.add("target_roe", "range", "target_roe must be less than %g for a %gx SHORT", 100*p.Leverage, p.Leverage)
		}
	}
	return errs
}

// BreakEven parameters
func (v *Validator) BreakEven(p target.BreakEvenParams) Errors {
	return v.Struct(p)
}

// MaxPosition parameters
func (v *Validator) MaxPosition(p margin.MaxPositionParams) Errors {
	errs := v.Struct(p)
	v.checkLeverage(&errs, "leverage", p.Leverage)
	return errs
}

// Kelly parameters
func (v *Validator) Kelly(p kelly.Params) Errors {
	return v.Struct(p)
}

type positionList struct {
	Positions []position.Position `json:"positions" validate:"dive"`
}

// Portfolio every position must be valid on its own, so must every mark price.
func (v *Validator) Portfolio(positions []position.Position, currentPrices map[string]float64) Errors {
	errs := v.Struct(positionList{Positions: positions})
	for i, p := range positions {
		if p.Status == position.StatusClosed && p.ExitPrice <= 0 {
			errs.add(indexed("positions", i, "exit_price"), "required", "%s is required for closed positions", indexed("positions", i, "exit_price"))
		}
	}
	symbols := make([]string, 0, len(currentPrices))
	for symbol := range currentPrices {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		checkPrice(&errs, fmt.Sprintf("current_prices[%s]", symbol), currentPrices[symbol])
	}
	return errs
}

// checkPrice optional price: finite, 0 allowed, at most MaxPrice.
func checkPrice(errs *Errors, field string, price float64) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		errs.add(field, "finite", "%s must be a finite number", field)
		return
	}
	if price < 0 || price > MaxPrice {
		errs.add(field, "range", "%s must be between 0 and %g", field, MaxPrice)
	}
}

func (v *Validator) checkLeverage(errs *Errors, field string, leverage float64) {
	if v.maxLeverage < DefaultMaxLeverage && leverage > v.maxLeverage {
		errs.add(field, "lte", "%s must be at most %g", field, v.maxLeverage)
	}
}

// checkExits LONG: stop < entry < take-profit, SHORT reversed.
func checkExits(errs *Errors, p position.Position) {
	if p.EntryPrice <= 0 {
		return
	}
	if p.StopLoss > 0 {
		if p.Side == position.LONG && p.StopLoss >= p.EntryPrice {
			errs.add("stop_loss", "stoploss", "stop_loss must be below entry_price for LONG positions")
		}
		if p.Side == position.SHORT && p.StopLoss <= p.EntryPrice {
			errs.add("stop_loss", "stoploss", "stop_loss must be above entry_price for SHORT positions")
		}
	}
	if p.TakeProfit > 0 {
		if p.Side == position.LONG && p.TakeProfit <= p.EntryPrice {
			errs.add("take_profit", "takeprofit", "take_profit must be above entry_price for LONG positions")
		}
		if p.Side == position.SHORT && p.TakeProfit >= p.EntryPrice {
			errs.add("take_profit", "takeprofit", "take_profit must be below entry_price for SHORT positions")
		}
	}
}

func indexed(list string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", list, i, field)
}

// RiskAnalysis position plus an optional wallet balance
func (v *Validator) RiskAnalysis(p position.Position, currentPrice, walletBalance float64) Errors {
	errs := v.Position(p, currentPrice)
	if math.IsNaN(walletBalance) || walletBalance < 0 || walletBalance > MaxQuantity {
		errs.add("wallet_balance", "range", "wallet_balance must be between 0 and %g", MaxQuantity)
	}
	return errs
}
