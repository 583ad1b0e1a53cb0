package params

import (
	"strings"

	"github.com/spf13/cast"

	"frizo/futures_calculator/internal/kelly"
	"frizo/futures_calculator/internal/margin"
	"frizo/futures_calculator/internal/position"
	"frizo/futures_calculator/internal/pyramid"
	"frizo/futures_calculator/internal/target"
	"frizo/futures_calculator/internal/validation"
)

// PositionForm raw position input
type PositionForm struct {
	Symbol       string
	Side         string
	Leverage     string
	EntryPrice   string
	Quantity     string
	Margin       string
	CurrentPrice string // optional
	StopLoss     string // optional
	TakeProfit   string // optional
}

// Position parses the form, currentPrice is 0 when left empty.
func (f PositionForm) Position() (pos position.Position, currentPrice float64, errs validation.Errors) {
	var p parser
	pos = position.Position{
		Symbol:     symbol(f.Symbol),
		Side:       p.side("side", f.Side),
		Leverage:   p.number("leverage", f.Leverage),
		EntryPrice: p.number("entry_price", f.EntryPrice),
		Quantity:   p.number("quantity", f.Quantity),
		Margin:     p.optional("margin", f.Margin),
		StopLoss:   p.optional("stop_loss", f.StopLoss),
		TakeProfit: p.optional("take_profit", f.TakeProfit),
	}
	// margin defaults to notional / leverage
	if strings.TrimSpace(f.Margin) == "" && pos.Leverage > 0 {
		pos.Margin = margin.InitialMargin(pos.Notional(), pos.Leverage)
	}
	currentPrice = p.optional("current_price", f.CurrentPrice)
	return pos, currentPrice, p.errs
}

// AddForm original position plus the new fill
type AddForm struct {
	PositionForm
	AddPrice    string
	AddQuantity string
	AddMargin   string // optional, defaults to fill notional / leverage
}

func (f AddForm) Parse() (pos position.Position, fill position.Fill, currentPrice float64, errs validation.Errors) {
	pos, currentPrice, errs = f.PositionForm.Position()

	var p parser
	fill = position.Fill{
		Price:    p.number("add_price", f.AddPrice),
		Quantity: p.number("add_quantity", f.AddQuantity),
		Margin:   p.optional("add_margin", f.AddMargin),
	}
	if strings.TrimSpace(f.AddMargin) == "" && pos.Leverage > 0 {
		fill.Margin = margin.InitialMargin(fill.Price*fill.Quantity, pos.Leverage)
	}
	return pos, fill, currentPrice, append(errs, p.errs...)
}

// PyramidForm raw pyramid plan input
type PyramidForm struct {
	Symbol           string
	Side             string
	InitialPrice     string
	InitialQuantity  string
	InitialMargin    string // optional, defaults to notional / leverage
	Leverage         string
	Levels           string
	Strategy         string // optional, EQUAL_RATIO
	PriceDropPercent string
	RatioMultiplier  string
}

func (f PyramidForm) Parse() (pyramid.Params, validation.Errors) {
	var p parser
	params := pyramid.Params{
		Symbol:           symbol(f.Symbol),
		Side:             p.side("side", f.Side),
		InitialPrice:     p.number("initial_price", f.InitialPrice),
		InitialQuantity:  p.number("initial_quantity", f.InitialQuantity),
		InitialMargin:    p.optional("initial_margin", f.InitialMargin),
		Leverage:         p.number("leverage", f.Leverage),
		Levels:           p.integer("levels", f.Levels),
		Strategy:         p.strategy("strategy", f.Strategy),
		PriceDropPercent: p.number("price_drop_percent", f.PriceDropPercent),
		RatioMultiplier:  p.number("ratio_multiplier", f.RatioMultiplier),
	}
	if strings.TrimSpace(f.InitialMargin) == "" && params.Leverage > 0 {
		params.InitialMargin = margin.InitialMargin(params.InitialPrice*params.InitialQuantity, params.Leverage)
	}
	return params, p.errs
}

// TargetForm raw target-price input
type TargetForm struct {
	Side       string
	EntryPrice string
	TargetROE  string
	Leverage   string // optional, 1
	Quantity   string // optional
	MaxLoss    string // optional, percent of margin
}

func (f TargetForm) Parse() (target.Params, validation.Errors) {
	var p parser
	params := target.Params{
		Side:           p.side("side", f.Side),
		EntryPrice:     p.number("entry_price", f.EntryPrice),
		TargetROE:      p.number("target_roe", f.TargetROE),
		Leverage:       p.optional("leverage", f.Leverage),
		Quantity:       p.optional("quantity", f.Quantity),
		MaxLossPercent: p.optional("max_loss_percent", f.MaxLoss),
	}
	if params.Leverage == 0 && strings.TrimSpace(f.Leverage) == "" {
		params.Leverage = 1
	}
	return params, p.errs
}

// BreakEvenForm fee rates are given in percent ("0.04" = 0.04%)
type BreakEvenForm struct {
	Side         string
	EntryPrice   string
	OpenFeeRate  string
	CloseFeeRate string
}

func (f BreakEvenForm) Parse() (target.BreakEvenParams, validation.Errors) {
	var p parser
	return target.BreakEvenParams{
		Side:         p.side("side", f.Side),
		EntryPrice:   p.number("entry_price", f.EntryPrice),
		OpenFeeRate:  p.optional("open_fee_rate", f.OpenFeeRate) / 100,
		CloseFeeRate: p.optional("close_fee_rate", f.CloseFeeRate) / 100,
	}, p.errs
}

// MaxPositionForm raw max-position input
type MaxPositionForm struct {
	WalletBalance string
	Leverage      string
	EntryPrice    string
}

func (f MaxPositionForm) Parse() (margin.MaxPositionParams, validation.Errors) {
	var p parser
	return margin.MaxPositionParams{
		WalletBalance: p.number("wallet_balance", f.WalletBalance),
		Leverage:      p.number("leverage", f.Leverage),
		EntryPrice:    p.number("entry_price", f.EntryPrice),
	}, p.errs
}

// KellyForm win rate accepts percent or fraction. Empty fraction fields take
// the supplied defaults.
type KellyForm struct {
	WinRate      string
	WinLossRatio string
	Fraction     string
	MaxFraction  string
	Capital      string
}

func (f KellyForm) Parse(defaultFraction, defaultMax float64) (kelly.Params, validation.Errors) {
	var p parser
	params := kelly.Params{
		WinRate:      p.percentOrFraction("win_rate", f.WinRate),
		WinLossRatio: p.number("win_loss_ratio", f.WinLossRatio),
		Fraction:     defaultFraction,
		MaxFraction:  defaultMax,
		Capital:      p.optional("capital", f.Capital),
	}
	if strings.TrimSpace(f.Fraction) != "" {
		params.Fraction = p.number("fraction", f.Fraction)
	}
	if strings.TrimSpace(f.MaxFraction) != "" {
		params.MaxFraction = p.number("max_fraction", f.MaxFraction)
	}
	return params, p.errs
}

// Fills parses "price:quantity" pairs separated by spaces or semicolons,
// e.g. "50000:1; 48000:0.5".
func Fills(raw string) ([]position.Fill, validation.Errors) {
	var p parser
	entries := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ' ' || r == '\n' || r == '\t'
	})

	fills := make([]position.Fill, 0, len(entries))
	for i, entry := range entries {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			p.fail(fillField(i, ""), "format", "fills[%d] must look like price:quantity", i)
			continue
		}
		fills = append(fills, position.Fill{
			Price:    p.number(fillField(i, "price"), parts[0]),
			Quantity: p.number(fillField(i, "quantity"), parts[1]),
		})
	}
	return fills, p.errs
}

func fillField(i int, name string) string {
	field := "fills[" + cast.ToString(i) + "]"
	if name == "" {
		return field
	}
	return field + "." + name
}
