package target

import (
	"testing"

	"frizo/futures_calculator/internal/position"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	assert.Equal(t, 55000.0, Price(position.LONG, 50000, 100, 10))
	assert.Equal(t, 45000.0, Price(position.SHORT, 50000, 100, 10))
	assert.Equal(t, 47500.0, Price(position.LONG, 50000, -50, 10))
	assert.Equal(t, 60000.0, Price(position.LONG, 50000, 20, 0))
}

func TestPriceRoundTrip(t *testing.T) {
	cases := []struct {
		entry, roe, leverage, quantity float64
	}{
		{50000, 100, 10, 1},
		{3000, -35, 20, 4.2},
		{0.0123, 250, 125, 10000},
		{27123.7, 1000, 3, 0.01},
		{1.5, -999, 1, 7},
	}

	for _, side := range []position.Side{position.LONG, position.SHORT} {
		for _, c := range cases {
			price := Price(side, c.entry, c.roe, c.leverage)
			margin := c.entry * c.quantity / c.leverage
			pnl := position.UnrealizedPnL(side, c.entry, price, c.quantity)

			assert.InDelta(t, c.roe, position.ROE(pnl, margin), 1e-6, "side=%s %+v", side, c)
		}
	}
}

func TestCalculate(t *testing.T) {
	r := Calculate(Params{Side: position.LONG, EntryPrice: 50000, TargetROE: 50, Leverage: 10, Quantity: 2})

	assert.Equal(t, 52500.0, r.TargetPrice)
	assert.InDelta(t, 5.0, r.PriceChange, 1e-9)
	assert.Equal(t, 5000.0, r.ExpectedPnL)
	assert.Equal(t, 10000.0, r.RequiredMargin)

	r = Calculate(Params{Side: position.SHORT, EntryPrice: 50000, TargetROE: 50, Leverage: 10})
	assert.Equal(t, 47500.0, r.TargetPrice)
	assert.Equal(t, 0.0, r.ExpectedPnL)
	assert.Equal(t, 0.0, r.StopLossPrice)

	r = Calculate(Params{Side: position.SHORT, EntryPrice: 50000, TargetROE: 50, Leverage: 10, MaxLossPercent: 20})
	assert.Equal(t, 51000.0, r.StopLossPrice)
}

func TestStopLossPrice(t *testing.T) {
	assert.Equal(t, 49000.0, StopLossPrice(position.LONG, 50000, 20, 10))
	assert.Equal(t, 51000.0, StopLossPrice(position.SHORT, 50000, 20, 10))
}

func TestBreakEvenPrice(t *testing.T) {
	long := BreakEvenPrice(BreakEvenParams{Side: position.LONG, EntryPrice: 50000, OpenFeeRate: 0.0004, CloseFeeRate: 0.0004})
	assert.InDelta(t, 50040.016, long, 1e-3)
	assert.Greater(t, long, 50000.0)

	short := BreakEvenPrice(BreakEvenParams{Side: position.SHORT, EntryPrice: 50000, OpenFeeRate: 0.0004, CloseFeeRate: 0.0004})
	assert.Less(t, short, 50000.0)

	assert.Equal(t, 50000.0, BreakEvenPrice(BreakEvenParams{Side: position.LONG, EntryPrice: 50000}))
}
