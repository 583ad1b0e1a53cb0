package params

import (
	"testing"

	"frizo/futures_calculator/internal/position"
	"frizo/futures_calculator/internal/pyramid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionForm(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		pos, current, errs := PositionForm{
			Symbol:       " btcusdt ",
			Side:         "long",
			Leverage:     "10",
			EntryPrice:   "50,000",
			Quantity:     "1",
			CurrentPrice: "51000",
		}.Position()

		require.Empty(t, errs)
		assert.Equal(t, "BTCUSDT", pos.Symbol)
		assert.Equal(t, position.LONG, pos.Side)
		assert.Equal(t, 50000.0, pos.EntryPrice)
		assert.Equal(t, 5000.0, pos.Margin) // notional / leverage
		assert.Equal(t, 51000.0, current)
	})

	t.Run("EmptyRejected", func(t *testing.T) {
		_, current, errs := PositionForm{Side: "short", Leverage: "", EntryPrice: "abc", Quantity: "NaN"}.Position()

		assert.ElementsMatch(t, []string{"leverage", "entry_price", "quantity"}, errs.Fields())
		assert.Equal(t, 0.0, current)
	})

	t.Run("BadSide", func(t *testing.T) {
		_, _, errs := PositionForm{Side: "up", Leverage: "2", EntryPrice: "1", Quantity: "1"}.Position()
		assert.Equal(t, []string{"side"}, errs.Fields())
	})
}

func TestAddForm(t *testing.T) {
	pos, fill, _, errs := AddForm{
		PositionForm: PositionForm{Side: "LONG", Leverage: "10", EntryPrice: "50000", Quantity: "1", Margin: "5000"},
		AddPrice:     "48000",
		AddQuantity:  "0.5",
	}.Parse()

	require.Empty(t, errs)
	assert.Equal(t, 5000.0, pos.Margin)
	assert.Equal(t, 2400.0, fill.Margin)

	_, _, _, errs = AddForm{
		PositionForm: PositionForm{Side: "LONG", Leverage: "10", EntryPrice: "50000", Quantity: "1"},
	}.Parse()
	assert.ElementsMatch(t, []string{"add_price", "add_quantity"}, errs.Fields())
}

func TestPyramidForm(t *testing.T) {
	params, errs := PyramidForm{
		Side:             "short",
		InitialPrice:     "3000",
		InitialQuantity:  "2",
		Leverage:         "20",
		Levels:           "4",
		Strategy:         "double-down",
		PriceDropPercent: "2.5",
		RatioMultiplier:  "2",
	}.Parse()

	require.Empty(t, errs)
	assert.Equal(t, position.SHORT, params.Side)
	assert.Equal(t, pyramid.DoubleDown, params.Strategy)
	assert.Equal(t, 4, params.Levels)
	assert.Equal(t, 300.0, params.InitialMargin)

	_, errs = PyramidForm{Side: "long", InitialPrice: "1", InitialQuantity: "1", Leverage: "1", Levels: "2.5", Strategy: "grid", PriceDropPercent: "1", RatioMultiplier: "2"}.Parse()
	assert.ElementsMatch(t, []string{"levels", "strategy"}, errs.Fields())

	t.Run("LeadingZeroIsDecimal", func(t *testing.T) {
		params, errs := PyramidForm{Side: "long", InitialPrice: "1", InitialQuantity: "1", Leverage: "1", Levels: "010", PriceDropPercent: "1", RatioMultiplier: "2"}.Parse()
		require.Empty(t, errs)
		assert.Equal(t, 10, params.Levels)
	})
}

func TestTargetForm(t *testing.T) {
	params, errs := TargetForm{Side: "long", EntryPrice: "100", TargetROE: "-20"}.Parse()

	require.Empty(t, errs)
	assert.Equal(t, 1.0, params.Leverage)
	assert.Equal(t, -20.0, params.TargetROE)
	assert.Equal(t, 0.0, params.MaxLossPercent)

	params, errs = TargetForm{Side: "short", EntryPrice: "100", TargetROE: "50", Leverage: "5", MaxLoss: "25"}.Parse()
	require.Empty(t, errs)
	assert.Equal(t, 25.0, params.MaxLossPercent)
}

func TestBreakEvenForm(t *testing.T) {
	params, errs := BreakEvenForm{Side: "long", EntryPrice: "100", OpenFeeRate: "0.05", CloseFeeRate: ""}.Parse()

	require.Empty(t, errs)
	assert.InDelta(t, 0.0005, params.OpenFeeRate, 1e-15)
	assert.Equal(t, 0.0, params.CloseFeeRate)
}

func TestMaxPositionForm(t *testing.T) {
	params, errs := MaxPositionForm{WalletBalance: "1000", Leverage: "20", EntryPrice: "50000"}.Parse()

	require.Empty(t, errs)
	assert.Equal(t, 1000.0, params.WalletBalance)
}

func TestKellyForm(t *testing.T) {
	params, errs := KellyForm{WinRate: "55", WinLossRatio: "1.5"}.Parse(0.5, 0.25)
	require.Empty(t, errs)
	assert.InDelta(t, 0.55, params.WinRate, 1e-12)
	assert.Equal(t, 0.5, params.Fraction)
	assert.Equal(t, 0.25, params.MaxFraction)

	params, errs = KellyForm{WinRate: "0.6", WinLossRatio: "2", Fraction: "1", MaxFraction: "0.1"}.Parse(0.5, 0.25)
	require.Empty(t, errs)
	assert.Equal(t, 0.6, params.WinRate)
	assert.Equal(t, 1.0, params.Fraction)
	assert.Equal(t, 0.1, params.MaxFraction)
}

func TestFills(t *testing.T) {
	fills, errs := Fills("50000:1; 48000:0.5\n46000:0.5")
	require.Empty(t, errs)
	assert.Equal(t, []position.Fill{
		{Price: 50000, Quantity: 1},
		{Price: 48000, Quantity: 0.5},
		{Price: 46000, Quantity: 0.5},
	}, fills)

	_, errs = Fills("50000 48000:x")
	assert.Equal(t, []string{"fills[0]", "fills[1].quantity"}, errs.Fields())
}
