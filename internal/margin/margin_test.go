package margin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialMargin(t *testing.T) {
	assert.Equal(t, 5000.0, InitialMargin(50000, 10))
	assert.Equal(t, 750.0, InitialMargin(15000, 20))
	assert.Equal(t, 100.0, InitialMargin(100, 0))
}

func TestTiers(t *testing.T) {
	t.Run("Rate", func(t *testing.T) {
		assert.Equal(t, 0.004, DefaultTiers.Rate(10000))
		assert.Equal(t, 0.005, DefaultTiers.Rate(50000))
		assert.Equal(t, 0.01, DefaultTiers.Rate(999999))
		assert.Equal(t, 0.15, DefaultTiers.Rate(1e9))
	})

	t.Run("MaxLeverage", func(t *testing.T) {
		assert.Equal(t, 125.0, DefaultTiers.MaxLeverage(1000))
		assert.Equal(t, 20.0, DefaultTiers.MaxLeverage(2000000))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, 0.0, Tiers{}.Rate(1000))
		assert.Equal(t, 0.0, Tiers{}.MaxLeverage(1000))
	})

	t.Run("MaintenanceMargin", func(t *testing.T) {
		assert.Equal(t, 250.0, MaintenanceMargin(50000, DefaultTiers))
		assert.Equal(t, 40.0, MaintenanceMargin(10000, DefaultTiers))
	})
}

func TestMaxPosition(t *testing.T) {
	result := MaxPosition(MaxPositionParams{WalletBalance: 1000, Leverage: 20, EntryPrice: 50000}, DefaultTiers)

	assert.Equal(t, 0.4, result.MaxQuantity)
	assert.Equal(t, 20000.0, result.MaxPositionValue)
	assert.Equal(t, 1000.0, result.RequiredMargin)
	assert.Equal(t, 125.0, result.BracketMaxLeverage)
	assert.InDelta(t, 80.0, result.MaintenanceMargin, 1e-9)
	// maxPositionValue == maxQuantity * entryPrice
	assert.InDelta(t, result.MaxPositionValue, result.MaxQuantity*50000, 1e-9)
}
