package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	t.Run("Components", func(t *testing.T) {
		// leverage 10 -> 3.2, margin 0.1 -> 27, distance 9.5 -> 27.15
		assert.InDelta(t, 57.35, Score(0.1, 10, 9.5), 1e-9)
	})

	t.Run("LeverageCapped", func(t *testing.T) {
		assert.Equal(t, LeverageWeight, LeverageRisk(125))
		assert.Equal(t, LeverageWeight, LeverageRisk(500))
		assert.Equal(t, 0.0, LeverageRisk(-3))
	})

	t.Run("Bounds", func(t *testing.T) {
		for _, mr := range []float64{-2, 0, 0.004, 0.5, 1, 3} {
			for _, leverage := range []float64{1, 2, 10, 50, 100, 125} {
				for _, d := range []float64{-50, 0, 0.5, 10, 99, 100, 250} {
					s := Score(mr, leverage, d)
					assert.GreaterOrEqual(t, s, 0.0)
					assert.LessOrEqual(t, s, 100.0)
				}
			}
		}
	})
}

func TestThresholdsLevel(t *testing.T) {
	cases := []struct {
		score float64
		want  Level
	}{
		{0, LOW},
		{24.99, LOW},
		{25, MEDIUM},
		{49.9, MEDIUM},
		{50, HIGH},
		{74.9, HIGH},
		{75, EXTREME},
		{100, EXTREME},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DefaultThresholds.Level(c.score), "score=%v", c.score)
	}

	custom := Thresholds{Medium: 10, High: 20, Extreme: 30}
	assert.Equal(t, EXTREME, custom.Level(31))
}

func TestLevelText(t *testing.T) {
	text, err := HIGH.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "HIGH", string(text))

	var l Level
	require.NoError(t, l.UnmarshalText([]byte("extreme")))
	assert.Equal(t, EXTREME, l)
	assert.Error(t, l.UnmarshalText([]byte("calm")))
}

func TestAnalyze(t *testing.T) {
	t.Run("Calm", func(t *testing.T) {
		a := Analyze(Input{MarginRatio: 1, Leverage: 1, LiquidationDistance: 100}, DefaultThresholds)

		assert.Equal(t, LOW, a.RiskLevel)
		assert.Equal(t, 0.0, a.ConcentrationRisk)
		assert.Empty(t, a.Recommendations)
	})

	t.Run("Stressed", func(t *testing.T) {
		a := Analyze(Input{
			MarginRatio:         0.01,
			Leverage:            100,
			LiquidationDistance: 0.5,
			PositionMargin:      800,
			WalletBalance:       1000,
		}, DefaultThresholds)

		assert.Equal(t, EXTREME, a.RiskLevel)
		assert.InDelta(t, 80.0, a.ConcentrationRisk, 1e-9)
		assert.InDelta(t, 32.0, a.LeverageRisk, 1e-9)
		assert.Len(t, a.Recommendations, 4)
	})
}
