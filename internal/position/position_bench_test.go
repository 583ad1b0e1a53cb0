package position

import "testing"

func BenchmarkLiquidationPrice(b *testing.B) {
	b.Run("LONG", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = LiquidationPrice(LONG, 10, 50000, DefaultMaintenanceMarginRate)
		}
	})

	b.Run("SHORT", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = LiquidationPrice(SHORT, 20, 3000, DefaultMaintenanceMarginRate)
		}
	})

	b.Run("HighLeverage", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = LiquidationPrice(LONG, 125, 50000, DefaultMaintenanceMarginRate)
		}
	})
}

func BenchmarkAveragePrice(b *testing.B) {
	fills := make([]Fill, 10)
	for i := range fills {
		fills[i] = Fill{Price: 50000 - float64(i)*100, Quantity: 1 + float64(i)*0.1}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		AveragePrice(fills)
	}
}

func BenchmarkEvaluate(b *testing.B) {
	pos := createTestPosition(LONG)
	opts := DefaultOptions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Evaluate(pos, 51000, opts)
	}
}

func BenchmarkAdd(b *testing.B) {
	pos := createTestPosition(LONG)
	opts := DefaultOptions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Add(pos, Fill{Price: 50100, Quantity: 0.5, Margin: 2505}, 0, opts)
	}
}
