package position

import "github.com/shopspring/decimal"

// Fill one entry event. Margin is only read by Add.
type Fill struct {
	Price    float64 `json:"price" validate:"gt=0,lte=1e10"`
	Quantity float64 `json:"quantity" validate:"gt=0,lte=1e12"`
	Margin   float64 `json:"margin,omitempty" validate:"gte=0,lte=1e12"`
}

// AveragePrice volume weighted mean of the fills, 0 when total quantity is 0.
func AveragePrice(fills []Fill) float64 {
	return average(totals(fills))
}

// totals Σ(price * size) and Σ(size)
func totals(fills []Fill) (value, size decimal.Decimal) {
	value, size = decimal.Zero, decimal.Zero
	for _, f := range fills {
		q := decimal.NewFromFloat(f.Quantity)
		value = value.Add(decimal.NewFromFloat(f.Price).Mul(q))
		size = size.Add(q)
	}
	return value, size
}

// formula: average price = Σ(price * size) / Σ(size)
func average(value, size decimal.Decimal) float64 {
	if size.IsZero() {
		return 0
	}
	return value.Div(size).InexactFloat64()
}

// EntrySummary weighted cost basis across partial fills
type EntrySummary struct {
	AveragePrice  float64 `json:"average_price"`
	TotalQuantity float64 `json:"total_quantity"`
	TotalCost     float64 `json:"total_cost"`
	Fills         int     `json:"fills"`
}

// SummarizeEntries reduces fills into one cost basis.
func SummarizeEntries(fills []Fill) EntrySummary {
	value, size := totals(fills)
	return EntrySummary{
		AveragePrice:  average(value, size),
		TotalQuantity: size.InexactFloat64(),
		TotalCost:     value.InexactFloat64(),
		Fills:         len(fills),
	}
}
