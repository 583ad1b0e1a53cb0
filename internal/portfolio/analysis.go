package portfolio

import (
	"frizo/futures_calculator/internal/position"
)

// Result aggregated PnL statistics over a set of positions
type Result struct {
	TotalPositions  int     `json:"total_positions"`
	OpenPositions   int     `json:"open_positions"`
	ClosedPositions int     `json:"closed_positions"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	WinRate         float64 `json:"win_rate"`
	TotalPnL        float64 `json:"total_pnl"`
	RealizedPnL     float64 `json:"realized_pnl"`
	UnrealizedPnL   float64 `json:"unrealized_pnl"`
	TotalWin        float64 `json:"total_win"`
	TotalLoss       float64 `json:"total_loss"` // positive amount
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"`
	LargestWin      float64 `json:"largest_win"`
	ProfitFactor    float64 `json:"profit_factor"`
	TotalMargin     float64 `json:"total_margin"`
	TotalROE        float64 `json:"total_roe"`
	// most negative single position PnL, not an equity curve drawdown
	MaxDrawdown float64 `json:"max_drawdown"`
}

// PositionPnL PnL of one position. Closed positions settle at ExitPrice, open
// ones at currentPrices[symbol] falling back to the entry price.
func PositionPnL(p position.Position, currentPrices map[string]float64) float64 {
	price := p.EntryPrice
	if p.Status == position.StatusClosed {
		if p.ExitPrice > 0 {
			price = p.ExitPrice
		}
	} else if current, ok := currentPrices[p.Symbol]; ok && current > 0 {
		price = current
	}
	return position.UnrealizedPnL(p.Side, p.EntryPrice, price, p.Quantity)
}

// Analyze single pass over the positions.
func Analyze(positions []position.Position, currentPrices map[string]float64) Result {
	r := Result{TotalPositions: len(positions)}

	for _, p := range positions {
		pnl := PositionPnL(p, currentPrices)

		if p.Status == position.StatusClosed {
			r.ClosedPositions++
			r.RealizedPnL += pnl
		} else {
			r.OpenPositions++
			r.UnrealizedPnL += pnl
		}

		switch {
		case pnl > 0:
			r.Wins++
			r.TotalWin += pnl
			if pnl > r.LargestWin {
				r.LargestWin = pnl
			}
		case pnl < 0:
			r.Losses++
			r.TotalLoss += -pnl
		}

		if pnl < r.MaxDrawdown {
			r.MaxDrawdown = pnl
		}

		r.TotalPnL += pnl
		r.TotalMargin += p.Margin
	}

	if decided := r.Wins + r.Losses; decided > 0 {
		r.WinRate = float64(r.Wins) / float64(decided) * 100
	}
	if r.Wins > 0 {
		r.AvgWin = r.TotalWin / float64(r.Wins)
	}
	if r.Losses > 0 {
		r.AvgLoss = r.TotalLoss / float64(r.Losses)
	}
	if r.TotalLoss > 0 {
		r.ProfitFactor = r.TotalWin / r.TotalLoss
	}
	r.TotalROE = position.ROE(r.TotalPnL, r.TotalMargin)

	return r
}
