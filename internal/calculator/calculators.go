package calculator

import (
	"context"
	"slices"

	"frizo/futures_calculator/internal/cache"
	"frizo/futures_calculator/internal/history"
	"frizo/futures_calculator/internal/kelly"
	"frizo/futures_calculator/internal/margin"
	"frizo/futures_calculator/internal/portfolio"
	"frizo/futures_calculator/internal/position"
	"frizo/futures_calculator/internal/pyramid"
	"frizo/futures_calculator/internal/risk"
	"frizo/futures_calculator/internal/target"
)

// ==================== position ====================

type positionRequest struct {
	Position     position.Position `json:"position"`
	CurrentPrice float64           `json:"current_price,omitempty"`
}

// Position snapshot of p at currentPrice, 0 means at entry.
func (s *Service) Position(ctx context.Context, p position.Position, currentPrice float64) (position.Snapshot, error) {
	if err := invalid(history.KindPosition, s.validator.Position(p, currentPrice)); err != nil {
		return position.Snapshot{}, err
	}

	snap := s.memos.position.Do(cache.Key(p, currentPrice), func() position.Snapshot {
		return position.Evaluate(p, currentPrice, s.opts)
	})

	s.log.Debug("position calculated", "side", p.Side, "liquidation_price", snap.LiquidationPrice, "risk", snap.RiskLevel)
	s.record(ctx, history.KindPosition, positionRequest{Position: p, CurrentPrice: currentPrice}, snap)
	return snap, nil
}

type addRequest struct {
	Position     position.Position `json:"position"`
	Fill         position.Fill     `json:"fill"`
	CurrentPrice float64           `json:"current_price,omitempty"`
}

// AddPosition averages fill into original (加倉).
func (s *Service) AddPosition(ctx context.Context, original position.Position, fill position.Fill, currentPrice float64) (position.AddResult, error) {
	if err := invalid(history.KindAddPosition, s.validator.AddPosition(original, fill, currentPrice)); err != nil {
		return position.AddResult{}, err
	}

	res := s.memos.addPosition.Do(cache.Key(original, fill, currentPrice), func() position.AddResult {
		return position.Add(original, fill, currentPrice, s.opts)
	})

	s.log.Debug("position added", "average_price", res.AveragePrice, "quantity", res.TotalQuantity)
	s.record(ctx, history.KindAddPosition, addRequest{Position: original, Fill: fill, CurrentPrice: currentPrice}, res)
	return res, nil
}

// LiquidationPrice single formula call at the flat maintenance rate. Bad input
// comes back as an error wrapping position.ErrInvalidParameter.
func (s *Service) LiquidationPrice(side position.Side, leverage, avgPrice float64) (float64, error) {
	return position.LiquidationPrice(side, leverage, avgPrice, s.opts.MaintenanceMarginRate)
}

// ==================== plans ====================

// Pyramid builds a fresh plan. Levels are copied out of the cache so callers
// never share a slice.
func (s *Service) Pyramid(ctx context.Context, p pyramid.Params) (pyramid.Plan, error) {
	if err := invalid(history.KindPyramid, s.validator.Pyramid(p)); err != nil {
		return pyramid.Plan{}, err
	}

	plan := s.memos.pyramid.Do(cache.Key(p), func() pyramid.Plan {
		return pyramid.Build(p, s.opts)
	})
	plan.Levels = slices.Clone(plan.Levels)

	s.log.Debug("pyramid planned", "levels", len(plan.Levels), "strategy", p.Strategy, "final_liquidation_price", plan.FinalLiquidationPrice)
	s.record(ctx, history.KindPyramid, p, plan)
	return plan, nil
}

type pnlRequest struct {
	Positions     []position.Position `json:"positions"`
	CurrentPrices map[string]float64  `json:"current_prices,omitempty"`
}

// PnL portfolio statistics, open positions are marked at currentPrices.
func (s *Service) PnL(ctx context.Context, positions []position.Position, currentPrices map[string]float64) (portfolio.Result, error) {
	if err := invalid(history.KindPortfolio, s.validator.Portfolio(positions, currentPrices)); err != nil {
		return portfolio.Result{}, err
	}

	res := s.memos.portfolio.Do(cache.Key(positions, currentPrices), func() portfolio.Result {
		return portfolio.Analyze(positions, currentPrices)
	})

	s.log.Debug("pnl analysed", "positions", res.TotalPositions, "total_pnl", res.TotalPnL)
	s.record(ctx, history.KindPortfolio, pnlRequest{Positions: positions, CurrentPrices: currentPrices}, res)
	return res, nil
}

// ==================== prices ====================

func (s *Service) Target(ctx context.Context, p target.Params) (target.Result, error) {
	if err := invalid(history.KindTarget, s.validator.Target(p)); err != nil {
		return target.Result{}, err
	}

	res := s.memos.target.Do(cache.Key(p), func() target.Result {
		return target.Calculate(p)
	})

	s.record(ctx, history.KindTarget, p, res)
	return res, nil
}

// BreakEvenResult exit price covering both fees
type BreakEvenResult struct {
	BreakEvenPrice float64 `json:"break_even_price"`
	PriceChange    float64 `json:"price_change"` // percent from entry, signed
}

func (s *Service) BreakEven(ctx context.Context, p target.BreakEvenParams) (BreakEvenResult, error) {
	if err := invalid(history.KindBreakEven, s.validator.BreakEven(p)); err != nil {
		return BreakEvenResult{}, err
	}

	res := s.memos.breakEven.Do(cache.Key(p), func() BreakEvenResult {
		price := target.BreakEvenPrice(p)
		return BreakEvenResult{
			BreakEvenPrice: price,
			PriceChange:    (price - p.EntryPrice) / p.EntryPrice * 100,
		}
	})

	s.record(ctx, history.KindBreakEven, p, res)
	return res, nil
}

// EntryPrice weighted cost basis of the fills
func (s *Service) EntryPrice(ctx context.Context, fills []position.Fill) (position.EntrySummary, error) {
	if err := invalid(history.KindEntryPrice, s.validator.Fills(fills)); err != nil {
		return position.EntrySummary{}, err
	}

	res := s.memos.entryPrice.Do(cache.Key(fills), func() position.EntrySummary {
		return position.SummarizeEntries(fills)
	})

	s.record(ctx, history.KindEntryPrice, fills, res)
	return res, nil
}

// ==================== sizing ====================

func (s *Service) MaxPosition(ctx context.Context, p margin.MaxPositionParams) (margin.MaxPositionResult, error) {
	if err := invalid(history.KindMaxPosition, s.validator.MaxPosition(p)); err != nil {
		return margin.MaxPositionResult{}, err
	}

	res := s.memos.maxPosition.Do(cache.Key(p), func() margin.MaxPositionResult {
		return margin.MaxPosition(p, s.tiers)
	})

	if res.BracketMaxLeverage > 0 && p.Leverage > res.BracketMaxLeverage {
		s.log.Info("leverage above bracket limit", "leverage", p.Leverage, "bracket_max_leverage", res.BracketMaxLeverage)
	}
	s.record(ctx, history.KindMaxPosition, p, res)
	return res, nil
}

// Kelly zero Fraction / MaxFraction take the configured defaults.
func (s *Service) Kelly(ctx context.Context, p kelly.Params) (kelly.Result, error) {
	if p.Fraction == 0 {
		p.Fraction = s.kellyFraction
	}
	if p.MaxFraction == 0 {
		p.MaxFraction = s.kellyMaxFraction
	}
	if err := invalid(history.KindKelly, s.validator.Kelly(p)); err != nil {
		return kelly.Result{}, err
	}

	res := s.memos.kelly.Do(cache.Key(p), func() kelly.Result {
		return kelly.Calculate(p)
	})

	s.record(ctx, history.KindKelly, p, res)
	return res, nil
}

// ==================== risk ====================

type riskRequest struct {
	Position      position.Position `json:"position"`
	CurrentPrice  float64           `json:"current_price,omitempty"`
	WalletBalance float64           `json:"wallet_balance,omitempty"`
}

// RiskAnalysis full risk report, walletBalance 0 skips concentration.
func (s *Service) RiskAnalysis(ctx context.Context, p position.Position, currentPrice, walletBalance float64) (risk.Analysis, error) {
	if err := invalid(history.KindRisk, s.validator.RiskAnalysis(p, currentPrice, walletBalance)); err != nil {
		return risk.Analysis{}, err
	}

	res := s.memos.risk.Do(cache.Key(p, currentPrice, walletBalance), func() risk.Analysis {
		snap := position.Evaluate(p, currentPrice, s.opts)
		return risk.Analyze(risk.Input{
			MarginRatio:         snap.MarginRatio,
			Leverage:            p.Leverage,
			LiquidationDistance: snap.DistanceToLiquidation,
			PositionMargin:      p.Margin,
			WalletBalance:       walletBalance,
		}, s.opts.Thresholds)
	})
	// recommendations slice is shared with the cache
	res.Recommendations = slices.Clone(res.Recommendations)

	s.record(ctx, history.KindRisk, riskRequest{Position: p, CurrentPrice: currentPrice, WalletBalance: walletBalance}, res)
	return res, nil
}
