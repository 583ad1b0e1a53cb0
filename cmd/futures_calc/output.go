package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"frizo/futures_calculator/internal/format"
	"frizo/futures_calculator/internal/history"
	"frizo/futures_calculator/internal/portfolio"
	"frizo/futures_calculator/internal/position"
	"frizo/futures_calculator/internal/pyramid"
	"frizo/futures_calculator/internal/risk"
)

// print JSON when -json is set, otherwise the text rendering
func (a *app) print(v interface{}, text func(w *table)) error {
	if a.json {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	w := &table{tw: tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)}
	text(w)
	return w.tw.Flush()
}

type table struct {
	tw *tabwriter.Writer
}

func (w *table) row(label, value string) {
	fmt.Fprintf(w.tw, "%s:\t%s\n", label, value)
}

func (w *table) line(cells ...string) {
	fmt.Fprintln(w.tw, strings.Join(cells, "\t"))
}

func (w *table) price(v float64) string   { return format.Price(v) }
func (w *table) percent(v float64) string { return format.Percent(v) }
func (w *table) signed(v float64) string  { return format.Signed(v, 2) }
func (w *table) large(v float64) string   { return format.Large(v) }

func (w *table) snapshot(s position.Snapshot) {
	w.row("Average Price", w.price(s.AveragePrice))
	w.row("Current Price", w.price(s.CurrentPrice))
	w.row("Liquidation Price", w.price(s.LiquidationPrice))
	w.row("Distance to Liquidation", w.percent(s.DistanceToLiquidation))
	w.row("Unrealized PnL", w.signed(s.UnrealizedPnL))
	w.row("ROE", w.percent(s.ROE))
	w.row("Total Value", w.large(s.TotalValue))
	w.row("Margin", w.price(s.TotalMargin))
	w.row("Margin Ratio", w.percent(s.MarginRatio*100))
	w.row("Risk", fmt.Sprintf("%s (%s)", s.RiskLevel, format.Fixed(s.RiskScore, 1)))
}

func (w *table) plan(p pyramid.Plan) {
	w.line("Level", "Price", "Quantity", "Margin", "Cum Qty", "Avg Price", "Liq Price", "Drop")
	for _, l := range p.Levels {
		drop := "-"
		if l.Level > 1 {
			drop = w.percent(l.PriceDropFromPrevious)
		}
		w.line(
			fmt.Sprint(l.Level),
			w.price(l.Price),
			format.Fixed(l.Quantity, 4),
			w.price(l.Margin),
			format.Fixed(l.CumulativeQuantity, 4),
			w.price(l.AveragePrice),
			w.price(l.LiquidationPrice),
			drop,
		)
	}
	w.line()
	w.row("Final Average Price", w.price(p.FinalAveragePrice))
	w.row("Final Liquidation Price", w.price(p.FinalLiquidationPrice))
	w.row("Total Quantity", format.Fixed(p.TotalQuantity, 4))
	w.row("Total Margin", w.price(p.TotalMargin))
	w.row("Total Value", w.large(p.TotalValue))
	w.row("Max Drawdown", w.percent(p.MaxDrawdown))
	w.row("Unrealized PnL at Last Level", w.signed(p.FinalUnrealizedPnL))
	w.row("Risk at Last Level", p.FinalRiskLevel.String())
}

func (w *table) portfolio(r portfolio.Result) {
	w.row("Positions", fmt.Sprintf("%d (%d open, %d closed)", r.TotalPositions, r.OpenPositions, r.ClosedPositions))
	w.row("Win Rate", fmt.Sprintf("%s (%d/%d)", w.percent(r.WinRate), r.Wins, r.Wins+r.Losses))
	w.row("Total PnL", w.signed(r.TotalPnL))
	w.row("Realized PnL", w.signed(r.RealizedPnL))
	w.row("Unrealized PnL", w.signed(r.UnrealizedPnL))
	w.row("Average Win", w.price(r.AvgWin))
	w.row("Average Loss", w.price(r.AvgLoss))
	w.row("Largest Win", w.price(r.LargestWin))
	w.row("Profit Factor", format.Fixed(r.ProfitFactor, 2))
	w.row("Total ROE", w.percent(r.TotalROE))
	w.row("Max Drawdown", w.signed(r.MaxDrawdown))
}

func (w *table) risk(a risk.Analysis) {
	w.row("Risk Level", a.RiskLevel.String())
	w.row("Risk Score", format.Fixed(a.RiskScore, 1))
	w.row("Margin Ratio", w.percent(a.MarginRatio*100))
	w.row("Leverage Risk", format.Fixed(a.LeverageRisk, 1))
	w.row("Concentration", w.percent(a.ConcentrationRisk))
	w.row("Distance to Liquidation", w.percent(a.LiquidationDistance))
	for i, rec := range a.Recommendations {
		if i == 0 {
			w.row("Recommendations", "- "+rec)
			continue
		}
		fmt.Fprintf(w.tw, "\t- %s\n", rec)
	}
}

func (w *table) history(records []history.Record) {
	if len(records) == 0 {
		w.line("no saved calculations")
		return
	}
	w.line("ID", "Kind", "Created")
	for _, r := range records {
		w.line(r.ID, string(r.Kind), r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
}
