package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"frizo/futures_calculator/internal/calculator"
	"frizo/futures_calculator/internal/config"
	"frizo/futures_calculator/internal/params"
	"frizo/futures_calculator/internal/position"
	"frizo/futures_calculator/internal/validation"
)

type app struct {
	svc    *calculator.Service
	cfg    *config.Config
	out    io.Writer
	stderr io.Writer
	json   bool
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"position", "liquidation price, PnL, ROE and risk of a position", runPosition},
		{"add", "average a new fill into a position", runAdd},
		{"liq", "liquidation price only", runLiquidation},
		{"pyramid", "scaled entry plan", runPyramid},
		{"pnl", "portfolio PnL statistics from a JSON file", runPnL},
		{"target", "price reaching a target ROE", runTarget},
		{"breakeven", "exit price covering trading fees", runBreakEven},
		{"entry", "weighted entry price of several fills", runEntry},
		{"maxpos", "largest position a wallet can open", runMaxPosition},
		{"kelly", "Kelly criterion position sizing", runKelly},
		{"risk", "risk analysis with recommendations", runRisk},
		{"history", "list, delete or clear saved calculations", runHistory},
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// bindPosition registers the shared position flags on fs.
func bindPosition(fs *flag.FlagSet, f *params.PositionForm) {
	fs.StringVar(&f.Symbol, "symbol", "", "Trading pair, e.g. BTCUSDT")
	fs.StringVar(&f.Side, "side", "", "LONG or SHORT")
	fs.StringVar(&f.Leverage, "leverage", "", "Leverage 1-125")
	fs.StringVar(&f.EntryPrice, "entry", "", "Average entry price")
	fs.StringVar(&f.Quantity, "qty", "", "Position size in base asset")
	fs.StringVar(&f.Margin, "margin", "", "Margin, defaults to notional / leverage")
	fs.StringVar(&f.CurrentPrice, "current", "", "Current price, defaults to entry")
	fs.StringVar(&f.StopLoss, "stop", "", "Stop-loss price")
	fs.StringVar(&f.TakeProfit, "take", "", "Take-profit price")
}

// parseErr keeps parse failures on the validation path
func parseErr(errs validation.Errors) error {
	if errs.OK() {
		return nil
	}
	return errs
}

func runPosition(ctx context.Context, a *app, args []string) error {
	var form params.PositionForm
	fs := a.flagSet("position")
	bindPosition(fs, &form)
	if err := fs.Parse(args); err != nil {
		return err
	}

	pos, current, errs := form.Position()
	if err := parseErr(errs); err != nil {
		return err
	}
	snap, err := a.svc.Position(ctx, pos, current)
	if err != nil {
		return err
	}
	return a.print(snap, func(w *table) { w.snapshot(snap) })
}

func runAdd(ctx context.Context, a *app, args []string) error {
	var form params.AddForm
	fs := a.flagSet("add")
	bindPosition(fs, &form.PositionForm)
	fs.StringVar(&form.AddPrice, "add-price", "", "Price of the new fill")
	fs.StringVar(&form.AddQuantity, "add-qty", "", "Quantity of the new fill")
	fs.StringVar(&form.AddMargin, "add-margin", "", "Margin of the new fill, defaults to notional / leverage")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pos, fill, current, errs := form.Parse()
	if err := parseErr(errs); err != nil {
		return err
	}
	res, err := a.svc.AddPosition(ctx, pos, fill, current)
	if err != nil {
		return err
	}
	return a.print(res, func(w *table) {
		w.row("New Quantity", fmt.Sprint(res.Position.Quantity))
		w.row("New Margin", w.price(res.Position.Margin))
		w.snapshot(res.Snapshot)
	})
}

func runLiquidation(_ context.Context, a *app, args []string) error {
	var side, leverage, entry string
	fs := a.flagSet("liq")
	fs.StringVar(&side, "side", "", "LONG or SHORT")
	fs.StringVar(&leverage, "leverage", "", "Leverage 1-125")
	fs.StringVar(&entry, "entry", "", "Average entry price")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// reuse the position form for coercion, quantity is irrelevant here
	pos, _, errs := params.PositionForm{Side: side, Leverage: leverage, EntryPrice: entry, Quantity: "1"}.Position()
	if err := parseErr(errs); err != nil {
		return err
	}
	price, err := a.svc.LiquidationPrice(pos.Side, pos.Leverage, pos.EntryPrice)
	if err != nil {
		return err
	}
	return a.print(map[string]float64{"liquidation_price": price}, func(w *table) {
		w.row("Liquidation Price", w.price(price))
	})
}

func runPyramid(ctx context.Context, a *app, args []string) error {
	var form params.PyramidForm
	fs := a.flagSet("pyramid")
	fs.StringVar(&form.Symbol, "symbol", "", "Trading pair, e.g. BTCUSDT")
	fs.StringVar(&form.Side, "side", "", "LONG or SHORT")
	fs.StringVar(&form.InitialPrice, "price", "", "Initial entry price")
	fs.StringVar(&form.InitialQuantity, "qty", "", "Initial quantity")
	fs.StringVar(&form.InitialMargin, "margin", "", "Initial margin, defaults to notional / leverage")
	fs.StringVar(&form.Leverage, "leverage", "", "Leverage 1-125")
	fs.StringVar(&form.Levels, "levels", "3", "Number of levels 2-10")
	fs.StringVar(&form.Strategy, "strategy", "EQUAL_RATIO", "EQUAL_RATIO or DOUBLE_DOWN")
	fs.StringVar(&form.PriceDropPercent, "drop", "", "Price step between levels in percent")
	fs.StringVar(&form.RatioMultiplier, "ratio", "1.5", "Quantity multiplier per level (EQUAL_RATIO)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, errs := form.Parse()
	if err := parseErr(errs); err != nil {
		return err
	}
	plan, err := a.svc.Pyramid(ctx, p)
	if err != nil {
		return err
	}
	return a.print(plan, func(w *table) { w.plan(plan) })
}

// pnlFile input of the pnl command
type pnlFile struct {
	Positions     []position.Position `json:"positions"`
	CurrentPrices map[string]float64  `json:"current_prices"`
}

func runPnL(ctx context.Context, a *app, args []string) error {
	var path string
	fs := a.flagSet("pnl")
	fs.StringVar(&path, "file", "", "JSON file with positions and current_prices, - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("pnl: -file is required")
	}

	in, err := readPnLFile(path)
	if err != nil {
		return err
	}
	res, err := a.svc.PnL(ctx, in.Positions, in.CurrentPrices)
	if err != nil {
		return err
	}
	return a.print(res, func(w *table) { w.portfolio(res) })
}

func readPnLFile(path string) (pnlFile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return pnlFile{}, fmt.Errorf("read %s: %w", path, err)
	}

	var in pnlFile
	if err := json.Unmarshal(data, &in); err != nil {
		return pnlFile{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return in, nil
}

func runTarget(ctx context.Context, a *app, args []string) error {
	var form params.TargetForm
	fs := a.flagSet("target")
	fs.StringVar(&form.Side, "side", "", "LONG or SHORT")
	fs.StringVar(&form.EntryPrice, "entry", "", "Entry price")
	fs.StringVar(&form.TargetROE, "roe", "", "Target ROE in percent, negative for a stop")
	fs.StringVar(&form.Leverage, "leverage", "", "Leverage, defaults to 1")
	fs.StringVar(&form.Quantity, "qty", "", "Quantity for the expected PnL")
	fs.StringVar(&form.MaxLoss, "max-loss", "", "Stop-loss at this loss, percent of margin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, errs := form.Parse()
	if err := parseErr(errs); err != nil {
		return err
	}
	res, err := a.svc.Target(ctx, p)
	if err != nil {
		return err
	}
	return a.print(res, func(w *table) {
		w.row("Target Price", w.price(res.TargetPrice))
		w.row("Price Change", w.percent(res.PriceChange))
		if p.Quantity > 0 {
			w.row("Expected PnL", w.signed(res.ExpectedPnL))
			w.row("Required Margin", w.price(res.RequiredMargin))
		}
		if res.StopLossPrice > 0 {
			w.row("Stop Loss Price", w.price(res.StopLossPrice))
		}
	})
}

func runBreakEven(ctx context.Context, a *app, args []string) error {
	var form params.BreakEvenForm
	fs := a.flagSet("breakeven")
	fs.StringVar(&form.Side, "side", "", "LONG or SHORT")
	fs.StringVar(&form.EntryPrice, "entry", "", "Entry price")
	fs.StringVar(&form.OpenFeeRate, "open-fee", "0.04", "Open fee in percent")
	fs.StringVar(&form.CloseFeeRate, "close-fee", "0.04", "Close fee in percent")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, errs := form.Parse()
	if err := parseErr(errs); err != nil {
		return err
	}
	res, err := a.svc.BreakEven(ctx, p)
	if err != nil {
		return err
	}
	return a.print(res, func(w *table) {
		w.row("Break-even Price", w.price(res.BreakEvenPrice))
		w.row("Price Change", w.percent(res.PriceChange))
	})
}

func runEntry(ctx context.Context, a *app, args []string) error {
	var raw string
	fs := a.flagSet("entry")
	fs.StringVar(&raw, "fills", "", `Fills as "price:qty; price:qty"`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	fills, errs := params.Fills(raw)
	if err := parseErr(errs); err != nil {
		return err
	}
	res, err := a.svc.EntryPrice(ctx, fills)
	if err != nil {
		return err
	}
	return a.print(res, func(w *table) {
		w.row("Average Price", w.price(res.AveragePrice))
		w.row("Total Quantity", fmt.Sprint(res.TotalQuantity))
		w.row("Total Cost", w.large(res.TotalCost))
		w.row("Fills", fmt.Sprint(res.Fills))
	})
}

func runMaxPosition(ctx context.Context, a *app, args []string) error {
	var form params.MaxPositionForm
	fs := a.flagSet("maxpos")
	fs.StringVar(&form.WalletBalance, "balance", "", "Wallet balance")
	fs.StringVar(&form.Leverage, "leverage", "", "Leverage 1-125")
	fs.StringVar(&form.EntryPrice, "entry", "", "Entry price")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, errs := form.Parse()
	if err := parseErr(errs); err != nil {
		return err
	}
	res, err := a.svc.MaxPosition(ctx, p)
	if err != nil {
		return err
	}
	return a.print(res, func(w *table) {
		w.row("Max Quantity", fmt.Sprint(res.MaxQuantity))
		w.row("Max Position Value", w.large(res.MaxPositionValue))
		w.row("Required Margin", w.price(res.RequiredMargin))
		w.row("Maintenance Margin", w.price(res.MaintenanceMargin))
		if res.BracketMaxLeverage > 0 {
			w.row("Bracket Max Leverage", fmt.Sprintf("%gx", res.BracketMaxLeverage))
		}
	})
}

func runKelly(ctx context.Context, a *app, args []string) error {
	var form params.KellyForm
	fs := a.flagSet("kelly")
	fs.StringVar(&form.WinRate, "win-rate", "", "Win rate, 55 or 0.55")
	fs.StringVar(&form.WinLossRatio, "ratio", "", "Average win / average loss")
	fs.StringVar(&form.Fraction, "fraction", "", "Fractional Kelly multiplier")
	fs.StringVar(&form.MaxFraction, "max-fraction", "", "Cap as a fraction of capital")
	fs.StringVar(&form.Capital, "capital", "", "Capital for the position size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, errs := form.Parse(a.cfg.Calculator.KellyFraction, a.cfg.Calculator.KellyMaxFraction)
	if err := parseErr(errs); err != nil {
		return err
	}
	res, err := a.svc.Kelly(ctx, p)
	if err != nil {
		return err
	}
	return a.print(res, func(w *table) {
		w.row("Full Kelly", w.percent(res.FullKelly*100))
		w.row("Adjusted Fraction", w.percent(res.AdjustedFraction*100))
		if p.Capital > 0 {
			w.row("Position Size", w.price(res.PositionSize))
		}
		w.row("Edge", w.signed(res.Edge))
	})
}

func runRisk(ctx context.Context, a *app, args []string) error {
	var (
		form    params.PositionForm
		balance string
	)
	fs := a.flagSet("risk")
	bindPosition(fs, &form)
	fs.StringVar(&balance, "balance", "", "Wallet balance for concentration risk")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pos, current, errs := form.Position()
	wallet, balanceErrs := params.Optional("balance", balance)
	errs = append(errs, balanceErrs...)
	if err := parseErr(errs); err != nil {
		return err
	}
	res, err := a.svc.RiskAnalysis(ctx, pos, current, wallet)
	if err != nil {
		return err
	}
	return a.print(res, func(w *table) { w.risk(res) })
}

func runHistory(ctx context.Context, a *app, args []string) error {
	var (
		limit    int
		clearAll bool
		del      string
	)
	fs := a.flagSet("history")
	fs.IntVar(&limit, "limit", 20, "Number of records, 0 for all")
	fs.BoolVar(&clearAll, "clear", false, "Delete every record")
	fs.StringVar(&del, "delete", "", "Delete one record by id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case clearAll:
		if err := a.svc.ClearHistory(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "history cleared")
		return nil
	case del != "":
		if err := a.svc.DeleteRecord(ctx, del); err != nil {
			return fmt.Errorf("delete %s: %w", del, err)
		}
		fmt.Fprintf(a.out, "deleted %s\n", del)
		return nil
	}

	records, err := a.svc.History(ctx, limit)
	if err != nil {
		return err
	}
	return a.print(records, func(w *table) { w.history(records) })
}
