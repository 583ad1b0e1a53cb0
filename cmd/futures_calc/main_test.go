package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("FCALC_HISTORY_BACKEND", "memory")
	t.Setenv("FCALC_LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_VersionAndHelp(t *testing.T) {
	code, out, _ := execute(t, "-version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "Version:")

	code, out, _ = execute(t)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "pyramid")
	assert.Contains(t, out, "breakeven")

	code, out, _ = execute(t, "-health-check", "position")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "OK\n", out)
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, errOut := execute(t, "teleport")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, `unknown command "teleport"`)
}

func TestRun_Position(t *testing.T) {
	code, out, errOut := execute(t, "position", "-symbol", "btcusdt", "-side", "long", "-leverage", "10", "-entry", "50,000", "-qty", "1", "-current", "55000")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Liquidation Price:")
	assert.Contains(t, out, "45250.00")
	assert.Contains(t, out, "+5000.00")
	assert.Contains(t, out, "100.00%")
}

func TestRun_PositionJSON(t *testing.T) {
	code, out, errOut := execute(t, "-json", "position", "-symbol", "BTCUSDT", "-side", "SHORT", "-leverage", "10", "-entry", "50000", "-qty", "1")
	require.Equal(t, exitOK, code, errOut)

	var snap map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, 54750.0, snap["liquidation_price"])
	assert.Equal(t, 5000.0, snap["total_margin"])
	assert.Equal(t, "HIGH", snap["risk_level"])
}

func TestRun_InvalidInput(t *testing.T) {
	code, out, errOut := execute(t, "position", "-side", "up", "-leverage", "abc", "-entry", "50000", "-qty", "1")
	assert.Equal(t, exitUsage, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "invalid input:")
	assert.Contains(t, errOut, "side: side must be LONG or SHORT")
	assert.Contains(t, errOut, "leverage")
}

func TestRun_MissingSymbol(t *testing.T) {
	code, out, errOut := execute(t, "position", "-side", "LONG", "-leverage", "10", "-entry", "50000", "-qty", "1")
	assert.Equal(t, exitUsage, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "symbol is required")
}

func TestRun_LiquidationGuard(t *testing.T) {
	code, out, errOut := execute(t, "liq", "-side", "LONG", "-leverage", "10", "-entry", "50000")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "45250.00")

	code, _, errOut = execute(t, "liq", "-side", "LONG", "-leverage", "0", "-entry", "50000")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "leverage")
}

func TestRun_Pyramid(t *testing.T) {
	code, out, errOut := execute(t, "-json", "pyramid", "-side", "LONG", "-price", "50000", "-qty", "1", "-margin", "5000", "-leverage", "10", "-levels", "3", "-drop", "5", "-ratio", "1.5")
	require.Equal(t, exitOK, code, errOut)

	var plan struct {
		Levels []struct {
			Price    float64 `json:"price"`
			Quantity float64 `json:"quantity"`
		} `json:"levels"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	require.Len(t, plan.Levels, 3)
	assert.InDelta(t, 47500.0, plan.Levels[1].Price, 1e-9)
	assert.InDelta(t, 1.5, plan.Levels[1].Quantity, 1e-12)

	code, out, _ = execute(t, "pyramid", "-side", "SHORT", "-price", "3000", "-qty", "2", "-leverage", "5", "-drop", "2", "-strategy", "double-down")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "Final Liquidation Price:")
}

func TestRun_Calculators(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"entry", []string{"entry", "-fills", "100:2; 200:2"}, []string{"150.00", "Fills:"}},
		{"target", []string{"target", "-side", "LONG", "-entry", "50000", "-roe", "50", "-leverage", "10", "-qty", "1"}, []string{"52500.00", "+2500.00"}},
		{"target stop", []string{"target", "-side", "LONG", "-entry", "50000", "-roe", "50", "-leverage", "10", "-max-loss", "20"}, []string{"Stop Loss Price:", "49000.00"}},
		{"breakeven", []string{"breakeven", "-side", "SHORT", "-entry", "50000"}, []string{"Break-even Price:"}},
		{"maxpos", []string{"maxpos", "-balance", "1000", "-leverage", "10", "-entry", "50000"}, []string{"0.2", "10.00K", "Maintenance Margin:", "40.00"}},
		{"kelly", []string{"kelly", "-win-rate", "60", "-ratio", "2", "-capital", "10000"}, []string{"40.00%", "20.00%", "2000.00"}},
		{"risk", []string{"risk", "-symbol", "BTCUSDT", "-side", "LONG", "-leverage", "100", "-entry", "50000", "-qty", "1", "-balance", "800"}, []string{"EXTREME", "Recommendations:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := execute(t, tt.args...)
			require.Equal(t, exitOK, code, errOut)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestRun_PnLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.json")
	body := `{
  "positions": [
    {"symbol": "BTCUSDT", "side": "LONG", "status": "closed", "leverage": 10, "entry_price": 50000, "quantity": 1, "margin": 5000, "exit_price": 52000},
    {"symbol": "ETHUSDT", "side": "SHORT", "leverage": 5, "entry_price": 3000, "quantity": 10, "margin": 6000}
  ],
  "current_prices": {"ETHUSDT": 3100}
}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	code, out, errOut := execute(t, "pnl", "-file", path)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "2 (1 open, 1 closed)")
	assert.Contains(t, out, "50.00% (1/2)")
	assert.Contains(t, out, "+1000.00")

	code, _, _ = execute(t, "pnl")
	assert.Equal(t, exitError, code)
}

func TestRun_History(t *testing.T) {
	code, out, errOut := execute(t, "history")
	require.Equal(t, exitOK, code, errOut)
	assert.True(t, strings.Contains(out, "no saved calculations"))

	code, _, errOut = execute(t, "history", "-delete", "calc_missing")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "record not found")
}

func TestRun_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[calculator]\nmax_leverage = 500\n"), 0644))

	code, _, errOut := execute(t, "-config", path, "position")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "max_leverage")
}
