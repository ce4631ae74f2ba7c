// Package metrics derives the performance summary of a simulation run
// from its signals, realized trades and equity curve.
package metrics

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-forge/internal/indicator"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/shopspring/decimal"
)

// WinRateMode selects how wins are counted.
type WinRateMode string

const (
	// WinRateModePositional pairs recorded signals (0,1), (2,3), ... and scores
	// each pair by the price move in the entry's direction.
	WinRateModePositional WinRateMode = "positional"
	// WinRateModeRealized scores each realized round trip by its P&L.
	WinRateModeRealized WinRateMode = "realized"
)

// ParseWinRateMode validates a mode name. An empty name is positional.
func ParseWinRateMode(raw string) (WinRateMode, error) {
	switch WinRateMode(raw) {
	case "", WinRateModePositional:
		return WinRateModePositional, nil
	case WinRateModeRealized:
		return WinRateModeRealized, nil
	default:
		return "", fmt.Errorf("unknown win rate mode %q", raw)
	}
}

// Calculator computes BacktestMetrics.
type Calculator struct {
	mode WinRateMode
}

// NewCalculator creates a calculator using the given win rate mode.
func NewCalculator(mode WinRateMode) *Calculator {
	if mode == "" {
		mode = WinRateModePositional
	}

	return &Calculator{mode: mode}
}

// Compute derives the metrics of a run. With fewer than two signals every
// ratio is zero and only the counts are reported.
func (c *Calculator) Compute(signals []types.TradeSignal, trades []types.Trade, equity []types.EquityPoint, initialCapital float64) types.BacktestMetrics {
	result := types.BacktestMetrics{
		TradeCount:     len(signals),
		RealizedTrades: len(trades),
	}

	if len(signals) < 2 {
		return result
	}

	if c.mode == WinRateModeRealized {
		result.WinRate = RealizedWinRate(trades)
	} else {
		result.WinRate = PositionalWinRate(signals)
	}

	result.TotalReturn = TotalReturn(equity, initialCapital)
	result.SQN = SQN(trades)
	result.SharpeRatio = SharpeRatio(equity)
	result.MaxDrawdown = MaxDrawdown(equity, initialCapital)
	result.ProfitFactor = ProfitFactor(trades)

	return result
}

// PositionalWinRate pairs consecutive signals as entry and exit and returns
// the percentage of pairs that moved in the entry's favour. A trailing
// unpaired signal is ignored.
func PositionalWinRate(signals []types.TradeSignal) float64 {
	wins := 0
	pairs := 0

	for i := 0; i+1 < len(signals); i += 2 {
		entry, exit := signals[i], signals[i+1]

		var pnl float64

		switch entry.Type {
		case types.SignalTypeBuy:
			pnl = exit.Price - entry.Price
		case types.SignalTypeSell:
			pnl = entry.Price - exit.Price
		}

		if pnl > 0 {
			wins++
		}

		pairs++
	}

	if pairs == 0 {
		return 0
	}

	return float64(wins) / float64(pairs) * 100
}

// RealizedWinRate is the percentage of realized trades with positive P&L.
func RealizedWinRate(trades []types.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}

	wins := 0

	for _, trade := range trades {
		if trade.IsWin() {
			wins++
		}
	}

	return float64(wins) / float64(len(trades)) * 100
}

// TotalReturn is the final equity relative to the initial capital, in percent.
func TotalReturn(equity []types.EquityPoint, initialCapital float64) float64 {
	if len(equity) == 0 || initialCapital == 0 {
		return 0
	}

	final := equity[len(equity)-1].Equity

	return (final - initialCapital) / initialCapital * 100
}

// SQN is Van Tharp's System Quality Number over realized trade returns:
// mean / sample stddev * sqrt(n). Zero with fewer than two trades or no variance.
func SQN(trades []types.Trade) float64 {
	if len(trades) < 2 {
		return 0
	}

	returns := make([]float64, len(trades))
	for i, trade := range trades {
		returns[i] = trade.ReturnPct
	}

	std := indicator.StdDev(returns)
	if std == 0 {
		return 0
	}

	return indicator.Mean(returns) / std * math.Sqrt(float64(len(returns)))
}

// SharpeRatio is mean / stddev of the period-over-period equity returns with
// a zero risk-free rate. It is not annualised.
func SharpeRatio(equity []types.EquityPoint) float64 {
	if len(equity) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(equity)-1)

	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev == 0 {
			continue
		}

		returns = append(returns, equity[i].Equity/prev-1)
	}

	std := indicator.PopulationStdDev(returns)
	if std == 0 {
		return 0
	}

	return indicator.Mean(returns) / std
}

// MaxDrawdown is the largest peak-to-trough fall along the curve in percent,
// starting from the initial capital, clamped to [0, 100].
func MaxDrawdown(equity []types.EquityPoint, initialCapital float64) float64 {
	peak := initialCapital
	maxDrawdown := 0.0

	for _, point := range equity {
		if point.Equity > peak {
			peak = point.Equity
		}

		if peak <= 0 {
			continue
		}

		drawdown := (peak - point.Equity) / peak * 100
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return math.Min(math.Max(maxDrawdown, 0), 100)
}

// ProfitFactor is gross profit over gross loss of realized trades. It is
// +Inf when there is profit and no loss, and 0 when there is neither.
func ProfitFactor(trades []types.Trade) float64 {
	grossProfit := decimal.Zero
	grossLoss := decimal.Zero

	for _, trade := range trades {
		pnl := decimal.NewFromFloat(trade.PnL)
		if pnl.IsPositive() {
			grossProfit = grossProfit.Add(pnl)
		} else if pnl.IsNegative() {
			grossLoss = grossLoss.Add(pnl.Abs())
		}
	}

	if grossLoss.IsZero() {
		if grossProfit.IsPositive() {
			return math.Inf(1)
		}

		return 0
	}

	result, _ := grossProfit.Div(grossLoss).Float64()

	return result
}
