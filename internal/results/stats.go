// Package results persists the outcome of a simulation run: a stats.yaml
// summary plus parquet tables of signals, trades and the equity curve.
package results

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-forge/internal/types"
)

// RunInfo describes where a result came from.
type RunInfo struct {
	Strategy       string
	DataPath       string
	InitialCapital float64
	Timestamp      time.Time
}

// Summarize builds the run stats for result. candles is the series the run
// was evaluated on and is only used for the buy and hold comparison.
func Summarize(info RunInfo, result types.BacktestResult, candles []types.Candle) types.RunStats {
	return types.RunStats{
		ID:               result.RunID,
		Timestamp:        info.Timestamp,
		Strategy:         info.Strategy,
		DataPath:         info.DataPath,
		Metrics:          result.Metrics,
		TradePnl:         tradePnl(result.Trades),
		TradeHoldingTime: holdingTime(result.Trades),
		InitialCapital:   info.InitialCapital,
		FinalEquity:      result.FinalEquity(),
		BuyAndHoldReturn: BuyAndHoldReturn(candles),
	}
}

func tradePnl(trades []types.Trade) types.TradePnl {
	var pnl types.TradePnl

	for i, trade := range trades {
		pnl.RealizedPnL += trade.PnL
		pnl.TotalFees += trade.Fees

		if i == 0 || trade.PnL < pnl.MaximumLoss {
			pnl.MaximumLoss = trade.PnL
		}

		if i == 0 || trade.PnL > pnl.MaximumProfit {
			pnl.MaximumProfit = trade.PnL
		}
	}

	return pnl
}

func holdingTime(trades []types.Trade) types.TradeHoldingTime {
	if len(trades) == 0 {
		return types.TradeHoldingTime{}
	}

	minHold := math.MaxInt
	maxHold := 0
	total := 0

	for _, trade := range trades {
		seconds := int(trade.HoldingTime().Seconds())
		minHold = min(minHold, seconds)
		maxHold = max(maxHold, seconds)
		total += seconds
	}

	return types.TradeHoldingTime{
		Min: minHold,
		Max: maxHold,
		Avg: total / len(trades),
	}
}

// BuyAndHoldReturn is the percent change from the first open to the last close.
func BuyAndHoldReturn(candles []types.Candle) float64 {
	if len(candles) == 0 || candles[0].Open == 0 {
		return 0
	}

	first := candles[0].Open
	last := candles[len(candles)-1].Close

	return (last - first) / first * 100
}
