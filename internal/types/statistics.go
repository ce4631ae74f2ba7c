package types

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// infinityLiteral is how an unbounded profit factor is written in JSON.
const infinityLiteral = "Infinity"

type BacktestMetrics struct {
	// Win rate in percent (0-100).
	WinRate float64 `yaml:"win_rate" json:"winRate"`
	// Total return in percent relative to the initial capital.
	TotalReturn float64 `yaml:"total_return" json:"totalReturn"`
	// Number of recorded signals.
	TradeCount int `yaml:"trade_count" json:"tradeCount"`
	// Number of realized round trips.
	RealizedTrades int `yaml:"realized_trades" json:"realizedTrades"`
	// System Quality Number over realized trade returns.
	SQN         float64 `yaml:"sqn" json:"sqn"`
	SharpeRatio float64 `yaml:"sharpe_ratio" json:"sharpeRatio"`
	// Maximum peak-to-trough drawdown in percent, within [0, 100].
	MaxDrawdown float64 `yaml:"max_drawdown" json:"maxDrawdown"`
	// Gross profit over gross loss. +Inf when there were no losses.
	ProfitFactor float64 `yaml:"profit_factor" json:"profitFactor"`
}

type backtestMetricsJSON struct {
	WinRate        float64 `json:"winRate"`
	TotalReturn    float64 `json:"totalReturn"`
	TradeCount     int     `json:"tradeCount"`
	RealizedTrades int     `json:"realizedTrades"`
	SQN            float64 `json:"sqn"`
	SharpeRatio    float64 `json:"sharpeRatio"`
	MaxDrawdown    float64 `json:"maxDrawdown"`
	ProfitFactor   any     `json:"profitFactor"`
}

// MarshalJSON writes an infinite profit factor as the string "Infinity",
// since JSON has no representation for it.
func (m BacktestMetrics) MarshalJSON() ([]byte, error) {
	var profitFactor any = m.ProfitFactor
	if math.IsInf(m.ProfitFactor, 1) {
		profitFactor = infinityLiteral
	}

	return json.Marshal(backtestMetricsJSON{
		WinRate:        m.WinRate,
		TotalReturn:    m.TotalReturn,
		TradeCount:     m.TradeCount,
		RealizedTrades: m.RealizedTrades,
		SQN:            m.SQN,
		SharpeRatio:    m.SharpeRatio,
		MaxDrawdown:    m.MaxDrawdown,
		ProfitFactor:   profitFactor,
	})
}

func (m *BacktestMetrics) UnmarshalJSON(data []byte) error {
	var raw backtestMetricsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = BacktestMetrics{
		WinRate:        raw.WinRate,
		TotalReturn:    raw.TotalReturn,
		TradeCount:     raw.TradeCount,
		RealizedTrades: raw.RealizedTrades,
		SQN:            raw.SQN,
		SharpeRatio:    raw.SharpeRatio,
		MaxDrawdown:    raw.MaxDrawdown,
	}

	switch pf := raw.ProfitFactor.(type) {
	case nil:
	case float64:
		m.ProfitFactor = pf
	case string:
		if pf != infinityLiteral {
			return fmt.Errorf("invalid profit factor %q", pf)
		}

		m.ProfitFactor = math.Inf(1)
	default:
		return fmt.Errorf("invalid profit factor %v", pf)
	}

	return nil
}

// BacktestResult is everything a single simulation run produces.
type BacktestResult struct {
	RunID       string          `yaml:"run_id" json:"runId"`
	Signals     []TradeSignal   `yaml:"signals" json:"signals"`
	Trades      []Trade         `yaml:"trades" json:"trades"`
	EquityCurve []EquityPoint   `yaml:"equity_curve" json:"equityCurve"`
	Metrics     BacktestMetrics `yaml:"metrics" json:"metrics"`
}

// FinalEquity is the last point of the equity curve, or zero when empty.
func (r BacktestResult) FinalEquity() float64 {
	if len(r.EquityCurve) == 0 {
		return 0
	}

	return r.EquityCurve[len(r.EquityCurve)-1].Equity
}

type TradePnl struct {
	// Realized PnL. Sum of all trades' pnl.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// Total fees charged across all fills.
	TotalFees float64 `yaml:"total_fees" json:"total_fees"`
	// Maximum loss. The minimum realized pnl of a single trade.
	MaximumLoss float64 `yaml:"maximum_loss" json:"maximum_loss"`
	// Maximum profit. The maximum realized pnl of a single trade.
	MaximumProfit float64 `yaml:"maximum_profit" json:"maximum_profit"`
}

type TradeHoldingTime struct {
	// Minimum holding time of a trade in seconds
	Min int `yaml:"min" json:"min"`
	// Maximum holding time of a trade in seconds
	Max int `yaml:"max" json:"max"`
	// Average holding time of a trade in seconds
	Avg int `yaml:"avg" json:"avg"`
}

// RunStats is the summary of one run written next to the exported tables.
type RunStats struct {
	// ID is the run identifier.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Strategy is the name of the graph document.
	Strategy string `yaml:"strategy" json:"strategy"`
	// DataPath is the candle source, or the scenario name for synthetic data.
	DataPath         string           `yaml:"data_path" json:"data_path"`
	Metrics          BacktestMetrics  `yaml:"metrics" json:"metrics"`
	TradePnl         TradePnl         `yaml:"trade_pnl" json:"trade_pnl"`
	TradeHoldingTime TradeHoldingTime `yaml:"trade_holding_time" json:"trade_holding_time"`
	InitialCapital   float64          `yaml:"initial_capital" json:"initial_capital"`
	FinalEquity      float64          `yaml:"final_equity" json:"final_equity"`
	// Buy and hold return in percent over the same candles.
	BuyAndHoldReturn float64 `yaml:"buy_and_hold_return" json:"buy_and_hold_return"`
	SignalsFilePath  string  `yaml:"signals_file_path,omitempty" json:"signals_file_path,omitempty"`
	TradesFilePath   string  `yaml:"trades_file_path,omitempty" json:"trades_file_path,omitempty"`
	EquityFilePath   string  `yaml:"equity_file_path,omitempty" json:"equity_file_path,omitempty"`
}

func WriteRunStats(path string, stats []RunStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run stats to file: %w", err)
	}

	return nil
}
