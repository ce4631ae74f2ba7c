package types

import "time"

// Trade is a realized round trip: the position opened by EntrySignalID and
// closed by ExitSignalID.
type Trade struct {
	Side          PositionState `json:"side" yaml:"side"`
	EntrySignalID string        `json:"entrySignalId" yaml:"entry_signal_id"`
	ExitSignalID  string        `json:"exitSignalId" yaml:"exit_signal_id"`
	EntryTime     time.Time     `json:"entryTime" yaml:"entry_time"`
	ExitTime      time.Time     `json:"exitTime" yaml:"exit_time"`
	EntryPrice    float64       `json:"entryPrice" yaml:"entry_price"`
	ExitPrice     float64       `json:"exitPrice" yaml:"exit_price"`
	// PnL is the realized profit in account currency, net of Fees.
	PnL float64 `json:"pnl" yaml:"pnl"`
	// ReturnPct is PnL as a percentage of the committed notional.
	ReturnPct float64 `json:"returnPct" yaml:"return_pct"`
	// Fees is the commission charged on the entry and exit fills.
	Fees float64 `json:"fees" yaml:"fees"`
}

// IsWin reports whether the trade closed with a positive result.
func (t Trade) IsWin() bool {
	return t.PnL > 0
}

// HoldingTime is the duration the position was open.
func (t Trade) HoldingTime() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}

// EquityPoint is the mark-to-market account value after one candle.
type EquityPoint struct {
	Time   time.Time `json:"time" yaml:"time"`
	Equity float64   `json:"equity" yaml:"equity"`
}
