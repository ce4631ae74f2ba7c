package main

import "github.com/rxtech-lab/argo-forge/internal/types"

// RunLoadedMsg carries the tables of the selected run.
type RunLoadedMsg struct {
	RunID   string
	Signals []types.TradeSignal
	Trades  []types.Trade
}

// LoadErrorMsg indicates the selected run could not be read.
type LoadErrorMsg struct {
	Err error
}
