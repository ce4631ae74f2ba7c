package engine

import (
	"context"

	"github.com/rxtech-lab/argo-forge/internal/types"
)

// Lifecycle callback types for a simulation run.
// Callbacks with an error return abort the run if they return an error.

// OnRunStartCallback is called once the candles are prepared, before the first candle.
// runID is the identifier the result will carry.
type OnRunStartCallback func(runID string, totalCandles int) error

// OnRunEndCallback is called when the run finishes (always called via defer).
type OnRunEndCallback func(runID string, err error)

// OnProcessDataCallback is called after each candle is processed.
type OnProcessDataCallback func(current int, total int) error

// OnSignalCallback is called for every signal that changed the position.
type OnSignalCallback func(signal types.TradeSignal)

// LifecycleCallbacks holds all lifecycle callback functions for the simulation engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart    *OnRunStartCallback
	OnRunEnd      *OnRunEndCallback
	OnProcessData *OnProcessDataCallback
	OnSignal      *OnSignalCallback
}

// Engine simulates a strategy graph over a candle series.
type Engine interface {
	// Run evaluates graph against candles and returns signals, trades, the
	// equity curve and metrics. Only cancellation, through ctx or a callback
	// error, is reported as an error; the partial result accompanies it.
	// Any other failure is logged and yields a zeroed result.
	Run(ctx context.Context, graph types.Graph, candles []types.Candle, callbacks LifecycleCallbacks) (types.BacktestResult, error)
	// GetConfigSchema returns the JSON schema of the engine configuration.
	GetConfigSchema() (string, error)
}
