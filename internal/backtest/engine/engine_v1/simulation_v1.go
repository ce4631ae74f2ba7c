package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-forge/internal/backtest/engine"
	"github.com/rxtech-lab/argo-forge/internal/graph"
	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/metrics"
	"github.com/rxtech-lab/argo-forge/internal/node"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"go.uber.org/zap"
)

type SimulationEngineV1 struct {
	config     BacktestConfig
	registry   *node.Registry
	log        *logger.Logger
	clock      func() time.Time
	newRunID   func() string
	signalIDs  SignalIDFactory
	calculator *metrics.Calculator
}

// Option customises a SimulationEngineV1.
type Option func(*SimulationEngineV1)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *logger.Logger) Option {
	return func(e *SimulationEngineV1) {
		e.log = log.Named("engine")
	}
}

// WithRegistry replaces the built-in node registry.
func WithRegistry(registry *node.Registry) Option {
	return func(e *SimulationEngineV1) {
		e.registry = registry
	}
}

// WithClock sets the time source used for the placeholder equity point of empty runs.
func WithClock(clock func() time.Time) Option {
	return func(e *SimulationEngineV1) {
		e.clock = clock
	}
}

// WithRunIDGenerator sets how run IDs are produced.
func WithRunIDGenerator(newRunID func() string) Option {
	return func(e *SimulationEngineV1) {
		e.newRunID = newRunID
	}
}

// WithSignalIDs sets the per-run signal ID generator.
func WithSignalIDs(factory SignalIDFactory) Option {
	return func(e *SimulationEngineV1) {
		e.signalIDs = factory
	}
}

// NewSimulationEngineV1 creates an engine with the given configuration.
// The configuration is validated; an invalid one is an error.
func NewSimulationEngineV1(config BacktestConfig, opts ...Option) (*SimulationEngineV1, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &SimulationEngineV1{
		config:     config,
		registry:   node.NewDefaultRegistry(),
		log:        logger.NewNopLogger(),
		clock:      time.Now,
		newRunID:   func() string { return uuid.New().String() },
		signalIDs:  NewSequentialSignalIDs,
		calculator: metrics.NewCalculator(config.WinRateMode),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Config returns the engine configuration.
func (e *SimulationEngineV1) Config() BacktestConfig {
	return e.config
}

// GetConfigSchema implements engine.Engine.
func (e *SimulationEngineV1) GetConfigSchema() (string, error) {
	config := DefaultConfig()

	return config.GenerateSchemaJSON()
}

// run holds the mutable state of one simulation.
type run struct {
	id       string
	book     *positionBook
	equity   []types.EquityPoint
	failures map[string]int
}

// Run implements engine.Engine.
func (e *SimulationEngineV1) Run(ctx context.Context, g types.Graph, candles []types.Candle, callbacks engine.LifecycleCallbacks) (result types.BacktestResult, err error) {
	runID := e.newRunID()

	if callbacks.OnRunEnd != nil {
		defer func() {
			(*callbacks.OnRunEnd)(runID, err)
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Simulation panicked",
				zap.String("run_id", runID),
				zap.Any("panic", r),
			)

			result = e.emptyResult(runID)
			err = nil
		}
	}()

	series := e.prepareCandles(candles)
	if len(series) == 0 {
		e.log.Debug("No candles to simulate", zap.String("run_id", runID))

		return e.emptyResult(runID), nil
	}

	plan, err := graph.Compile(g, graph.Options{Strict: e.config.StrictGraph, Logger: e.log})
	if err != nil {
		e.log.Error("Failed to compile graph", zap.String("run_id", runID), zap.Error(err))

		return e.emptyResult(runID), nil
	}

	if len(plan.Order) == 0 {
		e.log.Warn("No nodes to process", zap.String("run_id", runID))

		return e.emptyResult(runID), nil
	}

	evaluators, err := e.registry.BindAll(plan.Order)
	if err != nil {
		e.log.Error("Failed to bind graph nodes", zap.String("run_id", runID), zap.Error(err))

		return e.emptyResult(runID), nil
	}

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, len(series)); err != nil {
			return e.emptyResult(runID), errors.Wrap(errors.ErrCodeSimulationCancelled, "run start callback aborted the simulation", err)
		}
	}

	state := &run{
		id:       runID,
		book:     newPositionBook(e.config, e.signalIDs()),
		equity:   make([]types.EquityPoint, 0, len(series)),
		failures: make(map[string]int),
	}

	e.log.Debug("Running simulation",
		zap.String("run_id", runID),
		zap.Int("candles", len(series)),
		zap.Int("nodes", len(plan.Order)),
	)

	outputs := make(map[string]node.Value, len(plan.Order))

	for i, candle := range series {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return e.finish(state), errors.Wrap(errors.ErrCodeSimulationCancelled, "simulation cancelled", ctxErr)
		}

		start := max(0, i-e.config.HistoryWindow)
		execution := types.ExecutionContext{Current: candle, Prior: series[start:i]}

		clear(outputs)

		for _, n := range plan.Order {
			out := e.evaluate(state, n, evaluators[n.ID], inputsFor(plan, outputs, n.ID), execution)
			outputs[n.ID] = out.Forwarded()

			if out.Signal == nil || !emitsSignals(plan, n) {
				continue
			}

			signal := *out.Signal
			signal.NodeID = n.ID

			if applied, ok := state.book.Apply(signal, candle); ok && callbacks.OnSignal != nil {
				(*callbacks.OnSignal)(applied)
			}
		}

		state.equity = append(state.equity, state.book.MarkToMarket(candle.Timestamp, candle.Close))

		if callbacks.OnProcessData != nil {
			if cbErr := (*callbacks.OnProcessData)(i+1, len(series)); cbErr != nil {
				return e.finish(state), errors.Wrap(errors.ErrCodeSimulationCancelled, "progress callback aborted the simulation", cbErr)
			}
		}
	}

	return e.finish(state), nil
}

func (e *SimulationEngineV1) evaluate(state *run, n types.Node, evaluator node.Evaluator, inputs []node.Value, execution types.ExecutionContext) node.Output {
	out, err := node.SafeEvaluate(evaluator, inputs, execution)
	if err == nil {
		return out
	}

	state.failures[n.ID]++
	if state.failures[n.ID] == 1 {
		e.log.Warn("Node evaluation failed",
			zap.String("run_id", state.id),
			zap.String("node", n.ID),
			zap.String("kind", string(n.Kind)),
			zap.String("subtype", evaluator.Subtype()),
			zap.Time("candle", execution.Current.Timestamp),
			zap.Error(err),
		)
	}

	return node.Output{}
}

func (e *SimulationEngineV1) finish(state *run) types.BacktestResult {
	for nodeID, count := range state.failures {
		e.log.Warn("Node failed during simulation",
			zap.String("run_id", state.id),
			zap.String("node", nodeID),
			zap.Int("failures", count),
		)
	}

	signals := state.book.signals
	if signals == nil {
		signals = []types.TradeSignal{}
	}

	trades := state.book.trades
	if trades == nil {
		trades = []types.Trade{}
	}

	return types.BacktestResult{
		RunID:       state.id,
		Signals:     signals,
		Trades:      trades,
		EquityCurve: state.equity,
		Metrics:     e.calculator.Compute(signals, trades, state.equity, e.config.InitialCapital),
	}
}

func (e *SimulationEngineV1) emptyResult(runID string) types.BacktestResult {
	return types.BacktestResult{
		RunID:       runID,
		Signals:     []types.TradeSignal{},
		Trades:      []types.Trade{},
		EquityCurve: []types.EquityPoint{{Time: e.clock(), Equity: e.config.InitialCapital}},
		Metrics:     types.BacktestMetrics{},
	}
}

func (e *SimulationEngineV1) prepareCandles(candles []types.Candle) []types.Candle {
	filtered := make([]types.Candle, 0, len(candles))

	for _, candle := range candles {
		if e.config.inWindow(candle.Timestamp) {
			filtered = append(filtered, candle)
		}
	}

	return types.SortCandles(filtered)
}

// emitsSignals reports whether signals from n reach the position: result
// nodes always do, logic nodes only when nothing consumes their output.
func emitsSignals(plan *graph.Plan, n types.Node) bool {
	switch n.Kind {
	case types.NodeKindResult:
		return true
	case types.NodeKindLogic:
		return plan.IsTerminal(n.ID)
	default:
		return false
	}
}

func inputsFor(plan *graph.Plan, outputs map[string]node.Value, nodeID string) []node.Value {
	producers := plan.Inputs[nodeID]
	if len(producers) == 0 {
		return nil
	}

	inputs := make([]node.Value, len(producers))
	for i, producer := range producers {
		inputs[i] = outputs[producer]
	}

	return inputs
}

var _ engine.Engine = (*SimulationEngineV1)(nil)

