// Package forge is the in-memory entry point for simulating strategy graphs.
//
// A strategy is a set of nodes joined by edges. RunSimulation evaluates it
// candle by candle and returns the signals, trades, equity curve and metrics
// of the run:
//
//	result, err := forge.RunSimulation(ctx, nodes, edges, candles)
//
// Synthesize produces candle fixtures for the built-in market scenarios and
// RunScenario checks a graph against an expected outcome.
package forge

import (
	"context"

	"github.com/rxtech-lab/argo-forge/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/argo-forge/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-forge/internal/graph"
	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/report"
	"github.com/rxtech-lab/argo-forge/internal/synth"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/internal/validation"
	"go.uber.org/zap"
)

type (
	Candle           = types.Candle
	Node             = types.Node
	Edge             = types.Edge
	Graph            = types.Graph
	TradeSignal      = types.TradeSignal
	Result           = types.BacktestResult
	Config           = enginev1.BacktestConfig
	Callbacks        = engine.LifecycleCallbacks
	Scenario         = validation.Scenario
	ScenarioResult   = validation.Result
	ValidationReport = validation.Report
	MarketScenario   = synth.Scenario
	SynthConfig      = synth.Config
)

// DefaultConfig is the simulation configuration used when none is given:
// 10000 capital, 10% position size, 0.1% slippage and 0.1% commission.
func DefaultConfig() Config {
	return enginev1.DefaultConfig()
}

type runOptions struct {
	config    Config
	log       *logger.Logger
	callbacks engine.LifecycleCallbacks
}

// RunOption customises a simulation run.
type RunOption func(*runOptions)

// WithConfig replaces the default simulation configuration.
func WithConfig(config Config) RunOption {
	return func(o *runOptions) {
		o.config = config
	}
}

// WithLogger logs the run through log.
func WithLogger(log *zap.Logger) RunOption {
	return func(o *runOptions) {
		o.log = &logger.Logger{Logger: log}
	}
}

// WithCallbacks observes the run as it progresses.
func WithCallbacks(callbacks Callbacks) RunOption {
	return func(o *runOptions) {
		o.callbacks = callbacks
	}
}

// RunSimulation evaluates the graph formed by nodes and edges over candles.
// An invalid configuration, an unknown node kind or subtype and an invalid
// node config are errors. Cycles and dangling edges are not: those nodes and
// edges are skipped. Cancelling ctx stops the run and returns
// the partial result with the context error.
func RunSimulation(ctx context.Context, nodes []Node, edges []Edge, candles []Candle, opts ...RunOption) (Result, error) {
	return RunGraph(ctx, Graph{Nodes: nodes, Edges: edges}, candles, opts...)
}

// RunGraph is RunSimulation for a loaded graph document.
func RunGraph(ctx context.Context, strategy Graph, candles []Candle, opts ...RunOption) (Result, error) {
	options := runOptions{
		config: DefaultConfig(),
		log:    logger.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(&options)
	}

	simulation, err := enginev1.NewSimulationEngineV1(options.config, enginev1.WithLogger(options.log))
	if err != nil {
		return Result{}, err
	}

	if err := graph.Validate(strategy, nil); err != nil {
		return Result{}, err
	}

	return simulation.Run(ctx, strategy, candles, options.callbacks)
}

// RunScenario simulates scenario over its fixture and compares the outcome
// with the expected signal count and win rate.
func RunScenario(ctx context.Context, scenario Scenario) ScenarioResult {
	return validation.RunScenario(ctx, scenario, nil)
}

// Validate runs the built-in diagnostic scenarios.
func Validate(ctx context.Context) ValidationReport {
	return validation.NewRunner().Validate(ctx)
}

type synthOptions struct {
	seed   int64
	config synth.Config
}

// SynthOption customises Synthesize.
type SynthOption func(*synthOptions)

// WithSeed makes the generated series reproducible for a different seed.
func WithSeed(seed int64) SynthOption {
	return func(o *synthOptions) {
		o.seed = seed
	}
}

// WithSynthConfig replaces the default price, volume and interval settings.
func WithSynthConfig(config SynthConfig) SynthOption {
	return func(o *synthOptions) {
		o.config = config
	}
}

// Synthesize generates length candles shaped like the named market
// scenario (NORMAL, SHORT_SQUEEZE, SPOT_PUMP, ACCUMULATION, DISTRIBUTION).
// The same seed always yields the same candles.
func Synthesize(scenario string, length int, opts ...SynthOption) ([]Candle, error) {
	parsed, err := synth.ParseScenario(scenario)
	if err != nil {
		return nil, err
	}

	options := synthOptions{
		seed:   synth.DefaultSeed,
		config: synth.DefaultConfig(),
	}

	for _, opt := range opts {
		opt(&options)
	}

	return synth.NewSynthesizer(options.seed).Synthesize(parsed, length, options.config)
}

// Report renders the markdown analyst report of a run over candles.
func Report(result Result, candles []Candle) string {
	return report.NewAnalyst(nil).Generate(result, candles)
}
