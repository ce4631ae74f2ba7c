package validation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-forge/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/argo-forge/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"go.uber.org/zap"
)

// Result is the outcome of one scenario.
type Result struct {
	ScenarioID    string        `json:"scenarioId"`
	ScenarioName  string        `json:"scenarioName"`
	Passed        bool          `json:"passed"`
	Details       string        `json:"details"`
	ActualSignals int           `json:"actualSignals"`
	ActualWinRate float64       `json:"actualWinRate"`
	ExecutionTime time.Duration `json:"executionTime"`
	Error         string        `json:"error,omitempty"`
}

// SuiteResult aggregates the results of a suite.
type SuiteResult struct {
	SuiteName          string        `json:"suiteName"`
	TotalTests         int           `json:"totalTests"`
	PassedTests        int           `json:"passedTests"`
	FailedTests        int           `json:"failedTests"`
	Results            []Result      `json:"results"`
	TotalExecutionTime time.Duration `json:"totalExecutionTime"`
}

// EngineFactory builds the engine a scenario runs on.
type EngineFactory func() (engine.Engine, error)

// Runner executes scenarios on fresh engines.
type Runner struct {
	newEngine EngineFactory
	log       *logger.Logger
	now       func() time.Time
}

// RunnerOption customises a Runner.
type RunnerOption func(*Runner)

// WithEngineFactory replaces the engine used for every scenario.
func WithEngineFactory(factory EngineFactory) RunnerOption {
	return func(r *Runner) {
		r.newEngine = factory
	}
}

// WithLogger sets the runner logger.
func WithLogger(log *logger.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = log.Named("validation")
	}
}

// WithClock sets the time source used to measure execution time.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a runner. By default scenarios run on a cost-free
// SimulationEngineV1 so results match the plain position rules.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		log: logger.NewNopLogger(),
		now: time.Now,
	}

	r.newEngine = func() (engine.Engine, error) {
		return enginev1.NewSimulationEngineV1(enginev1.FrictionlessConfig(), enginev1.WithLogger(r.log))
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RunScenario runs scenario with a default runner.
func RunScenario(ctx context.Context, scenario Scenario, candles []types.Candle) Result {
	return NewRunner().RunScenario(ctx, scenario, candles)
}

// RunScenario simulates scenario over candles and checks the signal count
// exactly and the win rate within the scenario tolerance. Nil candles fall
// back to the scenario fixture.
func (r *Runner) RunScenario(ctx context.Context, scenario Scenario, candles []types.Candle) Result {
	start := r.now()

	result := Result{
		ScenarioID:   scenario.ID,
		ScenarioName: scenario.Name,
	}

	if candles == nil {
		if scenario.Fixture != nil {
			candles = scenario.Fixture()
		} else {
			candles = DefaultFixture()
		}
	}

	e, err := r.newEngine()
	if err != nil {
		return r.failed(result, start, err)
	}

	backtest, err := e.Run(ctx, scenario.Graph(), candles, engine.LifecycleCallbacks{})
	if err != nil {
		return r.failed(result, start, err)
	}

	result.ActualSignals = len(backtest.Signals)
	result.ActualWinRate = backtest.Metrics.WinRate
	result.ExecutionTime = r.now().Sub(start)

	var failures []string

	if result.ActualSignals != scenario.ExpectedSignals {
		failures = append(failures, fmt.Sprintf("Signal count mismatch: expected %d, got %d", scenario.ExpectedSignals, result.ActualSignals))
	}

	tolerance := scenario.tolerance()
	if math.Abs(result.ActualWinRate-scenario.ExpectedWinRate) > tolerance {
		failures = append(failures, fmt.Sprintf("Win rate out of tolerance: expected %g%% ±%g%%, got %.2f%%", scenario.ExpectedWinRate, tolerance, result.ActualWinRate))
	}

	result.Passed = len(failures) == 0
	if result.Passed {
		result.Details = fmt.Sprintf("✓ Passed: %d signals, %.2f%% win rate", result.ActualSignals, result.ActualWinRate)
	} else {
		result.Details = "✗ Failed:\n  - " + strings.Join(failures, "\n  - ")
	}

	r.log.Debug("Scenario finished",
		zap.String("scenario", scenario.ID),
		zap.Bool("passed", result.Passed),
		zap.Int("signals", result.ActualSignals),
		zap.Float64("win_rate", result.ActualWinRate),
		zap.Duration("elapsed", result.ExecutionTime),
	)

	return result
}

func (r *Runner) failed(result Result, start time.Time, err error) Result {
	r.log.Warn("Scenario errored", zap.String("scenario", result.ScenarioID), zap.Error(err))

	result.Passed = false
	result.Details = "✗ Error: " + err.Error()
	result.Error = err.Error()
	result.ExecutionTime = r.now().Sub(start)

	return result
}

// RunSuite runs every scenario of suite on its own fixture.
func (r *Runner) RunSuite(ctx context.Context, suite Suite) SuiteResult {
	start := r.now()

	summary := SuiteResult{
		SuiteName:  suite.Name,
		TotalTests: len(suite.Scenarios),
		Results:    make([]Result, 0, len(suite.Scenarios)),
	}

	for _, scenario := range suite.Scenarios {
		result := r.RunScenario(ctx, scenario, nil)
		if result.Passed {
			summary.PassedTests++
		} else {
			summary.FailedTests++
		}

		summary.Results = append(summary.Results, result)
	}

	summary.TotalExecutionTime = r.now().Sub(start)

	r.log.Info("Suite finished",
		zap.String("suite", suite.Name),
		zap.Int("passed", summary.PassedTests),
		zap.Int("failed", summary.FailedTests),
	)

	return summary
}
