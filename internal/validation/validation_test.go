package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-forge/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/argo-forge/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-forge/internal/node"
	"github.com/rxtech-lab/argo-forge/internal/synth"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/stretchr/testify/suite"
)

type ValidationTestSuite struct {
	suite.Suite
	runner *Runner
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (suite *ValidationTestSuite) SetupTest() {
	suite.runner = NewRunner()
}

func (suite *ValidationTestSuite) TestBuiltinScenariosPass() {
	for _, scenario := range BuiltinScenarios() {
		suite.Run(scenario.ID, func() {
			result := suite.runner.RunScenario(context.Background(), scenario, nil)
			suite.True(result.Passed, result.Details)
			suite.Equal(scenario.ExpectedSignals, result.ActualSignals)
			suite.Contains(result.Details, "✓ Passed")
		})
	}
}

func (suite *ValidationTestSuite) TestSanityCheckIsDeterministic() {
	scenario := SanityCheckScenario()

	first := suite.runner.RunScenario(context.Background(), scenario, synth.Periodic(200, 20, 50000))
	second := suite.runner.RunScenario(context.Background(), scenario, synth.Periodic(200, 20, 50000))

	suite.Equal(first.ActualSignals, second.ActualSignals)
	suite.Equal(first.ActualWinRate, second.ActualWinRate)
}

// signalTrace runs graph on a fresh periodic fixture and returns when and how
// each recorded signal fired.
func (suite *ValidationTestSuite) signalTrace(nodes []types.Node, edges []types.Edge) []string {
	e, err := enginev1.NewSimulationEngineV1(enginev1.FrictionlessConfig())
	suite.Require().NoError(err)

	result, err := e.Run(context.Background(), types.Graph{Nodes: nodes, Edges: edges}, synth.Periodic(200, 20, 50000), engine.LifecycleCallbacks{})
	suite.Require().NoError(err)

	trace := make([]string, len(result.Signals))
	for i, signal := range result.Signals {
		trace[i] = fmt.Sprintf("%s %s %s %.6f", signal.ID, signal.Timestamp.Format(time.RFC3339), signal.Type, signal.Price)
	}

	return trace
}

func (suite *ValidationTestSuite) TestPeriodicSignalTimestampsAreDeterministic() {
	sanity := SanityCheckScenario()

	first := suite.signalTrace(sanity.Nodes, sanity.Edges)
	suite.Require().Len(first, 1)
	suite.Equal(first, suite.signalTrace(sanity.Nodes, sanity.Edges))

	// Terminal logic nodes on both sides of the average trade every crossing.
	nodes := []types.Node{
		{ID: "src", Kind: types.NodeKindSource},
		{ID: "above", Kind: types.NodeKindLogic, Subtype: node.SubtypePriceAboveMA},
		{ID: "below", Kind: types.NodeKindLogic, Subtype: node.SubtypePriceBelowMA},
	}
	edges := []types.Edge{{Source: "src", Target: "above"}, {Source: "src", Target: "below"}}

	crossings := suite.signalTrace(nodes, edges)
	suite.Greater(len(crossings), 1)
	suite.Equal(crossings, suite.signalTrace(nodes, edges))
}

func (suite *ValidationTestSuite) TestSignalCountMismatch() {
	scenario := SanityCheckScenario()
	scenario.ExpectedSignals = 5

	result := suite.runner.RunScenario(context.Background(), scenario, nil)
	suite.False(result.Passed)
	suite.Equal("✗ Failed:\n  - Signal count mismatch: expected 5, got 1", result.Details)
	suite.Equal("Check internal/backtest/engine/engine_v1 - signal generation logic may have issues.", Suggest(result))
}

func (suite *ValidationTestSuite) TestZeroSignalsSuggestion() {
	scenario := EmptyFlowScenario()
	scenario.ExpectedSignals = 2

	result := suite.runner.RunScenario(context.Background(), scenario, nil)
	suite.False(result.Passed)
	suite.Contains(Suggest(result), "internal/node")
}

func (suite *ValidationTestSuite) TestWinRateTolerance() {
	scenario := SanityCheckScenario()
	scenario.ExpectedWinRate = 50
	scenario.Tolerance = optional.None[float64]()

	result := suite.runner.RunScenario(context.Background(), scenario, nil)
	suite.False(result.Passed)
	suite.Contains(result.Details, "Win rate out of tolerance: expected 50% ±5%, got 0.00%")
	suite.Contains(Suggest(result), "position.go")

	scenario.Tolerance = optional.Some(50.0)
	suite.True(suite.runner.RunScenario(context.Background(), scenario, nil).Passed)
}

func (suite *ValidationTestSuite) TestQuick() {
	nodes, edges := linearGraph(node.SubtypeRSIOverbought, types.SignalTypeSell)

	result := suite.runner.RunScenario(context.Background(), Quick(nodes, edges, 1), synth.Monotonic(40, 100, 1))
	suite.True(result.Passed, result.Details)
	suite.Equal("quick-test", result.ScenarioID)
}

func (suite *ValidationTestSuite) TestEngineErrorIsReported() {
	runner := NewRunner(WithEngineFactory(func() (engine.Engine, error) {
		return nil, fmt.Errorf("engine unavailable")
	}))

	result := runner.RunScenario(context.Background(), RSIOversoldScenario(), nil)
	suite.False(result.Passed)
	suite.Equal("✗ Error: engine unavailable", result.Details)
	suite.Equal("engine unavailable", result.Error)
	suite.Equal("Check the RSI calculation in internal/indicator/rsi.go.", Suggest(result))
}

func (suite *ValidationTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := suite.runner.RunScenario(ctx, SanityCheckScenario(), nil)
	suite.False(result.Passed)
	suite.Contains(result.Details, "✗ Error:")
	suite.Contains(Suggest(result), "runtime error")
}

func (suite *ValidationTestSuite) TestRunSuiteAndReport() {
	ticks := 0
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	runner := NewRunner(WithClock(func() time.Time {
		ticks++

		return start.Add(time.Duration(ticks) * time.Millisecond)
	}))

	failing := EmptyFlowScenario()
	failing.ID = "broken"
	failing.Name = "Broken"
	failing.ExpectedSignals = 3

	suiteDef := Suite{Name: "mixed", Scenarios: []Scenario{SanityCheckScenario(), failing}}
	result := runner.RunSuite(context.Background(), suiteDef)

	suite.Equal("mixed", result.SuiteName)
	suite.Equal(2, result.TotalTests)
	suite.Equal(1, result.PassedTests)
	suite.Equal(1, result.FailedTests)
	suite.Positive(result.TotalExecutionTime)

	report := BuildReport(result, start)
	suite.Equal(StatusFailed, report.Status)
	suite.False(report.Passed())
	suite.Equal("✗ 1 test(s) failed - See failures for details", report.Message)
	suite.Require().Len(report.Failures, 1)
	suite.Equal("Broken", report.Failures[0].Scenario)
	suite.Equal("- Signal count mismatch: expected 3, got 0", report.Failures[0].Error)

	data, err := json.Marshal(report)
	suite.Require().NoError(err)
	suite.Contains(string(data), `"status":"FAILED"`)
}

func (suite *ValidationTestSuite) TestValidate() {
	report := suite.runner.Validate(context.Background())

	suite.True(report.Passed(), "%+v", report.Failures)
	suite.Equal(len(BuiltinScenarios()), report.TotalTests)
	suite.Empty(report.Failures)
	suite.Contains(report.Message, "All Systems Nominal")
}

func (suite *ValidationTestSuite) TestPackageRunScenario() {
	result := RunScenario(context.Background(), EmptyFlowScenario(), nil)
	suite.True(result.Passed)
	suite.Equal(0, result.ActualSignals)
}
