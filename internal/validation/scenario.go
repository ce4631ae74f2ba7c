// Package validation runs strategy graphs against fixtures with known
// outcomes and reports whether the engine still behaves as expected.
package validation

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-forge/internal/node"
	"github.com/rxtech-lab/argo-forge/internal/synth"
	"github.com/rxtech-lab/argo-forge/internal/types"
)

// DefaultTolerance is the accepted win rate deviation in percentage points.
const DefaultTolerance = 5.0

// Scenario is a graph with the signal count and win rate it must produce.
type Scenario struct {
	ID              string                   `json:"id" yaml:"id"`
	Name            string                   `json:"name" yaml:"name"`
	Description     string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Nodes           []types.Node             `json:"nodes" yaml:"nodes"`
	Edges           []types.Edge             `json:"edges" yaml:"edges"`
	ExpectedSignals int                      `json:"expectedSignals" yaml:"expected_signals"`
	ExpectedWinRate float64                  `json:"expectedWinRate" yaml:"expected_win_rate"`
	Tolerance       optional.Option[float64] `json:"tolerance,omitempty" yaml:"-"`
	// Fixture supplies the candles when the caller passes none. Nil means
	// the default periodic series.
	Fixture func() []types.Candle `json:"-" yaml:"-"`
}

// tolerance returns the configured tolerance or DefaultTolerance.
func (s Scenario) tolerance() float64 {
	return s.Tolerance.TakeOr(DefaultTolerance)
}

// Graph returns the scenario's nodes and edges as a graph.
func (s Scenario) Graph() types.Graph {
	return types.Graph{Name: s.Name, Nodes: s.Nodes, Edges: s.Edges}
}

// Suite groups scenarios that are run together.
type Suite struct {
	Name      string     `json:"name"`
	Scenarios []Scenario `json:"scenarios"`
	CreatedAt time.Time  `json:"createdAt"`
}

// DefaultFixture is the periodic series scenarios run against by default.
func DefaultFixture() []types.Candle {
	return synth.Periodic(200, 20, 50000)
}

// Quick builds a scenario that only checks the signal count.
func Quick(nodes []types.Node, edges []types.Edge, expectedSignals int) Scenario {
	return Scenario{
		ID:              "quick-test",
		Name:            "Quick Test",
		Nodes:           nodes,
		Edges:           edges,
		ExpectedSignals: expectedSignals,
		Tolerance:       optional.Some(100.0),
	}
}

// linearGraph wires source -> logic(subtype) -> result(signalType).
func linearGraph(logic string, signalType types.SignalType) ([]types.Node, []types.Edge) {
	nodes := []types.Node{
		{ID: "source-1", Kind: types.NodeKindSource, Subtype: "dataSource", Config: map[string]any{"symbol": "BTCUSDT"}},
		{ID: "process-1", Kind: types.NodeKindLogic, Subtype: logic},
		{ID: "result-1", Kind: types.NodeKindResult, Subtype: "output", Config: map[string]any{"signal_type": string(signalType)}},
	}
	edges := []types.Edge{
		{Source: "source-1", Target: "process-1"},
		{Source: "process-1", Target: "result-1"},
	}

	return nodes, edges
}

// SanityCheckScenario buys once the price crosses above its average; the
// position then stays long, so exactly one signal is recorded.
func SanityCheckScenario() Scenario {
	nodes, edges := linearGraph(node.SubtypePriceAboveMA, types.SignalTypeBuy)

	return Scenario{
		ID:              "sanity-check-001",
		Name:            "Basic Logic: Price Above Average",
		Description:     "Verifies that the engine produces a BUY signal when price is above its moving average",
		Nodes:           nodes,
		Edges:           edges,
		ExpectedSignals: 1,
		Tolerance:       optional.Some(100.0),
	}
}

// RSIOverboughtScenario sells into a steady rally.
func RSIOverboughtScenario() Scenario {
	nodes, edges := linearGraph(node.SubtypeRSIOverbought, types.SignalTypeSell)

	return Scenario{
		ID:              "rsi-overbought-001",
		Name:            "RSI Overbought: Sell Signal",
		Description:     "Verifies that RSI > 70 on rising prices triggers a SELL signal",
		Nodes:           nodes,
		Edges:           edges,
		ExpectedSignals: 1,
		Tolerance:       optional.Some(100.0),
		Fixture:         func() []types.Candle { return synth.Monotonic(50, 50000, 1) },
	}
}

// RSIOversoldScenario buys into a steady decline.
func RSIOversoldScenario() Scenario {
	nodes, edges := linearGraph(node.SubtypeRSIOversold, types.SignalTypeBuy)

	return Scenario{
		ID:              "rsi-oversold-001",
		Name:            "RSI Oversold: Buy Signal",
		Description:     "Verifies that RSI < 30 on falling prices triggers a BUY signal",
		Nodes:           nodes,
		Edges:           edges,
		ExpectedSignals: 1,
		Tolerance:       optional.Some(100.0),
		Fixture:         func() []types.Candle { return synth.Monotonic(50, 50000, -1) },
	}
}

// EmptyFlowScenario runs a graph with no nodes.
func EmptyFlowScenario() Scenario {
	return Scenario{
		ID:              "empty-flow-001",
		Name:            "Empty Flow: No Signals",
		Description:     "Verifies that an empty graph produces no signals",
		Nodes:           []types.Node{},
		Edges:           []types.Edge{},
		ExpectedSignals: 0,
		Tolerance:       optional.Some(100.0),
	}
}

// BuiltinScenarios returns the system validation scenarios.
func BuiltinScenarios() []Scenario {
	return []Scenario{
		SanityCheckScenario(),
		RSIOverboughtScenario(),
		RSIOversoldScenario(),
		EmptyFlowScenario(),
	}
}

// BuiltinSuite wraps BuiltinScenarios in a suite.
func BuiltinSuite(createdAt time.Time) Suite {
	return Suite{Name: "System Validation", Scenarios: BuiltinScenarios(), CreatedAt: createdAt}
}
