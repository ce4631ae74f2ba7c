package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type TypesTestSuite struct {
	suite.Suite
}

func TestTypesSuite(t *testing.T) {
	suite.Run(t, new(TypesTestSuite))
}

func (suite *TypesTestSuite) TestParseNodeKind() {
	tests := []struct {
		name     string
		input    string
		expected NodeKind
		wantErr  bool
	}{
		{name: "canonical logic", input: "logic", expected: NodeKindLogic},
		{name: "ui process alias", input: "processNode", expected: NodeKindLogic},
		{name: "data source alias", input: "dataSource", expected: NodeKindSource},
		{name: "output alias", input: "output", expected: NodeKindResult},
		{name: "filter alias", input: "filterNode", expected: NodeKindFilter},
		{name: "unknown", input: "executor", wantErr: true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			kind, err := ParseNodeKind(tc.input)
			if tc.wantErr {
				suite.Error(err)

				return
			}

			suite.NoError(err)
			suite.Equal(tc.expected, kind)
		})
	}
}

func (suite *TypesTestSuite) TestNodeKindFromDocument() {
	var graph Graph
	err := yaml.Unmarshal([]byte(`
nodes:
  - id: a
    kind: sourceNode
  - id: b
    kind: resultNode
edges:
  - source: a
    target: b
`), &graph)
	suite.Require().NoError(err)
	suite.Equal(NodeKindSource, graph.Nodes[0].Kind)
	suite.Equal(NodeKindResult, graph.Nodes[1].Kind)

	err = json.Unmarshal([]byte(`{"nodes":[{"id":"x","kind":"bogus"}]}`), &graph)
	suite.Error(err)
}

func (suite *TypesTestSuite) TestParseSignalType() {
	signalType, err := ParseSignalType("exit")
	suite.NoError(err)
	suite.Equal(SignalTypeExit, signalType)

	_, err = ParseSignalType("HOLD")
	suite.Error(err)
}

func (suite *TypesTestSuite) TestSortCandlesIsStable() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := []Candle{
		{Timestamp: base.Add(2 * time.Hour), Close: 3},
		{Timestamp: base, Close: 1},
		{Timestamp: base.Add(time.Hour), Close: 2},
		{Timestamp: base, Close: 11},
	}

	sorted := SortCandles(candles)

	suite.Equal([]float64{1, 11, 2, 3}, []float64{sorted[0].Close, sorted[1].Close, sorted[2].Close, sorted[3].Close})
	suite.Equal(3.0, candles[0].Close, "input must not be reordered")
}

func (suite *TypesTestSuite) TestExecutionContextLookback() {
	ctx := ExecutionContext{
		Current: Candle{Close: 4},
		Prior:   []Candle{{Close: 1}, {Close: 2}, {Close: 3}},
	}

	prev, ok := ctx.Previous()
	suite.True(ok)
	suite.Equal(3.0, prev.Close)

	back, ok := ctx.Back(3)
	suite.True(ok)
	suite.Equal(1.0, back.Close)

	_, ok = ctx.Back(4)
	suite.False(ok)

	suite.Len(ctx.Window(), 4)
	suite.Equal(4.0, ctx.Window()[3].Close)

	_, ok = ExecutionContext{}.Previous()
	suite.False(ok)
}

func (suite *TypesTestSuite) TestPositionUnrealizedReturn() {
	long := Position{State: PositionStateLong, EntryPrice: 100}
	suite.InDelta(0.1, long.UnrealizedReturn(110), 1e-9)

	short := Position{State: PositionStateShort, EntryPrice: 100}
	suite.InDelta(0.1, short.UnrealizedReturn(90), 1e-9)

	suite.Equal(0.0, Position{State: PositionStateFlat}.UnrealizedReturn(200))
}

func (suite *TypesTestSuite) TestRegimeRecommendation() {
	suite.Equal("Wide stops, momentum strategies", RegimeHighVolatility.Recommendation())
	suite.Equal("Tight stops, mean reversion", RegimeLowVolatility.Recommendation())
	suite.Equal("Standard parameters", RegimeNormal.Recommendation())
}
