package node

import (
	"testing"

	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = NewDefaultRegistry()
}

type panickingEvaluator struct{}

func (panickingEvaluator) Kind() types.NodeKind { return types.NodeKindLogic }
func (panickingEvaluator) Subtype() string      { return "explode" }
func (panickingEvaluator) Evaluate([]Value, types.ExecutionContext) (Output, error) {
	panic("boom")
}

func (suite *RegistryTestSuite) TestDefaultsAndAliases() {
	tests := []struct {
		name     string
		kind     types.NodeKind
		subtype  string
		expected string
	}{
		{name: "source default", kind: types.NodeKindSource, expected: SubtypePrice},
		{name: "data source alias", kind: types.NodeKindSource, subtype: "dataSource", expected: SubtypePrice},
		{name: "logic default", kind: types.NodeKindLogic, expected: SubtypeCompare},
		{name: "custom alias", kind: types.NodeKindLogic, subtype: "custom", expected: SubtypeCompare},
		{name: "filter default", kind: types.NodeKindFilter, expected: SubtypeRegimeCheck},
		{name: "result default", kind: types.NodeKindResult, expected: SubtypeSignal},
		{name: "explicit", kind: types.NodeKindLogic, subtype: SubtypeAbsorption, expected: SubtypeAbsorption},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			def, err := suite.registry.Get(tc.kind, tc.subtype)
			suite.Require().NoError(err)
			suite.Equal(tc.expected, def.Subtype)
			suite.Equal(tc.kind, def.Kind)
		})
	}
}

func (suite *RegistryTestSuite) TestUnknownSubtype() {
	_, err := suite.registry.Get(types.NodeKindLogic, "macd_cross")
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownNode))

	_, err = suite.registry.Bind(types.Node{ID: "n1", Kind: types.NodeKindFilter, Subtype: "TrendCheck"})
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownNode))
	suite.Contains(err.Error(), "node n1")
}

func (suite *RegistryTestSuite) TestRegisterDuplicate() {
	err := suite.registry.Register(compare())
	suite.True(errors.HasCode(err, errors.ErrCodeEvaluatorExists))

	suite.NoError(suite.registry.Register(Static(panickingEvaluator{}, "test only")))
}

func (suite *RegistryTestSuite) TestBindInvalidConfig() {
	tests := []struct {
		name string
		node types.Node
	}{
		{name: "negative period", node: types.Node{ID: "a", Kind: types.NodeKindLogic, Subtype: SubtypeRSIOverbought, Config: map[string]any{"period": -1}}},
		{name: "unknown operator", node: types.Node{ID: "b", Kind: types.NodeKindLogic, Subtype: SubtypeCompare, Config: map[string]any{"operator": "!="}}},
		{name: "unknown signal type", node: types.Node{ID: "c", Kind: types.NodeKindResult, Config: map[string]any{"signal_type": "HOLD"}}},
		{name: "wrong type", node: types.Node{ID: "d", Kind: types.NodeKindLogic, Subtype: SubtypeVolumeSpike, Config: map[string]any{"lookback": "twenty"}}},
		{name: "low above high", node: types.Node{ID: "e", Kind: types.NodeKindFilter, Config: map[string]any{"high_pct": 1, "low_pct": 3}}},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := suite.registry.Bind(tc.node)
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidNodeConfig))
		})
	}
}

func (suite *RegistryTestSuite) TestBindAcceptsLowercaseSignalType() {
	evaluator, err := suite.registry.Bind(types.Node{ID: "r", Kind: types.NodeKindResult, Config: map[string]any{"signal_type": "exit", "label": "Close"}})
	suite.Require().NoError(err)

	out, err := evaluator.Evaluate([]Value{NumberValue(1)}, types.ExecutionContext{Current: types.Candle{Close: 10}})
	suite.Require().NoError(err)
	suite.Equal(types.SignalTypeExit, out.Signal.Type)
}

func (suite *RegistryTestSuite) TestBindAll() {
	bound, err := suite.registry.BindAll([]types.Node{
		{ID: "s", Kind: types.NodeKindSource},
		{ID: "r", Kind: types.NodeKindResult},
	})
	suite.Require().NoError(err)
	suite.Len(bound, 2)

	_, err = suite.registry.BindAll([]types.Node{{ID: "x", Kind: types.NodeKindLogic, Subtype: "nope"}})
	suite.Error(err)
}

func (suite *RegistryTestSuite) TestEvaluateRecoversPanic() {
	suite.Require().NoError(suite.registry.Register(Static(panickingEvaluator{}, "test only")))

	out, err := suite.registry.Evaluate(types.NodeKindLogic, "explode", nil, nil, types.ExecutionContext{})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeEvaluationFailed))
	suite.False(out.Passed)
}

func (suite *RegistryTestSuite) TestEvaluateSource() {
	out, err := suite.registry.Evaluate(types.NodeKindSource, "", nil, nil, types.ExecutionContext{Current: types.Candle{Close: 42}})
	suite.Require().NoError(err)
	suite.True(out.Passed)
	suite.Equal(NumberValue(42), out.Value)
	suite.Nil(out.Signal)
}

func (suite *RegistryTestSuite) TestListIsSorted() {
	defs := suite.registry.List()
	suite.Len(defs, len(Builtins()))

	for i := 1; i < len(defs); i++ {
		prev, cur := defs[i-1], defs[i]
		suite.True(prev.Kind < cur.Kind || (prev.Kind == cur.Kind && prev.Subtype < cur.Subtype))
	}
}

func (suite *RegistryTestSuite) TestConfigSchema() {
	def, err := suite.registry.Get(types.NodeKindLogic, SubtypeAbsorption)
	suite.Require().NoError(err)

	schema := def.ConfigSchema()
	suite.Equal("logic/Absorption", schema.Title)

	_, ok := schema.Properties.Get("min_oi_change_pct")
	suite.True(ok)

	suite.Equal("object", Static(panickingEvaluator{}, "").ConfigSchema().Type)
}
