package graph

import (
	"testing"

	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type CompilerTestSuite struct {
	suite.Suite
}

func TestCompilerSuite(t *testing.T) {
	suite.Run(t, new(CompilerTestSuite))
}

func testNode(id string, kind types.NodeKind) types.Node {
	return types.Node{ID: id, Kind: kind}
}

func ids(nodes []types.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}

	return out
}

func (suite *CompilerTestSuite) TestOrderLinearChain() {
	nodes := []types.Node{
		testNode("result", types.NodeKindResult),
		testNode("logic", types.NodeKindLogic),
		testNode("source", types.NodeKindSource),
	}
	edges := []types.Edge{
		{Source: "source", Target: "logic"},
		{Source: "logic", Target: "result"},
	}

	suite.Equal([]string{"source", "logic", "result"}, ids(Order(nodes, edges)))
}

func (suite *CompilerTestSuite) TestOrderKeepsInputOrderForRoots() {
	nodes := []types.Node{
		testNode("b", types.NodeKindSource),
		testNode("a", types.NodeKindSource),
		testNode("c", types.NodeKindLogic),
	}
	edges := []types.Edge{
		{Source: "a", Target: "c"},
		{Source: "b", Target: "c"},
	}

	suite.Equal([]string{"b", "a", "c"}, ids(Order(nodes, edges)))
}

func (suite *CompilerTestSuite) TestOrderExcludesCycles() {
	nodes := []types.Node{
		testNode("source", types.NodeKindSource),
		testNode("x", types.NodeKindLogic),
		testNode("y", types.NodeKindLogic),
		testNode("after", types.NodeKindResult),
	}
	edges := []types.Edge{
		{Source: "source", Target: "x"},
		{Source: "x", Target: "y"},
		{Source: "y", Target: "x"},
		{Source: "y", Target: "after"},
	}

	suite.Equal([]string{"source"}, ids(Order(nodes, edges)))
}

func (suite *CompilerTestSuite) TestOrderIgnoresDanglingEdges() {
	nodes := []types.Node{
		testNode("source", types.NodeKindSource),
		testNode("logic", types.NodeKindLogic),
	}
	edges := []types.Edge{
		{Source: "ghost", Target: "logic"},
		{Source: "source", Target: "logic"},
	}

	suite.Equal([]string{"source", "logic"}, ids(Order(nodes, edges)))
}

func (suite *CompilerTestSuite) TestOrderEmpty() {
	suite.Empty(Order(nil, nil))
}

func (suite *CompilerTestSuite) TestInputsOf() {
	edges := []types.Edge{
		{Source: "a", Target: "c"},
		{Source: "b", Target: "d"},
		{Source: "b", Target: "c"},
	}

	suite.Equal([]string{"a", "b"}, InputsOf("c", edges))
	suite.Empty(InputsOf("a", edges))
}

func (suite *CompilerTestSuite) TestCompileBuildsPlan() {
	graph := types.Graph{
		Nodes: []types.Node{
			testNode("source", types.NodeKindSource),
			testNode("logic", types.NodeKindLogic),
			testNode("result", types.NodeKindResult),
		},
		Edges: []types.Edge{
			{Source: "source", Target: "logic"},
			{Source: "logic", Target: "result"},
			{Source: "logic", Target: "missing"},
		},
	}

	plan, err := Compile(graph, Options{Logger: logger.NewNopLogger()})
	suite.Require().NoError(err)

	suite.Equal([]string{"source", "logic", "result"}, ids(plan.Order))
	suite.Equal([]string{"logic"}, plan.Inputs["result"])
	suite.Equal([]string{"result"}, plan.Consumers["logic"])
	suite.True(plan.IsTerminal("result"))
	suite.False(plan.IsTerminal("logic"))
	suite.Len(plan.DroppedEdges, 1)
	suite.Empty(plan.Excluded)
}

func (suite *CompilerTestSuite) TestCompileCycle() {
	graph := types.Graph{
		Nodes: []types.Node{testNode("a", types.NodeKindLogic), testNode("b", types.NodeKindLogic)},
		Edges: []types.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}},
	}

	plan, err := Compile(graph, Options{})
	suite.Require().NoError(err)
	suite.Empty(plan.Order)
	suite.Equal([]string{"a", "b"}, plan.Excluded)

	_, err = Compile(graph, Options{Strict: true})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeGraphCycle))
}

func (suite *CompilerTestSuite) TestCompileRejectsDuplicateIDs() {
	graph := types.Graph{
		Nodes: []types.Node{testNode("a", types.NodeKindSource), testNode("a", types.NodeKindLogic)},
	}

	_, err := Compile(graph, Options{})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDuplicateNode))
}

func (suite *CompilerTestSuite) TestCompileRejectsEmptyID() {
	_, err := Compile(types.Graph{Nodes: []types.Node{testNode("", types.NodeKindSource)}}, Options{})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}
