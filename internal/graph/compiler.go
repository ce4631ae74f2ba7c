// Package graph turns a strategy graph into an execution plan: a
// topological order of its nodes plus the producer/consumer links each
// node needs at evaluation time.
package graph

import (
	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"go.uber.org/zap"
)

// Options controls how a graph is compiled.
type Options struct {
	// Strict turns nodes left out by a cycle into a compile error.
	Strict bool
	// Logger receives warnings about dropped edges and excluded nodes. Optional.
	Logger *logger.Logger
}

// Plan is a compiled graph ready for candle-by-candle evaluation.
type Plan struct {
	// Order lists the nodes so that every node follows all of its producers.
	Order []types.Node
	// Inputs maps a node ID to its producers, in edge order.
	Inputs map[string][]string
	// Consumers maps a node ID to the nodes reading its output.
	Consumers map[string][]string
	// Excluded lists nodes that sit on, or downstream of, a cycle.
	Excluded []string
	// DroppedEdges lists edges whose source or target does not exist.
	DroppedEdges []types.Edge
}

// IsTerminal reports whether no node consumes the output of nodeID.
func (p *Plan) IsTerminal(nodeID string) bool {
	return len(p.Consumers[nodeID]) == 0
}

// Order sorts nodes topologically with Kahn's algorithm. The queue is
// seeded with zero in-degree nodes in input order. Nodes that never reach
// in-degree zero (cycles and everything downstream of them) are left out.
// Edges referencing unknown nodes are ignored.
func Order(nodes []types.Node, edges []types.Edge) []types.Node {
	valid, _ := splitEdges(nodes, edges)

	order, _ := kahn(nodes, valid)

	return order
}

// InputsOf returns the direct producers of nodeID, in edge order.
func InputsOf(nodeID string, edges []types.Edge) []string {
	var inputs []string

	for _, edge := range edges {
		if edge.Target == nodeID {
			inputs = append(inputs, edge.Source)
		}
	}

	return inputs
}

// Compile validates node identity, drops dangling edges and produces a Plan.
func Compile(graph types.Graph, opts Options) (*Plan, error) {
	seen := make(map[string]struct{}, len(graph.Nodes))
	for _, node := range graph.Nodes {
		if node.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "node id must not be empty")
		}

		if _, ok := seen[node.ID]; ok {
			return nil, errors.Newf(errors.ErrCodeDuplicateNode, "duplicate node id %q", node.ID)
		}

		seen[node.ID] = struct{}{}
	}

	valid, dropped := splitEdges(graph.Nodes, graph.Edges)
	order, excluded := kahn(graph.Nodes, valid)

	plan := &Plan{
		Order:        order,
		Inputs:       make(map[string][]string, len(order)),
		Consumers:    make(map[string][]string, len(order)),
		Excluded:     excluded,
		DroppedEdges: dropped,
	}

	for _, edge := range valid {
		plan.Inputs[edge.Target] = append(plan.Inputs[edge.Target], edge.Source)
		plan.Consumers[edge.Source] = append(plan.Consumers[edge.Source], edge.Target)
	}

	if opts.Logger != nil {
		for _, edge := range dropped {
			opts.Logger.Warn("Dropping edge with unknown endpoint",
				zap.String("source", edge.Source),
				zap.String("target", edge.Target),
			)
		}
	}

	if len(excluded) > 0 {
		if opts.Strict {
			return nil, errors.Newf(errors.ErrCodeGraphCycle, "graph contains a cycle through %v", excluded)
		}

		if opts.Logger != nil {
			opts.Logger.Warn("Excluding nodes unreachable in topological order",
				zap.Strings("nodes", excluded),
			)
		}
	}

	return plan, nil
}

func splitEdges(nodes []types.Node, edges []types.Edge) (valid []types.Edge, dropped []types.Edge) {
	ids := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		ids[node.ID] = struct{}{}
	}

	for _, edge := range edges {
		_, okSource := ids[edge.Source]
		_, okTarget := ids[edge.Target]

		if okSource && okTarget {
			valid = append(valid, edge)
		} else {
			dropped = append(dropped, edge)
		}
	}

	return valid, dropped
}

func kahn(nodes []types.Node, edges []types.Edge) (order []types.Node, excluded []string) {
	byID := make(map[string]types.Node, len(nodes))
	inDegree := make(map[string]int, len(nodes))
	adjacency := make(map[string][]string, len(nodes))
	ids := make([]string, 0, len(nodes))

	for _, node := range nodes {
		if _, ok := byID[node.ID]; ok {
			continue
		}

		byID[node.ID] = node
		inDegree[node.ID] = 0
		ids = append(ids, node.ID)
	}

	for _, edge := range edges {
		adjacency[edge.Source] = append(adjacency[edge.Source], edge.Target)
		inDegree[edge.Target]++
	}

	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order = make([]types.Node, 0, len(ids))
	visited := make(map[string]struct{}, len(ids))

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		order = append(order, byID[current])
		visited[current] = struct{}{}

		for _, next := range adjacency[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	for _, id := range ids {
		if _, ok := visited[id]; !ok {
			excluded = append(excluded, id)
		}
	}

	return order, excluded
}
