package graph

import (
	"github.com/rxtech-lab/argo-forge/internal/node"
	"github.com/rxtech-lab/argo-forge/internal/types"
)

// Validate binds every node of graph against registry so an unknown kind or
// subtype, or an invalid node config, fails at load time with
// ErrCodeUnknownNode or ErrCodeInvalidNodeConfig. A nil registry means the
// built-in evaluators.
func Validate(graph types.Graph, registry *node.Registry) error {
	if registry == nil {
		registry = node.NewDefaultRegistry()
	}

	for _, n := range graph.Nodes {
		if _, err := registry.Bind(n); err != nil {
			return err
		}
	}

	return nil
}
