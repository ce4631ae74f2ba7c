package types

import (
	"fmt"
	"strings"
)

// NodeKind is the closed set of block kinds a strategy graph is built from.
type NodeKind string

const (
	// NodeKindSource feeds the current price into the graph.
	NodeKindSource NodeKind = "source"
	// NodeKindLogic evaluates a trading condition and may emit a signal.
	NodeKindLogic NodeKind = "logic"
	// NodeKindFilter classifies the market regime without emitting signals.
	NodeKindFilter NodeKind = "filter"
	// NodeKindResult turns a truthy input into a trade signal.
	NodeKindResult NodeKind = "result"
)

// AllNodeKinds lists every node kind, used for schema enums.
var AllNodeKinds = []any{
	NodeKindSource,
	NodeKindLogic,
	NodeKindFilter,
	NodeKindResult,
}

// ParseNodeKind accepts the canonical kind names as well as the aliases
// produced by the graph authoring UI.
func ParseNodeKind(raw string) (NodeKind, error) {
	switch strings.TrimSpace(raw) {
	case "source", "sourceNode", "dataSource":
		return NodeKindSource, nil
	case "logic", "processNode":
		return NodeKindLogic, nil
	case "filter", "filterNode":
		return NodeKindFilter, nil
	case "result", "resultNode", "output":
		return NodeKindResult, nil
	default:
		return "", fmt.Errorf("unknown node kind %q", raw)
	}
}

// UnmarshalText lets documents use any accepted alias for a kind.
func (k *NodeKind) UnmarshalText(text []byte) error {
	kind, err := ParseNodeKind(string(text))
	if err != nil {
		return err
	}

	*k = kind

	return nil
}

// Node is one block of a strategy graph. Config is the raw configuration bag
// as authored; it is parsed into a typed configuration when the graph is bound.
type Node struct {
	ID      string         `json:"id" yaml:"id" jsonschema:"title=ID,description=Unique node identifier"`
	Kind    NodeKind       `json:"kind" yaml:"kind" jsonschema:"title=Kind,enum=source,enum=logic,enum=filter,enum=result"`
	Subtype string         `json:"subtype,omitempty" yaml:"subtype,omitempty" jsonschema:"title=Subtype,description=Evaluator subtype within the kind"`
	Config  map[string]any `json:"config,omitempty" yaml:"config,omitempty" jsonschema:"title=Config"`
}

// Edge connects a producer node to a consumer node.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Graph is a complete strategy document.
type Graph struct {
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes   []Node `json:"nodes" yaml:"nodes"`
	Edges   []Edge `json:"edges" yaml:"edges"`
}
