package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/internal/version"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a graph document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the document format from a file extension.
// Anything that is not .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}

	return FormatYAML
}

// LoadDocument parses a graph document, checks its format version and binds
// every node against the built-in evaluators.
func LoadDocument(data []byte, format Format) (types.Graph, error) {
	var graph types.Graph

	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		if err := decoder.Decode(&graph); err != nil {
			return types.Graph{}, errors.Wrap(errors.ErrCodeGraphParseFailed, "failed to parse graph JSON", err)
		}
	case FormatYAML, "":
		if err := yaml.Unmarshal(data, &graph); err != nil {
			return types.Graph{}, errors.Wrap(errors.ErrCodeGraphParseFailed, "failed to parse graph YAML", err)
		}
	default:
		return types.Graph{}, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported graph format %q", format)
	}

	if err := version.CheckGraphCompatibility(version.GraphFormatVersion, graph.Version); err != nil {
		return types.Graph{}, errors.Wrap(errors.ErrCodeVersionMismatch, "incompatible graph document", err)
	}

	for i, node := range graph.Nodes {
		if node.Kind == "" {
			return types.Graph{}, errors.Newf(errors.ErrCodeUnknownNodeKind, "node %d (%s) has no kind", i, node.ID)
		}
	}

	if err := Validate(graph, nil); err != nil {
		return types.Graph{}, err
	}

	return graph, nil
}

// LoadDocumentFile reads and parses a graph document from disk.
func LoadDocumentFile(path string) (types.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Graph{}, fmt.Errorf("failed to read graph file %s: %w", path, err)
	}

	return LoadDocument(data, FormatFromPath(path))
}
