package node

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
)

// Registry maps (kind, subtype) pairs to node definitions.
type Registry struct {
	definitions map[registryKey]Definition
	defaults    map[types.NodeKind]string
	aliases     map[registryKey]string
	mu          sync.RWMutex
}

type registryKey struct {
	kind    types.NodeKind
	subtype string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[registryKey]Definition),
		defaults:    make(map[types.NodeKind]string),
		aliases:     make(map[registryKey]string),
		mu:          sync.RWMutex{},
	}
}

// Register adds a definition. Registering the same pair twice is an error.
func (r *Registry) Register(def Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey{kind: def.Kind, subtype: def.Subtype}
	if _, exists := r.definitions[key]; exists {
		return errors.Newf(errors.ErrCodeEvaluatorExists, "evaluator %s/%s already registered", def.Kind, def.Subtype)
	}

	r.definitions[key] = def

	return nil
}

// Replace adds a definition, overwriting any existing one for the same pair.
func (r *Registry) Replace(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.definitions[registryKey{kind: def.Kind, subtype: def.Subtype}] = def
}

// SetDefault names the subtype used for nodes of kind that have no subtype.
func (r *Registry) SetDefault(kind types.NodeKind, subtype string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.defaults[kind] = subtype
}

// Alias makes alias resolve to subtype for nodes of kind.
func (r *Registry) Alias(kind types.NodeKind, alias, subtype string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.aliases[registryKey{kind: kind, subtype: alias}] = subtype
}

// Get returns the definition for kind and subtype, applying defaults and aliases.
func (r *Registry) Get(kind types.NodeKind, subtype string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if subtype == "" {
		subtype = r.defaults[kind]
	}

	if target, ok := r.aliases[registryKey{kind: kind, subtype: subtype}]; ok {
		subtype = target
	}

	def, exists := r.definitions[registryKey{kind: kind, subtype: subtype}]
	if !exists {
		return Definition{}, errors.Newf(errors.ErrCodeUnknownNode, "unknown %s subtype %q", kind, subtype)
	}

	return def, nil
}

// List returns every registered definition sorted by kind and subtype.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}

	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Kind != defs[j].Kind {
			return defs[i].Kind < defs[j].Kind
		}

		return defs[i].Subtype < defs[j].Subtype
	})

	return defs
}

// Bind resolves the definition for node and binds its configuration.
func (r *Registry) Bind(n types.Node) (Evaluator, error) {
	def, err := r.Get(n.Kind, n.Subtype)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", n.ID, err)
	}

	evaluator, err := def.Bind(n.Config)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", n.ID, err)
	}

	return evaluator, nil
}

// BindAll binds every node, keyed by node ID. The first failure is returned.
func (r *Registry) BindAll(nodes []types.Node) (map[string]Evaluator, error) {
	bound := make(map[string]Evaluator, len(nodes))

	for _, n := range nodes {
		evaluator, err := r.Bind(n)
		if err != nil {
			return nil, err
		}

		bound[n.ID] = evaluator
	}

	return bound, nil
}

// Evaluate binds and runs a single node. Panics are reported as errors.
func (r *Registry) Evaluate(kind types.NodeKind, subtype string, config map[string]any, inputs []Value, ctx types.ExecutionContext) (Output, error) {
	def, err := r.Get(kind, subtype)
	if err != nil {
		return Output{}, err
	}

	evaluator, err := def.Bind(config)
	if err != nil {
		return Output{}, err
	}

	return SafeEvaluate(evaluator, inputs, ctx)
}
