// Package node evaluates the blocks of a strategy graph. Every (kind,
// subtype) pair is a Definition with a typed configuration; binding a
// graph node parses and validates its configuration once, and the bound
// Evaluator is then run against every candle.
package node

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
)

// Evaluator is a node bound to its configuration.
type Evaluator interface {
	// Kind returns the node kind the evaluator implements.
	Kind() types.NodeKind
	// Subtype returns the resolved subtype name.
	Subtype() string
	// Evaluate runs the node for the candle in ctx.
	Evaluate(inputs []Value, ctx types.ExecutionContext) (Output, error)
}

// EvalFunc is the body of a node with configuration C.
type EvalFunc[C any] func(cfg C, inputs []Value, ctx types.ExecutionContext) (Output, error)

// Definition describes one (kind, subtype) pair and knows how to bind it.
type Definition struct {
	Kind        types.NodeKind
	Subtype     string
	Description string

	bind   func(raw map[string]any) (Evaluator, error)
	schema func() *jsonschema.Schema
}

// Bind parses raw into the definition's configuration and returns an evaluator.
func (d Definition) Bind(raw map[string]any) (Evaluator, error) {
	return d.bind(raw)
}

// ConfigSchema describes the configuration accepted by the definition.
func (d Definition) ConfigSchema() *jsonschema.Schema {
	if d.schema == nil {
		return &jsonschema.Schema{Type: "object"}
	}

	return d.schema()
}

// normalizer is implemented by configurations that canonicalise fields after decoding.
type normalizer interface {
	normalize() error
}

// Define builds a Definition whose configuration starts from defaults() and is
// overridden by the node's config bag.
func Define[C any](kind types.NodeKind, subtype, description string, defaults func() C, eval EvalFunc[C]) Definition {
	return Definition{
		Kind:        kind,
		Subtype:     subtype,
		Description: description,
		bind: func(raw map[string]any) (Evaluator, error) {
			cfg := defaults()
			if err := decodeConfig(raw, &cfg); err != nil {
				return nil, errors.Wrapf(errors.ErrCodeInvalidNodeConfig, err, "invalid %s/%s config", kind, subtype)
			}

			return &typedEvaluator[C]{kind: kind, subtype: subtype, cfg: cfg, eval: eval}, nil
		},
		schema: func() *jsonschema.Schema {
			reflector := jsonschema.Reflector{
				ExpandedStruct:            true,
				AllowAdditionalProperties: true,
				DoNotReference:            true,
			}
			cfg := defaults()
			schema := reflector.Reflect(&cfg)
			schema.Title = fmt.Sprintf("%s/%s", kind, subtype)
			schema.Description = description
			schema.Version = ""

			return schema
		},
	}
}

// Static registers an already constructed evaluator under its kind and subtype.
// The node config is ignored.
func Static(evaluator Evaluator, description string) Definition {
	return Definition{
		Kind:        evaluator.Kind(),
		Subtype:     evaluator.Subtype(),
		Description: description,
		bind: func(map[string]any) (Evaluator, error) {
			return evaluator, nil
		},
	}
}

var validate = validator.New()

func decodeConfig(raw map[string]any, target any) error {
	if len(raw) > 0 {
		data, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}

		if err := json.Unmarshal(data, target); err != nil {
			return fmt.Errorf("failed to decode config: %w", err)
		}
	}

	if n, ok := target.(normalizer); ok {
		if err := n.normalize(); err != nil {
			return err
		}
	}

	if reflect.Indirect(reflect.ValueOf(target)).Kind() != reflect.Struct {
		return nil
	}

	return validate.Struct(target)
}

type typedEvaluator[C any] struct {
	kind    types.NodeKind
	subtype string
	cfg     C
	eval    EvalFunc[C]
}

func (e *typedEvaluator[C]) Kind() types.NodeKind {
	return e.kind
}

func (e *typedEvaluator[C]) Subtype() string {
	return e.subtype
}

func (e *typedEvaluator[C]) Evaluate(inputs []Value, ctx types.ExecutionContext) (Output, error) {
	return e.eval(e.cfg, inputs, ctx)
}

// SafeEvaluate runs evaluator and turns a panic into an error.
func SafeEvaluate(evaluator Evaluator, inputs []Value, ctx types.ExecutionContext) (out Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = Output{}
			err = errors.Newf(errors.ErrCodeEvaluationFailed, "%s/%s panicked: %v", evaluator.Kind(), evaluator.Subtype(), r)
		}
	}()

	return evaluator.Evaluate(inputs, ctx)
}
