package node

import (
	"math"

	"github.com/rxtech-lab/argo-forge/internal/types"
)

// Value is the payload a node hands to its consumers.
type Value struct {
	Number   float64        `json:"number,omitempty"`
	IsNumber bool           `json:"isNumber,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Regime   types.Regime   `json:"regime,omitempty"`
}

// NumberValue wraps a plain number.
func NumberValue(n float64) Value {
	return Value{Number: n, IsNumber: true}
}

// DetailsValue wraps a set of named readings.
func DetailsValue(details map[string]any) Value {
	return Value{Details: details}
}

// Truthy reports whether the value counts as a passing input. A non-zero,
// non-NaN number is truthy, as is any value carrying details.
func (v Value) Truthy() bool {
	if len(v.Details) > 0 {
		return true
	}

	return v.IsNumber && v.Number != 0 && !math.IsNaN(v.Number)
}

// FirstInput returns the number carried by the first input. It reports false
// when there is no first input or it is not a truthy number; later inputs are
// never consulted.
func FirstInput(inputs []Value) (float64, bool) {
	if len(inputs) == 0 {
		return 0, false
	}

	first := inputs[0]
	if !first.IsNumber || first.Number == 0 || math.IsNaN(first.Number) {
		return 0, false
	}

	return first.Number, true
}

// Output is the result of evaluating one node against one candle.
type Output struct {
	Value  Value
	Passed bool
	// Signal is set when the node wants to trade. Its ID and NodeID are
	// filled in by the engine.
	Signal *types.TradeSignal
}

// Forwarded is the value consumers see: the node's value when it passed,
// the zero Value otherwise.
func (o Output) Forwarded() Value {
	if !o.Passed {
		return Value{}
	}

	return o.Value
}
