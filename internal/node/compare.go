package node

import (
	"github.com/rxtech-lab/argo-forge/internal/types"
)

// Comparison operators accepted by the compare node.
const (
	OperatorGreater      = ">"
	OperatorLess         = "<"
	OperatorEqual        = "=="
	OperatorGreaterEqual = ">="
	OperatorLessEqual    = "<="
)

type compareConfig struct {
	Operator string  `json:"operator" validate:"oneof=> < == >= <=" jsonschema:"title=Operator,enum=>,enum=<,enum===,enum=>=,enum=<=,default=>"`
	Value    float64 `json:"value" jsonschema:"title=Value,default=50000"`
}

func applyOperator(operator string, left, right float64) bool {
	switch operator {
	case OperatorGreater:
		return left > right
	case OperatorLess:
		return left < right
	case OperatorEqual:
		return left == right
	case OperatorGreaterEqual:
		return left >= right
	case OperatorLessEqual:
		return left <= right
	default:
		return false
	}
}

func compare() Definition {
	return Define(types.NodeKindLogic, SubtypeCompare,
		"Compares the first numeric input (or the close) against a value; BUY for >, SELL otherwise",
		func() compareConfig { return compareConfig{Operator: OperatorGreater, Value: 50000} },
		func(cfg compareConfig, inputs []Value, ctx types.ExecutionContext) (Output, error) {
			input, ok := FirstInput(inputs)
			if !ok {
				input = ctx.Current.Close
			}

			signalType := types.SignalTypeSell
			if cfg.Operator == OperatorGreater {
				signalType = types.SignalTypeBuy
			}

			passed := applyOperator(cfg.Operator, input, cfg.Value)

			return logicOutput(SubtypeCompare, signalType, passed, NumberValue(input), ctx), nil
		})
}
