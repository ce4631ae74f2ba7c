package node

import "github.com/rxtech-lab/argo-forge/internal/types"

type priceSourceConfig struct {
	Symbol string `json:"symbol,omitempty" jsonschema:"title=Symbol,description=Informational market symbol"`
}

func sourcePrice() Definition {
	return Define(types.NodeKindSource, SubtypePrice,
		"Emits the close of the current candle",
		func() priceSourceConfig { return priceSourceConfig{} },
		func(_ priceSourceConfig, _ []Value, ctx types.ExecutionContext) (Output, error) {
			return Output{Value: NumberValue(ctx.Current.Close), Passed: true}, nil
		})
}
