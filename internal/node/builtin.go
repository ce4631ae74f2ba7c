package node

import "github.com/rxtech-lab/argo-forge/internal/types"

// Subtype names of the built-in evaluators.
const (
	SubtypePrice = "price"

	SubtypeRSIOverbought   = "rsi_gt_70"
	SubtypeRSIOversold     = "rsi_lt_30"
	SubtypePriceAboveMA    = "price_gt_ma200"
	SubtypePriceBelowMA    = "price_lt_ma200"
	SubtypeVolumeSpike     = "volume_spike"
	SubtypeOIIncrease      = "oi_increase"
	SubtypeFundingPositive = "funding_positive"
	SubtypeDivergence      = "divergence"

	SubtypeFundingAnomaly   = "FundingAnomaly"
	SubtypeAbsorption       = "Absorption"
	SubtypeInflowDivergence = "InflowDivergence"

	SubtypeCompare = "compare"

	SubtypeRegimeCheck = "RegimeCheck"

	SubtypeSignal = "signal"
)

// Builtins returns the definitions of every built-in node.
func Builtins() []Definition {
	return []Definition{
		sourcePrice(),

		rsiOverbought(),
		rsiOversold(),
		priceAboveMA(),
		priceBelowMA(),
		volumeSpike(),
		oiIncrease(),
		fundingPositive(),
		divergence(),

		fundingAnomaly(),
		absorption(),
		inflowDivergence(),

		compare(),

		regimeCheck(),

		resultSignal(),
	}
}

// NewDefaultRegistry returns a registry holding the built-in nodes, with
// default subtypes for nodes that do not name one.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()

	for _, def := range Builtins() {
		registry.Replace(def)
	}

	registry.SetDefault(types.NodeKindSource, SubtypePrice)
	registry.SetDefault(types.NodeKindLogic, SubtypeCompare)
	registry.SetDefault(types.NodeKindFilter, SubtypeRegimeCheck)
	registry.SetDefault(types.NodeKindResult, SubtypeSignal)

	registry.Alias(types.NodeKindSource, "dataSource", SubtypePrice)
	registry.Alias(types.NodeKindLogic, "custom", SubtypeCompare)
	registry.Alias(types.NodeKindResult, "output", SubtypeSignal)

	return registry
}

// logicOutput builds the output of a logic node that trades signalType when passed.
func logicOutput(subtype string, signalType types.SignalType, passed bool, value Value, ctx types.ExecutionContext) Output {
	out := Output{Value: value, Passed: passed}
	if passed {
		out.Signal = &types.TradeSignal{
			Timestamp: ctx.Current.Timestamp,
			Type:      signalType,
			Price:     ctx.Current.Close,
			Reason:    subtype,
		}
	}

	return out
}

// previousClose is the close before the current candle, or the current close
// when there is no history.
func previousClose(ctx types.ExecutionContext) float64 {
	if prev, ok := ctx.Previous(); ok {
		return prev.Close
	}

	return ctx.Current.Close
}
