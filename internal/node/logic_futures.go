package node

import (
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
)

func requireMetrics(subtype string, candles ...types.Candle) error {
	for _, candle := range candles {
		if candle.Metrics == nil {
			return errors.Newf(errors.ErrCodeMissingMetric, "%s needs metrics for candle at %s", subtype, candle.Timestamp)
		}
	}

	return nil
}

type oiIncreaseConfig struct {
	Ratio float64 `json:"ratio" validate:"gt=0" jsonschema:"title=Ratio,description=Current OI must exceed previous OI times this ratio,default=1.05"`
}

func oiIncrease() Definition {
	return Define(types.NodeKindLogic, SubtypeOIIncrease,
		"BUY when open interest jumps against the previous candle",
		func() oiIncreaseConfig { return oiIncreaseConfig{Ratio: 1.05} },
		func(cfg oiIncreaseConfig, _ []Value, ctx types.ExecutionContext) (Output, error) {
			prev, ok := ctx.Previous()
			if !ok {
				if err := requireMetrics(SubtypeOIIncrease, ctx.Current); err != nil {
					return Output{}, err
				}

				return Output{}, nil
			}

			if err := requireMetrics(SubtypeOIIncrease, prev, ctx.Current); err != nil {
				return Output{}, err
			}

			prevOI := prev.Metrics.OpenInterest
			currOI := ctx.Current.Metrics.OpenInterest
			passed := currOI > prevOI*cfg.Ratio
			value := DetailsValue(map[string]any{"prev": prevOI, "current": currOI})

			return logicOutput(SubtypeOIIncrease, types.SignalTypeBuy, passed, value, ctx), nil
		})
}

type fundingPositiveConfig struct{}

func fundingPositive() Definition {
	return Define(types.NodeKindLogic, SubtypeFundingPositive,
		"SELL when the funding rate is positive",
		func() fundingPositiveConfig { return fundingPositiveConfig{} },
		func(_ fundingPositiveConfig, _ []Value, ctx types.ExecutionContext) (Output, error) {
			if err := requireMetrics(SubtypeFundingPositive, ctx.Current); err != nil {
				return Output{}, err
			}

			funding := ctx.Current.Metrics.FundingRate

			return logicOutput(SubtypeFundingPositive, types.SignalTypeSell, funding > 0, NumberValue(funding), ctx), nil
		})
}

type divergenceConfig struct {
	Lookback int `json:"lookback" validate:"gt=0" jsonschema:"title=Lookback,default=5"`
}

func divergence() Definition {
	return Define(types.NodeKindLogic, SubtypeDivergence,
		"SELL when price rises while open interest falls over the lookback",
		func() divergenceConfig { return divergenceConfig{Lookback: 5} },
		func(cfg divergenceConfig, _ []Value, ctx types.ExecutionContext) (Output, error) {
			past, ok := ctx.Back(cfg.Lookback)
			if !ok || past.Metrics == nil || ctx.Current.Metrics == nil {
				return Output{}, nil
			}

			priceIncreasing := ctx.Current.Close > past.Close
			oiDecreasing := ctx.Current.Metrics.OpenInterest < past.Metrics.OpenInterest
			value := DetailsValue(map[string]any{"priceIncreasing": priceIncreasing, "oiDecreasing": oiDecreasing})

			return logicOutput(SubtypeDivergence, types.SignalTypeSell, priceIncreasing && oiDecreasing, value, ctx), nil
		})
}
