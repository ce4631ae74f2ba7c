package node

import (
	"github.com/rxtech-lab/argo-forge/internal/indicator"
	"github.com/rxtech-lab/argo-forge/internal/types"
)

type rsiConfig struct {
	Period    int                 `json:"period" validate:"gt=0" jsonschema:"title=Period,default=14"`
	Threshold float64             `json:"threshold" validate:"gte=0,lte=100" jsonschema:"title=Threshold"`
	Smoothing indicator.Smoothing `json:"smoothing" validate:"oneof=simple wilder" jsonschema:"title=Smoothing,enum=simple,enum=wilder,default=simple"`
}

func rsiValue(cfg rsiConfig, rsi float64) Value {
	return Value{
		Number:   rsi,
		IsNumber: true,
		Details:  map[string]any{"rsi": rsi, "threshold": cfg.Threshold},
	}
}

func rsiOverbought() Definition {
	return Define(types.NodeKindLogic, SubtypeRSIOverbought,
		"SELL when RSI rises above the threshold",
		func() rsiConfig { return rsiConfig{Period: 14, Threshold: 70, Smoothing: indicator.SmoothingSimple} },
		func(cfg rsiConfig, _ []Value, ctx types.ExecutionContext) (Output, error) {
			rsi := indicator.RSIWithSmoothing(indicator.Closes(ctx.Window()), cfg.Period, cfg.Smoothing)

			return logicOutput(SubtypeRSIOverbought, types.SignalTypeSell, rsi > cfg.Threshold, rsiValue(cfg, rsi), ctx), nil
		})
}

func rsiOversold() Definition {
	return Define(types.NodeKindLogic, SubtypeRSIOversold,
		"BUY when RSI falls below the threshold",
		func() rsiConfig { return rsiConfig{Period: 14, Threshold: 30, Smoothing: indicator.SmoothingSimple} },
		func(cfg rsiConfig, _ []Value, ctx types.ExecutionContext) (Output, error) {
			rsi := indicator.RSIWithSmoothing(indicator.Closes(ctx.Window()), cfg.Period, cfg.Smoothing)

			return logicOutput(SubtypeRSIOversold, types.SignalTypeBuy, rsi < cfg.Threshold, rsiValue(cfg, rsi), ctx), nil
		})
}

type movingAverageConfig struct {
	Period int `json:"period" validate:"gt=0" jsonschema:"title=Period,default=200"`
}

func movingAverageEvaluator(subtype string, signalType types.SignalType, above bool) EvalFunc[movingAverageConfig] {
	return func(cfg movingAverageConfig, _ []Value, ctx types.ExecutionContext) (Output, error) {
		ma := indicator.SMA(indicator.Closes(ctx.Window()), cfg.Period)
		price := ctx.Current.Close

		passed := price < ma
		if above {
			passed = price > ma
		}

		value := DetailsValue(map[string]any{"price": price, "ma": ma, "period": cfg.Period})

		return logicOutput(subtype, signalType, passed, value, ctx), nil
	}
}

func priceAboveMA() Definition {
	return Define(types.NodeKindLogic, SubtypePriceAboveMA,
		"BUY when the close is above its simple moving average",
		func() movingAverageConfig { return movingAverageConfig{Period: 200} },
		movingAverageEvaluator(SubtypePriceAboveMA, types.SignalTypeBuy, true))
}

func priceBelowMA() Definition {
	return Define(types.NodeKindLogic, SubtypePriceBelowMA,
		"SELL when the close is below its simple moving average",
		func() movingAverageConfig { return movingAverageConfig{Period: 200} },
		movingAverageEvaluator(SubtypePriceBelowMA, types.SignalTypeSell, false))
}

type volumeSpikeConfig struct {
	Lookback   int     `json:"lookback" validate:"gt=0" jsonschema:"title=Lookback,default=20"`
	Multiplier float64 `json:"multiplier" validate:"gt=0" jsonschema:"title=Multiplier,default=2"`
}

func volumeSpike() Definition {
	return Define(types.NodeKindLogic, SubtypeVolumeSpike,
		"BUY when volume exceeds a multiple of the recent average",
		func() volumeSpikeConfig { return volumeSpikeConfig{Lookback: 20, Multiplier: 2} },
		func(cfg volumeSpikeConfig, _ []Value, ctx types.ExecutionContext) (Output, error) {
			if len(ctx.Prior) == 0 {
				return Output{}, nil
			}

			avg := indicator.AverageVolume(ctx.Prior, cfg.Lookback)
			passed := ctx.Current.Volume > avg*cfg.Multiplier
			value := DetailsValue(map[string]any{"current": ctx.Current.Volume, "avg": avg})

			return logicOutput(SubtypeVolumeSpike, types.SignalTypeBuy, passed, value, ctx), nil
		})
}
