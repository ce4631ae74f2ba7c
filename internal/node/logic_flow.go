package node

import (
	"math"

	"github.com/rxtech-lab/argo-forge/internal/indicator"
	"github.com/rxtech-lab/argo-forge/internal/types"
)

const normalReading = "Normal"

func metricsOrZero(candle types.Candle) types.Metrics {
	if candle.Metrics == nil {
		return types.Metrics{}
	}

	return *candle.Metrics
}

type fundingAnomalyConfig struct {
	MinPriceChangePct float64 `json:"min_price_change_pct" validate:"gte=0" jsonschema:"title=Minimum Price Change %,default=1"`
}

// Price rallying while funding is negative: shorts are paying into a rising market.
func fundingAnomaly() Definition {
	return Define(types.NodeKindLogic, SubtypeFundingAnomaly,
		"BUY on a rally against negative funding (short squeeze)",
		func() fundingAnomalyConfig { return fundingAnomalyConfig{MinPriceChangePct: 1} },
		func(cfg fundingAnomalyConfig, _ []Value, ctx types.ExecutionContext) (Output, error) {
			priceChange := indicator.PercentChange(previousClose(ctx), ctx.Current.Close)
			funding := metricsOrZero(ctx.Current).FundingRate
			passed := priceChange > cfg.MinPriceChangePct && funding < 0

			reading := normalReading
			if passed {
				reading = "Spot Driven Rally / Short Squeeze Warning"
			}

			value := DetailsValue(map[string]any{
				"priceChange": priceChange,
				"fundingRate": funding,
				"signal":      reading,
			})

			return logicOutput(SubtypeFundingAnomaly, types.SignalTypeBuy, passed, value, ctx), nil
		})
}

type absorptionConfig struct {
	MaxPriceChangePct float64 `json:"max_price_change_pct" validate:"gte=0" jsonschema:"title=Maximum Price Change %,default=0.2"`
	MinOIChangePct    float64 `json:"min_oi_change_pct" validate:"gte=0" jsonschema:"title=Minimum OI Change %,default=2"`
	VolumeMultiplier  float64 `json:"volume_multiplier" validate:"gt=0" jsonschema:"title=Volume Multiplier,default=1.5"`
	Lookback          int     `json:"lookback" validate:"gt=0" jsonschema:"title=Volume Lookback,default=20"`
}

// Flat price while open interest builds on heavy activity: positions are being loaded.
func absorption() Definition {
	return Define(types.NodeKindLogic, SubtypeAbsorption,
		"BUY when open interest builds under a flat price",
		func() absorptionConfig {
			return absorptionConfig{MaxPriceChangePct: 0.2, MinOIChangePct: 2, VolumeMultiplier: 1.5, Lookback: 20}
		},
		func(cfg absorptionConfig, _ []Value, ctx types.ExecutionContext) (Output, error) {
			priceChange := math.Abs(indicator.PercentChange(previousClose(ctx), ctx.Current.Close))

			var prevOI float64
			if prev, ok := ctx.Previous(); ok {
				prevOI = metricsOrZero(prev).OpenInterest
			}

			current := metricsOrZero(ctx.Current)
			oiChange := indicator.PercentChange(prevOI, current.OpenInterest)

			avgVolume := indicator.AverageVolume(ctx.Prior, cfg.Lookback)
			volumeHigh := ctx.Current.Volume > avgVolume*cfg.VolumeMultiplier || current.CVD != 0

			passed := priceChange < cfg.MaxPriceChangePct && oiChange > cfg.MinOIChangePct && volumeHigh

			reading := normalReading
			if passed {
				reading = "Positions being loaded (Accumulation/Distribution)"
			}

			details := map[string]any{
				"priceChange": priceChange,
				"oiChange":    oiChange,
				"cvd":         current.CVD,
				"signal":      reading,
			}
			if avgVolume > 0 {
				details["volumeRatio"] = ctx.Current.Volume / avgVolume
			}

			return logicOutput(SubtypeAbsorption, types.SignalTypeBuy, passed, DetailsValue(details), ctx), nil
		})
}

type inflowDivergenceConfig struct {
	MinPriceDropPct float64 `json:"min_price_drop_pct" validate:"gte=0" jsonschema:"title=Minimum Price Drop %,default=0.5"`
}

// Price falling while net inflow is positive: the dip is being bought.
func inflowDivergence() Definition {
	return Define(types.NodeKindLogic, SubtypeInflowDivergence,
		"BUY when price drops while net inflow stays positive",
		func() inflowDivergenceConfig { return inflowDivergenceConfig{MinPriceDropPct: 0.5} },
		func(cfg inflowDivergenceConfig, _ []Value, ctx types.ExecutionContext) (Output, error) {
			priceChange := indicator.PercentChange(previousClose(ctx), ctx.Current.Close)
			netInflow := metricsOrZero(ctx.Current).NetInflow
			passed := priceChange < -cfg.MinPriceDropPct && netInflow > 0

			reading := normalReading
			if passed {
				reading = "Bullish Divergence - Smart Money Accumulating"
			}

			value := DetailsValue(map[string]any{
				"priceChange": priceChange,
				"netInflow":   netInflow,
				"signal":      reading,
			})

			return logicOutput(SubtypeInflowDivergence, types.SignalTypeBuy, passed, value, ctx), nil
		})
}
