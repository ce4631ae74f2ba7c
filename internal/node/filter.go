package node

import (
	"github.com/rxtech-lab/argo-forge/internal/indicator"
	"github.com/rxtech-lab/argo-forge/internal/types"
)

// Volatility measures accepted by the regime filter.
const (
	VolatilityRange = "range"
	VolatilityATR   = "atr"
)

type regimeCheckConfig struct {
	Period     int     `json:"period" validate:"gt=0" jsonschema:"title=Period,default=14"`
	HighPct    float64 `json:"high_pct" validate:"gt=0" jsonschema:"title=High Volatility Threshold,description=Average range above this percentage of close is HIGH,default=2"`
	LowPct     float64 `json:"low_pct" validate:"gte=0,ltefield=HighPct" jsonschema:"title=Low Volatility Threshold,description=Average range below this percentage of close is LOW,default=1"`
	Volatility string  `json:"volatility" validate:"oneof=range atr" jsonschema:"title=Volatility Measure,enum=range,enum=atr,default=range"`
}

func regimeCheck() Definition {
	return Define(types.NodeKindFilter, SubtypeRegimeCheck,
		"Classifies the volatility regime; passes only in high volatility",
		func() regimeCheckConfig {
			return regimeCheckConfig{Period: 14, HighPct: 2, LowPct: 1, Volatility: VolatilityRange}
		},
		func(cfg regimeCheckConfig, _ []Value, ctx types.ExecutionContext) (Output, error) {
			window := ctx.Window()

			var pct, avg float64
			if cfg.Volatility == VolatilityATR {
				avg = indicator.ATR(window, cfg.Period)
				if ctx.Current.Close != 0 {
					pct = avg / ctx.Current.Close * 100
				}
			} else {
				pct = indicator.AverageRange(window, cfg.Period)
				avg = pct * ctx.Current.Close / 100
			}

			regime := types.RegimeNormal

			switch {
			case pct > cfg.HighPct:
				regime = types.RegimeHighVolatility
			case pct < cfg.LowPct:
				regime = types.RegimeLowVolatility
			}

			return Output{
				Value: Value{
					Regime: regime,
					Details: map[string]any{
						"atr":            avg,
						"atrPercent":     pct,
						"regime":         string(regime),
						"recommendation": regime.Recommendation(),
					},
				},
				Passed: regime == types.RegimeHighVolatility,
			}, nil
		})
}
