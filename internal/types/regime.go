package types

type Regime string

const (
	RegimeHighVolatility Regime = "HIGH_VOLATILITY"
	RegimeLowVolatility  Regime = "LOW_VOLATILITY"
	RegimeNormal         Regime = "NORMAL"
)

// Recommendation is the suggested trading posture for the regime.
func (r Regime) Recommendation() string {
	switch r {
	case RegimeHighVolatility:
		return "Wide stops, momentum strategies"
	case RegimeLowVolatility:
		return "Tight stops, mean reversion"
	case RegimeNormal:
		return "Standard parameters"
	default:
		return ""
	}
}
