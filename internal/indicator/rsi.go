package indicator

// Smoothing selects how RSI averages gains and losses.
type Smoothing string

const (
	// SmoothingSimple averages the last period changes arithmetically.
	SmoothingSimple Smoothing = "simple"
	// SmoothingWilder seeds with a simple average and then applies Wilder's smoothing.
	SmoothingWilder Smoothing = "wilder"
)

// NeutralRSI is reported when there is not enough history.
const NeutralRSI = 50.0

// RSI computes the Relative Strength Index of the trailing closes using
// simple averages of the last period price changes. Fewer than period+1
// closes yield NeutralRSI. A zero average loss yields 100.
func RSI(closes []float64, period int) float64 {
	return RSIWithSmoothing(closes, period, SmoothingSimple)
}

// RSIWithSmoothing computes RSI with the given averaging method.
func RSIWithSmoothing(closes []float64, period int, smoothing Smoothing) float64 {
	if period <= 0 || len(closes) < period+1 {
		return NeutralRSI
	}

	if smoothing != SmoothingWilder {
		closes = tail(closes, period+1)
	}

	// Calculate price changes
	gains := make([]float64, 0, len(closes)-1)
	losses := make([]float64, 0, len(closes)-1)

	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain := 0.0
	avgLoss := 0.0

	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Subsequent averages using Wilder's smoothing method
	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
