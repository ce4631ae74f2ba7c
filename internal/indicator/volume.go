package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-forge/internal/types"
)

// AverageVolume is the mean volume of the last lookback candles, or of all
// candles when fewer are available. It returns 0 for no candles.
func AverageVolume(candles []types.Candle, lookback int) float64 {
	window := tail(candles, lookback)
	if len(window) == 0 {
		return 0
	}

	sum := 0.0
	for _, candle := range window {
		sum += candle.Volume
	}

	return sum / float64(len(window))
}

// AverageRange is the mean high-low range of the last period candles as a
// percentage of the latest close. It returns 0 when the close is zero.
func AverageRange(candles []types.Candle, period int) float64 {
	window := tail(candles, period)
	if len(window) == 0 {
		return 0
	}

	last := window[len(window)-1].Close
	if last == 0 {
		return 0
	}

	sum := 0.0
	for _, candle := range window {
		sum += candle.High - candle.Low
	}

	return sum / float64(len(window)) / last * 100
}

// TrueRange is the greatest of high-low, |high-prevClose| and |low-prevClose|.
func TrueRange(current, previous types.Candle) float64 {
	return math.Max(current.High-current.Low,
		math.Max(math.Abs(current.High-previous.Close), math.Abs(current.Low-previous.Close)))
}

// ATR is the average true range over the last period candles. The first
// candle of the window only contributes high-low.
func ATR(candles []types.Candle, period int) float64 {
	window := tail(candles, period+1)
	if len(window) == 0 {
		return 0
	}

	ranges := make([]float64, 0, len(window))
	if len(window) <= period {
		ranges = append(ranges, window[0].High-window[0].Low)
	}

	for i := 1; i < len(window); i++ {
		ranges = append(ranges, TrueRange(window[i], window[i-1]))
	}

	return Mean(ranges)
}
