// Package indicator holds the technical indicator math used by node
// evaluators. Every function is pure: it reads the slices it is given and
// never retains or modifies them.
package indicator

import "github.com/rxtech-lab/argo-forge/internal/types"

// Closes extracts the close prices of candles, oldest first.
func Closes(candles []types.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}

	return closes
}

// PercentChange is the change from `from` to `to` in percent.
// It returns 0 when `from` is zero.
func PercentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}

	return (to - from) / from * 100
}

func tail[T any](values []T, n int) []T {
	if n <= 0 || n >= len(values) {
		return values
	}

	return values[len(values)-n:]
}
