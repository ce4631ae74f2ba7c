package synth

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-forge/internal/types"
)

// Trend walks linearly from startPrice towards endPrice with uniform noise
// of volatility times the price.
func (s *Synthesizer) Trend(length int, startPrice, endPrice, volatility float64) []types.Candle {
	if length <= 0 {
		return []types.Candle{}
	}

	step := (endPrice - startPrice) / float64(length)
	candles := make([]types.Candle, 0, length)

	for i := range length {
		center := startPrice + step*float64(i)
		noise := center * volatility * (s.rng.Float64() - 0.5)

		open := center + noise
		close := center + step + noise*0.5

		candles = append(candles, types.Candle{
			Timestamp: DefaultStartTime.Add(time.Duration(i) * time.Hour),
			Open:      open,
			High:      math.Max(open, close) * (1 + volatility*0.2),
			Low:       math.Min(open, close) * (1 - volatility*0.2),
			Close:     close,
			Volume:    1000 + s.rng.Float64()*500,
		})
	}

	return candles
}

// Range oscillates randomly inside ±rangePct of centerPrice.
func (s *Synthesizer) Range(length int, centerPrice, rangePct float64) []types.Candle {
	if length <= 0 {
		return []types.Candle{}
	}

	width := centerPrice * rangePct
	candles := make([]types.Candle, 0, length)

	for i := range length {
		open := centerPrice + (s.rng.Float64()-0.5)*width*2
		close := centerPrice + (s.rng.Float64()-0.5)*width*2

		candles = append(candles, types.Candle{
			Timestamp: DefaultStartTime.Add(time.Duration(i) * time.Hour),
			Open:      open,
			High:      math.Max(open, close) + s.rng.Float64()*width*0.3,
			Low:       math.Min(open, close) - s.rng.Float64()*width*0.3,
			Close:     close,
			Volume:    500 + s.rng.Float64()*300,
		})
	}

	return candles
}
