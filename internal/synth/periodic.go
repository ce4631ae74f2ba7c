package synth

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-forge/internal/types"
)

type periodicOptions struct {
	amplitude float64
	startTime time.Time
	interval  time.Duration
}

// PeriodicOption customises Periodic.
type PeriodicOption func(*periodicOptions)

// WithAmplitude sets the price swing. The default is 5% of the base price.
func WithAmplitude(amplitude float64) PeriodicOption {
	return func(o *periodicOptions) {
		o.amplitude = amplitude
	}
}

// WithStartTime sets the timestamp of the first candle.
func WithStartTime(start time.Time) PeriodicOption {
	return func(o *periodicOptions) {
		o.startTime = start
	}
}

// WithInterval sets the spacing between candles.
func WithInterval(interval time.Duration) PeriodicOption {
	return func(o *periodicOptions) {
		o.interval = interval
	}
}

// Periodic returns a sine-wave price path around basePrice with one full
// cycle every period candles. Output depends only on the arguments: the
// OHLC jitter is a set of harmonics of the phase and volume peaks at the
// troughs.
func Periodic(length, period int, basePrice float64, opts ...PeriodicOption) []types.Candle {
	options := periodicOptions{
		amplitude: basePrice * 0.05,
		startTime: DefaultStartTime,
		interval:  time.Hour,
	}

	for _, opt := range opts {
		opt(&options)
	}

	period = max(period, 1)
	candles := make([]types.Candle, 0, max(length, 0))

	for i := range max(length, 0) {
		phase := 2 * math.Pi * float64(i) / float64(period)

		center := basePrice + options.amplitude*math.Sin(phase)
		jitter := options.amplitude * 0.1

		open := center + jitter*math.Sin(phase*2)
		close := center + jitter*math.Cos(phase*3)
		high := math.Max(open, close) + jitter*0.5
		low := math.Min(open, close) - jitter*0.5

		level := (math.Sin(phase) + 1) / 2
		volume := 1000 + 500*(1-level)
		quoteVolume := volume * close

		candles = append(candles, types.Candle{
			Timestamp:   options.startTime.Add(time.Duration(i) * options.interval),
			Open:        open,
			High:        high,
			Low:         low,
			Close:       close,
			Volume:      volume,
			QuoteVolume: &quoteVolume,
		})
	}

	return candles
}

// Monotonic moves the close by stepPct percent every candle, compounding
// from basePrice. A positive step drives RSI towards 100, a negative one
// towards 0.
func Monotonic(length int, basePrice, stepPct float64) []types.Candle {
	candles := make([]types.Candle, 0, max(length, 0))
	price := basePrice

	for i := range max(length, 0) {
		open := price
		close := price * (1 + stepPct/100)
		quoteVolume := 1000 * close

		candles = append(candles, types.Candle{
			Timestamp:   DefaultStartTime.Add(time.Duration(i) * time.Hour),
			Open:        open,
			High:        math.Max(open, close) * 1.002,
			Low:         math.Min(open, close) * 0.998,
			Close:       close,
			Volume:      1000,
			QuoteVolume: &quoteVolume,
		})

		price = close
	}

	return candles
}
