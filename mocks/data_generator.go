package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-forge/internal/types"
)

// CandleGenerator generates random-walk candles for engine tests and benchmarks.
type CandleGenerator struct {
	rng *rand.Rand
}

// NewCandleGenerator creates a new CandleGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewCandleGenerator(seed int64) *CandleGenerator {
	return &CandleGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how candles are generated.
type GeneratorConfig struct {
	// StartTime is the timestamp of the first candle
	StartTime time.Time
	// Interval is the duration between each candle
	Interval time.Duration
	// Count is the number of candles to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per candle)
	Volatility float64
	// Trend is the total drift over the series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per candle
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
	// WithMetrics attaches open interest, funding, inflow and CVD readings
	WithMetrics bool
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:       time.Hour,
		Count:          1000,
		InitialPrice:   50000.0,
		Volatility:     0.004,
		Trend:          0.0,
		VolumeBase:     1000,
		VolumeVariance: 0.3,
		WithMetrics:    true,
	}
}

// Generate creates candles following a geometric Brownian motion.
func (g *CandleGenerator) Generate(config GeneratorConfig) []types.Candle {
	candles := make([]types.Candle, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime
	openInterest := config.VolumeBase * 50
	cvd := 0.0

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a standard normal draw
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		priceChange := config.Volatility * z
		drift := config.Trend / float64(config.Count)

		close := open * (1 + priceChange + drift)
		if close <= 0 {
			close = open * 0.99
		}

		high := math.Max(open, close) + math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		low := math.Min(open, close) - math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		quoteVolume := roundToDecimals(volume*close, 2)

		candle := types.Candle{
			Timestamp:   currentTime,
			Open:        roundToDecimals(open, 4),
			High:        roundToDecimals(high, 4),
			Low:         roundToDecimals(low, 4),
			Close:       roundToDecimals(close, 4),
			Volume:      roundToDecimals(volume, 2),
			QuoteVolume: &quoteVolume,
		}

		if config.WithMetrics {
			openInterest *= 1 + (g.rng.Float64()*2-1)*0.01
			cvd += (close - open) / open * volume

			candle.Metrics = &types.Metrics{
				OpenInterest: roundToDecimals(openInterest, 2),
				FundingRate:  roundToDecimals(0.0001+g.rng.NormFloat64()*0.0001, 6),
				NetInflow:    roundToDecimals((g.rng.Float64()*2-1)*volume*0.1, 2),
				CVD:          roundToDecimals(cvd, 2),
			}
		}

		candles[i] = candle

		currentPrice = close
		currentTime = currentTime.Add(config.Interval)
	}

	return candles
}

// Generate10K is a convenience function to generate 10,000 candles
// with default settings for benchmarking.
func Generate10K() []types.Candle {
	gen := NewCandleGenerator(42)
	config := DefaultConfig()
	config.Count = 10000

	return gen.Generate(config)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
