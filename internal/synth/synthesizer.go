// Package synth produces labeled synthetic candle series for exercising
// strategy graphs: noisy scenario regimes from a seeded source and fully
// deterministic periodic and monotonic fixtures.
package synth

import (
	"math"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
)

const (
	// DefaultSeed is used when a synthesizer is created with seed 0.
	DefaultSeed int64 = 20240101
	// WarmUp is the number of quiet candles preceding every scenario.
	WarmUp = 25
	// noiseClamp bounds the standard normal draws, in standard deviations.
	noiseClamp = 3.0
)

// DefaultStartTime is the timestamp of the first synthetic candle.
var DefaultStartTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Config shapes the synthesized series.
type Config struct {
	BasePrice        float64       `yaml:"base_price" json:"base_price" validate:"gt=0"`
	BaseVolume       float64       `yaml:"base_volume" json:"base_volume" validate:"gt=0"`
	BaseOpenInterest float64       `yaml:"base_open_interest" json:"base_open_interest" validate:"gt=0"`
	// Volatility is the standard deviation of the per-candle price noise (0.001 = 0.1%).
	Volatility float64       `yaml:"volatility" json:"volatility" validate:"gte=0,lte=0.002"`
	StartTime  time.Time     `yaml:"start_time" json:"start_time"`
	Interval   time.Duration `yaml:"interval" json:"interval" validate:"gt=0"`
}

// DefaultConfig returns a BTC-like hourly configuration.
func DefaultConfig() Config {
	return Config{
		BasePrice:        50000,
		BaseVolume:       1000,
		BaseOpenInterest: 1_000_000,
		Volatility:       0.001,
		StartTime:        DefaultStartTime,
		Interval:         time.Hour,
	}
}

var validate = validator.New()

// Validate checks the configuration ranges. Volatility is capped so the
// scenario drifts stay clear of the noise.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid synth config", err)
	}

	return nil
}

// Synthesizer generates noisy candle series from a seeded source.
// A Synthesizer is not safe for concurrent use.
type Synthesizer struct {
	rng *rand.Rand
}

// NewSynthesizer creates a synthesizer seeded with seed, or DefaultSeed when seed is 0.
func NewSynthesizer(seed int64) *Synthesizer {
	if seed == 0 {
		seed = DefaultSeed
	}

	return NewSynthesizerWithRand(rand.New(rand.NewSource(seed)))
}

// NewSynthesizerWithRand creates a synthesizer drawing from rng.
func NewSynthesizerWithRand(rng *rand.Rand) *Synthesizer {
	return &Synthesizer{rng: rng}
}

// gaussian draws a standard normal value with the Box-Muller transform,
// clamped to ±noiseClamp.
func (s *Synthesizer) gaussian() float64 {
	u1 := 1 - s.rng.Float64()
	u2 := s.rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

	return math.Max(-noiseClamp, math.Min(noiseClamp, z))
}

// Synthesize produces length candles: WarmUp quiet candles followed by the
// scenario's drift curves with Gaussian noise. Every candle carries spot
// and derivatives metrics.
func (s *Synthesizer) Synthesize(scenario Scenario, length int, config Config) ([]types.Candle, error) {
	if length <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidLength, "length must be positive, got %d", length)
	}

	if _, err := ParseScenario(string(scenario)); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	candles := make([]types.Candle, length)
	priceCurve := config.BasePrice
	oiCurve := config.BaseOpenInterest
	prevClose := config.BasePrice
	cvd := 0.0

	for i := range length {
		d := warmUpDrift
		if i >= WarmUp {
			d = driftFor(scenario, i-WarmUp)
		}

		priceCurve *= 1 + d.price
		oiCurve *= 1 + d.oi

		priceNoise := config.Volatility * s.gaussian()
		if d.quiet {
			priceNoise *= 0.1
		}

		open := prevClose
		close := priceCurve * (1 + priceNoise)
		wick := config.Volatility*math.Abs(s.gaussian())*0.5 + 0.0005
		high := math.Max(open, close) * (1 + wick)
		low := math.Min(open, close) * (1 - wick)

		volume := config.BaseVolume * d.volume * (1 + 0.1*s.gaussian()/noiseClamp)
		quoteVolume := volume * close
		cvd += config.BaseVolume * d.cvd

		spotClose := close * (1 + d.spread)

		candles[i] = types.Candle{
			Timestamp:   config.StartTime.Add(time.Duration(i) * config.Interval),
			Open:        open,
			High:        high,
			Low:         low,
			Close:       close,
			Volume:      volume,
			QuoteVolume: &quoteVolume,
			SpotPrice: &types.SpotPrice{
				Open:   open * (1 + d.spread),
				Close:  spotClose,
				Volume: volume * d.spot * 0.4,
			},
			Metrics: &types.Metrics{
				OpenInterest: oiCurve * (1 + 0.0005*s.gaussian()/noiseClamp),
				FundingRate:  d.funding + 0.00002*s.gaussian()/noiseClamp,
				NetInflow:    config.BaseVolume * (d.inflow + 0.01*s.gaussian()/noiseClamp),
				CVD:          cvd,
				LongShortRatio: &types.LongShortRatio{
					Accounts:  1 + 0.2*d.oi/0.01,
					Positions: 1 + 0.1*d.price/0.01,
				},
			},
		}

		prevClose = close
	}

	return candles, nil
}
