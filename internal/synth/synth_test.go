package synth

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-forge/internal/indicator"
	"github.com/rxtech-lab/argo-forge/internal/node"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SynthTestSuite struct {
	suite.Suite
	registry *node.Registry
}

func TestSynthSuite(t *testing.T) {
	suite.Run(t, new(SynthTestSuite))
}

func (suite *SynthTestSuite) SetupTest() {
	suite.registry = node.NewDefaultRegistry()
}

// triggers counts the candles after the warm-up on which the logic node passes.
func (suite *SynthTestSuite) triggers(candles []types.Candle, subtype string) int {
	count := 0

	for i := WarmUp; i < len(candles); i++ {
		ctx := types.ExecutionContext{Current: candles[i], Prior: candles[:i]}

		out, err := suite.registry.Evaluate(types.NodeKindLogic, subtype, nil, nil, ctx)
		suite.Require().NoError(err)

		if out.Passed {
			count++
		}
	}

	return count
}

func (suite *SynthTestSuite) TestParseScenario() {
	tests := []struct {
		raw      string
		expected Scenario
	}{
		{"NORMAL", ScenarioNormal},
		{"short_squeeze", ScenarioShortSqueeze},
		{"spot-pump", ScenarioSpotPump},
		{" Accumulation ", ScenarioAccumulation},
		{"distribution", ScenarioDistribution},
	}

	for _, tc := range tests {
		suite.Run(tc.raw, func() {
			scenario, err := ParseScenario(tc.raw)
			suite.Require().NoError(err)
			suite.Equal(tc.expected, scenario)
		})
	}

	_, err := ParseScenario("CRASH")
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownScenario))
}

func (suite *SynthTestSuite) TestSynthesizeShape() {
	for _, scenario := range AllScenarios {
		suite.Run(string(scenario), func() {
			candles, err := NewSynthesizer(1).Synthesize(scenario, 100, DefaultConfig())
			suite.Require().NoError(err)
			suite.Require().Len(candles, 100)

			for i, candle := range candles {
				suite.Equal(DefaultStartTime.Add(time.Duration(i)*time.Hour), candle.Timestamp)
				suite.GreaterOrEqual(candle.High, math.Max(candle.Open, candle.Close))
				suite.LessOrEqual(candle.Low, math.Min(candle.Open, candle.Close))
				suite.Positive(candle.Volume)
				suite.Require().NotNil(candle.Metrics)
				suite.Require().NotNil(candle.SpotPrice)
				suite.Positive(candle.Metrics.OpenInterest)

				if i > 0 {
					suite.Equal(candles[i-1].Close, candle.Open)
				}
			}
		})
	}
}

func (suite *SynthTestSuite) TestSynthesizeIsReproducible() {
	first, err := NewSynthesizer(7).Synthesize(ScenarioSpotPump, 80, DefaultConfig())
	suite.Require().NoError(err)

	second, err := NewSynthesizer(7).Synthesize(ScenarioSpotPump, 80, DefaultConfig())
	suite.Require().NoError(err)
	suite.Equal(first, second)

	zeroSeed, err := NewSynthesizer(0).Synthesize(ScenarioSpotPump, 80, DefaultConfig())
	suite.Require().NoError(err)

	defaultSeed, err := NewSynthesizer(DefaultSeed).Synthesize(ScenarioSpotPump, 80, DefaultConfig())
	suite.Require().NoError(err)
	suite.Equal(defaultSeed, zeroSeed)

	other, err := NewSynthesizer(8).Synthesize(ScenarioSpotPump, 80, DefaultConfig())
	suite.Require().NoError(err)
	suite.NotEqual(first, other)
}

func (suite *SynthTestSuite) TestScenariosTriggerTheirHeuristics() {
	tests := []struct {
		scenario Scenario
		subtype  string
	}{
		{ScenarioShortSqueeze, node.SubtypeFundingAnomaly},
		{ScenarioAccumulation, node.SubtypeAbsorption},
		{ScenarioSpotPump, node.SubtypeInflowDivergence},
		{ScenarioDistribution, node.SubtypeDivergence},
	}

	for _, tc := range tests {
		suite.Run(string(tc.scenario), func() {
			for seed := int64(1); seed <= 5; seed++ {
				candles, err := NewSynthesizer(seed).Synthesize(tc.scenario, 100, DefaultConfig())
				suite.Require().NoError(err)
				suite.Greater(suite.triggers(candles, tc.subtype), 5, "seed %d", seed)
			}
		})
	}
}

func (suite *SynthTestSuite) TestNormalIsQuiet() {
	candles, err := NewSynthesizer(3).Synthesize(ScenarioNormal, 100, DefaultConfig())
	suite.Require().NoError(err)

	suite.Zero(suite.triggers(candles, node.SubtypeFundingAnomaly))
	suite.Zero(suite.triggers(candles, node.SubtypeAbsorption))
}

func (suite *SynthTestSuite) TestSynthesizeErrors() {
	synth := NewSynthesizer(1)

	_, err := synth.Synthesize(ScenarioNormal, 0, DefaultConfig())
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidLength))

	_, err = synth.Synthesize("CRASH", 10, DefaultConfig())
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownScenario))

	config := DefaultConfig()
	config.BasePrice = 0
	_, err = synth.Synthesize(ScenarioNormal, 10, config)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *SynthTestSuite) TestPeriodicIsDeterministic() {
	first := Periodic(200, 20, 50000)
	second := Periodic(200, 20, 50000)

	suite.Len(first, 200)
	suite.Equal(first, second)
	suite.Equal(DefaultStartTime, first[0].Timestamp)

	// One full cycle later the path repeats.
	suite.InDelta(first[0].Close, first[20].Close, 1e-6)
	suite.InDelta(first[5].High, first[25].High, 1e-6)

	for _, candle := range first {
		suite.GreaterOrEqual(candle.High, math.Max(candle.Open, candle.Close))
		suite.LessOrEqual(candle.Low, math.Min(candle.Open, candle.Close))
		suite.InDelta(50000, candle.Close, 50000*0.06)
	}
}

func (suite *SynthTestSuite) TestPeriodicOptions() {
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	candles := Periodic(10, 4, 100, WithAmplitude(10), WithStartTime(start), WithInterval(time.Minute))

	suite.Equal(start, candles[0].Timestamp)
	suite.Equal(start.Add(9*time.Minute), candles[9].Timestamp)
	suite.InDelta(110.0, candles[1].Open, 1e-9)
	suite.Empty(Periodic(0, 20, 100))
	suite.Len(Periodic(5, 0, 100), 5)
}

func (suite *SynthTestSuite) TestMonotonicDrivesRSI() {
	rising := Monotonic(50, 50000, 1)
	suite.InDelta(50000*1.01, rising[0].Close, 1e-6)
	suite.Equal(100.0, indicator.RSI(indicator.Closes(rising), 14))

	falling := Monotonic(50, 50000, -1)
	suite.Equal(0.0, indicator.RSI(indicator.Closes(falling), 14))
}

func (suite *SynthTestSuite) TestTrendAndRange() {
	synth := NewSynthesizer(11)

	up := synth.Trend(100, 100, 200, 0.02)
	suite.Len(up, 100)
	suite.Greater(up[99].Close, up[0].Close)

	down := synth.Trend(100, 200, 100, 0.02)
	suite.Less(down[99].Close, down[0].Close)

	sideways := synth.Range(100, 1000, 0.05)
	for _, candle := range sideways {
		suite.InDelta(1000, candle.Close, 50)
		suite.GreaterOrEqual(candle.High, math.Max(candle.Open, candle.Close))
	}

	suite.Empty(synth.Trend(0, 1, 2, 0.01))
	suite.Empty(synth.Range(-1, 1, 0.01))
}
