package mocks

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CandleGeneratorTestSuite struct {
	suite.Suite
}

func TestCandleGeneratorSuite(t *testing.T) {
	suite.Run(t, new(CandleGeneratorTestSuite))
}

func (suite *CandleGeneratorTestSuite) TestGenerate() {
	config := DefaultConfig()
	config.Count = 100

	candles := NewCandleGenerator(42).Generate(config)
	suite.Len(candles, 100)

	for i, candle := range candles {
		if i > 0 {
			suite.True(candle.Timestamp.After(candles[i-1].Timestamp), "index %d not after previous", i)
		}

		suite.GreaterOrEqual(candle.High, candle.Low)
		suite.GreaterOrEqual(candle.High, candle.Close)
		suite.LessOrEqual(candle.Low, candle.Open)
		suite.Positive(candle.Volume)
		suite.NotNil(candle.Metrics)
	}
}

func (suite *CandleGeneratorTestSuite) TestReproducible() {
	config := DefaultConfig()
	config.Count = 50

	suite.Equal(NewCandleGenerator(7).Generate(config), NewCandleGenerator(7).Generate(config))
	suite.NotEqual(NewCandleGenerator(7).Generate(config), NewCandleGenerator(8).Generate(config))
}

func (suite *CandleGeneratorTestSuite) TestWithoutMetrics() {
	config := DefaultConfig()
	config.Count = 10
	config.WithMetrics = false

	for _, candle := range NewCandleGenerator(1).Generate(config) {
		suite.Nil(candle.Metrics)
	}
}
