package metrics

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func signal(signalType types.SignalType, price float64) types.TradeSignal {
	return types.TradeSignal{Type: signalType, Price: price}
}

func curve(values ...float64) []types.EquityPoint {
	points := make([]types.EquityPoint, len(values))
	for i, v := range values {
		points[i] = types.EquityPoint{Equity: v}
	}

	return points
}

func (suite *MetricsTestSuite) TestFewerThanTwoSignals() {
	calc := NewCalculator("")
	trades := []types.Trade{{PnL: 10}}

	result := calc.Compute([]types.TradeSignal{signal(types.SignalTypeBuy, 100)}, trades, curve(10000, 12000), 10000)

	suite.Equal(1, result.TradeCount)
	suite.Equal(1, result.RealizedTrades)
	suite.Equal(0.0, result.WinRate)
	suite.Equal(0.0, result.TotalReturn)
	suite.Equal(0.0, result.ProfitFactor)
	suite.Equal(0.0, result.MaxDrawdown)
}

func (suite *MetricsTestSuite) TestPositionalWinRate() {
	signals := []types.TradeSignal{
		signal(types.SignalTypeBuy, 100),
		signal(types.SignalTypeSell, 110),
		signal(types.SignalTypeSell, 120),
		signal(types.SignalTypeBuy, 125),
		signal(types.SignalTypeBuy, 90),
	}

	suite.Equal(50.0, PositionalWinRate(signals))
	suite.Equal(0.0, PositionalWinRate(signals[:1]))
	suite.Equal(0.0, PositionalWinRate([]types.TradeSignal{signal(types.SignalTypeExit, 1), signal(types.SignalTypeBuy, 2)}))
}

func (suite *MetricsTestSuite) TestRealizedWinRateMode() {
	signals := []types.TradeSignal{signal(types.SignalTypeBuy, 100), signal(types.SignalTypeSell, 90)}
	trades := []types.Trade{{PnL: 5}, {PnL: -1}, {PnL: 3}, {PnL: 0}}

	result := NewCalculator(WinRateModeRealized).Compute(signals, trades, curve(10000), 10000)
	suite.Equal(50.0, result.WinRate)

	result = NewCalculator(WinRateModePositional).Compute(signals, trades, curve(10000), 10000)
	suite.Equal(0.0, result.WinRate)
}

func (suite *MetricsTestSuite) TestParseWinRateMode() {
	mode, err := ParseWinRateMode("")
	suite.NoError(err)
	suite.Equal(WinRateModePositional, mode)

	mode, err = ParseWinRateMode("realized")
	suite.NoError(err)
	suite.Equal(WinRateModeRealized, mode)

	_, err = ParseWinRateMode("fifo")
	suite.Error(err)
}

func (suite *MetricsTestSuite) TestTotalReturn() {
	suite.InDelta(5.0, TotalReturn(curve(10000, 9000, 10500), 10000), 1e-9)
	suite.Equal(0.0, TotalReturn(nil, 10000))
}

func (suite *MetricsTestSuite) TestMaxDrawdown() {
	suite.InDelta(25.0, MaxDrawdown(curve(10000, 12000, 9000, 11000), 10000), 1e-9)
	suite.InDelta(10.0, MaxDrawdown(curve(9000, 9500), 10000), 1e-9)
	suite.Equal(0.0, MaxDrawdown(curve(10000, 10100, 10200), 10000))
	suite.Equal(100.0, MaxDrawdown(curve(10000, -500), 10000))
}

func (suite *MetricsTestSuite) TestSQN() {
	trades := []types.Trade{{ReturnPct: 2}, {ReturnPct: 4}}
	// mean 3, sample stddev sqrt(2), sqrt(n) = sqrt(2)
	suite.InDelta(3.0, SQN(trades), 1e-9)

	suite.Equal(0.0, SQN(trades[:1]))
	suite.Equal(0.0, SQN([]types.Trade{{ReturnPct: 1}, {ReturnPct: 1}}))
}

func (suite *MetricsTestSuite) TestSharpeRatio() {
	// Returns +10% and -10%: mean zero.
	suite.InDelta(0.0, SharpeRatio(curve(100, 110, 99)), 1e-9)
	// A flat curve has no variance.
	suite.Equal(0.0, SharpeRatio(curve(100, 100, 100)))
	suite.Equal(0.0, SharpeRatio(curve(100, 110)))

	// Returns 0.1 and 0.3: mean 0.2, population stddev 0.1.
	suite.InDelta(2.0, SharpeRatio(curve(100, 110, 143)), 1e-9)
}

func (suite *MetricsTestSuite) TestProfitFactor() {
	suite.InDelta(2.0, ProfitFactor([]types.Trade{{PnL: 30}, {PnL: -10}, {PnL: -5}}), 1e-9)
	suite.True(math.IsInf(ProfitFactor([]types.Trade{{PnL: 1}}), 1))
	suite.Equal(0.0, ProfitFactor(nil))
	suite.Equal(0.0, ProfitFactor([]types.Trade{{PnL: 0}}))
	suite.Equal(0.0, ProfitFactor([]types.Trade{{PnL: -3}}))
}

func (suite *MetricsTestSuite) TestComputeAll() {
	signals := []types.TradeSignal{
		signal(types.SignalTypeBuy, 100),
		signal(types.SignalTypeSell, 110),
	}
	trades := []types.Trade{{PnL: 100, ReturnPct: 10}}

	result := NewCalculator(WinRateModePositional).Compute(signals, trades, curve(10000, 10100, 10100), 10000)

	suite.Equal(2, result.TradeCount)
	suite.Equal(100.0, result.WinRate)
	suite.InDelta(1.0, result.TotalReturn, 1e-9)
	suite.True(math.IsInf(result.ProfitFactor, 1))
	suite.Equal(0.0, result.SQN)
	suite.Equal(0.0, result.MaxDrawdown)
}
