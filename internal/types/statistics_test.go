package types

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type StatisticsTestSuite struct {
	suite.Suite
	tempDir string
}

func TestStatisticsSuite(t *testing.T) {
	suite.Run(t, new(StatisticsTestSuite))
}

func (suite *StatisticsTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "statistics_test")
	suite.NoError(err)
	suite.tempDir = tempDir
}

func (suite *StatisticsTestSuite) TearDownTest() {
	os.RemoveAll(suite.tempDir)
}

func (suite *StatisticsTestSuite) TestWriteRunStats() {
	stats := []RunStats{
		{
			ID:       "run-1",
			Strategy: "squeeze",
			Metrics: BacktestMetrics{
				WinRate:      60,
				TotalReturn:  12.5,
				TradeCount:   10,
				MaxDrawdown:  4.2,
				ProfitFactor: 1.8,
			},
			TradePnl: TradePnl{
				RealizedPnL:   1250,
				TotalFees:     12,
				MaximumLoss:   -100,
				MaximumProfit: 500,
			},
			TradeHoldingTime: TradeHoldingTime{Min: 3600, Max: 7200, Avg: 5400},
			InitialCapital:   10000,
			FinalEquity:      11250,
		},
	}

	filePath := filepath.Join(suite.tempDir, "stats.yaml")
	suite.Require().NoError(WriteRunStats(filePath, stats))

	data, err := os.ReadFile(filePath)
	suite.Require().NoError(err)

	var readStats []RunStats
	suite.Require().NoError(yaml.Unmarshal(data, &readStats))

	suite.Len(readStats, 1)
	suite.Equal("run-1", readStats[0].ID)
	suite.Equal("squeeze", readStats[0].Strategy)
	suite.Equal(60.0, readStats[0].Metrics.WinRate)
	suite.Equal(10, readStats[0].Metrics.TradeCount)
	suite.Equal(1.8, readStats[0].Metrics.ProfitFactor)
	suite.Equal(-100.0, readStats[0].TradePnl.MaximumLoss)
	suite.Equal(5400, readStats[0].TradeHoldingTime.Avg)
	suite.Equal(11250.0, readStats[0].FinalEquity)
}

func (suite *StatisticsTestSuite) TestWriteRunStatsInfiniteProfitFactor() {
	stats := []RunStats{{ID: "run-2", Metrics: BacktestMetrics{ProfitFactor: math.Inf(1)}}}

	filePath := filepath.Join(suite.tempDir, "inf.yaml")
	suite.Require().NoError(WriteRunStats(filePath, stats))

	data, err := os.ReadFile(filePath)
	suite.Require().NoError(err)
	suite.Contains(string(data), ".inf")

	var readStats []RunStats
	suite.Require().NoError(yaml.Unmarshal(data, &readStats))
	suite.True(math.IsInf(readStats[0].Metrics.ProfitFactor, 1))
}

func (suite *StatisticsTestSuite) TestWriteRunStatsInvalidPath() {
	filePath := filepath.Join(suite.tempDir, "nonexistent", "dir", "stats.yaml")
	suite.Error(WriteRunStats(filePath, []RunStats{{ID: "run-3"}}))
}

func (suite *StatisticsTestSuite) TestMetricsJSONInfinity() {
	data, err := json.Marshal(BacktestMetrics{TradeCount: 2, ProfitFactor: math.Inf(1)})
	suite.Require().NoError(err)
	suite.Contains(string(data), `"profitFactor":"Infinity"`)

	var decoded BacktestMetrics
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.True(math.IsInf(decoded.ProfitFactor, 1))
	suite.Equal(2, decoded.TradeCount)
}

func (suite *StatisticsTestSuite) TestMetricsJSONFinite() {
	data, err := json.Marshal(BacktestMetrics{ProfitFactor: 2.5, WinRate: 50})
	suite.Require().NoError(err)
	suite.Contains(string(data), `"profitFactor":2.5`)

	var decoded BacktestMetrics
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.Equal(2.5, decoded.ProfitFactor)
	suite.Equal(50.0, decoded.WinRate)
}

func (suite *StatisticsTestSuite) TestMetricsJSONRejectsUnknownString() {
	var decoded BacktestMetrics
	suite.Error(json.Unmarshal([]byte(`{"profitFactor":"lots"}`), &decoded))
}

func (suite *StatisticsTestSuite) TestFinalEquity() {
	suite.Equal(0.0, BacktestResult{}.FinalEquity())

	result := BacktestResult{EquityCurve: []EquityPoint{{Equity: 10000}, {Equity: 10250}}}
	suite.Equal(10250.0, result.FinalEquity())
}
