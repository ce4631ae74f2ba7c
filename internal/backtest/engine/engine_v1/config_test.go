package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-forge/internal/metrics"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type BacktestConfigTestSuite struct {
	suite.Suite
}

func TestBacktestConfigSuite(t *testing.T) {
	suite.Run(t, new(BacktestConfigTestSuite))
}

func (suite *BacktestConfigTestSuite) TestDefaultConfig() {
	config := DefaultConfig()

	suite.Equal(10000.0, config.InitialCapital)
	suite.Equal(0.1, config.PositionSize)
	suite.Equal(0.001, config.Slippage)
	suite.Equal(0.001, config.Commission)
	suite.True(config.ApplyCosts)
	suite.Equal(200, config.HistoryWindow)
	suite.Equal(metrics.WinRateModePositional, config.WinRateMode)
	suite.True(config.StartTime.IsNone())
	suite.NoError(config.Validate())
}

func (suite *BacktestConfigTestSuite) TestFrictionlessConfig() {
	config := FrictionlessConfig()

	suite.False(config.ApplyCosts)
	suite.Equal(0.0, config.effectiveSlippage())
	suite.Equal(0.0, config.effectiveCommission())
	suite.Equal(0.001, DefaultConfig().effectiveSlippage())
}

func (suite *BacktestConfigTestSuite) TestUnmarshalYAMLKeepsDefaults() {
	config := DefaultConfig()
	data := []byte("initial_capital: 5000\nstart_time: 2024-01-02T00:00:00Z\n")

	suite.Require().NoError(yaml.Unmarshal(data, &config))

	suite.Equal(5000.0, config.InitialCapital)
	suite.Equal(0.1, config.PositionSize)
	suite.True(config.ApplyCosts)
	suite.True(config.StartTime.IsSome())
	suite.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), config.StartTime.Unwrap())
	suite.True(config.EndTime.IsNone())
}

func (suite *BacktestConfigTestSuite) TestUnmarshalJSONKeepsDefaults() {
	config := DefaultConfig()

	suite.Require().NoError(json.Unmarshal([]byte(`{"position_size":0.5,"apply_costs":false}`), &config))

	suite.Equal(0.5, config.PositionSize)
	suite.False(config.ApplyCosts)
	suite.Equal(10000.0, config.InitialCapital)
	suite.Equal(200, config.HistoryWindow)
}

func (suite *BacktestConfigTestSuite) TestMarshalJSON() {
	config := DefaultConfig()
	config.EndTime = optional.Some(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	data, err := json.Marshal(config)
	suite.Require().NoError(err)
	suite.Contains(string(data), `"start_time":null`)
	suite.Contains(string(data), `"end_time":"2024-03-01T00:00:00Z"`)

	decoded := EmptyConfig()
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.Equal(config.fields(), decoded.fields())
}

func (suite *BacktestConfigTestSuite) TestValidate() {
	tests := []struct {
		name   string
		modify func(*BacktestConfig)
	}{
		{"zero capital", func(c *BacktestConfig) { c.InitialCapital = 0 }},
		{"position size above one", func(c *BacktestConfig) { c.PositionSize = 1.5 }},
		{"negative slippage", func(c *BacktestConfig) { c.Slippage = -0.1 }},
		{"commission of one", func(c *BacktestConfig) { c.Commission = 1 }},
		{"zero history window", func(c *BacktestConfig) { c.HistoryWindow = 0 }},
		{"unknown win rate mode", func(c *BacktestConfig) { c.WinRateMode = "best" }},
		{"end before start", func(c *BacktestConfig) {
			c.StartTime = optional.Some(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
			c.EndTime = optional.Some(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		}},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := DefaultConfig()
			tc.modify(&config)

			err := config.Validate()
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
		})
	}
}

func (suite *BacktestConfigTestSuite) TestInWindow() {
	config := DefaultConfig()
	config.StartTime = optional.Some(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	config.EndTime = optional.Some(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))

	suite.False(config.inWindow(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	suite.True(config.inWindow(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	suite.True(config.inWindow(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
	suite.False(config.inWindow(time.Date(2024, 1, 3, 0, 0, 1, 0, time.UTC)))
}

func (suite *BacktestConfigTestSuite) TestGenerateSchemaJSON() {
	config := DefaultConfig()

	schema, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)

	var parsed map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &parsed))
	suite.Equal("simulation-engine-v1-config", parsed["title"])

	properties, ok := parsed["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "initial_capital")
	suite.Contains(properties, "win_rate_mode")

	startTime, ok := properties["start_time"].(map[string]any)
	suite.Require().True(ok)
	suite.Equal("date-time", startTime["format"])
}
