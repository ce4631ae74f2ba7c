package marketdata

import (
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type TimespanTestSuite struct {
	suite.Suite
}

func TestTimespanSuite(t *testing.T) {
	suite.Run(t, new(TimespanTestSuite))
}

func (suite *TimespanTestSuite) TestMultiplierAndUnit() {
	tests := []struct {
		timespan   Timespan
		multiplier int
		unit       models.Timespan
		duration   time.Duration
	}{
		{TimespanOneSecond, 1, models.Second, time.Second},
		{TimespanFifteenMinutes, 15, models.Minute, 15 * time.Minute},
		{TimespanOneHour, 1, models.Hour, time.Hour},
		{TimespanFourHours, 4, models.Hour, 4 * time.Hour},
		{TimespanThreeDays, 3, models.Day, 72 * time.Hour},
		{TimespanOneWeek, 1, models.Week, 168 * time.Hour},
		{TimespanOneMonth, 1, models.Month, 720 * time.Hour},
	}

	for _, tc := range tests {
		suite.Run(string(tc.timespan), func() {
			suite.Equal(tc.multiplier, tc.timespan.Multiplier())
			suite.Equal(tc.unit, tc.timespan.Timespan())
			suite.Equal(tc.duration, tc.timespan.Duration())
		})
	}
}

func (suite *TimespanTestSuite) TestParseTimespan() {
	parsed, err := ParseTimespan("1M")
	suite.NoError(err)
	suite.Equal(TimespanOneMonth, parsed)

	parsed, err = ParseTimespan("1m")
	suite.NoError(err)
	suite.Equal(TimespanOneMinute, parsed)

	_, err = ParseTimespan("7m")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidTimespan))
}
