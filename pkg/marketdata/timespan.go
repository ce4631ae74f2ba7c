package marketdata

import (
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
)

// Timespan is a candle interval in exchange notation (1m, 4h, 1d, ...).
type Timespan string

const (
	TimespanOneSecond      Timespan = "1s"
	TimespanOneMinute      Timespan = "1m"
	TimespanThreeMinutes   Timespan = "3m"
	TimespanFiveMinutes    Timespan = "5m"
	TimespanFifteenMinutes Timespan = "15m"
	TimespanThirtyMinutes  Timespan = "30m"
	TimespanOneHour        Timespan = "1h"
	TimespanTwoHours       Timespan = "2h"
	TimespanFourHours      Timespan = "4h"
	TimespanSixHours       Timespan = "6h"
	TimespanEightHours     Timespan = "8h"
	TimespanTwelveHours    Timespan = "12h"
	TimespanOneDay         Timespan = "1d"
	TimespanThreeDays      Timespan = "3d"
	TimespanOneWeek        Timespan = "1w"
	TimespanOneMonth       Timespan = "1M"
)

var allTimespans = []Timespan{
	TimespanOneSecond, TimespanOneMinute, TimespanThreeMinutes, TimespanFiveMinutes,
	TimespanFifteenMinutes, TimespanThirtyMinutes, TimespanOneHour, TimespanTwoHours,
	TimespanFourHours, TimespanSixHours, TimespanEightHours, TimespanTwelveHours,
	TimespanOneDay, TimespanThreeDays, TimespanOneWeek, TimespanOneMonth,
}

// ParseTimespan accepts any of the Timespan constants. Letter case matters:
// 1m is a minute and 1M a month.
func ParseTimespan(raw string) (Timespan, error) {
	for _, t := range allTimespans {
		if string(t) == raw {
			return t, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported interval %q", raw)
}

func (t Timespan) Multiplier() int {
	switch t {
	case TimespanThreeMinutes, TimespanThreeDays:
		return 3
	case TimespanFiveMinutes:
		return 5
	case TimespanFifteenMinutes:
		return 15
	case TimespanThirtyMinutes:
		return 30
	case TimespanTwoHours:
		return 2
	case TimespanFourHours:
		return 4
	case TimespanSixHours:
		return 6
	case TimespanEightHours:
		return 8
	case TimespanTwelveHours:
		return 12
	default:
		return 1
	}
}

// Timespan converts to the Polygon aggregate unit; Multiplier gives the count.
func (t Timespan) Timespan() models.Timespan {
	switch t {
	case TimespanOneSecond:
		return models.Second
	case TimespanOneMinute, TimespanThreeMinutes, TimespanFiveMinutes, TimespanFifteenMinutes, TimespanThirtyMinutes:
		return models.Minute
	case TimespanOneHour, TimespanTwoHours, TimespanFourHours, TimespanSixHours, TimespanEightHours, TimespanTwelveHours:
		return models.Hour
	case TimespanOneDay, TimespanThreeDays:
		return models.Day
	case TimespanOneWeek:
		return models.Week
	case TimespanOneMonth:
		return models.Month
	default:
		return models.Day
	}
}

// Duration is the nominal length of one candle. A month counts as 30 days.
func (t Timespan) Duration() time.Duration {
	var unit time.Duration

	switch t.Timespan() {
	case models.Second:
		unit = time.Second
	case models.Minute:
		unit = time.Minute
	case models.Hour:
		unit = time.Hour
	case models.Week:
		unit = 7 * 24 * time.Hour
	case models.Month:
		unit = 30 * 24 * time.Hour
	default:
		unit = 24 * time.Hour
	}

	return time.Duration(t.Multiplier()) * unit
}
