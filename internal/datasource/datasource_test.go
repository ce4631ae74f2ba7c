package datasource

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DataSourceTestSuite struct {
	suite.Suite
	tempDir string
}

func TestDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DataSourceTestSuite))
}

func (suite *DataSourceTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "datasource_test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir
}

func (suite *DataSourceTestSuite) TearDownTest() {
	os.RemoveAll(suite.tempDir)
}

const candleCSV = `time,open,high,low,close,volume,open_interest,funding_rate,net_inflow,cvd
2024-01-01 02:00:00,102.0,104.0,101.0,103.0,12.0,1100.0,0.0002,5.0,-1.0
2024-01-01 00:00:00,100.0,102.0,99.0,101.0,10.0,1000.0,0.0001,-5.0,2.0
2024-01-01 01:00:00,101.0,103.0,100.0,102.0,11.0,1050.0,-0.0001,0.0,3.0
`

func (suite *DataSourceTestSuite) writeFile(name, content string) string {
	path := filepath.Join(suite.tempDir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o644))

	return path
}

func hour(h int) time.Time {
	return time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC)
}

func (suite *DataSourceTestSuite) TestDetectFormat() {
	tests := []struct {
		path   string
		format Format
		ok     bool
	}{
		{"a.parquet", FormatParquet, true},
		{"b.CSV", FormatCSV, true},
		{"dir/c.json", FormatJSON, true},
		{"d.txt", "", false},
	}

	for _, tc := range tests {
		suite.Run(tc.path, func() {
			format, err := DetectFormat(tc.path)
			if !tc.ok {
				suite.True(errors.HasCode(err, errors.ErrCodeDataSourceUnavailable))

				return
			}

			suite.NoError(err)
			suite.Equal(tc.format, format)
		})
	}
}

func (suite *DataSourceTestSuite) TestCSVLoadsSortedWithMetrics() {
	source, err := Open(suite.writeFile("candles.csv", candleCSV), nil)
	suite.Require().NoError(err)
	defer source.Close()

	candles, err := source.Load(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Require().Len(candles, 3)

	suite.True(candles[0].Timestamp.Equal(hour(0)))
	suite.True(candles[2].Timestamp.Equal(hour(2)))
	suite.Equal(101.0, candles[0].Close)
	suite.Equal(10.0, candles[0].Volume)

	suite.Require().NotNil(candles[0].Metrics)
	suite.Equal(1000.0, candles[0].Metrics.OpenInterest)
	suite.Equal(0.0001, candles[0].Metrics.FundingRate)
	suite.Equal(2.0, candles[0].Metrics.CVD)
	suite.Nil(candles[0].Metrics.LongShortRatio)
	suite.Nil(candles[0].SpotPrice)
}

func (suite *DataSourceTestSuite) TestCSVWindow() {
	source, err := Open(suite.writeFile("candles.csv", candleCSV), nil)
	suite.Require().NoError(err)
	defer source.Close()

	count, err := source.Count(optional.Some(hour(1)), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(2, count)

	candles, err := source.Load(optional.Some(hour(1)), optional.Some(hour(1)))
	suite.Require().NoError(err)
	suite.Require().Len(candles, 1)
	suite.Equal(102.0, candles[0].Close)
}

func (suite *DataSourceTestSuite) TestCSVWithoutMetrics() {
	path := suite.writeFile("plain.csv", "timestamp,open,high,low,close,volume\n2024-01-01 00:00:00,1,2,0.5,1.5,100\n")

	candles, err := LoadAll(path, optional.None[time.Time](), optional.None[time.Time](), nil)
	suite.Require().NoError(err)
	suite.Require().Len(candles, 1)
	suite.Nil(candles[0].Metrics)
	suite.Equal(1.5, candles[0].Close)
}

func (suite *DataSourceTestSuite) TestCSVMissingColumn() {
	path := suite.writeFile("broken.csv", "time,open,high,low,close\n2024-01-01 00:00:00,1,2,0.5,1.5\n")

	_, err := Open(path, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *DataSourceTestSuite) TestMissingFile() {
	_, err := Open(filepath.Join(suite.tempDir, "nope.parquet"), nil)
	suite.Error(err)

	_, err = Open(filepath.Join(suite.tempDir, "nope.json"), nil)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *DataSourceTestSuite) TestParquet() {
	path := filepath.Join(suite.tempDir, "candles.parquet")

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)

	_, err = db.Exec(fmt.Sprintf(`COPY (
		SELECT TIMESTAMP '2024-01-01 00:00:00' + to_hours(i) AS time,
			CAST(100 + i AS DOUBLE) AS open, CAST(101 + i AS DOUBLE) AS high,
			CAST(99 + i AS DOUBLE) AS low, CAST(100.5 + i AS DOUBLE) AS close,
			CAST(10 AS DOUBLE) AS volume, CAST(100 + i AS DOUBLE) AS spot_open,
			CAST(100.4 + i AS DOUBLE) AS spot_close, CAST(5 AS DOUBLE) AS spot_volume
		FROM range(5) t(i)
	) TO '%s' (FORMAT PARQUET)`, path))
	suite.Require().NoError(err)
	suite.Require().NoError(db.Close())

	source, err := Open(path, nil)
	suite.Require().NoError(err)
	defer source.Close()

	count, err := source.Count(optional.None[time.Time](), optional.Some(hour(2)))
	suite.Require().NoError(err)
	suite.Equal(3, count)

	candles, err := source.Load(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Require().Len(candles, 5)
	suite.Equal(104.5, candles[4].Close)
	suite.Require().NotNil(candles[4].SpotPrice)
	suite.Equal(104.4, candles[4].SpotPrice.Close)
	suite.Nil(candles[4].Metrics)
}

func (suite *DataSourceTestSuite) TestJSON() {
	candles := []types.Candle{
		{Timestamp: hour(1), Open: 2, High: 3, Low: 1, Close: 2.5, Volume: 10},
		{Timestamp: hour(0), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 5, Metrics: &types.Metrics{FundingRate: 0.0001}},
	}
	data, err := json.Marshal(candles)
	suite.Require().NoError(err)

	source, err := Open(suite.writeFile("candles.json", string(data)), nil)
	suite.Require().NoError(err)
	defer source.Close()

	loaded, err := source.Load(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Require().Len(loaded, 2)
	suite.True(loaded[0].Timestamp.Equal(hour(0)))
	suite.Require().NotNil(loaded[0].Metrics)

	count, err := source.Count(optional.Some(hour(1)), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(1, count)
}

func (suite *DataSourceTestSuite) TestDecodeCandlesInvalid() {
	_, err := DecodeCandles([]byte(`{"not":"an array"}`))
	suite.True(errors.HasCode(err, errors.ErrCodeQueryFailed))
}
