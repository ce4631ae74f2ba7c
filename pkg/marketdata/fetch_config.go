package marketdata

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FetchConfig describes one candle download. It is the document read by
// `forge fetch --config`; JSON documents parse as well since they are YAML.
type FetchConfig struct {
	Provider ProviderType `json:"provider" yaml:"provider" jsonschema:"title=Provider,description=Upstream market data provider,enum=binance,enum=polygon,default=binance" validate:"required,oneof=binance polygon"`
	Ticker   string       `json:"ticker" yaml:"ticker" jsonschema:"title=Ticker,description=The trading symbol to download (e.g. BTCUSDT or SPY)" validate:"required"`
	Start    time.Time    `json:"start" yaml:"start" jsonschema:"title=Start,description=First candle time,format=date-time" validate:"required"`
	// End defaults to the time of the download when left empty.
	End      time.Time `json:"end,omitempty" yaml:"end,omitempty" jsonschema:"title=End,description=Last candle time; defaults to now,format=date-time"`
	Interval Timespan  `json:"interval" yaml:"interval" jsonschema:"title=Interval,description=Candle interval,enum=1s,enum=1m,enum=3m,enum=5m,enum=15m,enum=30m,enum=1h,enum=2h,enum=4h,enum=6h,enum=8h,enum=12h,enum=1d,enum=3d,enum=1w,enum=1M,default=1h" validate:"required"`
	ApiKey   string    `json:"apiKey,omitempty" yaml:"api_key,omitempty" jsonschema:"title=API Key,description=Polygon.io API key"`
	// Fallback names a synthetic scenario written instead when the download fails.
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty" jsonschema:"title=Fallback Scenario,enum=NORMAL,enum=SHORT_SQUEEZE,enum=SPOT_PUMP,enum=ACCUMULATION,enum=DISTRIBUTION"`
}

// DefaultFetchConfig returns hourly Binance candles with no ticker or range.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Provider: ProviderBinance,
		Interval: TimespanOneHour,
	}
}

// LoadFetchConfig reads a fetch document from path over DefaultFetchConfig.
func LoadFetchConfig(path string) (FetchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FetchConfig{}, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read fetch config %s", path)
	}

	return ParseFetchConfig(data)
}

// ParseFetchConfig decodes a YAML or JSON fetch document over DefaultFetchConfig.
func ParseFetchConfig(data []byte) (FetchConfig, error) {
	config := DefaultFetchConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return FetchConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse fetch config", err)
	}

	return config, nil
}

// Validate checks the required fields, the interval and the time range.
// The Polygon API key is checked by NewClient so a fallback can still run.
func (c FetchConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid fetch config", err)
	}

	if _, err := ParseTimespan(string(c.Interval)); err != nil {
		return err
	}

	if !c.End.IsZero() && !c.End.After(c.Start) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "invalid fetch config: end must be after start")
	}

	return nil
}

// Params converts the document into download parameters. now fills an empty End.
func (c FetchConfig) Params(now time.Time) DownloadParams {
	end := c.End
	if end.IsZero() {
		end = now
	}

	return DownloadParams{
		Ticker:     c.Ticker,
		StartDate:  c.Start,
		EndDate:    end,
		Multiplier: c.Interval.Multiplier(),
		Timespan:   c.Interval.Timespan(),
	}
}

// ClientConfig builds the client configuration that stores candles under dataPath.
func (c FetchConfig) ClientConfig(dataPath string) ClientConfig {
	return ClientConfig{
		ProviderType:  c.Provider,
		WriterType:    WriterDuckDB,
		DataPath:      dataPath,
		PolygonApiKey: c.ApiKey,
	}
}
