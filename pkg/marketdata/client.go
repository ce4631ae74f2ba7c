// Package marketdata downloads historical candles from upstream providers
// and stores them as parquet files the candle data source can read.
package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"github.com/rxtech-lab/argo-forge/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-forge/pkg/marketdata/writer"
	"go.uber.org/zap"
)

// ProviderType defines the type of market data provider.
type ProviderType = provider.ProviderType

const (
	ProviderPolygon = provider.ProviderPolygon
	ProviderBinance = provider.ProviderBinance
)

// WriterType defines the type of market data writer.
type WriterType string

const (
	WriterDuckDB WriterType = "duckdb"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  ProviderType `validate:"required,oneof=polygon binance"`
	WriterType    WriterType   `validate:"required,oneof=duckdb"`
	DataPath      string       `validate:"required"`
	PolygonApiKey string       `validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker     string          `validate:"required"`
	StartDate  time.Time       `validate:"required"`
	EndDate    time.Time       `validate:"required,gtfield=StartDate"`
	Multiplier int             `validate:"required,min=1"`
	Timespan   models.Timespan `validate:"required"`
}

// FileName is the parquet file a download is stored in:
// TICKER_START_END_MULTIPLIER_TIMESPAN.parquet.
func (p DownloadParams) FileName() string {
	return fmt.Sprintf("%s_%s_%s_%d_%s.parquet",
		p.Ticker,
		p.StartDate.Format("2006-01-02"),
		p.EndDate.Format("2006-01-02"),
		p.Multiplier,
		p.Timespan)
}

// Client downloads candles from a provider and stores them with a writer.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
	logger     *logger.Logger
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, config.PolygonApiKey, log)
	if err != nil {
		return nil, err
	}

	return NewClientWithProvider(config, marketProvider, onProgress, log)
}

// NewClientWithProvider creates a client around an existing provider.
func NewClientWithProvider(config ClientConfig, marketProvider provider.Provider, onProgress provider.OnDownloadProgress, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
		logger:     log.Named("marketdata"),
	}, nil
}

// Fetch downloads the candles without storing them.
func (c *Client) Fetch(ctx context.Context, params DownloadParams) ([]types.Candle, error) {
	if err := c.validate.Struct(params); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	candles, err := c.provider.Fetch(
		ctx,
		params.Ticker,
		params.StartDate,
		params.EndDate,
		params.Multiplier,
		params.Timespan,
		c.onProgress,
	)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	return candles, nil
}

// Download fetches the candles and writes them under the configured data
// path. It returns the written file.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	candles, err := c.Fetch(ctx, params)
	if err != nil {
		return "", err
	}

	if len(candles) == 0 {
		return "", errors.Newf(errors.ErrCodeDataNotFound, "no candles returned for %s", params.Ticker)
	}

	marketWriter, err := c.setupWriter(params)
	if err != nil {
		return "", err
	}

	defer func() {
		if err := marketWriter.Close(); err != nil {
			c.logger.Warn("Failed to close writer", zap.Error(err))
		}
	}()

	outputPath, err := writer.WriteAll(marketWriter, candles)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to store candles", err)
	}

	c.logger.Info("Stored candles",
		zap.String("ticker", params.Ticker),
		zap.String("path", outputPath),
		zap.Int("candles", len(candles)),
	)

	return outputPath, nil
}

// setupWriter initializes the appropriate market data writer based on configuration.
func (c *Client) setupWriter(params DownloadParams) (writer.MarketDataWriter, error) {
	switch c.config.WriterType {
	case WriterDuckDB:
		if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeWriteFailed, "failed to create data directory", err)
		}

		outputPath := filepath.Join(c.config.DataPath, params.FileName())
		duckdbWriter := writer.NewDuckDBWriter(outputPath)

		if err := duckdbWriter.Initialize(); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to initialize DuckDB writer at %s", outputPath)
		}

		return duckdbWriter, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported writer type: %s", c.config.WriterType)
	}
}
