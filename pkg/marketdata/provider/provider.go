// Package provider fetches historical candles from upstream market data APIs.
package provider

import (
	"context"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// OnDownloadProgress reports how far a fetch has come. current and total
// share a unit chosen by the provider.
type OnDownloadProgress = func(current float64, total float64, message string)

type Provider interface {
	// Fetch downloads the candles for ticker between startDate and endDate
	// inclusive, ordered by timestamp. The context cancels the download.
	// example:
	// Fetch(ctx, "BTCUSDT", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1, models.Hour, onProgress)
	Fetch(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) ([]types.Candle, error)
}

// NewMarketDataProvider creates a provider. apiKey is required for Polygon
// and ignored for Binance.
func NewMarketDataProvider(providerType ProviderType, apiKey string, log *logger.Logger) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient(log), nil
	case ProviderPolygon:
		client, err := NewPolygonClient(apiKey, log)
		if err != nil {
			return nil, err
		}

		return client, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

func reportProgress(onProgress OnDownloadProgress, current float64, total float64, message string) {
	if onProgress != nil {
		onProgress(current, total, message)
	}
}
