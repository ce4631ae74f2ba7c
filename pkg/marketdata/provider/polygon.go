package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"go.uber.org/zap"
)

const polygonPageLimit = 50000

// PolygonAPI yields aggregate bars. next reports false once the bars are
// exhausted or the request failed; err then reports the failure.
type PolygonAPI interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams) (next func() (models.Agg, bool), err func() error)
}

type polygonAPI struct {
	client *polygon.Client
}

func (a *polygonAPI) ListAggs(ctx context.Context, params *models.ListAggsParams) (func() (models.Agg, bool), func() error) {
	iter := a.client.ListAggs(ctx, params)

	next := func() (models.Agg, bool) {
		if !iter.Next() {
			return models.Agg{}, false
		}

		return iter.Item(), true
	}

	return next, iter.Err
}

// PolygonClient fetches equity aggregates. Polygon has no derivatives
// data, so the candles carry no metrics.
type PolygonClient struct {
	api    PolygonAPI
	logger *logger.Logger
}

func NewPolygonClient(apiKey string, log *logger.Logger) (*PolygonClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon api key is required")
	}

	return NewPolygonClientWithAPI(&polygonAPI{client: polygon.New(apiKey)}, log), nil
}

func NewPolygonClientWithAPI(api PolygonAPI, log *logger.Logger) *PolygonClient {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &PolygonClient{
		api:    api,
		logger: log.Named("polygon"),
	}
}

// Fetch implements Provider.
func (c *PolygonClient) Fetch(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) ([]types.Candle, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(polygonPageLimit)

	next, iterErr := c.api.ListAggs(ctx, params)

	total := endDate.Sub(startDate).Hours()
	candles := make([]types.Candle, 0, 1024)

	for {
		agg, ok := next()
		if !ok {
			break
		}

		ts := time.Time(agg.Timestamp).UTC()
		candles = append(candles, types.Candle{
			Timestamp: ts,
			Open:      agg.Open,
			High:      agg.High,
			Low:       agg.Low,
			Close:     agg.Close,
			Volume:    agg.Volume,
		})

		if len(candles)%1000 == 0 {
			reportProgress(onProgress, ts.Sub(startDate).Hours(), total, fmt.Sprintf("Downloading %s", ticker))
		}
	}

	if err := iterErr(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s aggregates from Polygon", ticker)
	}

	reportProgress(onProgress, total, total, fmt.Sprintf("Downloaded %s", ticker))
	c.logger.Info("Fetched candles", zap.String("ticker", ticker), zap.Int("candles", len(candles)))

	return types.SortCandles(candles), nil
}
