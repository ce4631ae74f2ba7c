package provider

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"go.uber.org/zap"
)

const (
	futuresKlineLimit = 1500
	spotKlineLimit    = 1000
	fundingLimit      = 1000
	openInterestLimit = 500
	// Funding settles every 8 hours; the window is widened so the first
	// candles see the rate in force when they opened.
	fundingLookback = 8 * time.Hour
)

// BinanceAPI is the subset of Binance public market data endpoints the
// provider reads. Every call returns one page starting at start.
type BinanceAPI interface {
	FuturesKlines(ctx context.Context, symbol string, interval string, start int64, end int64) ([]*futures.Kline, error)
	SpotKlines(ctx context.Context, symbol string, interval string, start int64, end int64) ([]*binance.Kline, error)
	FundingRates(ctx context.Context, symbol string, start int64, end int64) ([]*futures.FundingRate, error)
	OpenInterestHistory(ctx context.Context, symbol string, period string, start int64, end int64) ([]*futures.OpenInterestStatistic, error)
}

type binanceAPI struct {
	spot    *binance.Client
	futures *futures.Client
}

// NewBinanceAPI returns the unauthenticated Binance REST API.
func NewBinanceAPI() BinanceAPI {
	return &binanceAPI{
		spot:    binance.NewClient("", ""),
		futures: binance.NewFuturesClient("", ""),
	}
}

func (a *binanceAPI) FuturesKlines(ctx context.Context, symbol string, interval string, start int64, end int64) ([]*futures.Kline, error) {
	return a.futures.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		StartTime(start).
		EndTime(end).
		Limit(futuresKlineLimit).
		Do(ctx)
}

func (a *binanceAPI) SpotKlines(ctx context.Context, symbol string, interval string, start int64, end int64) ([]*binance.Kline, error) {
	return a.spot.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		StartTime(start).
		EndTime(end).
		Limit(spotKlineLimit).
		Do(ctx)
}

func (a *binanceAPI) FundingRates(ctx context.Context, symbol string, start int64, end int64) ([]*futures.FundingRate, error) {
	return a.futures.NewFundingRateService().
		Symbol(symbol).
		StartTime(start).
		EndTime(end).
		Limit(fundingLimit).
		Do(ctx)
}

func (a *binanceAPI) OpenInterestHistory(ctx context.Context, symbol string, period string, start int64, end int64) ([]*futures.OpenInterestStatistic, error) {
	return a.futures.NewOpenInterestStatisticsService().
		Symbol(symbol).
		Period(period).
		StartTime(start).
		EndTime(end).
		Limit(openInterestLimit).
		Do(ctx)
}

// BinanceClient builds futures candles enriched with spot prices, funding,
// open interest and CVD.
type BinanceClient struct {
	api    BinanceAPI
	logger *logger.Logger
}

func NewBinanceClient(log *logger.Logger) *BinanceClient {
	return NewBinanceClientWithAPI(NewBinanceAPI(), log)
}

func NewBinanceClientWithAPI(api BinanceAPI, log *logger.Logger) *BinanceClient {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &BinanceClient{
		api:    api,
		logger: log.Named("binance"),
	}
}

// Fetch implements Provider. Futures klines are required; spot klines,
// funding and open interest are best effort and a failure there only
// leaves the matching candle sections empty.
func (c *BinanceClient) Fetch(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) ([]types.Candle, error) {
	interval, err := convertTimespanToBinanceInterval(timespan, multiplier)
	if err != nil {
		return nil, err
	}

	start := startDate.UnixMilli()
	end := endDate.UnixMilli()

	klines, err := c.futuresKlines(ctx, ticker, interval, start, end, onProgress)
	if err != nil {
		return nil, err
	}

	candles := make([]types.Candle, 0, len(klines))
	for _, k := range klines {
		candles = append(candles, futuresKlineToCandle(k))
	}

	if len(candles) == 0 {
		return candles, nil
	}

	spot, err := c.spotKlines(ctx, ticker, interval, start, end)
	if err != nil {
		c.logger.Warn("Spot klines unavailable", zap.String("symbol", ticker), zap.Error(err))
	}

	funding, err := c.fundingRates(ctx, ticker, startDate.Add(-fundingLookback).UnixMilli(), end)
	if err != nil {
		c.logger.Warn("Funding rates unavailable", zap.String("symbol", ticker), zap.Error(err))
	}

	openInterest, err := c.openInterest(ctx, ticker, openInterestPeriod(interval), start, end)
	if err != nil {
		c.logger.Warn("Open interest unavailable", zap.String("symbol", ticker), zap.Error(err))
	}

	enrich(candles, klines, spot, funding, openInterest)

	c.logger.Info("Fetched candles",
		zap.String("symbol", ticker),
		zap.String("interval", interval),
		zap.Int("candles", len(candles)),
		zap.Int("funding", len(funding)),
		zap.Int("open_interest", len(openInterest)),
	)

	return candles, nil
}

func (c *BinanceClient) futuresKlines(ctx context.Context, ticker string, interval string, start int64, end int64, onProgress OnDownloadProgress) ([]*futures.Kline, error) {
	var all []*futures.Kline

	current := start

	for current <= end {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := c.api.FuturesKlines(ctx, ticker, interval, current, end)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s from Binance", ticker)
		}

		all = append(all, page...)
		reportProgress(onProgress, float64(current-start), float64(end-start), fmt.Sprintf("Downloading %s klines from Binance", ticker))

		if len(page) < futuresKlineLimit {
			break
		}

		// Resume after the close of the last kline to avoid duplicates.
		current = page[len(page)-1].CloseTime + 1
	}

	reportProgress(onProgress, float64(end-start), float64(end-start), fmt.Sprintf("Downloaded %s klines from Binance", ticker))

	return all, nil
}

func (c *BinanceClient) spotKlines(ctx context.Context, ticker string, interval string, start int64, end int64) ([]*binance.Kline, error) {
	var all []*binance.Kline

	for current := start; current <= end; {
		page, err := c.api.SpotKlines(ctx, ticker, interval, current, end)
		if err != nil {
			return all, err
		}

		all = append(all, page...)

		if len(page) < spotKlineLimit {
			break
		}

		current = page[len(page)-1].CloseTime + 1
	}

	return all, nil
}

func (c *BinanceClient) fundingRates(ctx context.Context, ticker string, start int64, end int64) ([]*futures.FundingRate, error) {
	var all []*futures.FundingRate

	for current := start; current <= end; {
		page, err := c.api.FundingRates(ctx, ticker, current, end)
		if err != nil {
			return all, err
		}

		all = append(all, page...)

		if len(page) < fundingLimit {
			break
		}

		current = page[len(page)-1].FundingTime + 1
	}

	return all, nil
}

func (c *BinanceClient) openInterest(ctx context.Context, ticker string, period string, start int64, end int64) ([]*futures.OpenInterestStatistic, error) {
	var all []*futures.OpenInterestStatistic

	for current := start; current <= end; {
		page, err := c.api.OpenInterestHistory(ctx, ticker, period, current, end)
		if err != nil {
			return all, err
		}

		all = append(all, page...)

		if len(page) < openInterestLimit {
			break
		}

		current = page[len(page)-1].Timestamp + 1
	}

	return all, nil
}

func futuresKlineToCandle(k *futures.Kline) types.Candle {
	quote := parseFloat(k.QuoteAssetVolume)

	return types.Candle{
		// The open time is the candle timestamp.
		Timestamp:   time.UnixMilli(k.OpenTime).UTC(),
		Open:        parseFloat(k.Open),
		High:        parseFloat(k.High),
		Low:         parseFloat(k.Low),
		Close:       parseFloat(k.Close),
		Volume:      parseFloat(k.Volume),
		QuoteVolume: &quote,
	}
}

// enrich attaches spot prices by matching open time, and metrics from the
// funding rate and open interest in force when each candle opened. CVD
// accumulates taker buy volume minus taker sell volume over the series.
// Candles opened before the first funding or open interest reading get no
// metrics.
func enrich(candles []types.Candle, klines []*futures.Kline, spot []*binance.Kline, funding []*futures.FundingRate, openInterest []*futures.OpenInterestStatistic) {
	spotByTime := make(map[int64]*binance.Kline, len(spot))
	for _, k := range spot {
		spotByTime[k.OpenTime] = k
	}

	sort.Slice(funding, func(i, j int) bool { return funding[i].FundingTime < funding[j].FundingTime })
	sort.Slice(openInterest, func(i, j int) bool { return openInterest[i].Timestamp < openInterest[j].Timestamp })

	cvd := 0.0
	fundingIdx := -1
	oiIdx := -1

	for i, k := range klines {
		takerBuy := parseFloat(k.TakerBuyBaseAssetVolume)
		cvd += takerBuy - (candles[i].Volume - takerBuy)

		if s, ok := spotByTime[k.OpenTime]; ok {
			candles[i].SpotPrice = &types.SpotPrice{
				Open:   parseFloat(s.Open),
				Close:  parseFloat(s.Close),
				Volume: parseFloat(s.Volume),
			}
		}

		for fundingIdx+1 < len(funding) && funding[fundingIdx+1].FundingTime <= k.OpenTime {
			fundingIdx++
		}

		for oiIdx+1 < len(openInterest) && openInterest[oiIdx+1].Timestamp <= k.OpenTime {
			oiIdx++
		}

		if fundingIdx < 0 || oiIdx < 0 {
			continue
		}

		candles[i].Metrics = &types.Metrics{
			OpenInterest: parseFloat(openInterest[oiIdx].SumOpenInterest),
			FundingRate:  parseFloat(funding[fundingIdx].FundingRate),
			CVD:          cvd,
		}
	}
}

func parseFloat(raw string) float64 {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}

	return value
}

// convertTimespanToBinanceInterval converts the polygon timespan and multiplier to a Binance interval string.
// Binance intervals: 1m, 3m, 5m, 15m, 30m, 1h, 2h, 4h, 6h, 8h, 12h, 1d, 3d, 1w, 1M
func convertTimespanToBinanceInterval(timespan models.Timespan, multiplier int) (string, error) {
	switch timespan {
	case models.Minute:
		return fmt.Sprintf("%dm", multiplier), nil
	case models.Hour:
		return fmt.Sprintf("%dh", multiplier), nil
	case models.Day:
		return fmt.Sprintf("%dd", multiplier), nil
	case models.Week:
		if multiplier == 1 {
			return "1w", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported weekly multiplier for Binance: %d", multiplier)
	case models.Month:
		if multiplier == 1 {
			return "1M", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported monthly multiplier for Binance: %d", multiplier)
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timespan for Binance: %s", timespan)
	}
}

// openInterestPeriod maps a kline interval onto the periods the open
// interest history endpoint accepts.
func openInterestPeriod(interval string) string {
	switch interval {
	case "5m", "15m", "30m", "1h", "2h", "4h", "6h", "12h", "1d":
		return interval
	case "1m", "3m":
		return "5m"
	case "8h":
		return "6h"
	default:
		return "1d"
	}
}
