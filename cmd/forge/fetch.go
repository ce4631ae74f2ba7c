package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/synth"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"github.com/rxtech-lab/argo-forge/pkg/forge"
	"github.com/rxtech-lab/argo-forge/pkg/marketdata"
	"github.com/rxtech-lab/argo-forge/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// maxFallbackCandles bounds the synthetic series written when a download fails.
const maxFallbackCandles = 100_000

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download historical candles from an upstream provider",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Read the download from a YAML or JSON `FILE`; flags override its fields",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider (%s, %s)", marketdata.ProviderBinance, marketdata.ProviderPolygon),
				Value:   string(marketdata.ProviderBinance),
			},
			&cli.StringFlag{
				Name:    "ticker",
				Aliases: []string{"t"},
				Usage:   "Ticker symbol, e.g. BTCUSDT or SPY",
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Timezone: time.UTC,
					Layouts:  []string{"2006-01-02", time.RFC3339},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to now.",
				Config: cli.TimestampConfig{
					Timezone: time.UTC,
					Layouts:  []string{"2006-01-02", time.RFC3339},
				},
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Candle interval (1m, 5m, 1h, 4h, 1d, ...)",
				Value:   string(marketdata.TimespanOneHour),
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory",
				Value:   "data",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Polygon API key",
				Sources: cli.EnvVars("POLYGON_API_KEY"),
			},
			&cli.StringFlag{
				Name:  "fallback",
				Usage: "Synthesize `SCENARIO` candles for the same range when the download fails",
			},
		},
		Action: fetchAction,
	}
}

func fetchAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	fetch, err := fetchConfig(cmd)
	if err != nil {
		return err
	}

	if err := fetch.Validate(); err != nil {
		return err
	}

	params := fetch.Params(time.Now().UTC())
	config := fetch.ClientConfig(cmd.String("out"))

	path, err := download(ctx, config, params, errout(cmd), log)
	if err == nil {
		fmt.Fprintln(stdout(cmd), HelpStyle.Render("Downloaded candles to "+path))

		return nil
	}

	scenario := fetch.Fallback
	if scenario == "" {
		return err
	}

	log.Warn("Download failed, synthesizing candles instead",
		zap.String("ticker", params.Ticker),
		zap.String("scenario", scenario),
		zap.Error(err),
	)

	candles, synthErr := fallbackCandles(scenario, params.StartDate, params.EndDate, fetch.Interval.Duration())
	if synthErr != nil {
		return fmt.Errorf("download failed: %w; fallback failed: %w", err, synthErr)
	}

	path, writeErr := writeCandles(filepath.Join(config.DataPath, "synthetic_"+params.FileName()), candles)
	if writeErr != nil {
		return writeErr
	}

	fmt.Fprintln(stdout(cmd), ErrorStyle.Render("Download failed: "+err.Error()))
	fmt.Fprintln(stdout(cmd), HelpStyle.Render(fmt.Sprintf("Wrote %d synthetic %s candles to %s", len(candles), scenario, path)))

	return nil
}

// fetchConfig reads --config when given and applies the flags the user set on top.
func fetchConfig(cmd *cli.Command) (marketdata.FetchConfig, error) {
	config := marketdata.DefaultFetchConfig()

	if path := cmd.String("config"); path != "" {
		loaded, err := marketdata.LoadFetchConfig(path)
		if err != nil {
			return config, err
		}

		config = loaded
	}

	if cmd.IsSet("provider") || cmd.String("config") == "" {
		config.Provider = marketdata.ProviderType(cmd.String("provider"))
	}

	if cmd.IsSet("interval") || cmd.String("config") == "" {
		config.Interval = marketdata.Timespan(cmd.String("interval"))
	}

	if cmd.IsSet("ticker") {
		config.Ticker = cmd.String("ticker")
	}

	if cmd.IsSet("start") {
		config.Start = cmd.Timestamp("start")
	}

	if cmd.IsSet("end") {
		config.End = cmd.Timestamp("end")
	}

	if cmd.IsSet("api-key") {
		config.ApiKey = cmd.String("api-key")
	}

	if cmd.IsSet("fallback") {
		config.Fallback = cmd.String("fallback")
	}

	return config, nil
}

func download(ctx context.Context, config marketdata.ClientConfig, params marketdata.DownloadParams, w io.Writer, log *logger.Logger) (string, error) {
	client, err := marketdata.NewClient(config, downloadProgress(w), log)
	if err != nil {
		return "", fmt.Errorf("failed to create market data client: %w", err)
	}

	return client.Download(ctx, params)
}

// downloadProgress renders provider progress on w.
func downloadProgress(w io.Writer) provider.OnDownloadProgress {
	var bar *progressbar.ProgressBar

	return func(current float64, total float64, message string) {
		if bar == nil {
			bar = progressbar.NewOptions64(int64(total),
				progressbar.OptionSetWriter(w),
				progressbar.OptionShowCount(),
				progressbar.OptionThrottle(100*time.Millisecond),
			)
		}

		bar.Describe(message)
		_ = bar.Set64(int64(current))
	}
}

// fallbackCandles synthesizes one candle per interval between start and end.
func fallbackCandles(scenario string, start, end time.Time, interval time.Duration) ([]types.Candle, error) {
	if interval <= 0 || !end.After(start) {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "fallback needs a positive interval and end after start")
	}

	length := min(max(int(end.Sub(start)/interval), 1), maxFallbackCandles)

	config := synth.DefaultConfig()
	config.StartTime = start
	config.Interval = interval

	return forge.Synthesize(scenario, length, forge.WithSynthConfig(config))
}

