package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/argo-forge/internal/backtest/engine"
	"github.com/rxtech-lab/argo-forge/internal/datasource"
	"github.com/rxtech-lab/argo-forge/internal/graph"
	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/results"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"github.com/rxtech-lab/argo-forge/pkg/forge"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ReportFileName is written next to the exported tables when --report is set.
const ReportFileName = "report.md"

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Simulate a strategy graph",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "graph",
				Aliases:  []string{"g"},
				Usage:    "Strategy graph document (`FILE`, .yaml or .json)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Candle file (.parquet, .csv or .json)",
			},
			&cli.StringFlag{
				Name:    "synthetic",
				Aliases: []string{"s"},
				Usage:   "Synthesize candles for `SCENARIO` instead of reading --data",
			},
			&cli.IntFlag{
				Name:  "length",
				Usage: "Number of synthetic candles",
				Value: 500,
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Seed for synthetic candles",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Simulation config (YAML); missing fields keep their defaults",
			},
			&cli.BoolFlag{
				Name:  "report",
				Usage: "Print the analyst report",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Results directory; empty skips the export",
				Value:   "results",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Hide the progress bar",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	strategy, err := graph.LoadDocumentFile(cmd.String("graph"))
	if err != nil {
		return err
	}

	config, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	candles, source, err := loadCandles(cmd, config, log)
	if err != nil {
		return err
	}

	log.Info("Loaded candles", zap.String("source", source), zap.Int("candles", len(candles)))

	out := stdout(cmd)

	var callbacks forge.Callbacks
	if !cmd.Bool("quiet") {
		callbacks = progressCallbacks(errout(cmd))
	}

	result, err := forge.RunGraph(ctx, strategy, candles,
		forge.WithConfig(config),
		forge.WithLogger(log.Logger),
		forge.WithCallbacks(callbacks),
	)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	info := results.RunInfo{
		Strategy:       strategyName(strategy, cmd.String("graph")),
		DataPath:       source,
		InitialCapital: config.InitialCapital,
	}

	stats := results.Summarize(info, result, candles)

	if dir := cmd.String("out"); dir != "" {
		exporter := results.NewExporter(dir, log)

		stats, err = exporter.Export(info, result, candles)
		if err != nil {
			return err
		}

		if cmd.Bool("report") {
			reportPath := filepath.Join(exporter.RunDir(result.RunID), ReportFileName)
			if err := os.WriteFile(reportPath, []byte(forge.Report(result, candles)), 0644); err != nil {
				return errors.Wrap(errors.ErrCodeWriteFailed, "failed to write report", err)
			}
		}

		fmt.Fprintln(out, HelpStyle.Render("Results written to "+exporter.RunDir(result.RunID)))
	}

	fmt.Fprintln(out, renderSummary(info.Strategy, stats))

	if cmd.Bool("report") {
		fmt.Fprintln(out)
		fmt.Fprintln(out, forge.Report(result, candles))
	}

	return nil
}

// loadConfig reads a YAML config over the defaults. An empty path keeps the defaults.
func loadConfig(path string) (forge.Config, error) {
	config := forge.DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read config %s", path)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// loadCandles reads --data within the config window, or synthesizes
// --synthetic. It also returns a description of where the candles came from.
func loadCandles(cmd *cli.Command, config forge.Config, log *logger.Logger) ([]types.Candle, string, error) {
	if path := cmd.String("data"); path != "" {
		candles, err := datasource.LoadAll(path, config.StartTime, config.EndTime, log)
		if err != nil {
			return nil, "", err
		}

		return candles, path, nil
	}

	if scenario := cmd.String("synthetic"); scenario != "" {
		opts := []forge.SynthOption{}
		if seed := cmd.Int64("seed"); seed != 0 {
			opts = append(opts, forge.WithSeed(seed))
		}

		candles, err := forge.Synthesize(scenario, cmd.Int("length"), opts...)
		if err != nil {
			return nil, "", err
		}

		return candles, "synthetic:" + scenario, nil
	}

	return nil, "", errors.New(errors.ErrCodeMissingParameter, "either --data or --synthetic is required")
}

func strategyName(strategy types.Graph, path string) string {
	if strategy.Name != "" {
		return strategy.Name
	}

	return filepath.Base(path)
}

// progressCallbacks draws a progress bar on w while the simulation runs.
func progressCallbacks(w io.Writer) forge.Callbacks {
	var bar *progressbar.ProgressBar

	onStart := engine.OnRunStartCallback(func(runID string, total int) error {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("Simulating"),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(w)
			}),
		)

		return nil
	})

	onProcess := engine.OnProcessDataCallback(func(current int, total int) error {
		if bar == nil {
			return nil
		}

		return bar.Set(current)
	})

	onEnd := engine.OnRunEndCallback(func(runID string, err error) {
		if bar != nil && err != nil {
			_ = bar.Exit()
		}
	})

	return forge.Callbacks{
		OnRunStart:    &onStart,
		OnProcessData: &onProcess,
		OnRunEnd:      &onEnd,
	}
}

func stdout(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}

	return os.Stdout
}

func errout(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.ErrWriter != nil {
		return root.ErrWriter
	}

	return os.Stderr
}
