package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/version"
	"github.com/urfave/cli/v3"
)

// newLogger builds the logger for a command from the global --log-level flag.
func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	log, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "forge",
		Usage:   "Simulate strategy graphs over historical or synthetic candles",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			synthCommand(),
			validateCommand(),
			serveCommand(),
			schemaCommand(),
			fetchCommand(),
			inspectCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(ErrorStyle.Render(err.Error()))
	}
}
