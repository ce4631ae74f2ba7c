package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-forge/internal/api"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Listen address",
				Value:   ":8080",
				Sources: cli.EnvVars("FORGE_ADDR"),
			},
			&cli.StringSliceFlag{
				Name:  "origin",
				Usage: "Allowed CORS origin, repeatable; defaults to any origin",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			opts := []api.Option{api.WithLogger(log)}
			if origins := cmd.StringSlice("origin"); len(origins) > 0 {
				opts = append(opts, api.WithAllowedOrigins(origins...))
			}

			server := api.NewServer(opts...)
			if err := server.Start(cmd.String("addr")); err != nil {
				return err
			}

			fmt.Fprintln(stdout(cmd), TitleStyle.Render("Serving on "+server.Address()))

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			<-ctx.Done()

			log.Info("Shutting down", zap.String("address", server.Address()))

			return server.Stop()
		},
	}
}
