package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"github.com/rxtech-lab/argo-forge/pkg/forge"
	"github.com/rxtech-lab/argo-forge/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the simulation config or of a provider download config",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Print the download config schema of this provider instead",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Write the schema to `FILE` instead of stdout",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			schema, err := schemaFor(cmd.String("provider"))
			if err != nil {
				return err
			}

			if path := cmd.String("out"); path != "" {
				if err := os.WriteFile(path, []byte(schema), 0644); err != nil {
					return errors.Wrap(errors.ErrCodeWriteFailed, "failed to write schema", err)
				}

				return nil
			}

			fmt.Fprintln(stdout(cmd), schema)

			return nil
		},
	}
}

func schemaFor(provider string) (string, error) {
	if provider != "" {
		return marketdata.GetDownloadConfigSchema(provider)
	}

	config := forge.DefaultConfig()

	return config.GenerateSchemaJSON()
}
