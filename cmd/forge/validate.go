package main

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/argo-forge/internal/validation"
	"github.com/urfave/cli/v3"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Run the built-in diagnostic scenarios against the engine",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			report := validation.NewRunner(validation.WithLogger(log)).Validate(ctx)
			fmt.Fprintln(stdout(cmd), renderValidation(report))

			if !report.Passed() {
				return fmt.Errorf("validation failed: %d of %d scenarios failed", report.FailedTests, report.TotalTests)
			}

			return nil
		},
	}
}

func renderValidation(report validation.Report) string {
	status := PassStyle.Render(string(report.Status))
	if !report.Passed() {
		status = FailStyle.Render(string(report.Status))
	}

	text := fmt.Sprintf("%s %s\n%s", status, report.Message,
		HelpStyle.Render(fmt.Sprintf("%d/%d passed in %dms", report.PassedTests, report.TotalTests, report.ExecutionTimeMs)))

	for _, failure := range report.Failures {
		text += fmt.Sprintf("\n  %s %s\n    %s", FailStyle.Render("✗"), failure.Scenario, failure.Error)
		if failure.Suggestion != "" {
			text += "\n    " + HelpStyle.Render(failure.Suggestion)
		}
	}

	return text
}
