package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Status is the overall outcome of a validation run.
type Status string

const (
	StatusPassed Status = "PASSED"
	StatusFailed Status = "FAILED"
)

// Failure explains one failed scenario.
type Failure struct {
	Scenario   string `json:"scenario"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion"`
}

// Report is the diagnostic summary of a validation run.
type Report struct {
	Status          Status    `json:"status"`
	Message         string    `json:"message"`
	Timestamp       time.Time `json:"timestamp"`
	ExecutionTimeMs int64     `json:"executionTimeMs"`
	TotalTests      int       `json:"totalTests"`
	PassedTests     int       `json:"passedTests"`
	FailedTests     int       `json:"failedTests"`
	Failures        []Failure `json:"failures,omitempty"`
}

// Passed reports whether every scenario passed.
func (r Report) Passed() bool {
	return r.Status == StatusPassed
}

// Suggest points at the component most likely responsible for a failure.
func Suggest(result Result) string {
	switch {
	case strings.Contains(result.Details, "Signal count mismatch"):
		if strings.Contains(result.Details, "got 0") {
			return "Check internal/node - evaluators may not be returning signals. Verify node kind and subtype matching."
		}

		return "Check internal/backtest/engine/engine_v1 - signal generation logic may have issues."
	case strings.Contains(result.Details, "Win rate"):
		return "Check internal/backtest/engine/engine_v1/position.go - position management or PnL calculation may be incorrect."
	case strings.Contains(result.Details, "Error"):
		if strings.Contains(result.ScenarioID, "rsi") {
			return "Check the RSI calculation in internal/indicator/rsi.go."
		}

		return "Check the logs for the failing node. Possible runtime error in the engine."
	default:
		return "Review internal/backtest/engine for logic errors."
	}
}

var whitespace = regexp.MustCompile(`\s+`)

// BuildReport summarises a suite result.
func BuildReport(result SuiteResult, timestamp time.Time) Report {
	report := Report{
		Status:          StatusPassed,
		Message:         "✓ All Systems Nominal - Engine is functioning correctly",
		Timestamp:       timestamp,
		ExecutionTimeMs: result.TotalExecutionTime.Milliseconds(),
		TotalTests:      result.TotalTests,
		PassedTests:     result.PassedTests,
		FailedTests:     result.FailedTests,
	}

	if result.FailedTests == 0 {
		return report
	}

	report.Status = StatusFailed
	report.Message = fmt.Sprintf("✗ %d test(s) failed - See failures for details", result.FailedTests)

	for _, r := range result.Results {
		if r.Passed {
			continue
		}

		detail := strings.Replace(r.Details, "✗ Failed:\n", "", 1)

		report.Failures = append(report.Failures, Failure{
			Scenario:   r.ScenarioName,
			Error:      strings.TrimSpace(whitespace.ReplaceAllString(detail, " ")),
			Suggestion: Suggest(r),
		})
	}

	return report
}

// Validate runs the built-in suite and returns its report.
func (r *Runner) Validate(ctx context.Context) Report {
	timestamp := r.now()

	return BuildReport(r.RunSuite(ctx, BuiltinSuite(timestamp)), timestamp)
}
