package api

import (
	"encoding/json"

	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/internal/validation"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
)

// BacktestRequest is the body of POST /api/backtest and the first message of
// a backtest stream. Candles win over Scenario; with neither, a NORMAL series
// of DefaultLength candles is synthesized.
type BacktestRequest struct {
	Nodes    []types.Node   `json:"nodes"`
	Edges    []types.Edge   `json:"edges"`
	Candles  []types.Candle `json:"candles,omitempty"`
	Scenario string         `json:"scenario,omitempty"`
	Length   int            `json:"length,omitempty"`
	Seed     int64          `json:"seed,omitempty"`
	// Config is decoded over the default configuration, so partial objects are fine.
	Config json.RawMessage `json:"config,omitempty"`
	Report bool            `json:"report,omitempty"`
}

// BacktestResponse carries the run result and, when requested, the analyst report.
type BacktestResponse struct {
	Result types.BacktestResult `json:"result"`
	Report string               `json:"report,omitempty"`
}

// SynthesizeResponse is returned by GET /api/synthesize.
type SynthesizeResponse struct {
	Scenario string         `json:"scenario"`
	Seed     int64          `json:"seed"`
	Candles  []types.Candle `json:"candles"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse wraps every failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure with its numeric error code.
type ErrorDetail struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Details map[string]any   `json:"details,omitempty"`
}

// StreamEventType tags the messages sent over a backtest stream.
type StreamEventType string

const (
	EventStart    StreamEventType = "start"
	EventProgress StreamEventType = "progress"
	EventSignal   StreamEventType = "signal"
	EventResult   StreamEventType = "result"
	EventError    StreamEventType = "error"
)

// StreamEvent is one websocket message. Only the fields of its type are set.
type StreamEvent struct {
	Type     StreamEventType    `json:"type"`
	RunID    string             `json:"runId,omitempty"`
	Current  int                `json:"current,omitempty"`
	Total    int                `json:"total,omitempty"`
	Signal   *types.TradeSignal `json:"signal,omitempty"`
	Response *BacktestResponse  `json:"response,omitempty"`
	Error    *ErrorDetail       `json:"error,omitempty"`
}

// validationCrash is the report served when the validation runner panics.
func validationCrash(message string) validation.Report {
	return validation.Report{
		Status:  validation.StatusFailed,
		Message: "Test runner crashed: " + message,
		Failures: []validation.Failure{{
			Scenario:   "system",
			Error:      message,
			Suggestion: "Check the server logs for the stack trace",
		}},
	}
}
