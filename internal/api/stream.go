package api

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/argo-forge/internal/backtest/engine"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"github.com/rxtech-lab/argo-forge/pkg/forge"
	"go.uber.org/zap"
)

// progressSteps is roughly how many progress events a stream carries.
const progressSteps = 100

// handleBacktestStream runs one backtest per connection. The client sends a
// BacktestRequest; the server answers with a start event, progress and signal
// events, and finally a result or error event before closing.
// Closing the connection early cancels the run.
func (s *Server) handleBacktestStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", zap.Error(err))

		return
	}
	defer conn.Close()

	var req BacktestRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.sendError(conn, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request message", err))

		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client sends nothing after the request; a read error means it left.
	go func() {
		defer cancel()

		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	response, err := s.runBacktest(r.WithContext(ctx), req, streamCallbacks(conn))
	if err != nil {
		s.sendError(conn, err)

		return
	}

	if err := conn.WriteJSON(StreamEvent{Type: EventResult, RunID: response.Result.RunID, Response: &response}); err != nil {
		s.log.Warn("Failed to send result", zap.Error(err))

		return
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// streamCallbacks forwards engine lifecycle events to conn. A failed write
// aborts the run.
func streamCallbacks(conn *websocket.Conn) forge.Callbacks {
	var (
		runID string
		every = 1
	)

	onStart := engine.OnRunStartCallback(func(id string, total int) error {
		runID = id
		every = max(1, total/progressSteps)

		return conn.WriteJSON(StreamEvent{Type: EventStart, RunID: id, Total: total})
	})

	onProcess := engine.OnProcessDataCallback(func(current int, total int) error {
		if current%every != 0 && current != total {
			return nil
		}

		return conn.WriteJSON(StreamEvent{Type: EventProgress, RunID: runID, Current: current, Total: total})
	})

	onSignal := engine.OnSignalCallback(func(signal types.TradeSignal) {
		_ = conn.WriteJSON(StreamEvent{Type: EventSignal, RunID: runID, Signal: &signal})
	})

	return forge.Callbacks{
		OnRunStart:    &onStart,
		OnProcessData: &onProcess,
		OnSignal:      &onSignal,
	}
}

func (s *Server) sendError(conn *websocket.Conn, err error) {
	detail := detailFor(err)
	if writeErr := conn.WriteJSON(StreamEvent{Type: EventError, Error: &detail}); writeErr != nil {
		s.log.Warn("Failed to send error", zap.Error(writeErr), zap.NamedError("cause", err))
	}
}
