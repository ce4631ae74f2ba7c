// Package api serves the simulator over HTTP: one-shot backtests, synthetic
// candles, the validation harness and a websocket progress stream.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/validation"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultLength is the number of candles synthesized when a request names none.
	DefaultLength = 500
	// MaxLength bounds synthesized series.
	MaxLength = 100_000
	// TestStatusHeader reports the validation outcome on /api/system/validate.
	TestStatusHeader = "X-Test-Status"
)

// Server routes API requests.
type Server struct {
	log        *logger.Logger
	router     *mux.Router
	upgrader   websocket.Upgrader
	validator  func(ctx context.Context) validation.Report
	origins    []string
	httpServer *http.Server
	listener   net.Listener
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithAllowedOrigins restricts CORS to origins. The default allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithValidator replaces the validation harness behind /api/system/validate.
func WithValidator(validate func(ctx context.Context) validation.Report) Option {
	return func(s *Server) {
		s.validator = validate
	}
}

// NewServer creates a server with all routes registered.
func NewServer(opts ...Option) *Server {
	s := &Server{
		log:     logger.NewNopLogger(),
		origins: []string{"*"},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.log = s.log.Named("api")

	if s.validator == nil {
		runner := validation.NewRunner(validation.WithLogger(s.log))
		s.validator = runner.Validate
	}

	s.router = mux.NewRouter()
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/system/validate", s.handleValidate).Methods(http.MethodGet)
	s.router.HandleFunc("/api/backtest", s.handleBacktest).Methods(http.MethodPost)
	s.router.HandleFunc("/api/backtest/stream", s.handleBacktestStream).Methods(http.MethodGet)
	s.router.HandleFunc("/api/synthesize", s.handleSynthesize).Methods(http.MethodGet)
	s.router.HandleFunc("/api/providers", s.handleProviders).Methods(http.MethodGet)
	s.router.HandleFunc("/api/schema/config", s.handleConfigSchema).Methods(http.MethodGet)

	return s
}

// Handler returns the router wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{TestStatusHeader},
	}).Handler(s.router)
}

// Start listens on address and serves in the background. An empty address
// picks a free port.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server stopped", zap.Error(err))
		}
	}()

	s.log.Info("Listening", zap.String("address", listener.Addr().String()))

	return nil
}

// Stop shuts the server down, waiting up to five seconds for requests in flight.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", zap.Error(err))
	}

	s.writeJSON(w, status, ErrorResponse{Error: detailFor(err)})
}

func detailFor(err error) ErrorDetail {
	var coded *errors.Error
	if errors.As(err, &coded) {
		return ErrorDetail{Code: coded.Code, Message: coded.Error()}
	}

	return ErrorDetail{Code: errors.ErrCodeUnknown, Message: err.Error()}
}

// statusFor maps error categories to HTTP statuses: request-shaped problems
// (validation, graph, node, scenario) are client errors.
func statusFor(err error) int {
	if errors.HasCode(err, errors.ErrCodeDataNotFound) {
		return http.StatusNotFound
	}

	switch errors.CategoryOf(err) {
	case errors.CategoryValidation, errors.CategoryGraph, errors.CategoryNode, errors.CategorySynthetic:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
